// File: protocol/handshake_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"bufio"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/momentics/hioload-wsclient/api"
)

// The sample key/accept pair from RFC 6455 section 1.2.
const (
	sampleKey    = "dGhlIHNhbXBsZSBub25jZQ=="
	sampleAccept = "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
)

func TestComputeAcceptKey(t *testing.T) {
	if got := ComputeAcceptKey(sampleKey); got != sampleAccept {
		t.Errorf("ComputeAcceptKey = %q, want %q", got, sampleAccept)
	}
}

func TestWriteUpgradeRequest(t *testing.T) {
	u, _ := url.Parse("ws://example.com:9001/chat/room?x=1")
	var sb strings.Builder
	if err := WriteUpgradeRequest(&sb, u, sampleKey); err != nil {
		t.Fatalf("WriteUpgradeRequest: %v", err)
	}
	lines := strings.Split(sb.String(), "\r\n")

	want := []string{
		"GET /chat/room HTTP/1.1",
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Host: example.com",
		"Origin: ws://example.com:9001/chat/room?x=1",
		"Sec-WebSocket-Key: " + sampleKey,
		"Sec-WebSocket-Protocol: chat",
		"Sec-WebSocket-Version: 13",
		"",
		"",
	}
	if len(lines) != len(want) {
		t.Fatalf("request has %d lines, want %d:\n%q", len(lines), len(want), sb.String())
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestWriteUpgradeRequestDefaultPath(t *testing.T) {
	u, _ := url.Parse("ws://example.com")
	var sb strings.Builder
	if err := WriteUpgradeRequest(&sb, u, sampleKey); err != nil {
		t.Fatalf("WriteUpgradeRequest: %v", err)
	}
	if !strings.HasPrefix(sb.String(), "GET / HTTP/1.1\r\n") {
		t.Errorf("empty path did not default to /: %q", sb.String())
	}
}

func readResponse(t *testing.T, response, secret string) error {
	t.Helper()
	return ReadUpgradeResponse(bufio.NewReader(strings.NewReader(response)), secret)
}

func TestReadUpgradeResponseOK(t *testing.T) {
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + sampleAccept + "\r\n" +
		"\r\n"
	if err := readResponse(t, resp, sampleKey); err != nil {
		t.Errorf("valid response rejected: %v", err)
	}
}

func TestReadUpgradeResponseCaseInsensitiveHeaders(t *testing.T) {
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"sec-websocket-accept: " + sampleAccept + "\r\n" +
		"\r\n"
	if err := readResponse(t, resp, sampleKey); err != nil {
		t.Errorf("lowercase header name rejected: %v", err)
	}
}

func TestReadUpgradeResponseViolations(t *testing.T) {
	cases := []struct {
		name     string
		response string
		reason   string
	}{
		{
			name:     "status 200",
			response: "HTTP/1.1 200 OK\r\nSec-WebSocket-Accept: " + sampleAccept + "\r\n\r\n",
			reason:   "wrong HTTP response status",
		},
		{
			name:     "http 1.0",
			response: "HTTP/1.0 101 Switching Protocols\r\nSec-WebSocket-Accept: " + sampleAccept + "\r\n\r\n",
			reason:   "wrong HTTP response status",
		},
		{
			name:     "garbage status line",
			response: "totally-not-http\r\n\r\n",
			reason:   "wrong HTTP response status line",
		},
		{
			name:     "missing accept",
			response: "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\n\r\n",
			reason:   "Sec-WebSocket-Accept did not appear",
		},
		{
			name: "duplicate accept",
			response: "HTTP/1.1 101 Switching Protocols\r\n" +
				"Sec-WebSocket-Accept: " + sampleAccept + "\r\n" +
				"Sec-WebSocket-Accept: " + sampleAccept + "\r\n\r\n",
			reason: "Sec-WebSocket-Accept should appear once",
		},
		{
			name:     "wrong accept",
			response: "HTTP/1.1 101 Switching Protocols\r\nSec-WebSocket-Accept: bm90LXRoZS1yaWdodC1oYXNo\r\n\r\n",
			reason:   "Sec-WebSocket-Accept is wrong",
		},
		{
			name: "server selects chat",
			response: "HTTP/1.1 101 Switching Protocols\r\n" +
				"Sec-WebSocket-Accept: " + sampleAccept + "\r\n" +
				"Sec-WebSocket-Protocol: chat\r\n\r\n",
			reason: "unsupported subprotocol selection",
		},
	}
	for _, c := range cases {
		err := readResponse(t, c.response, sampleKey)
		var wrong *api.WrongResponseError
		if !errors.As(err, &wrong) {
			t.Errorf("%s: err = %v, want WrongResponseError", c.name, err)
			continue
		}
		if wrong.Reason != c.reason {
			t.Errorf("%s: reason = %q, want %q", c.name, wrong.Reason, c.reason)
		}
	}
}

func TestReadUpgradeResponseOtherSubprotocolAccepted(t *testing.T) {
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Sec-WebSocket-Accept: " + sampleAccept + "\r\n" +
		"Sec-WebSocket-Protocol: json\r\n" +
		"\r\n"
	if err := readResponse(t, resp, sampleKey); err != nil {
		t.Errorf("non-chat subprotocol rejected: %v", err)
	}
}
