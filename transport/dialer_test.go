// File: transport/dialer_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/momentics/hioload-wsclient/api"
)

func TestAddress(t *testing.T) {
	cases := []struct {
		uri    string
		addr   string
		secure bool
	}{
		{"ws://example.com/path", "example.com:80", false},
		{"ws://example.com:9001/path", "example.com:9001", false},
		{"wss://example.com/path", "example.com:443", true},
		{"wss://example.com:8443/", "example.com:8443", true},
	}
	for _, c := range cases {
		u, err := url.Parse(c.uri)
		if err != nil {
			t.Fatalf("parse %q: %v", c.uri, err)
		}
		addr, secure, err := Address(u)
		if err != nil {
			t.Fatalf("Address(%q): %v", c.uri, err)
		}
		if addr != c.addr || secure != c.secure {
			t.Errorf("Address(%q) = (%q, %v), want (%q, %v)", c.uri, addr, secure, c.addr, c.secure)
		}
	}
}

func TestAddressUnknownScheme(t *testing.T) {
	for _, raw := range []string{"http://example.com", "ftp://example.com", "example.com"} {
		u, _ := url.Parse(raw)
		if _, _, err := Address(u); !errors.Is(err, api.ErrUnknownScheme) {
			t.Errorf("Address(%q) err = %v, want ErrUnknownScheme", raw, err)
		}
	}
}

func TestDialPlain(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
		close(accepted)
	}()

	d := Dialer{Timeout: 5 * time.Second}
	conn, err := d.Dial(context.Background(), ln.Addr().String(), false, "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()
	<-accepted
}

func TestDialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := Dialer{}
	// 192.0.2.0/24 is TEST-NET; nothing answers there.
	if _, err := d.Dial(ctx, "192.0.2.1:80", false, ""); err == nil {
		t.Fatal("dial with cancelled context succeeded")
	}
}
