// Package fake
// Author: momentics <momentics@gmail.com>
//
// Scripted loopback peer: a raw TCP server that answers the opening
// handshake and then plays an arbitrary frame-level script. Used to drive
// the endpoint through wire sequences a well-behaved server never emits.

package fake

import (
	"bufio"
	"fmt"
	"net"
	"net/textproto"
	"sync"

	"github.com/momentics/hioload-wsclient/protocol"
)

// HandshakeResponder maps the client's Sec-WebSocket-Key to the full HTTP
// response text the peer writes back.
type HandshakeResponder func(secKey string) string

// SwitchingProtocols is the well-formed 101 response with a correct accept.
func SwitchingProtocols(secKey string) string {
	return "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + protocol.ComputeAcceptKey(secKey) + "\r\n" +
		"\r\n"
}

// Peer is a single-shot scripted server on a loopback listener.
type Peer struct {
	ln net.Listener

	mu         sync.Mutex
	requestURI string
	headers    textproto.MIMEHeader
}

// NewPeer opens a loopback listener on an ephemeral port.
func NewPeer() (*Peer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &Peer{ln: ln}, nil
}

// URL returns the ws:// URI of the peer for the given path.
func (p *Peer) URL(path string) string {
	return fmt.Sprintf("ws://%s%s", p.ln.Addr().String(), path)
}

// Close shuts the listener down.
func (p *Peer) Close() {
	_ = p.ln.Close()
}

// Request returns the full upgrade request line and the headers seen by the peer.
func (p *Peer) Request() (string, textproto.MIMEHeader) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestURI, p.headers
}

// ServeOnce accepts one connection, answers its handshake via respond, runs
// script on the stream and closes it. The script reads client frames from br
// (which may hold bytes buffered past the request head) and writes to conn.
// The returned channel reports the first serving error, or nil after a clean
// script run.
func (p *Peer) ServeOnce(respond HandshakeResponder, script func(conn net.Conn, br *bufio.Reader) error) <-chan error {
	done := make(chan error, 1)
	go func() {
		conn, err := p.ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()

		br := bufio.NewReader(conn)
		key, err := p.readUpgrade(br)
		if err != nil {
			done <- err
			return
		}
		if _, err := conn.Write([]byte(respond(key))); err != nil {
			done <- err
			return
		}
		if script != nil {
			if err := script(conn, br); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	return done
}

// readUpgrade consumes the request head and records it for assertions.
func (p *Peer) readUpgrade(br *bufio.Reader) (string, error) {
	tp := textproto.NewReader(br)
	requestLine, err := tp.ReadLine()
	if err != nil {
		return "", err
	}
	headers, err := tp.ReadMIMEHeader()
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.requestURI = requestLine
	p.headers = headers
	p.mu.Unlock()

	key := headers.Get("Sec-WebSocket-Key")
	if key == "" {
		return "", fmt.Errorf("upgrade request missing Sec-WebSocket-Key")
	}
	return key, nil
}
