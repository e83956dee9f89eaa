// File: transport/dialer.go
// Package transport provides the byte-stream factory for the endpoint.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The dialer resolves ws/wss URIs to TCP addresses, tunes the socket at
// creation time, and layers TLS for wss. Cancellation is context-driven so
// a concurrent interrupt can abort a dial that is still in flight.

package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/momentics/hioload-wsclient/api"
)

// Default ports per URI scheme.
const (
	DefaultWSPort  = 80
	DefaultWSSPort = 443
)

// Address maps a parsed ws/wss URI to a dialable host:port and reports
// whether the stream must be TLS-secured. An explicit port in the URI
// overrides the scheme default.
func Address(u *url.URL) (addr string, secure bool, err error) {
	switch u.Scheme {
	case "ws":
		secure = false
	case "wss":
		secure = true
	default:
		return "", false, api.ErrUnknownScheme
	}

	port := u.Port()
	if port == "" {
		if secure {
			port = strconv.Itoa(DefaultWSSPort)
		} else {
			port = strconv.Itoa(DefaultWSPort)
		}
	}
	return net.JoinHostPort(u.Hostname(), port), secure, nil
}

// Dialer produces connected duplex streams for the endpoint.
type Dialer struct {
	Timeout   time.Duration // per-dial limit, 0 means no limit
	TLSConfig *tls.Config   // optional; cloned before use
}

// Dial connects to addr over TCP, applying the platform socket tuning, and
// wraps the stream in TLS when secure is set. serverName seeds SNI and
// certificate verification unless the caller's TLSConfig already names one.
func (d *Dialer) Dial(ctx context.Context, addr string, secure bool, serverName string) (net.Conn, error) {
	nd := net.Dialer{
		Timeout: d.Timeout,
		Control: tuneSocket,
	}
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if !secure {
		return conn, nil
	}

	cfg := d.TLSConfig.Clone()
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tlsConn, nil
}
