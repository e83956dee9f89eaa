// File: client/config.go
// Package client
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"crypto/tls"
	"log"
	"time"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/control"
)

// Config holds all configurable parameters for the WebSocket endpoint.
// The zero value is usable; DefaultConfig supplies the recommended defaults.
type Config struct {
	DialTimeout time.Duration            // limit for the TCP connect, 0 = none
	TLSConfig   *tls.Config              // wss only; cloned before use
	Metrics     *control.MetricsRegistry // optional frame/byte counters
	Tracer      api.FrameTracer          // optional protocol event recorder
	Debug       *control.DebugProbes     // optional; endpoint registers its probes here
	Logger      *log.Logger              // optional; degraded-masking warning only
}

// DefaultConfig returns the recommended endpoint configuration.
func DefaultConfig() Config {
	return Config{
		DialTimeout: 30 * time.Second,
	}
}
