// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime observability for the WebSocket endpoint: metrics telemetry,
// a bounded trace journal of recent protocol events, and debug probe
// registration for state export.
//
// Everything here is optional; the endpoint runs unobserved when no
// registry or journal is configured.
package control
