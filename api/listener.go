// Package api
// Author: momentics <momentics@gmail.com>
//
// Consumer-facing event contract of the WebSocket endpoint.

package api

// WebSocketListener receives semantic events decoded from the inbound frame
// stream. All callbacks run synchronously on the reader goroutine (the caller
// of Connect); a slow listener backpressures reads. The listener must
// tolerate receiving events while one of its own sends is still in flight.
type WebSocketListener interface {
	// OnConnected fires once, after the opening handshake is verified.
	OnConnected()

	// OnTextMessage delivers a final text frame decoded as UTF-8.
	OnTextMessage(message string)

	// OnBinaryMessage delivers a final binary frame.
	OnBinaryMessage(data []byte)

	// OnPing delivers a ping payload. The endpoint replies with a pong
	// through the regular writer path after this callback returns.
	OnPing(data []byte)

	// OnPong delivers a pong payload.
	OnPong(data []byte)

	// OnServerRequestedClose delivers the payload of a close frame. The
	// endpoint does not answer with a close frame of its own; the reader
	// keeps running until the server drops the connection.
	OnServerRequestedClose(data []byte)

	// OnUnknownMessage delivers the payload of a frame whose opcode is
	// outside the recognized set.
	OnUnknownMessage(data []byte)
}
