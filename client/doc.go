// Package client
// Author: momentics <momentics@gmail.com>
//
// Single-connection WebSocket endpoint (RFC 6455 version 13, client role).
//
// The endpoint is driven by the goroutine that calls Connect: that goroutine
// performs the opening handshake and then becomes the frame reader, blocking
// for the lifetime of the connection and delivering semantic events to the
// registered api.WebSocketListener. Any other goroutine may send messages
// concurrently or abort the connection with Interrupt.
//
//	ws, _ := client.NewWebSocket(listener)
//	go func() {
//		err := ws.Connect("ws://localhost:9001/echo")
//		// err is api.ErrInterrupted after a local Interrupt, a
//		// *api.WrongResponseError on protocol violations, or the
//		// underlying I/O failure.
//	}()
//	ws.SendText("hello")
//	ws.Interrupt()
//
// One endpoint carries one connection at a time; there is no reconnection,
// no message queueing across disconnects, and no outgoing close handshake.
package client
