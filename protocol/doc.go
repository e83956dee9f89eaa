// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Client-side RFC 6455 (version 13) wire protocol: frame codec, payload
// masking, and the opening HTTP/1.1 Upgrade handshake.
//
// Known limitations, kept deliberately:
//
//   - Fragmented messages are not supported. Any frame with FIN=0 and any
//     continuation frame is rejected as a protocol violation.
//   - The handshake requests the "chat" subprotocol but rejects a response
//     in which the server actually selects "chat". The check is inverted
//     relative to the request; it is kept literally for compatibility with
//     peers deployed against the historical behavior.
//   - No outgoing close handshake: a received close frame is surfaced to the
//     listener without an answer, and the reader keeps reading until the
//     server drops the connection.
package protocol
