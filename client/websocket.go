// File: client/websocket.go
// Package client implements the connection lifecycle state machine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Two locks guard the endpoint. The state mutex protects the state enum, the
// socket handle and the outstanding-writes counter, with one broadcast
// condition shared by state-change and drain waiters. The write mutex
// serializes frame emission so concurrent senders never interleave bytes.
// A goroutine never holds both at once. Socket reads run outside both locks;
// socket writes and flushes run under the write mutex only.

package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/control"
	"github.com/momentics/hioload-wsclient/protocol"
	"github.com/momentics/hioload-wsclient/secrand"
	"github.com/momentics/hioload-wsclient/transport"
)

// State is the connection lifecycle state of an endpoint.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Disconnecting
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// WebSocket is a single-connection client endpoint. Connect blocks the
// calling goroutine for the connection lifetime; SendText, SendBinary,
// SendPing and Interrupt may be called from any goroutine.
type WebSocket struct {
	listener api.WebSocketListener
	cfg      Config
	secrets  secrand.Provider
	dialer   transport.Dialer

	// Guarded by mu. cond broadcasts on every state change and on every
	// outstanding-write completion.
	mu         sync.Mutex
	cond       *sync.Cond
	state      State
	conn       net.Conn           // non-nil only while Connecting..Disconnecting
	cancelDial context.CancelFunc // aborts a dial still in flight
	writing    int                // outstanding sends, drained before teardown
	lifecycles uint64             // Connect invocations that went through teardown

	// Guarded by wmu. The buffered writer is replaced at connect time,
	// which is safe because no sender can be in flight before Connected.
	wmu sync.Mutex
	bw  *bufio.Writer

	// Owned by the reader goroutine (the caller of Connect).
	br *bufio.Reader

	warnOnce sync.Once
}

// NewWebSocket creates an endpoint delivering events to listener.
func NewWebSocket(listener api.WebSocketListener) (*WebSocket, error) {
	return NewWebSocketWithConfig(listener, DefaultConfig())
}

// NewWebSocketWithConfig creates an endpoint with an explicit configuration.
func NewWebSocketWithConfig(listener api.WebSocketListener, cfg Config) (*WebSocket, error) {
	if listener == nil {
		return nil, api.ErrNilArgument
	}
	ws := &WebSocket{
		listener: listener,
		cfg:      cfg,
		dialer: transport.Dialer{
			Timeout:   cfg.DialTimeout,
			TLSConfig: cfg.TLSConfig,
		},
	}
	ws.cond = sync.NewCond(&ws.mu)
	ws.registerProbes()
	return ws, nil
}

// registerProbes exposes endpoint internals through the configured debug
// probe registry: lifecycle state, the sticky CSPRNG degradation flag, and
// the metrics/trace surfaces when those are configured too.
func (ws *WebSocket) registerProbes() {
	dp := ws.cfg.Debug
	if dp == nil {
		return
	}
	dp.RegisterProbe("endpoint.state", func() any {
		return ws.State().String()
	})
	dp.RegisterProbe("endpoint.random_degraded", func() any {
		return ws.secrets.Degraded()
	})
	if ws.cfg.Metrics != nil {
		dp.AttachMetrics("endpoint.metrics", ws.cfg.Metrics)
	}
	if journal, ok := ws.cfg.Tracer.(*control.TraceJournal); ok {
		dp.AttachJournal("endpoint.trace", journal)
	}
}

// State returns the current lifecycle state.
func (ws *WebSocket) State() State {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.state
}

// Connect dials rawURI, performs the opening handshake, fires OnConnected and
// then reads frames until the connection dies. It always returns a non-nil
// error: api.ErrInterrupted when a local Interrupt was honored, a
// *api.WrongResponseError when the server violated the protocol, or the
// originating I/O failure. Except when it fails with api.ErrConnectState, on
// return the endpoint is Disconnected and all outstanding sends have completed.
func (ws *WebSocket) Connect(rawURI string) error {
	if rawURI == "" {
		return api.ErrNilArgument
	}
	u, err := url.Parse(rawURI)
	if err != nil {
		return fmt.Errorf("invalid websocket uri: %w", err)
	}

	dialCtx, cancel := context.WithCancel(context.Background())

	ws.mu.Lock()
	if ws.state != Disconnected {
		ws.mu.Unlock()
		cancel()
		return api.ErrConnectState
	}
	addr, secure, err := transport.Address(u)
	if err != nil {
		ws.mu.Unlock()
		cancel()
		return err
	}
	// The cancel hook stands in for the socket handle until the dial
	// returns, so a concurrent Interrupt can abort a blocked connect.
	ws.cancelDial = cancel
	ws.toStateLocked(Connecting)
	ws.mu.Unlock()
	ws.traceLifecycle("connecting")

	conn, err := ws.dialer.Dial(dialCtx, addr, secure, u.Hostname())
	if err != nil {
		return ws.teardown(err)
	}

	ws.mu.Lock()
	if ws.state != Connecting {
		ws.mu.Unlock()
		_ = conn.Close()
		return ws.teardown(nil)
	}
	ws.conn = conn
	ws.mu.Unlock()

	ws.br = bufio.NewReader(conn)
	ws.wmu.Lock()
	ws.bw = bufio.NewWriter(conn)
	ws.wmu.Unlock()

	if err := ws.handshake(u); err != nil {
		return ws.teardown(err)
	}

	ws.mu.Lock()
	if ws.state != Connecting {
		ws.mu.Unlock()
		return ws.teardown(nil)
	}
	ws.toStateLocked(Connected)
	ws.mu.Unlock()
	ws.traceLifecycle("connected")

	ws.listener.OnConnected()
	return ws.teardown(ws.readLoop())
}

// Interrupt aborts a connect or an established connection from any
// goroutine. Called before Connect has begun on a fresh endpoint, it blocks
// until the connect starts and then cancels it. It returns only after the
// Connect goroutine has fully unwound and released all resources. After a
// completed lifecycle it is a no-op.
func (ws *WebSocket) Interrupt() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.state == Disconnected && ws.lifecycles > 0 {
		return
	}
	// Wait for Connect to begin, or for a racing lifecycle to finish whole.
	start := ws.lifecycles
	for ws.state == Disconnected && ws.lifecycles == start {
		ws.cond.Wait()
	}
	if ws.state == Connecting || ws.state == Connected {
		if ws.cancelDial != nil {
			ws.cancelDial()
		}
		if ws.conn != nil {
			_ = ws.conn.Close()
		}
		ws.toStateLocked(Disconnecting)
	}
	for ws.state != Disconnected {
		ws.cond.Wait()
	}
}

// SendText sends a final text frame encoded as UTF-8.
func (ws *WebSocket) SendText(message string) error {
	return ws.sendFrame(protocol.OpcodeText, []byte(message))
}

// SendBinary sends a final binary frame.
func (ws *WebSocket) SendBinary(buffer []byte) error {
	if buffer == nil {
		return api.ErrNilArgument
	}
	return ws.sendFrame(protocol.OpcodeBinary, buffer)
}

// SendPing sends a ping frame carrying buffer.
func (ws *WebSocket) SendPing(buffer []byte) error {
	if buffer == nil {
		return api.ErrNilArgument
	}
	return ws.sendFrame(protocol.OpcodePing, buffer)
}

// handshake writes the upgrade request and validates the server response.
func (ws *WebSocket) handshake(u *url.URL) error {
	secret := ws.secrets.HandshakeSecret()

	ws.wmu.Lock()
	err := protocol.WriteUpgradeRequest(ws.bw, u, secret)
	if err == nil {
		err = ws.bw.Flush()
	}
	ws.wmu.Unlock()
	if err != nil {
		return err
	}
	return protocol.ReadUpgradeResponse(ws.br, secret)
}

// readLoop decodes one frame per iteration and dispatches it. It runs on the
// Connect goroutine only and exits with the first I/O or protocol error.
func (ws *WebSocket) readLoop() error {
	for {
		frame, err := protocol.ReadFrame(ws.br)
		if err != nil {
			return err
		}
		ws.observe(api.TraceInbound, frame.Opcode, len(frame.Payload))

		switch frame.Opcode {
		case protocol.OpcodeText:
			ws.listener.OnTextMessage(string(frame.Payload))
		case protocol.OpcodeBinary:
			ws.listener.OnBinaryMessage(frame.Payload)
		case protocol.OpcodeClose:
			ws.listener.OnServerRequestedClose(frame.Payload)
		case protocol.OpcodePong:
			ws.listener.OnPong(frame.Payload)
		case protocol.OpcodePing:
			ws.listener.OnPing(frame.Payload)
			// Pong goes through the regular writer path and may fail the
			// same way an application send does.
			if err := ws.sendFrame(protocol.OpcodePong, frame.Payload); err != nil {
				return err
			}
		default:
			ws.listener.OnUnknownMessage(frame.Payload)
		}
	}
}

// sendFrame is the shared entry of the send family: state check and
// outstanding-writes accounting around the serialized frame emission.
func (ws *WebSocket) sendFrame(opcode byte, payload []byte) error {
	ws.mu.Lock()
	if ws.state != Connected {
		ws.mu.Unlock()
		return api.ErrNotConnected
	}
	ws.writing++
	ws.mu.Unlock()

	err := ws.writeFrame(opcode, payload)
	if err != nil {
		ws.mu.Lock()
		if ws.state == Disconnecting {
			err = api.ErrInterrupted
		}
		ws.mu.Unlock()
	} else {
		ws.observe(api.TraceOutbound, opcode, len(payload))
	}

	ws.mu.Lock()
	ws.writing--
	ws.cond.Broadcast()
	ws.mu.Unlock()
	return err
}

// writeFrame emits one masked frame under the write lock. When the secure
// random provider has degraded, frames go out unmasked; the degradation is
// reported once through the configured logger.
func (ws *WebSocket) writeFrame(opcode byte, payload []byte) error {
	mask := ws.secrets.FrameMask()
	if mask == nil {
		ws.warnOnce.Do(func() {
			if ws.cfg.Logger != nil {
				ws.cfg.Logger.Printf("secure random unavailable, emitting unmasked frames")
			}
		})
	}

	ws.wmu.Lock()
	defer ws.wmu.Unlock()

	var hdr [protocol.MaxFrameHeaderLen]byte
	n := protocol.EncodeHeader(hdr[:], opcode, len(payload), mask != nil)
	if _, err := ws.bw.Write(hdr[:n]); err != nil {
		return err
	}
	if mask != nil {
		if _, err := ws.bw.Write(mask); err != nil {
			return err
		}
		masked := make([]byte, len(payload))
		copy(masked, payload)
		protocol.MaskBytes(masked, mask)
		if _, err := ws.bw.Write(masked); err != nil {
			return err
		}
	} else {
		if _, err := ws.bw.Write(payload); err != nil {
			return err
		}
	}
	return ws.bw.Flush()
}

// teardown is the single exit path of Connect: close the socket, drain the
// outstanding-writes counter, transition to Disconnected and decide between
// the interrupted condition and the originating error.
func (ws *WebSocket) teardown(cause error) error {
	ws.mu.Lock()
	if ws.conn != nil {
		_ = ws.conn.Close()
	}
	if ws.cancelDial != nil {
		ws.cancelDial()
		ws.cancelDial = nil
	}
	for ws.writing != 0 {
		ws.cond.Wait()
	}
	interrupted := ws.state == Disconnecting
	ws.conn = nil
	ws.lifecycles++
	ws.toStateLocked(Disconnected)
	ws.mu.Unlock()

	if interrupted || cause == nil {
		ws.traceLifecycle("interrupted")
		return api.ErrInterrupted
	}
	ws.traceLifecycle("disconnected")
	return cause
}

// toStateLocked mutates the state and wakes every waiter. Broadcast, not
// Signal: drain waiters and state waiters share the condition.
func (ws *WebSocket) toStateLocked(s State) {
	ws.state = s
	ws.cond.Broadcast()
}

func (ws *WebSocket) observe(dir api.TraceDirection, opcode byte, payloadLen int) {
	if ws.cfg.Metrics != nil {
		if dir == api.TraceInbound {
			ws.cfg.Metrics.Add(control.MetricFramesReceived, 1)
			ws.cfg.Metrics.Add(control.MetricBytesReceived, int64(payloadLen))
		} else {
			ws.cfg.Metrics.Add(control.MetricFramesSent, 1)
			ws.cfg.Metrics.Add(control.MetricBytesSent, int64(payloadLen))
		}
	}
	if ws.cfg.Tracer != nil {
		ws.cfg.Tracer.Record(dir, opcode, payloadLen, "")
	}
}

func (ws *WebSocket) traceLifecycle(note string) {
	if ws.cfg.Tracer != nil {
		ws.cfg.Tracer.Record(api.TraceLifecycle, 0, 0, note)
	}
}
