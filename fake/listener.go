// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, recordable behavior for the endpoint contracts.

package fake

import (
	"sync"

	"github.com/momentics/hioload-wsclient/api"
)

// Event is one recorded listener callback.
type Event struct {
	Kind    string // "connected", "text", "binary", "ping", "pong", "close", "unknown"
	Text    string
	Payload []byte
}

// Listener is a recording api.WebSocketListener. Every callback appends to
// the event log and signals Notify, so tests can block until delivery.
type Listener struct {
	mu     sync.Mutex
	events []Event

	// Notify receives one element per callback while its buffer has room;
	// when it is full the element is dropped (the event log still keeps it),
	// so the reader goroutine never blocks on an inattentive test.
	Notify chan Event
}

// NewListener creates an empty recording listener.
func NewListener() *Listener {
	return &Listener{
		Notify: make(chan Event, 128),
	}
}

func (l *Listener) record(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	select {
	case l.Notify <- ev:
	default:
	}
}

// Events returns a copy of the recorded callback log.
func (l *Listener) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// OnConnected implements api.WebSocketListener.
func (l *Listener) OnConnected() {
	l.record(Event{Kind: "connected"})
}

// OnTextMessage implements api.WebSocketListener.
func (l *Listener) OnTextMessage(message string) {
	l.record(Event{Kind: "text", Text: message})
}

// OnBinaryMessage implements api.WebSocketListener.
func (l *Listener) OnBinaryMessage(data []byte) {
	l.record(Event{Kind: "binary", Payload: cloneBytes(data)})
}

// OnPing implements api.WebSocketListener.
func (l *Listener) OnPing(data []byte) {
	l.record(Event{Kind: "ping", Payload: cloneBytes(data)})
}

// OnPong implements api.WebSocketListener.
func (l *Listener) OnPong(data []byte) {
	l.record(Event{Kind: "pong", Payload: cloneBytes(data)})
}

// OnServerRequestedClose implements api.WebSocketListener.
func (l *Listener) OnServerRequestedClose(data []byte) {
	l.record(Event{Kind: "close", Payload: cloneBytes(data)})
}

// OnUnknownMessage implements api.WebSocketListener.
func (l *Listener) OnUnknownMessage(data []byte) {
	l.record(Event{Kind: "unknown", Payload: cloneBytes(data)})
}

var _ api.WebSocketListener = (*Listener)(nil)

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
