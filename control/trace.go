// control/trace.go
// Author: momentics <momentics@gmail.com>
//
// Bounded journal of recent protocol events for post-mortem inspection.
// Backed by a FIFO queue; oldest entries are evicted once capacity is hit.

package control

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-wsclient/api"
)

// DefaultJournalCapacity bounds a journal created with NewTraceJournal(0).
const DefaultJournalCapacity = 256

// TraceEvent is one recorded protocol event.
type TraceEvent struct {
	Dir        api.TraceDirection
	Opcode     byte
	PayloadLen int
	Note       string
	At         time.Time
}

// TraceJournal implements api.FrameTracer over a bounded FIFO.
type TraceJournal struct {
	mu       sync.Mutex
	capacity int
	events   *queue.Queue
}

// NewTraceJournal creates a journal keeping at most capacity events.
func NewTraceJournal(capacity int) *TraceJournal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &TraceJournal{
		capacity: capacity,
		events:   queue.New(),
	}
}

// Record appends one event, evicting the oldest entry when full.
func (tj *TraceJournal) Record(dir api.TraceDirection, opcode byte, payloadLen int, note string) {
	tj.mu.Lock()
	if tj.events.Length() >= tj.capacity {
		tj.events.Remove()
	}
	tj.events.Add(TraceEvent{
		Dir:        dir,
		Opcode:     opcode,
		PayloadLen: payloadLen,
		Note:       note,
		At:         time.Now(),
	})
	tj.mu.Unlock()
}

// Snapshot returns the journal contents, oldest first.
func (tj *TraceJournal) Snapshot() []TraceEvent {
	tj.mu.Lock()
	defer tj.mu.Unlock()
	out := make([]TraceEvent, 0, tj.events.Length())
	for i := 0; i < tj.events.Length(); i++ {
		out = append(out, tj.events.Get(i).(TraceEvent))
	}
	return out
}

// Len returns the number of retained events.
func (tj *TraceJournal) Len() int {
	tj.mu.Lock()
	defer tj.mu.Unlock()
	return tj.events.Length()
}
