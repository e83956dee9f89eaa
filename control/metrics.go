// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for the endpoint: thread-safe counter registry fed by the
// reader loop and the writers.

package control

import (
	"sync"
	"time"
)

// Well-known counter keys maintained by the endpoint.
const (
	MetricFramesSent     = "frames_sent"
	MetricFramesReceived = "frames_received"
	MetricBytesSent      = "bytes_sent"
	MetricBytesReceived  = "bytes_received"
)

// MetricsRegistry holds named int64 counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
	}
}

// Add increments a counter by delta, creating it on first use.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns the current value of one counter.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// GetSnapshot returns a copy of all counters.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, v := range mr.counters {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last counter change.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
