package sinks

import (
	"context"
	"sync"

	"github.com/0xwonj/dungeon-sub001/logging"
)

// Memory collects events in a slice. Intended for tests and the observer
// endpoint's replay buffer.
type Memory struct {
	mu     sync.Mutex
	events []logging.Event
	limit  int
}

// NewMemory builds a memory sink. A positive limit caps retention; older
// events are discarded once it is exceeded.
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit}
}

// Name implements logging.Sink.
func (m *Memory) Name() string { return "memory" }

// Deliver implements logging.Sink.
func (m *Memory) Deliver(_ context.Context, event logging.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if m.limit > 0 && len(m.events) > m.limit {
		overflow := len(m.events) - m.limit
		m.events = append(m.events[:0], m.events[overflow:]...)
	}
	return nil
}

// Events returns a copy of everything delivered so far.
func (m *Memory) Events() []logging.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]logging.Event(nil), m.events...)
}

// Close implements logging.Sink.
func (m *Memory) Close(context.Context) error { return nil }
