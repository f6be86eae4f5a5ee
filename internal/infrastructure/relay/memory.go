// Package relay moves sealed authorization tokens from an approving
// device to the waiting application. MemoryRelay serves the isolated
// runtime and tests; Client talks to an HTTP relay; Handler exposes a
// MemoryRelay over HTTP.
package relay

import (
	"context"
	"sync"
)

// MemoryRelay is an in-process relay. Each channel holds at most one
// pending message; a second Send replaces the first. A channel is dropped
// once its message is taken, or once its last receiver gives up with
// nothing pending. Safe for concurrent use.
type MemoryRelay struct {
	mu       sync.Mutex
	channels map[string]*slot
}

type slot struct {
	c       chan []byte
	waiters int
}

func NewMemoryRelay() *MemoryRelay {
	return &MemoryRelay{channels: make(map[string]*slot)}
}

// slotLocked must be called with m.mu held.
func (m *MemoryRelay) slotLocked(name string) *slot {
	s, ok := m.channels[name]
	if !ok {
		s = &slot{c: make(chan []byte, 1)}
		m.channels[name] = s
	}
	return s
}

func (m *MemoryRelay) Send(_ context.Context, channel string, payload []byte) error {
	msg := append([]byte(nil), payload...)

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.slotLocked(channel)
	select {
	case <-s.c:
	default:
	}
	s.c <- msg
	return nil
}

func (m *MemoryRelay) Receive(ctx context.Context, channel string) ([]byte, error) {
	m.mu.Lock()
	s := m.slotLocked(channel)
	s.waiters++
	m.mu.Unlock()

	select {
	case msg := <-s.c:
		m.mu.Lock()
		s.waiters--
		if m.channels[channel] == s && len(s.c) == 0 {
			delete(m.channels, channel)
		}
		m.mu.Unlock()
		return msg, nil
	case <-ctx.Done():
		m.mu.Lock()
		s.waiters--
		if m.channels[channel] == s && s.waiters == 0 && len(s.c) == 0 {
			delete(m.channels, channel)
		}
		m.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Len reports how many channels are currently held.
func (m *MemoryRelay) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}
