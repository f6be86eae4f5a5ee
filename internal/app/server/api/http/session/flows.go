package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventky/internal/app/client"
	"eventky/internal/infrastructure/runtime"
)

// pendingFlow awaits its approval in the background so that pollers
// only wait a bounded time per request.
type pendingFlow struct {
	flow *client.AuthFlow
	done chan struct{}
	sess runtime.Session
	err  error
}

// flows evicts a finished flow after retain, whether or not anyone
// polled its outcome.
type flows struct {
	mu     sync.Mutex
	items  map[string]*pendingFlow
	retain time.Duration
}

func newFlows(retain time.Duration) *flows {
	return &flows{items: make(map[string]*pendingFlow), retain: retain}
}

func (f *flows) add(flow *client.AuthFlow) string {
	id := uuid.NewString()
	p := &pendingFlow{flow: flow, done: make(chan struct{})}

	f.mu.Lock()
	f.items[id] = p
	f.mu.Unlock()

	go func() {
		p.sess, p.err = flow.AwaitApproval(context.Background())
		close(p.done)
		time.AfterFunc(f.retain, func() { f.remove(id) })
	}()
	return id
}

func (f *flows) get(id string) (*pendingFlow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	return p, ok
}

func (f *flows) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *flows) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
}
