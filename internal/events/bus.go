package events

import (
	"context"
	"sync"
)

// Handler receives every published event. Handlers own their failure
// handling: the bus never collects errors, so a failing subscriber can
// never roll back or fail the mutation that published the event.
type Handler func(ctx context.Context, event any)

// Publisher is the side services depend on. Satisfied by *Bus.
type Publisher interface {
	Publish(ctx context.Context, event any)
}

// Bus is a synchronous in-process event bus. Publication runs every
// handler to completion, in subscription order, on the caller's
// goroutine: a propagation triggered by a request finishes within that
// request, with no background fan-out.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent publications.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every subscriber sequentially.
func (b *Bus) Publish(ctx context.Context, event any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}
