// Package projection maps committed event types to read-model handlers.
// Handlers run inside the originating Unit of Work, so views and the
// write side always commit together.
package projection

import (
	"context"
	"fmt"
	"sync"

	"github.com/murkotick/commerce-kernel/internal/kernel"
)

// Handler applies one event to one read model. Handlers must be
// idempotent with respect to re-application of the same event version.
type Handler func(ctx context.Context, ev kernel.Event, w kernel.Writer) error

// Engine is the event-type to handler registry. One event type may feed
// several read models.
type Engine struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewEngine creates an empty registry.
func NewEngine() *Engine {
	return &Engine{handlers: make(map[string][]Handler)}
}

// Register adds a handler for an event type.
func (e *Engine) Register(eventType string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[eventType] = append(e.handlers[eventType], h)
}

// Dispatch runs every registered handler for the event. The first
// handler error aborts the logical transaction.
func (e *Engine) Dispatch(ctx context.Context, ev kernel.Event, w kernel.Writer) error {
	e.mu.RLock()
	hs := e.handlers[ev.EventType]
	e.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, ev, w); err != nil {
			return fmt.Errorf("handler for %s: %w", ev.EventType, err)
		}
	}
	return nil
}

var _ kernel.Dispatcher = (*Engine)(nil)
