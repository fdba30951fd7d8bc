package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Alishanbouraa/quicktech-pos/pkg/logger"
)

// DrawerUpdate is the single event shape published after every state-changing
// drawer operation: open, transaction, close, modification, recalculation.
type DrawerUpdate struct {
	Type        string
	Amount      decimal.Decimal
	Description string
}

// Handler consumes drawer update events.
type Handler func(ctx context.Context, event DrawerUpdate)

// Bus is an in-process fire-and-forget dispatcher. Delivery is at-most-once
// per commit; a panicking subscriber never fails the operation that emitted
// the event.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logg     *logger.Logger
}

// NewBus constructs an event bus. The logger may be nil.
func NewBus(logg *logger.Logger) *Bus {
	return &Bus{logg: logg}
}

// Subscribe registers a handler for every subsequent publish.
func (b *Bus) Subscribe(handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the event to all subscribers synchronously.
func (b *Bus) Publish(ctx context.Context, event DrawerUpdate) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(ctx, handler, event)
	}
}

func (b *Bus) deliver(ctx context.Context, handler Handler, event DrawerUpdate) {
	defer func() {
		if r := recover(); r != nil && b.logg != nil {
			b.logg.Warn(ctx, "drawer event subscriber panicked")
		}
	}()
	handler(ctx, event)
}
