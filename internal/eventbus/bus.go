// Package eventbus delivers subscription lifecycle events to in-process
// subscribers and, optionally, forwards them to RabbitMQ.
package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"go.uber.org/zap"
)

var _ contracts.EventChannel = (*Bus)(nil)

// AllEvents subscribes a handler to every event name.
const AllEvents = "*"

// Event is one published lifecycle event.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Handler reacts to an event. Returned errors are logged by the bus.
type Handler func(ctx context.Context, event Event) error

// Bus is an asynchronous in-process event channel. Publish returns
// immediately; each matching handler runs on its own goroutine, so a slow or
// failing subscriber never affects the publisher or other subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	inflight sync.WaitGroup
	logger   *zap.Logger
	now      func() time.Time
}

// NewBus creates an empty bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers h for events called name, or for all events when name
// is AllEvents.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish delivers the event to every matching handler without waiting.
// Handlers receive a context that is not canceled with the caller's.
func (b *Bus) Publish(ctx context.Context, name string, payload any) {
	event := Event{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: b.now(),
		Payload:    payload,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[name])+len(b.handlers[AllEvents]))
	handlers = append(handlers, b.handlers[name]...)
	if name != AllEvents {
		handlers = append(handlers, b.handlers[AllEvents]...)
	}
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("event has no subscribers", zap.String("event", name))
		return
	}

	deliveryCtx := context.WithoutCancel(ctx)
	for _, h := range handlers {
		b.inflight.Add(1)
		go b.deliver(deliveryCtx, h, event)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, event Event) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event", event.Name),
				zap.String("event_id", event.ID),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := h(ctx, event); err != nil {
		b.logger.Error("event handler failed",
			zap.String("event", event.Name),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
	}
}

// Wait blocks until every delivery started so far has finished.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
