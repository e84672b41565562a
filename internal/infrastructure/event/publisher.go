package event

import (
	"sync"

	"github.com/dropship/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// HandlerFunc reacts to a published domain event
type HandlerFunc func(event shared.DomainEvent)

// InMemoryEventPublisher implements EventPublisher with in-process
// dispatch. Every event is logged; subscribed handlers run synchronously
// after the producing transaction has committed, so a handler failure can
// not roll business state back.
type InMemoryEventPublisher struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewInMemoryEventPublisher creates a new in-memory event publisher
func NewInMemoryEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		logger:   logger,
		handlers: make(map[string][]HandlerFunc),
	}
}

// Subscribe registers a handler for an event type
func (p *InMemoryEventPublisher) Subscribe(eventType string, handler HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[eventType] = append(p.handlers[eventType], handler)
}

// Publish logs the event and dispatches it to the subscribed handlers
func (p *InMemoryEventPublisher) Publish(event shared.DomainEvent) error {
	p.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)

	p.mu.RLock()
	handlers := p.handlers[event.EventType()]
	p.mu.RUnlock()

	for _, handler := range handlers {
		p.dispatch(handler, event)
	}
	return nil
}

// dispatch runs a handler with panic isolation
func (p *InMemoryEventPublisher) dispatch(handler HandlerFunc, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	handler(event)
}

// Ensure InMemoryEventPublisher implements EventPublisher
var _ shared.EventPublisher = (*InMemoryEventPublisher)(nil)
