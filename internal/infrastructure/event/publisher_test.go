package event

import (
	"testing"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, uuid.New(), "SubOrder"),
	}
}

func TestInMemoryEventPublisher_Publish(t *testing.T) {
	publisher := NewInMemoryEventPublisher(zap.NewNop())

	var received []shared.DomainEvent
	publisher.Subscribe(fulfillment.EventSubOrderCreated, func(event shared.DomainEvent) {
		received = append(received, event)
	})

	event := newTestEvent(fulfillment.EventSubOrderCreated)
	require.NoError(t, publisher.Publish(event))
	require.NoError(t, publisher.Publish(newTestEvent(fulfillment.EventPickupCreated)))

	// only the subscribed type reaches the handler
	require.Len(t, received, 1)
	assert.Equal(t, event.EventID(), received[0].EventID())
}

func TestInMemoryEventPublisher_MultipleHandlers(t *testing.T) {
	publisher := NewInMemoryEventPublisher(zap.NewNop())

	var first, second int
	publisher.Subscribe(fulfillment.EventPickupCollected, func(shared.DomainEvent) { first++ })
	publisher.Subscribe(fulfillment.EventPickupCollected, func(shared.DomainEvent) { second++ })

	require.NoError(t, publisher.Publish(newTestEvent(fulfillment.EventPickupCollected)))

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestInMemoryEventPublisher_PanickingHandlerIsIsolated(t *testing.T) {
	publisher := NewInMemoryEventPublisher(zap.NewNop())

	var reached bool
	publisher.Subscribe(fulfillment.EventSubOrderStatusChanged, func(shared.DomainEvent) { panic("boom") })
	publisher.Subscribe(fulfillment.EventSubOrderStatusChanged, func(shared.DomainEvent) { reached = true })

	require.NoError(t, publisher.Publish(newTestEvent(fulfillment.EventSubOrderStatusChanged)))
	assert.True(t, reached)
}
