package fulfillment

import (
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventOrderPlaced           = "fulfillment.order.placed"
	EventSubOrderCreated       = "fulfillment.suborder.created"
	EventSubOrderStatusChanged = "fulfillment.suborder.status_changed"
	EventPickupCreated         = "fulfillment.pickup.created"
	EventPickupCollected       = "fulfillment.pickup.collected"
)

// OrderPlacedEvent is emitted when a checkout commits
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	ResellerID  uuid.UUID       `json:"reseller_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderPlaced, order.ID, "Order"),
		ResellerID:      order.ResellerID,
		TotalAmount:     order.TotalAmount,
	}
}

// SubOrderCreatedEvent is emitted for every sub-order split out of a checkout
type SubOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
}

// NewSubOrderCreatedEvent creates a SubOrderCreatedEvent
func NewSubOrderCreatedEvent(so *SubOrder) *SubOrderCreatedEvent {
	return &SubOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSubOrderCreated, so.ID, "SubOrder"),
		OrderID:         so.OrderID,
		SupplierID:      so.SupplierID,
	}
}

// SubOrderStatusChangedEvent is emitted on every successful transition
type SubOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID      `json:"supplier_id"`
	From       SubOrderStatus `json:"from"`
	To         SubOrderStatus `json:"to"`
	Actor      Actor          `json:"actor"`
}

// NewSubOrderStatusChangedEvent creates a SubOrderStatusChangedEvent
func NewSubOrderStatusChangedEvent(so *SubOrder, from, to SubOrderStatus, actor Actor) *SubOrderStatusChangedEvent {
	return &SubOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSubOrderStatusChanged, so.ID, "SubOrder"),
		SupplierID:      so.SupplierID,
		From:            from,
		To:              to,
		Actor:           actor,
	}
}

// PickupCreatedEvent is emitted when a pickup batch is created
type PickupCreatedEvent struct {
	shared.BaseDomainEvent
	SupplierID    uuid.UUID `json:"supplier_id"`
	Code          string    `json:"code"`
	SubOrderCount int       `json:"sub_order_count"`
}

// NewPickupCreatedEvent creates a PickupCreatedEvent
func NewPickupCreatedEvent(pickup *Pickup) *PickupCreatedEvent {
	return &PickupCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPickupCreated, pickup.ID, "Pickup"),
		SupplierID:      pickup.SupplierID,
		Code:            pickup.Code,
		SubOrderCount:   len(pickup.Items),
	}
}

// PickupCollectedEvent is emitted when the courier collection is confirmed
type PickupCollectedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplier_id"`
	Code       string    `json:"code"`
}

// NewPickupCollectedEvent creates a PickupCollectedEvent
func NewPickupCollectedEvent(pickup *Pickup) *PickupCollectedEvent {
	return &PickupCollectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPickupCollected, pickup.ID, "Pickup"),
		SupplierID:      pickup.SupplierID,
		Code:            pickup.Code,
	}
}
