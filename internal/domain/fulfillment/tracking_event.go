package fulfillment

import (
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TrackingEvent is one immutable audit record of a sub-order status change
// or delivery attempt. Events are only ever appended; the ordered sequence
// for a sub-order is its full audit trail.
type TrackingEvent struct {
	shared.BaseEntity
	SubOrderID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status          SubOrderStatus `gorm:"type:varchar(30);not null"`
	Description     string         `gorm:"type:varchar(500)"`
	DeliveryAttempt int            `gorm:"not null;default:0"`
	ActorID         uuid.UUID      `gorm:"type:uuid;not null"`
	ActorRole       ActorRole      `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (TrackingEvent) TableName() string {
	return "tracking_events"
}

// NewTrackingEvent creates an audit record for a sub-order
func NewTrackingEvent(subOrderID uuid.UUID, status SubOrderStatus, actor Actor, description string, deliveryAttempt int) *TrackingEvent {
	return &TrackingEvent{
		BaseEntity:      shared.NewBaseEntity(),
		SubOrderID:      subOrderID,
		Status:          status,
		Description:     description,
		DeliveryAttempt: deliveryAttempt,
		ActorID:         actor.ID,
		ActorRole:       actor.Role,
	}
}
