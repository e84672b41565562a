package inventory

import (
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementKind classifies a stock movement
type MovementKind string

const (
	MovementReserve MovementKind = "RESERVE"
	MovementRelease MovementKind = "RELEASE"
)

// IsValid checks if the kind is a known MovementKind
func (k MovementKind) IsValid() bool {
	return k == MovementReserve || k == MovementRelease
}

// StockMovement is one append-only audit record of a stock adjustment.
// Movements are never updated or deleted.
type StockMovement struct {
	shared.BaseEntity
	ProductID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	VariationID *uuid.UUID   `gorm:"type:uuid;index"`
	Kind        MovementKind `gorm:"type:varchar(20);not null"`
	Quantity    int64        `gorm:"not null"`
	SourceType  string       `gorm:"type:varchar(50);not null;index:idx_movement_src"`
	SourceID    string       `gorm:"type:varchar(100);not null;index:idx_movement_src"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record
func NewStockMovement(productID uuid.UUID, variationID *uuid.UUID, kind MovementKind, quantity int64, sourceType, sourceID string) *StockMovement {
	return &StockMovement{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		VariationID: variationID,
		Kind:        kind,
		Quantity:    quantity,
		SourceType:  sourceType,
		SourceID:    sourceID,
	}
}
