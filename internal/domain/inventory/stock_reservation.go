package inventory

import (
	"time"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockReservation records the quantity reserved for one sub-order line.
// It bounds later releases: stock for a sub-order can never be released
// twice or beyond what was reserved, because a release flips the flag and
// a flagged reservation is skipped.
type StockReservation struct {
	shared.BaseEntity
	SubOrderID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	VariationID *uuid.UUID `gorm:"type:uuid;index"`
	Quantity    int64      `gorm:"not null"`
	Released    bool       `gorm:"not null;default:false"`
	ReleasedAt  *time.Time `gorm:"type:timestamp"`
}

// TableName returns the table name for GORM
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// NewStockReservation creates a reservation for a sub-order line
func NewStockReservation(subOrderID, productID uuid.UUID, variationID *uuid.UUID, quantity int64) *StockReservation {
	return &StockReservation{
		BaseEntity:  shared.NewBaseEntity(),
		SubOrderID:  subOrderID,
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    quantity,
		Released:    false,
	}
}

// IsActive returns true while the reserved quantity is still held
func (r *StockReservation) IsActive() bool {
	return !r.Released
}

// MarkReleased flips the reservation to released
func (r *StockReservation) MarkReleased() {
	now := time.Now()
	r.Released = true
	r.ReleasedAt = &now
	r.UpdatedAt = now
}
