package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockReservationRepository defines persistence for stock reservations
type StockReservationRepository interface {
	Create(ctx context.Context, reservation *StockReservation) error
	FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]StockReservation, error)
	Save(ctx context.Context, reservation *StockReservation) error
}

// StockMovementRepository defines persistence for the append-only movement log
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockMovement, error)
}
