package inventory

import (
	"context"
	"errors"

	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SourceTypeSubOrder tags reservations and movements that originate from a
// sub-order of the fulfillment pipeline.
const SourceTypeSubOrder = "sub_order"

// DefaultMaxRetries bounds optimistic-lock retries on contended counters
const DefaultMaxRetries = 3

// ReserveCommand targets one product or variation counter
type ReserveCommand struct {
	SubOrderID  uuid.UUID
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Quantity    int64
}

// StockLedger is the authoritative, race-safe owner of stock counters.
// Reservations and releases go through optimistic locking on the product
// aggregate: the loser of a concurrent write re-reads and retries up to
// maxRetries before surfacing the conflict to the caller.
type StockLedger struct {
	products     catalog.ProductRepository
	reservations StockReservationRepository
	movements    StockMovementRepository
	maxRetries   int
}

// NewStockLedger creates a stock ledger over the given repositories
func NewStockLedger(
	products catalog.ProductRepository,
	reservations StockReservationRepository,
	movements StockMovementRepository,
	maxRetries int,
) *StockLedger {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &StockLedger{
		products:     products,
		reservations: reservations,
		movements:    movements,
		maxRetries:   maxRetries,
	}
}

// Reserve decrements the targeted counter when enough stock is available and
// records the reservation. Fails with INSUFFICIENT_STOCK naming the product
// or variation, with no partial effect.
func (l *StockLedger) Reserve(ctx context.Context, cmd ReserveCommand) (*StockReservation, error) {
	if cmd.SubOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Sub-order ID is required for a reservation")
	}

	var lastErr error
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		product, err := l.products.FindByID(ctx, cmd.ProductID)
		if err != nil {
			return nil, err
		}

		if err := product.Reserve(cmd.VariationID, cmd.Quantity); err != nil {
			return nil, err
		}

		if err := l.products.SaveStockWithLock(ctx, product); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		reservation := NewStockReservation(cmd.SubOrderID, cmd.ProductID, cmd.VariationID, cmd.Quantity)
		if err := l.reservations.Create(ctx, reservation); err != nil {
			return nil, err
		}

		movement := NewStockMovement(cmd.ProductID, cmd.VariationID, MovementReserve, cmd.Quantity,
			SourceTypeSubOrder, cmd.SubOrderID.String())
		if err := l.movements.Create(ctx, movement); err != nil {
			return nil, err
		}

		return reservation, nil
	}

	return nil, lastErr
}

// ReleaseForSubOrder returns every still-held reserved quantity of a
// sub-order to its counters. Already-released reservations are skipped, so
// invoking the release twice is a no-op.
func (l *StockLedger) ReleaseForSubOrder(ctx context.Context, subOrderID uuid.UUID) error {
	reservations, err := l.reservations.FindBySubOrder(ctx, subOrderID)
	if err != nil {
		return err
	}

	for idx := range reservations {
		reservation := &reservations[idx]
		if !reservation.IsActive() {
			continue
		}
		if err := l.release(ctx, reservation); err != nil {
			return err
		}
	}

	return nil
}

func (l *StockLedger) release(ctx context.Context, reservation *StockReservation) error {
	var lastErr error
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		product, err := l.products.FindByID(ctx, reservation.ProductID)
		if err != nil {
			return err
		}

		if err := product.Release(reservation.VariationID, reservation.Quantity); err != nil {
			return err
		}

		if err := l.products.SaveStockWithLock(ctx, product); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				lastErr = err
				continue
			}
			return err
		}

		reservation.MarkReleased()
		if err := l.reservations.Save(ctx, reservation); err != nil {
			return err
		}

		movement := NewStockMovement(reservation.ProductID, reservation.VariationID, MovementRelease,
			reservation.Quantity, SourceTypeSubOrder, reservation.SubOrderID.String())
		return l.movements.Create(ctx, movement)
	}

	return lastErr
}
