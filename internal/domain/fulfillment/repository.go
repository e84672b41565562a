package fulfillment

import (
	"context"
	"time"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines persistence for cart-level orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByReseller(ctx context.Context, resellerID uuid.UUID, filter shared.Filter) ([]Order, error)
	// Save persists the order together with its sub-orders, their lines and
	// pending tracking events as one atomic unit.
	Save(ctx context.Context, order *Order) error
}

// SubOrderRepository defines persistence for sub-orders
type SubOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubOrder, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]SubOrder, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]SubOrder, error)
	FindByReseller(ctx context.Context, resellerID uuid.UUID, filter shared.Filter) ([]SubOrder, error)

	// SaveWithLock persists status, attempt counter and version with
	// optimistic locking, appending the pending tracking events in the same
	// transaction. Returns shared.ErrConcurrencyConflict when the stored
	// version no longer matches.
	SaveWithLock(ctx context.Context, subOrder *SubOrder) error
}

// TrackingEventRepository reads the append-only audit trail
type TrackingEventRepository interface {
	FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]TrackingEvent, error)
}

// PickupRepository defines persistence for pickup batches
type PickupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Pickup, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]Pickup, error)
	Save(ctx context.Context, pickup *Pickup) error
	CountBySupplierBetween(ctx context.Context, supplierID uuid.UUID, start, end time.Time) (int64, error)
}
