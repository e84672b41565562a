package catalog

import (
	"context"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	// FindByID loads a product with its variations
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs loads multiple products with their variations
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindBySupplier lists products owned by a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product and its variations
	Save(ctx context.Context, product *Product) error

	// SaveStockWithLock persists the stock counters and version of a product
	// and its variations using optimistic locking. Returns
	// shared.ErrConcurrencyConflict when the stored version no longer matches.
	SaveStockWithLock(ctx context.Context, product *Product) error
}
