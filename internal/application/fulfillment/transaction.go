package fulfillment

import (
	"context"

	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/inventory"
)

// TransactionalRepositories bundles the repositories bound to one database
// transaction. A stock reservation or release that accompanies an order
// write runs against these so both commit or roll back together.
type TransactionalRepositories struct {
	Orders       fulfillment.OrderRepository
	SubOrders    fulfillment.SubOrderRepository
	Products     catalog.ProductRepository
	Reservations inventory.StockReservationRepository
	Movements    inventory.StockMovementRepository
	Pickups      fulfillment.PickupRepository
}

// TransactionScope executes a function within a single database transaction.
// The function receives transaction-bound repositories; returning an error
// rolls the whole unit back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
