package persistence

import (
	"context"

	appfulfillment "github.com/dropship/backend/internal/application/fulfillment"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// A status transition and the stock release it triggers run against the
// repositories handed to the callback, so they commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfulfillment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(appfulfillment.TransactionalRepositories{
			Orders:       NewGormOrderRepository(tx),
			SubOrders:    NewGormSubOrderRepository(tx),
			Products:     NewGormProductRepository(tx),
			Reservations: NewGormStockReservationRepository(tx),
			Movements:    NewGormStockMovementRepository(tx),
			Pickups:      NewGormPickupRepository(tx),
		})
	})
}

// Ensure GormTransactionScope implements TransactionScope
var _ appfulfillment.TransactionScope = (*GormTransactionScope)(nil)
