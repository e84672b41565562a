package persistence

import (
	"context"
	"errors"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its sub-orders and their lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	var order fulfillment.Order
	if err := r.db.WithContext(ctx).
		Preload("SubOrders.Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByReseller lists the orders placed by a reseller
func (r *GormOrderRepository) FindByReseller(ctx context.Context, resellerID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	var orders []fulfillment.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.Order{}).
			Preload("SubOrders.Lines").
			Where("reseller_id = ?", resellerID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists the order, its sub-orders, their lines and the tracking
// events queued on each sub-order as one atomic unit. Orders are created
// once at checkout and never rewritten, so Save always inserts.
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for idx := range order.SubOrders {
			for _, event := range order.SubOrders[idx].PendingTrackingEvents() {
				if err := tx.Create(event).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for idx := range order.SubOrders {
		order.SubOrders[idx].ClearPendingTrackingEvents()
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormOrderRepository implements OrderRepository
var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)
