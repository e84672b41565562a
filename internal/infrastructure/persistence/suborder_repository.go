package persistence

import (
	"context"
	"errors"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSubOrderRepository implements SubOrderRepository using GORM
type GormSubOrderRepository struct {
	db *gorm.DB
}

// NewGormSubOrderRepository creates a new GormSubOrderRepository
func NewGormSubOrderRepository(db *gorm.DB) *GormSubOrderRepository {
	return &GormSubOrderRepository{db: db}
}

// FindByID finds a sub-order with its lines
func (r *GormSubOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.SubOrder, error) {
	var subOrder fulfillment.SubOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&subOrder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &subOrder, nil
}

// FindByIDs finds multiple sub-orders with their lines
func (r *GormSubOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]fulfillment.SubOrder, error) {
	if len(ids) == 0 {
		return []fulfillment.SubOrder{}, nil
	}

	var subOrders []fulfillment.SubOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id IN ?", ids).
		Find(&subOrders).Error; err != nil {
		return nil, err
	}
	return subOrders, nil
}

// FindBySupplier lists the sub-orders assigned to a supplier
func (r *GormSubOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]fulfillment.SubOrder, error) {
	var subOrders []fulfillment.SubOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.SubOrder{}).
			Preload("Lines").
			Where("supplier_id = ?", supplierID),
		filter,
	)

	if err := query.Find(&subOrders).Error; err != nil {
		return nil, err
	}
	return subOrders, nil
}

// FindByReseller lists the sub-orders placed by a reseller
func (r *GormSubOrderRepository) FindByReseller(ctx context.Context, resellerID uuid.UUID, filter shared.Filter) ([]fulfillment.SubOrder, error) {
	var subOrders []fulfillment.SubOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.SubOrder{}).
			Preload("Lines").
			Where("reseller_id = ?", resellerID),
		filter,
	)

	if err := query.Find(&subOrders).Error; err != nil {
		return nil, err
	}
	return subOrders, nil
}

// SaveWithLock persists the mutable sub-order columns with optimistic
// locking and appends the pending tracking events in the same transaction.
// A version mismatch rolls everything back, so a lost update can never
// leave a stray audit record behind.
func (r *GormSubOrderRepository) SaveWithLock(ctx context.Context, subOrder *fulfillment.SubOrder) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&fulfillment.SubOrder{}).
			Where("id = ? AND version = ?", subOrder.ID, subOrder.Version-1).
			Updates(map[string]interface{}{
				"status":            subOrder.Status,
				"delivery_attempts": subOrder.DeliveryAttempts,
				"version":           subOrder.Version,
				"updated_at":        subOrder.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for _, event := range subOrder.PendingTrackingEvents() {
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	subOrder.ClearPendingTrackingEvents()
	return nil
}

// applyFilter applies filter options to the query
func (r *GormSubOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SubOrderSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormSubOrderRepository implements SubOrderRepository
var _ fulfillment.SubOrderRepository = (*GormSubOrderRepository)(nil)
