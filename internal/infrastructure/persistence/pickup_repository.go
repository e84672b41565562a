package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPickupRepository implements PickupRepository using GORM
type GormPickupRepository struct {
	db *gorm.DB
}

// NewGormPickupRepository creates a new GormPickupRepository
func NewGormPickupRepository(db *gorm.DB) *GormPickupRepository {
	return &GormPickupRepository{db: db}
}

// FindByID finds a pickup with its items
func (r *GormPickupRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Pickup, error) {
	var pickup fulfillment.Pickup
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&pickup, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pickup, nil
}

// FindBySupplier lists the pickups of a supplier
func (r *GormPickupRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]fulfillment.Pickup, error) {
	var pickups []fulfillment.Pickup
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.Pickup{}).
			Preload("Items").
			Where("supplier_id = ?", supplierID),
		filter,
	)

	if err := query.Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

// Save creates or updates a pickup and its items. The item set is a
// snapshot taken at creation; updates only touch the pickup row itself.
func (r *GormPickupRepository) Save(ctx context.Context, pickup *fulfillment.Pickup) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(pickup).Error
}

// CountBySupplierBetween counts the pickups a supplier created in a window
func (r *GormPickupRepository) CountBySupplierBetween(ctx context.Context, supplierID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&fulfillment.Pickup{}).
		Where("supplier_id = ? AND created_at >= ? AND created_at <= ?", supplierID, start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPickupRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PickupSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormPickupRepository implements PickupRepository
var _ fulfillment.PickupRepository = (*GormPickupRepository)(nil)
