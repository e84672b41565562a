package persistence

import (
	"context"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTrackingEventRepository implements TrackingEventRepository using GORM
type GormTrackingEventRepository struct {
	db *gorm.DB
}

// NewGormTrackingEventRepository creates a new GormTrackingEventRepository
func NewGormTrackingEventRepository(db *gorm.DB) *GormTrackingEventRepository {
	return &GormTrackingEventRepository{db: db}
}

// FindBySubOrder returns the audit trail of a sub-order in insertion order
func (r *GormTrackingEventRepository) FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]fulfillment.TrackingEvent, error) {
	var events []fulfillment.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Ensure GormTrackingEventRepository implements TrackingEventRepository
var _ fulfillment.TrackingEventRepository = (*GormTrackingEventRepository)(nil)
