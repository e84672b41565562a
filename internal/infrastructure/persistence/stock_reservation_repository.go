package persistence

import (
	"context"

	"github.com/dropship/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockReservationRepository implements StockReservationRepository using GORM
type GormStockReservationRepository struct {
	db *gorm.DB
}

// NewGormStockReservationRepository creates a new GormStockReservationRepository
func NewGormStockReservationRepository(db *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: db}
}

// Create inserts a new reservation
func (r *GormStockReservationRepository) Create(ctx context.Context, reservation *inventory.StockReservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// FindBySubOrder returns all reservations held for a sub-order
func (r *GormStockReservationRepository) FindBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]inventory.StockReservation, error) {
	var reservations []inventory.StockReservation
	if err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Save updates a reservation, typically to flip its released flag
func (r *GormStockReservationRepository) Save(ctx context.Context, reservation *inventory.StockReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// Ensure GormStockReservationRepository implements StockReservationRepository
var _ inventory.StockReservationRepository = (*GormStockReservationRepository)(nil)
