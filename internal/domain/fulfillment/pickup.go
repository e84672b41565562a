package fulfillment

import (
	"fmt"
	"time"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PickupStatus tracks the courier handoff state of a pickup batch
type PickupStatus string

const (
	PickupAwaitingCourier PickupStatus = "awaiting_courier"
	PickupCollected       PickupStatus = "collected"
)

// PickupItem links a sub-order into a pickup batch. Membership is a
// snapshot: once the pickup exists the set is never edited.
type PickupItem struct {
	shared.BaseEntity
	PickupID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SubOrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (PickupItem) TableName() string {
	return "pickup_items"
}

// Pickup groups ready sub-orders of one supplier into a single courier
// collection event. Only the status mutates, and only once: awaiting
// courier to collected.
type Pickup struct {
	shared.BaseAggregateRoot
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code         string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	Status       PickupStatus    `gorm:"type:varchar(30);not null"`
	PackageCount int             `gorm:"not null;default:0"`
	WeightKg     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CollectedAt  *time.Time      `gorm:"type:timestamp"`

	Items []PickupItem `gorm:"foreignKey:PickupID;references:ID"`
}

// TableName returns the table name for GORM
func (Pickup) TableName() string {
	return "pickups"
}

// PickupMetadata carries the optional physical details of a batch
type PickupMetadata struct {
	PackageCount int
	WeightKg     decimal.Decimal
}

// NewPickup creates a pickup batch over a snapshot of sub-order IDs.
// Eligibility of the sub-orders is validated by the application service
// before this constructor runs.
func NewPickup(supplierID uuid.UUID, subOrderIDs []uuid.UUID, metadata PickupMetadata) (*Pickup, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if len(subOrderIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "A pickup requires at least one sub-order")
	}
	if metadata.PackageCount < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Package count cannot be negative")
	}
	if metadata.WeightKg.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Weight cannot be negative")
	}

	seen := make(map[uuid.UUID]struct{}, len(subOrderIDs))
	for _, id := range subOrderIDs {
		if _, dup := seen[id]; dup {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Sub-order %s listed twice in pickup request", id))
		}
		seen[id] = struct{}{}
	}

	packageCount := metadata.PackageCount
	if packageCount == 0 {
		packageCount = len(subOrderIDs)
	}

	pickup := &Pickup{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Code:              generatePickupCode(),
		Status:            PickupAwaitingCourier,
		PackageCount:      packageCount,
		WeightKg:          metadata.WeightKg,
		Items:             make([]PickupItem, 0, len(subOrderIDs)),
	}
	for _, id := range subOrderIDs {
		pickup.Items = append(pickup.Items, PickupItem{
			BaseEntity: shared.NewBaseEntity(),
			PickupID:   pickup.ID,
			SubOrderID: id,
		})
	}
	pickup.AddDomainEvent(NewPickupCreatedEvent(pickup))

	return pickup, nil
}

// MarkCollected confirms the courier collection. A pickup is immutable
// afterwards; a second confirmation fails.
func (p *Pickup) MarkCollected() error {
	if p.Status == PickupCollected {
		return shared.NewDomainError("INVALID_STATE", "Pickup has already been collected")
	}

	now := time.Now()
	p.Status = PickupCollected
	p.CollectedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPickupCollectedEvent(p))

	return nil
}

// SubOrderIDs returns the snapshot of included sub-order IDs
func (p *Pickup) SubOrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Items))
	for idx := range p.Items {
		ids = append(ids, p.Items[idx].SubOrderID)
	}
	return ids
}

// ContainsSubOrder checks pickup membership
func (p *Pickup) ContainsSubOrder(subOrderID uuid.UUID) bool {
	for idx := range p.Items {
		if p.Items[idx].SubOrderID == subOrderID {
			return true
		}
	}
	return false
}

// generatePickupCode builds a human-readable unique code for manifests
func generatePickupCode() string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("PU-%s-%s", time.Now().Format("20060102"), suffix)
}
