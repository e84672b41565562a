package fulfillment

import (
	"fmt"
	"time"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientInfo is the client snapshot taken at checkout. It is copied onto
// the order and every sub-order so a supplier sees the delivery data even
// if the reseller later edits the client record.
type ClientInfo struct {
	Name    string `gorm:"column:client_name;type:varchar(200);not null" json:"name"`
	Phone   string `gorm:"column:client_phone;type:varchar(30);not null" json:"phone"`
	Address string `gorm:"column:client_address;type:varchar(500);not null" json:"address"`
}

// Validate checks the snapshot fields
func (c ClientInfo) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_CLIENT", "Client name cannot be empty")
	}
	if c.Phone == "" {
		return shared.NewDomainError("INVALID_CLIENT", "Client phone cannot be empty")
	}
	if c.Address == "" {
		return shared.NewDomainError("INVALID_CLIENT", "Client address cannot be empty")
	}
	return nil
}

// SubOrderLine is one cart line scoped to a supplier sub-order.
// Prices are snapshots taken at checkout.
type SubOrderLine struct {
	shared.BaseEntity
	SubOrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	VariationID    *uuid.UUID      `gorm:"type:uuid"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	VariationLabel string          `gorm:"type:varchar(120)"`
	Quantity       int64           `gorm:"not null"`
	UnitSalePrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitWholesale  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// Total returns quantity x sale price for the line
func (l *SubOrderLine) Total() decimal.Decimal {
	return l.UnitSalePrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Profit returns (sale - wholesale) x quantity for the line
func (l *SubOrderLine) Profit() decimal.Decimal {
	return l.UnitSalePrice.Sub(l.UnitWholesale).Mul(decimal.NewFromInt(l.Quantity))
}

// SubOrder is the portion of a reseller order fulfilled by one supplier.
// It owns the delivery lifecycle: status changes go exclusively through
// Transition/RecordDeliveryAttempt, each appending exactly one tracking
// event, and the version counter serializes concurrent transitions.
type SubOrder struct {
	shared.BaseAggregateRoot
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ResellerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status           SubOrderStatus  `gorm:"type:varchar(30);not null;index"`
	Client           ClientInfo      `gorm:"embedded"`
	Lines            []SubOrderLine  `gorm:"foreignKey:SubOrderID;references:ID"`
	DeliveryFee      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PlatformFee      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryAttempts int             `gorm:"not null;default:0"`

	pendingEvents []*TrackingEvent `gorm:"-"`
}

// TableName returns the table name for GORM
func (SubOrder) TableName() string {
	return "sub_orders"
}

// NewSubOrder creates a sub-order in the initial non_confirmee status and
// queues its initial tracking event.
func NewSubOrder(orderID, supplierID, resellerID uuid.UUID, client ClientInfo, deliveryFee, platformFee decimal.Decimal) (*SubOrder, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if resellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESELLER", "Reseller ID cannot be empty")
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}
	if deliveryFee.IsNegative() || platformFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Fees cannot be negative")
	}

	so := &SubOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		SupplierID:        supplierID,
		ResellerID:        resellerID,
		Status:            StatusUnconfirmed,
		Client:            client,
		Lines:             make([]SubOrderLine, 0),
		DeliveryFee:       deliveryFee,
		PlatformFee:       platformFee,
		Total:             decimal.Zero,
	}
	so.queueTrackingEvent(SystemActor(), StatusUnconfirmed, "Sub-order created at checkout")
	so.AddDomainEvent(NewSubOrderCreatedEvent(so))

	return so, nil
}

// AddLine appends a priced cart line. Only allowed before confirmation.
func (so *SubOrder) AddLine(productID uuid.UUID, variationID *uuid.UUID, productName, variationLabel string, quantity int64, unitSalePrice, unitWholesale decimal.Decimal) (*SubOrderLine, error) {
	if so.Status != StatusUnconfirmed {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines after confirmation")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitSalePrice.IsNegative() || unitWholesale.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}

	line := SubOrderLine{
		BaseEntity:     shared.NewBaseEntity(),
		SubOrderID:     so.ID,
		ProductID:      productID,
		VariationID:    variationID,
		ProductName:    productName,
		VariationLabel: variationLabel,
		Quantity:       quantity,
		UnitSalePrice:  unitSalePrice,
		UnitWholesale:  unitWholesale,
	}
	so.Lines = append(so.Lines, line)
	so.recalculateTotal()
	so.UpdatedAt = time.Now()

	return &so.Lines[len(so.Lines)-1], nil
}

// Transition moves the sub-order to newStatus according to the transition
// table, increments the version, and appends exactly one tracking event.
// The returned flag tells the caller whether reserved stock must be
// released in the same atomic unit.
func (so *SubOrder) Transition(newStatus SubOrderStatus, actor Actor, description string) (releaseStock bool, err error) {
	if !newStatus.IsValid() {
		return false, shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Unknown status %q", string(newStatus)))
	}
	if !so.Status.CanTransitionTo(newStatus) {
		return false, shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition sub-order from %s to %s", so.Status, newStatus))
	}

	previous := so.Status
	so.Status = newStatus
	so.UpdatedAt = time.Now()
	so.IncrementVersion()
	so.queueTrackingEvent(actor, newStatus, description)
	so.AddDomainEvent(NewSubOrderStatusChangedEvent(so, previous, newStatus, actor))

	return newStatus.ReleasesStock(), nil
}

// RecordDeliveryAttempt registers a failed delivery attempt while the
// sub-order stays en_cours: the attempt counter increments and a tracking
// event is appended, but the status does not change.
func (so *SubOrder) RecordDeliveryAttempt(actor Actor, description string) error {
	if so.Status != StatusInProgress {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot record a delivery attempt in %s status", so.Status))
	}

	so.DeliveryAttempts++
	so.UpdatedAt = time.Now()
	so.IncrementVersion()
	so.queueTrackingEvent(actor, so.Status, description)

	return nil
}

// PendingTrackingEvents returns the tracking events queued by the last
// mutations; they must be persisted in the same transaction as the
// sub-order.
func (so *SubOrder) PendingTrackingEvents() []*TrackingEvent {
	return so.pendingEvents
}

// ClearPendingTrackingEvents drops the queued events after persistence
func (so *SubOrder) ClearPendingTrackingEvents() {
	so.pendingEvents = nil
}

func (so *SubOrder) queueTrackingEvent(actor Actor, status SubOrderStatus, description string) {
	so.pendingEvents = append(so.pendingEvents,
		NewTrackingEvent(so.ID, status, actor, description, so.DeliveryAttempts))
}

// recalculateTotal derives Total from the lines plus the delivery fee
func (so *SubOrder) recalculateTotal() {
	total := decimal.Zero
	for idx := range so.Lines {
		total = total.Add(so.Lines[idx].Total())
	}
	so.Total = total.Add(so.DeliveryFee)
}

// LinesTotal returns the sum of line totals without fees
func (so *SubOrder) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range so.Lines {
		total = total.Add(so.Lines[idx].Total())
	}
	return total
}

// Profit returns the supplier-facing profit across all lines
func (so *SubOrder) Profit() decimal.Decimal {
	profit := decimal.Zero
	for idx := range so.Lines {
		profit = profit.Add(so.Lines[idx].Profit())
	}
	return profit
}

// IsTerminal returns true once a terminal status is reached
func (so *SubOrder) IsTerminal() bool {
	return so.Status.IsTerminal()
}

// BelongsToSupplier checks sub-order ownership
func (so *SubOrder) BelongsToSupplier(supplierID uuid.UUID) bool {
	return so.SupplierID == supplierID
}

// IsReadyForPickup returns true when the sub-order can join a pickup batch
func (so *SubOrder) IsReadyForPickup() bool {
	return so.Status == StatusReadyForPickup
}
