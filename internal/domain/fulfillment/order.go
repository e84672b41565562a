package fulfillment

import (
	"time"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the cart-level record created at checkout. Its lines live on the
// supplier-scoped sub-orders; the order itself carries the reseller, the
// client snapshot and the grand total, and is never mutated afterwards.
type Order struct {
	shared.BaseAggregateRoot
	ResellerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Client      ClientInfo      `gorm:"embedded"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	SubOrders []SubOrder `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates the cart-level order for a checkout
func NewOrder(resellerID uuid.UUID, client ClientInfo) (*Order, error) {
	if resellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESELLER", "Reseller ID cannot be empty")
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ResellerID:        resellerID,
		Client:            client,
		TotalAmount:       decimal.Zero,
		SubOrders:         make([]SubOrder, 0),
	}
	order.AddDomainEvent(NewOrderPlacedEvent(order))

	return order, nil
}

// AttachSubOrder links a sub-order and folds its total into the order total
func (o *Order) AttachSubOrder(so *SubOrder) {
	o.SubOrders = append(o.SubOrders, *so)
	o.TotalAmount = o.TotalAmount.Add(so.Total)
	o.UpdatedAt = time.Now()
}

// SubOrderCount returns the number of supplier sub-orders
func (o *Order) SubOrderCount() int {
	return len(o.SubOrders)
}
