package checkout

import (
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutLine is one cart line of a checkout request. The sale price is
// the price agreed between reseller and client; the wholesale price is
// looked up from the catalog at checkout time.
type CheckoutLine struct {
	ProductID     uuid.UUID
	VariationID   *uuid.UUID
	Quantity      int64
	UnitSalePrice decimal.Decimal
}

// CheckoutRequest is a reseller cart plus the client snapshot
type CheckoutRequest struct {
	ResellerID uuid.UUID
	Client     fulfillment.ClientInfo
	Lines      []CheckoutLine
}

// SubOrderSummary is the per-supplier view of a placed order
type SubOrderSummary struct {
	ID          uuid.UUID       `json:"id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	Status      string          `json:"status"`
	LineCount   int             `json:"line_count"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// OrderResponse is the checkout result
type OrderResponse struct {
	ID          uuid.UUID         `json:"id"`
	ResellerID  uuid.UUID         `json:"reseller_id"`
	Client      fulfillment.ClientInfo `json:"client"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	SubOrders   []SubOrderSummary `json:"sub_orders"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ToOrderResponse maps an order aggregate to its response
func ToOrderResponse(order *fulfillment.Order) OrderResponse {
	subOrders := make([]SubOrderSummary, 0, len(order.SubOrders))
	for idx := range order.SubOrders {
		so := &order.SubOrders[idx]
		subOrders = append(subOrders, SubOrderSummary{
			ID:          so.ID,
			SupplierID:  so.SupplierID,
			Status:      so.Status.String(),
			LineCount:   len(so.Lines),
			DeliveryFee: so.DeliveryFee,
			Total:       so.Total,
		})
	}
	return OrderResponse{
		ID:          order.ID,
		ResellerID:  order.ResellerID,
		Client:      order.Client,
		TotalAmount: order.TotalAmount,
		SubOrders:   subOrders,
		CreatedAt:   order.CreatedAt,
	}
}
