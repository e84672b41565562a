package fulfillment

import (
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransitionRequest asks for one status change on a sub-order
type TransitionRequest struct {
	SubOrderID      uuid.UUID
	NewStatus       string
	Description     string
	Actor           fulfillment.Actor
	IdempotencyKey  string
	ExpectedVersion *int
}

// DeliveryAttemptRequest registers a failed delivery attempt
type DeliveryAttemptRequest struct {
	SubOrderID  uuid.UUID
	Description string
	Actor       fulfillment.Actor
}

// SubOrderLineResponse is one priced line of a sub-order
type SubOrderLineResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	VariationID    *uuid.UUID      `json:"variation_id,omitempty"`
	ProductName    string          `json:"product_name"`
	VariationLabel string          `json:"variation_label,omitempty"`
	Quantity       int64           `json:"quantity"`
	UnitSalePrice  decimal.Decimal `json:"unit_sale_price"`
	Total          decimal.Decimal `json:"total"`
}

// SubOrderResponse is the full sub-order view
type SubOrderResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderID          uuid.UUID              `json:"order_id"`
	SupplierID       uuid.UUID              `json:"supplier_id"`
	ResellerID       uuid.UUID              `json:"reseller_id"`
	Status           string                 `json:"status"`
	Client           fulfillment.ClientInfo `json:"client"`
	Lines            []SubOrderLineResponse `json:"lines"`
	DeliveryFee      decimal.Decimal        `json:"delivery_fee"`
	Total            decimal.Decimal        `json:"total"`
	DeliveryAttempts int                    `json:"delivery_attempts"`
	Version          int                    `json:"version"`
	Replayed         bool                   `json:"replayed,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ToSubOrderResponse maps a sub-order aggregate to its response
func ToSubOrderResponse(so *fulfillment.SubOrder) SubOrderResponse {
	lines := make([]SubOrderLineResponse, 0, len(so.Lines))
	for idx := range so.Lines {
		line := &so.Lines[idx]
		lines = append(lines, SubOrderLineResponse{
			ProductID:      line.ProductID,
			VariationID:    line.VariationID,
			ProductName:    line.ProductName,
			VariationLabel: line.VariationLabel,
			Quantity:       line.Quantity,
			UnitSalePrice:  line.UnitSalePrice,
			Total:          line.Total(),
		})
	}
	return SubOrderResponse{
		ID:               so.ID,
		OrderID:          so.OrderID,
		SupplierID:       so.SupplierID,
		ResellerID:       so.ResellerID,
		Status:           so.Status.String(),
		Client:           so.Client,
		Lines:            lines,
		DeliveryFee:      so.DeliveryFee,
		Total:            so.Total,
		DeliveryAttempts: so.DeliveryAttempts,
		Version:          so.Version,
		CreatedAt:        so.CreatedAt,
		UpdatedAt:        so.UpdatedAt,
	}
}

// TrackingEventResponse is one audit record of the tracking history
type TrackingEventResponse struct {
	ID              uuid.UUID `json:"id"`
	Status          string    `json:"status"`
	Description     string    `json:"description,omitempty"`
	DeliveryAttempt int       `json:"delivery_attempt"`
	ActorID         uuid.UUID `json:"actor_id"`
	ActorRole       string    `json:"actor_role"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ToTrackingEventResponses maps the audit trail to its response
func ToTrackingEventResponses(events []fulfillment.TrackingEvent) []TrackingEventResponse {
	out := make([]TrackingEventResponse, 0, len(events))
	for idx := range events {
		event := &events[idx]
		out = append(out, TrackingEventResponse{
			ID:              event.ID,
			Status:          event.Status.String(),
			Description:     event.Description,
			DeliveryAttempt: event.DeliveryAttempt,
			ActorID:         event.ActorID,
			ActorRole:       string(event.ActorRole),
			OccurredAt:      event.CreatedAt,
		})
	}
	return out
}

// CreatePickupRequest groups ready sub-orders into one courier batch
type CreatePickupRequest struct {
	SupplierID   uuid.UUID
	SubOrderIDs  []uuid.UUID
	PackageCount int
	WeightKg     decimal.Decimal
	Actor        fulfillment.Actor
}

// PickupResponse is the pickup batch view
type PickupResponse struct {
	ID           uuid.UUID       `json:"id"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	Code         string          `json:"code"`
	Status       string          `json:"status"`
	PackageCount int             `json:"package_count"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	SubOrderIDs  []uuid.UUID     `json:"sub_order_ids"`
	CollectedAt  *time.Time      `json:"collected_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToPickupResponse maps a pickup aggregate to its response
func ToPickupResponse(pickup *fulfillment.Pickup) PickupResponse {
	return PickupResponse{
		ID:           pickup.ID,
		SupplierID:   pickup.SupplierID,
		Code:         pickup.Code,
		Status:       string(pickup.Status),
		PackageCount: pickup.PackageCount,
		WeightKg:     pickup.WeightKg,
		SubOrderIDs:  pickup.SubOrderIDs(),
		CollectedAt:  pickup.CollectedAt,
		CreatedAt:    pickup.CreatedAt,
	}
}

// ManifestLine is one product line on the pickup manifest
type ManifestLine struct {
	ProductName    string          `json:"product_name"`
	VariationLabel string          `json:"variation_label,omitempty"`
	Quantity       int64           `json:"quantity"`
	UnitSalePrice  decimal.Decimal `json:"unit_sale_price"`
	Total          decimal.Decimal `json:"total"`
}

// ManifestRow is the manifest section for one sub-order: the client to
// deliver to, the lines to hand over and the amount to collect.
type ManifestRow struct {
	SubOrderID    uuid.UUID       `json:"sub_order_id"`
	ClientName    string          `json:"client_name"`
	ClientPhone   string          `json:"client_phone"`
	ClientAddress string          `json:"client_address"`
	Lines         []ManifestLine  `json:"lines"`
	SubTotal      decimal.Decimal `json:"sub_total"`
}

// Manifest is the courier-facing document for one pickup batch
type Manifest struct {
	PickupID     uuid.UUID       `json:"pickup_id"`
	Code         string          `json:"code"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	PackageCount int             `json:"package_count"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	Rows         []ManifestRow   `json:"rows"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
