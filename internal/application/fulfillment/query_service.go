package fulfillment

import (
	"context"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QueryService serves the read side of the pipeline: sub-order details,
// supplier and reseller listings, and the tracking history.
type QueryService struct {
	subOrders fulfillment.SubOrderRepository
	tracking  fulfillment.TrackingEventRepository
}

// NewQueryService creates a query service
func NewQueryService(subOrders fulfillment.SubOrderRepository, tracking fulfillment.TrackingEventRepository) *QueryService {
	return &QueryService{subOrders: subOrders, tracking: tracking}
}

// GetSubOrder loads one sub-order with its lines
func (s *QueryService) GetSubOrder(ctx context.Context, id uuid.UUID) (*SubOrderResponse, error) {
	so, err := s.subOrders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSubOrderResponse(so)
	return &response, nil
}

// ListBySupplier lists the sub-orders a supplier has to fulfill
func (s *QueryService) ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]SubOrderResponse, error) {
	subOrders, err := s.subOrders.FindBySupplier(ctx, supplierID, filter)
	if err != nil {
		return nil, err
	}
	return toSubOrderResponses(subOrders), nil
}

// ListByReseller lists the sub-orders placed by a reseller
func (s *QueryService) ListByReseller(ctx context.Context, resellerID uuid.UUID, filter shared.Filter) ([]SubOrderResponse, error) {
	subOrders, err := s.subOrders.FindByReseller(ctx, resellerID, filter)
	if err != nil {
		return nil, err
	}
	return toSubOrderResponses(subOrders), nil
}

// Tracking returns the ordered audit trail of a sub-order
func (s *QueryService) Tracking(ctx context.Context, subOrderID uuid.UUID) ([]TrackingEventResponse, error) {
	if _, err := s.subOrders.FindByID(ctx, subOrderID); err != nil {
		return nil, err
	}
	events, err := s.tracking.FindBySubOrder(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	return ToTrackingEventResponses(events), nil
}

func toSubOrderResponses(subOrders []fulfillment.SubOrder) []SubOrderResponse {
	out := make([]SubOrderResponse, 0, len(subOrders))
	for idx := range subOrders {
		out = append(out, ToSubOrderResponse(&subOrders[idx]))
	}
	return out
}
