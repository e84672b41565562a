package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PickupService groups ready sub-orders of one supplier into courier
// batches. Creation is all-or-nothing: one ineligible sub-order rejects the
// whole request with a message naming every offender.
type PickupService struct {
	pickups   fulfillment.PickupRepository
	subOrders fulfillment.SubOrderRepository
	gate      shared.AuthorizationGate
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPickupService creates a pickup service
func NewPickupService(
	pickups fulfillment.PickupRepository,
	subOrders fulfillment.SubOrderRepository,
	gate shared.AuthorizationGate,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PickupService {
	return &PickupService{
		pickups:   pickups,
		subOrders: subOrders,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
	}
}

// CreatePickup validates eligibility of every requested sub-order and
// persists the batch. Sub-orders are not transitioned: delivery is confirmed
// later through the state machine, the pickup only records courier handoff.
func (s *PickupService) CreatePickup(ctx context.Context, req CreatePickupRequest) (*PickupResponse, error) {
	if err := s.gate.Authorize(ctx, req.Actor.ID, shared.ActionCreatePickup, req.SupplierID); err != nil {
		return nil, err
	}
	if len(req.SubOrderIDs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "A pickup requires at least one sub-order")
	}

	subOrders, err := s.subOrders.FindByIDs(ctx, req.SubOrderIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*fulfillment.SubOrder, len(subOrders))
	for idx := range subOrders {
		byID[subOrders[idx].ID] = &subOrders[idx]
	}

	var violations []string
	for _, id := range req.SubOrderIDs {
		so, ok := byID[id]
		switch {
		case !ok:
			violations = append(violations, fmt.Sprintf("%s: not found", id))
		case !so.BelongsToSupplier(req.SupplierID):
			violations = append(violations, fmt.Sprintf("%s: belongs to another supplier", id))
		case !so.IsReadyForPickup():
			violations = append(violations, fmt.Sprintf("%s: status is %s, expected %s",
				id, so.Status, fulfillment.StatusReadyForPickup))
		}
	}
	if len(violations) > 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Ineligible sub-orders: %s", strings.Join(violations, "; ")))
	}

	pickup, err := fulfillment.NewPickup(req.SupplierID, req.SubOrderIDs, fulfillment.PickupMetadata{
		PackageCount: req.PackageCount,
		WeightKg:     req.WeightKg,
	})
	if err != nil {
		return nil, err
	}

	if err := s.pickups.Save(ctx, pickup); err != nil {
		return nil, err
	}
	s.publishEvents(pickup)

	s.logger.Info("pickup created",
		zap.String("pickup_id", pickup.ID.String()),
		zap.String("code", pickup.Code),
		zap.Int("sub_orders", len(pickup.Items)))

	response := ToPickupResponse(pickup)
	return &response, nil
}

// CollectPickup confirms courier collection. The pickup is immutable
// afterwards.
func (s *PickupService) CollectPickup(ctx context.Context, pickupID uuid.UUID, actor fulfillment.Actor) (*PickupResponse, error) {
	if err := s.gate.Authorize(ctx, actor.ID, shared.ActionCreatePickup, pickupID); err != nil {
		return nil, err
	}

	pickup, err := s.pickups.FindByID(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if err := pickup.MarkCollected(); err != nil {
		return nil, err
	}
	if err := s.pickups.Save(ctx, pickup); err != nil {
		return nil, err
	}
	s.publishEvents(pickup)

	s.logger.Info("pickup collected", zap.String("pickup_id", pickup.ID.String()))

	response := ToPickupResponse(pickup)
	return &response, nil
}

// GetPickup loads a single pickup batch
func (s *PickupService) GetPickup(ctx context.Context, pickupID uuid.UUID) (*PickupResponse, error) {
	pickup, err := s.pickups.FindByID(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	response := ToPickupResponse(pickup)
	return &response, nil
}

// ListPickups lists the pickup batches of a supplier
func (s *PickupService) ListPickups(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]PickupResponse, error) {
	pickups, err := s.pickups.FindBySupplier(ctx, supplierID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]PickupResponse, 0, len(pickups))
	for idx := range pickups {
		out = append(out, ToPickupResponse(&pickups[idx]))
	}
	return out, nil
}

// Manifest builds the courier-facing document for a pickup: per sub-order
// the client, the lines, the amount to collect, and the grand total.
func (s *PickupService) Manifest(ctx context.Context, pickupID uuid.UUID) (*Manifest, error) {
	pickup, err := s.pickups.FindByID(ctx, pickupID)
	if err != nil {
		return nil, err
	}

	subOrders, err := s.subOrders.FindByIDs(ctx, pickup.SubOrderIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*fulfillment.SubOrder, len(subOrders))
	for idx := range subOrders {
		byID[subOrders[idx].ID] = &subOrders[idx]
	}

	manifest := &Manifest{
		PickupID:     pickup.ID,
		Code:         pickup.Code,
		SupplierID:   pickup.SupplierID,
		PackageCount: pickup.PackageCount,
		WeightKg:     pickup.WeightKg,
		Rows:         make([]ManifestRow, 0, len(pickup.Items)),
		GrandTotal:   decimal.Zero,
		GeneratedAt:  time.Now(),
	}

	// rows follow the snapshot order of the pickup items
	for _, id := range pickup.SubOrderIDs() {
		so, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError("INTERNAL_ERROR",
				fmt.Sprintf("Pickup references missing sub-order %s", id))
		}

		lines := make([]ManifestLine, 0, len(so.Lines))
		for idx := range so.Lines {
			line := &so.Lines[idx]
			lines = append(lines, ManifestLine{
				ProductName:    line.ProductName,
				VariationLabel: line.VariationLabel,
				Quantity:       line.Quantity,
				UnitSalePrice:  line.UnitSalePrice,
				Total:          line.Total(),
			})
		}

		manifest.Rows = append(manifest.Rows, ManifestRow{
			SubOrderID:    so.ID,
			ClientName:    so.Client.Name,
			ClientPhone:   so.Client.Phone,
			ClientAddress: so.Client.Address,
			Lines:         lines,
			SubTotal:      so.Total,
		})
		manifest.GrandTotal = manifest.GrandTotal.Add(so.Total)
	}

	return manifest, nil
}

func (s *PickupService) publishEvents(pickup *fulfillment.Pickup) {
	if s.publisher == nil {
		return
	}
	for _, event := range pickup.GetDomainEvents() {
		if err := s.publisher.Publish(event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
	pickup.ClearDomainEvents()
}
