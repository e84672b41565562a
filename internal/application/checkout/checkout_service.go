package checkout

import (
	"context"
	"fmt"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/inventory"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds the fee schedule applied to every supplier sub-order
type Config struct {
	DeliveryFee decimal.Decimal
	PlatformFee decimal.Decimal
	// ReserveRetries bounds optimistic-lock retries when reserving stock
	ReserveRetries int
}

// Service turns one reseller checkout into consistent supplier sub-orders.
// Every reservation and the order itself commit in one transaction: the
// first failure rolls the whole unit back, so a failed checkout leaves no
// trace, neither a stock decrement nor an orphan reservation row.
type Service struct {
	scope    fulfillmentapp.TransactionScope
	products catalog.ProductRepository
	gate     shared.AuthorizationGate
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a checkout service
func NewService(
	scope fulfillmentapp.TransactionScope,
	products catalog.ProductRepository,
	gate shared.AuthorizationGate,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.ReserveRetries <= 0 {
		cfg.ReserveRetries = 3
	}
	return &Service{
		scope:    scope,
		products: products,
		gate:     gate,
		cfg:      cfg,
		logger:   logger,
	}
}

// Checkout splits the cart by supplier, reserves stock for every line and
// persists the order with its sub-orders and initial tracking events as one
// atomic unit.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cart cannot be empty")
	}
	if err := s.gate.Authorize(ctx, req.ResellerID, shared.ActionCheckout, uuid.Nil); err != nil {
		return nil, err
	}

	productsByID, err := s.loadProducts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	order, err := fulfillment.NewOrder(req.ResellerID, req.Client)
	if err != nil {
		return nil, err
	}

	// Group cart lines by the owning supplier: one sub-order per supplier.
	groups := make(map[uuid.UUID][]CheckoutLine)
	supplierOrder := make([]uuid.UUID, 0)
	for _, line := range req.Lines {
		supplierID := productsByID[line.ProductID].SupplierID
		if _, seen := groups[supplierID]; !seen {
			supplierOrder = append(supplierOrder, supplierID)
		}
		groups[supplierID] = append(groups[supplierID], line)
	}

	commands := make([]inventory.ReserveCommand, 0, len(req.Lines))
	for _, supplierID := range supplierOrder {
		subOrder, err := fulfillment.NewSubOrder(order.ID, supplierID, req.ResellerID, req.Client,
			s.cfg.DeliveryFee, s.cfg.PlatformFee)
		if err != nil {
			return nil, err
		}

		for _, line := range groups[supplierID] {
			product := productsByID[line.ProductID]
			wholesale, label, err := lineWholesale(product, line.VariationID)
			if err != nil {
				return nil, err
			}

			if _, err := subOrder.AddLine(line.ProductID, line.VariationID, product.Name, label,
				line.Quantity, line.UnitSalePrice, wholesale); err != nil {
				return nil, err
			}

			commands = append(commands, inventory.ReserveCommand{
				SubOrderID:  subOrder.ID,
				ProductID:   line.ProductID,
				VariationID: line.VariationID,
				Quantity:    line.Quantity,
			})
		}

		order.AttachSubOrder(subOrder)
	}

	err = s.scope.Execute(ctx, func(repos fulfillmentapp.TransactionalRepositories) error {
		ledger := inventory.NewStockLedger(repos.Products, repos.Reservations, repos.Movements,
			s.cfg.ReserveRetries)
		for _, cmd := range commands {
			if _, err := ledger.Reserve(ctx, cmd); err != nil {
				return err
			}
		}
		return repos.Orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout committed",
		zap.String("order_id", order.ID.String()),
		zap.Int("sub_orders", order.SubOrderCount()),
		zap.String("total", order.TotalAmount.String()))

	response := ToOrderResponse(order)
	return &response, nil
}

// loadProducts fetches every referenced product and validates that each
// line targets an existing product and variation.
func (s *Service) loadProducts(ctx context.Context, lines []CheckoutLine) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		if line.UnitSalePrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
		}
		if _, ok := seen[line.ProductID]; !ok {
			seen[line.ProductID] = struct{}{}
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for idx := range products {
		byID[products[idx].ID] = &products[idx]
	}

	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Product %s not found", line.ProductID))
		}
		if line.VariationID != nil && product.GetVariation(*line.VariationID) == nil {
			return nil, shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Variation %s not found on product %s", *line.VariationID, product.ID))
		}
	}

	return byID, nil
}

// lineWholesale resolves the wholesale price and display label for a line
func lineWholesale(product *catalog.Product, variationID *uuid.UUID) (decimal.Decimal, string, error) {
	if variationID == nil {
		return product.WholesalePrice, "", nil
	}
	variation := product.GetVariation(*variationID)
	if variation == nil {
		return decimal.Zero, "", shared.NewDomainError("NOT_FOUND", "Variation not found")
	}
	return variation.WholesalePrice, variation.Label(), nil
}
