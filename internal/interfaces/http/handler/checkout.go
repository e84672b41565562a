package handler

import (
	checkoutapp "github.com/dropship/backend/internal/application/checkout"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutHandler handles reseller checkout API endpoints
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// CheckoutClientInput is the client delivery snapshot of a checkout
// @Description Client the reseller sells to, snapshotted onto the order
type CheckoutClientInput struct {
	Name    string `json:"name" binding:"required,min=1,max=200" example:"Amine B."`
	Phone   string `json:"phone" binding:"required,min=1,max=30" example:"0550123456"`
	Address string `json:"address" binding:"required,min=1,max=500" example:"Cite 200 logements, Alger"`
}

// CheckoutLineInput is one cart line of a checkout request
// @Description Cart line for checkout
type CheckoutLineInput struct {
	ProductID     string  `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	VariationID   *string `json:"variation_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440003"`
	Quantity      int64   `json:"quantity" binding:"required,gt=0" example:"2"`
	UnitSalePrice float64 `json:"unit_sale_price" binding:"required,gte=0" example:"1500.00"`
}

// CheckoutRequest represents a request to place an order
// @Description Request body for reseller checkout
type CheckoutRequest struct {
	Client CheckoutClientInput `json:"client" binding:"required"`
	Lines  []CheckoutLineInput `json:"lines" binding:"required,min=1,dive"`
}

// Checkout godoc
// @Summary      Place an order
// @Description  Splits the cart by supplier, reserves stock and creates one sub-order per supplier
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Checkout request"
// @Success      201 {object} dto.Response{data=checkoutapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	if actor.Role != fulfillment.RoleReseller {
		h.Forbidden(c, "Only resellers can place orders")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	appReq := checkoutapp.CheckoutRequest{
		ResellerID: actor.ID,
		Client: fulfillment.ClientInfo{
			Name:    req.Client.Name,
			Phone:   req.Client.Phone,
			Address: req.Client.Address,
		},
	}
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		appLine := checkoutapp.CheckoutLine{
			ProductID:     productID,
			Quantity:      line.Quantity,
			UnitSalePrice: decimal.NewFromFloat(line.UnitSalePrice),
		}
		if line.VariationID != nil && *line.VariationID != "" {
			variationID, err := uuid.Parse(*line.VariationID)
			if err != nil {
				h.BadRequest(c, "Invalid variation ID format")
				return
			}
			appLine.VariationID = &variationID
		}
		appReq.Lines = append(appReq.Lines, appLine)
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}
