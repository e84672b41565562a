package handler

import (
	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader carries the client-chosen replay protection key
const IdempotencyKeyHeader = "Idempotency-Key"

// SubOrderHandler handles sub-order API endpoints
type SubOrderHandler struct {
	BaseHandler
	transitionService *fulfillmentapp.TransitionService
	queryService      *fulfillmentapp.QueryService
}

// NewSubOrderHandler creates a new SubOrderHandler
func NewSubOrderHandler(
	transitionService *fulfillmentapp.TransitionService,
	queryService *fulfillmentapp.QueryService,
) *SubOrderHandler {
	return &SubOrderHandler{
		transitionService: transitionService,
		queryService:      queryService,
	}
}

// TransitionRequest represents a status change request
// @Description Request body for transitioning a sub-order
type TransitionRequest struct {
	Status          string `json:"status" binding:"required" example:"en_cours"`
	Description     string `json:"description" binding:"max=500" example:"Confirme par telephone"`
	ExpectedVersion *int   `json:"expected_version" example:"3"`
}

// DeliveryAttemptRequest represents a failed delivery attempt
// @Description Request body for recording a delivery attempt
type DeliveryAttemptRequest struct {
	Description string `json:"description" binding:"max=500" example:"Client injoignable"`
}

// GetByID godoc
// @Summary      Get sub-order by ID
// @Description  Retrieve a sub-order with its lines
// @Tags         sub-orders
// @Produce      json
// @Param        id path string true "Sub-order ID" format(uuid)
// @Success      200 {object} dto.Response{data=fulfillmentapp.SubOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /suborders/{id} [get]
func (h *SubOrderHandler) GetByID(c *gin.Context) {
	subOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sub-order ID format")
		return
	}

	subOrder, err := h.queryService.GetSubOrder(c.Request.Context(), subOrderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subOrder)
}

// List godoc
// @Summary      List sub-orders
// @Description  Lists the caller's sub-orders: suppliers see the ones they fulfill, resellers the ones they placed
// @Tags         sub-orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Filter by status" Enums(non_confirmee, en_cours, pret_pour_enlevement, livre, livre_paye, livre_non_paye, retourne, annule)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]fulfillmentapp.SubOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /suborders [get]
func (h *SubOrderHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	filter := listFilter(req)

	var (
		subOrders []fulfillmentapp.SubOrderResponse
		err       error
	)
	switch actor.Role {
	case fulfillment.RoleSupplier:
		subOrders, err = h.queryService.ListBySupplier(c.Request.Context(), actor.ID, filter)
	case fulfillment.RoleReseller:
		subOrders, err = h.queryService.ListByReseller(c.Request.Context(), actor.ID, filter)
	default:
		h.Forbidden(c, "Only suppliers and resellers can list sub-orders")
		return
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subOrders)
}

// Transition godoc
// @Summary      Transition a sub-order
// @Description  Applies one status change. Retourne and annule release the reserved stock. Replays of the same Idempotency-Key return the original outcome.
// @Tags         sub-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sub-order ID" format(uuid)
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body TransitionRequest true "Transition request"
// @Success      200 {object} dto.Response{data=fulfillmentapp.SubOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /suborders/{id}/transition [post]
func (h *SubOrderHandler) Transition(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	subOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sub-order ID format")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	subOrder, err := h.transitionService.Transition(c.Request.Context(), fulfillmentapp.TransitionRequest{
		SubOrderID:      subOrderID,
		NewStatus:       req.Status,
		Description:     req.Description,
		Actor:           actor,
		IdempotencyKey:  c.GetHeader(IdempotencyKeyHeader),
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subOrder)
}

// RecordDeliveryAttempt godoc
// @Summary      Record a delivery attempt
// @Description  Increments the delivery attempt counter of an en_cours sub-order without changing its status
// @Tags         sub-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sub-order ID" format(uuid)
// @Param        request body DeliveryAttemptRequest true "Delivery attempt request"
// @Success      200 {object} dto.Response{data=fulfillmentapp.SubOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /suborders/{id}/delivery-attempts [post]
func (h *SubOrderHandler) RecordDeliveryAttempt(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	subOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sub-order ID format")
		return
	}

	var req DeliveryAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	subOrder, err := h.transitionService.RecordDeliveryAttempt(c.Request.Context(), fulfillmentapp.DeliveryAttemptRequest{
		SubOrderID:  subOrderID,
		Description: req.Description,
		Actor:       actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, subOrder)
}

// Tracking godoc
// @Summary      Get sub-order tracking history
// @Description  Returns the ordered audit trail of a sub-order
// @Tags         sub-orders
// @Produce      json
// @Param        id path string true "Sub-order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]fulfillmentapp.TrackingEventResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /suborders/{id}/tracking [get]
func (h *SubOrderHandler) Tracking(c *gin.Context) {
	subOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sub-order ID format")
		return
	}

	events, err := h.queryService.Tracking(c.Request.Context(), subOrderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, events)
}
