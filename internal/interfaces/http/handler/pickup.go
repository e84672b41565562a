package handler

import (
	"fmt"
	"net/http"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/infrastructure/printing"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PickupHandler handles pickup batch API endpoints
type PickupHandler struct {
	BaseHandler
	pickupService  *fulfillmentapp.PickupService
	manifestWriter *printing.ManifestWriter
}

// NewPickupHandler creates a new PickupHandler
func NewPickupHandler(pickupService *fulfillmentapp.PickupService, manifestWriter *printing.ManifestWriter) *PickupHandler {
	return &PickupHandler{
		pickupService:  pickupService,
		manifestWriter: manifestWriter,
	}
}

// CreatePickupRequest represents a request to create a pickup batch
// @Description Request body for batching ready sub-orders into a pickup
type CreatePickupRequest struct {
	SubOrderIDs  []string `json:"sub_order_ids" binding:"required,min=1,dive,uuid"`
	PackageCount int      `json:"package_count" binding:"required,gt=0" example:"5"`
	WeightKg     float64  `json:"weight_kg" binding:"gte=0" example:"12.5"`
}

// Create godoc
// @Summary      Create a pickup batch
// @Description  Groups pret_pour_enlevement sub-orders of the calling supplier into one courier batch. One ineligible sub-order rejects the whole request.
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Param        request body CreatePickupRequest true "Pickup creation request"
// @Success      201 {object} dto.Response{data=fulfillmentapp.PickupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pickups [post]
func (h *PickupHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	if actor.Role != fulfillment.RoleSupplier {
		h.Forbidden(c, "Only suppliers can create pickups")
		return
	}

	var req CreatePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	subOrderIDs := make([]uuid.UUID, 0, len(req.SubOrderIDs))
	for _, raw := range req.SubOrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid sub-order ID format")
			return
		}
		subOrderIDs = append(subOrderIDs, id)
	}

	pickup, err := h.pickupService.CreatePickup(c.Request.Context(), fulfillmentapp.CreatePickupRequest{
		SupplierID:   actor.ID,
		SubOrderIDs:  subOrderIDs,
		PackageCount: req.PackageCount,
		WeightKg:     decimal.NewFromFloat(req.WeightKg),
		Actor:        actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, pickup)
}

// Collect godoc
// @Summary      Confirm courier collection
// @Description  Marks a pickup as collected. The pickup is immutable afterwards.
// @Tags         pickups
// @Produce      json
// @Param        id path string true "Pickup ID" format(uuid)
// @Success      200 {object} dto.Response{data=fulfillmentapp.PickupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pickups/{id}/collect [post]
func (h *PickupHandler) Collect(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	pickupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pickup ID format")
		return
	}

	pickup, err := h.pickupService.CollectPickup(c.Request.Context(), pickupID, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pickup)
}

// GetByID godoc
// @Summary      Get pickup by ID
// @Tags         pickups
// @Produce      json
// @Param        id path string true "Pickup ID" format(uuid)
// @Success      200 {object} dto.Response{data=fulfillmentapp.PickupResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pickups/{id} [get]
func (h *PickupHandler) GetByID(c *gin.Context) {
	pickupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pickup ID format")
		return
	}

	pickup, err := h.pickupService.GetPickup(c.Request.Context(), pickupID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pickup)
}

// List godoc
// @Summary      List pickups
// @Description  Lists the pickup batches of the calling supplier
// @Tags         pickups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Filter by status" Enums(awaiting_courier, collected)
// @Success      200 {object} dto.Response{data=[]fulfillmentapp.PickupResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pickups [get]
func (h *PickupHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	if actor.Role != fulfillment.RoleSupplier {
		h.Forbidden(c, "Only suppliers can list pickups")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	pickups, err := h.pickupService.ListPickups(c.Request.Context(), actor.ID, listFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pickups)
}

// Manifest godoc
// @Summary      Get the pickup manifest
// @Description  Returns the courier-facing manifest: per sub-order the client, the lines and the amount to collect
// @Tags         pickups
// @Produce      json
// @Param        id path string true "Pickup ID" format(uuid)
// @Success      200 {object} dto.Response{data=fulfillmentapp.Manifest}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pickups/{id}/manifest [get]
func (h *PickupHandler) Manifest(c *gin.Context) {
	pickupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pickup ID format")
		return
	}

	manifest, err := h.pickupService.Manifest(c.Request.Context(), pickupID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, manifest)
}

// ManifestXLSX godoc
// @Summary      Download the pickup manifest as XLSX
// @Description  Renders the manifest as an XLSX workbook for warehouse staff and couriers
// @Tags         pickups
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Pickup ID" format(uuid)
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pickups/{id}/manifest.xlsx [get]
func (h *PickupHandler) ManifestXLSX(c *gin.Context) {
	pickupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pickup ID format")
		return
	}

	manifest, err := h.pickupService.Manifest(c.Request.Context(), pickupID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", manifest.Code+".xlsx"))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)

	if err := h.manifestWriter.WriteXLSX(manifest, c.Writer); err != nil {
		// headers are already out, the truncated body signals the failure
		_ = c.Error(err)
	}
}
