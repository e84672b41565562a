package handler

import (
	"time"

	reportapp "github.com/dropship/backend/internal/application/report"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/gin-gonic/gin"
)

// FinancialsHandler handles supplier financial reporting endpoints
type FinancialsHandler struct {
	BaseHandler
	financialService *reportapp.FinancialService
}

// NewFinancialsHandler creates a new FinancialsHandler
func NewFinancialsHandler(financialService *reportapp.FinancialService) *FinancialsHandler {
	return &FinancialsHandler{
		financialService: financialService,
	}
}

// FinancialsQuery represents the window query parameters
// @Description Inclusive date window of the financial summary
type FinancialsQuery struct {
	Start string `form:"start" binding:"omitempty,datetime=2006-01-02" example:"2026-08-01"`
	End   string `form:"end" binding:"omitempty,datetime=2006-01-02" example:"2026-08-31"`
}

// Get godoc
// @Summary      Get the supplier financial summary
// @Description  Aggregates revenue partitions, profit, return penalties and counters over the requested window. Defaults to today when no window is given.
// @Tags         financials
// @Produce      json
// @Param        start query string false "Window start (YYYY-MM-DD)"
// @Param        end query string false "Window end (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=report.FinancialSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /financials [get]
func (h *FinancialsHandler) Get(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	if actor.Role != fulfillment.RoleSupplier {
		h.Forbidden(c, "Only suppliers can view financials")
		return
	}

	var query FinancialsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	var start, end time.Time
	if query.Start != "" {
		start, _ = time.Parse("2006-01-02", query.Start)
	}
	if query.End != "" {
		end, _ = time.Parse("2006-01-02", query.End)
	}

	summary, err := h.financialService.GetFinancials(c.Request.Context(), actor.ID, start, end)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
