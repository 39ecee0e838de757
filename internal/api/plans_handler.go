package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sedifex-backend-go/internal/plans"
)

// PlansHandler serves the read-only subscription plan catalog.
type PlansHandler struct {
	billing plans.BillingConfig
}

// NewPlansHandler creates a new PlansHandler.
func NewPlansHandler(billing plans.BillingConfig) *PlansHandler {
	return &PlansHandler{billing: billing}
}

// ListPlans handles GET /api/v1/plans.
func (h *PlansHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, PlanCatalogResponse{
		OK:        true,
		Plans:     plans.List(),
		TrialDays: h.billing.TrialDays,
		Provider:  h.billing.Provider,
		PlanCodes: h.billing.PlanCodes,
	})
}
