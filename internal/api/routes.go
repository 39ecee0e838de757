package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sedifex-backend-go/internal/middleware"
	"sedifex-backend-go/internal/plans"
	"sedifex-backend-go/internal/tenancy"
)

// SetupRoutes configures the callable surface. Global middleware (logging,
// recovery, CORS) is expected to be applied to the router before this is
// called, typically in main.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	tenancyService *tenancy.Service,
	billing plans.BillingConfig,
) {
	tenancyHandler := NewTenancyHandler(tenancyService, logger)
	plansHandler := NewPlansHandler(billing)

	apiV1 := router.Group("/api/v1")
	{
		storeGroup := apiV1.Group("/store", authMW.VerifyToken())
		{
			// POST /api/v1/store/initialize - bootstrap the caller as owner
			// of their tenant.
			storeGroup.POST("/initialize", tenancyHandler.InitializeStore)

			// POST /api/v1/store/access - re-validate membership on session
			// resume and refresh claims.
			storeGroup.POST("/access", tenancyHandler.ResolveStoreAccess)
		}

		// POST /api/v1/staff - owner-only staff provisioning.
		apiV1.POST("/staff", authMW.VerifyToken(), tenancyHandler.ManageStaffAccount)

		// GET /api/v1/plans - public plan catalog.
		apiV1.GET("/plans", plansHandler.ListPlans)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Sedifex backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
