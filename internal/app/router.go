package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
	"dispatch/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OrderHandler     *handler.OrderHandler
	DriverHandler    *handler.DriverHandler
	AdminHandler     *handler.AdminHandler
	IdempotencyStore *redis.IdempotencyStore // optional
	NewRelicApp      *newrelic.Application   // optional
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.IdempotencyStore != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.IdempotencyStore))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Order routes.
		orders := v1.Group("/orders")
		{
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.GET("", deps.OrderHandler.GetAll)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
			orders.POST("/:id/accept", deps.OrderHandler.AcceptOrder)
			orders.POST("/:id/start", deps.OrderHandler.StartTrip)
			orders.POST("/:id/complete", deps.OrderHandler.CompleteTrip)
			orders.POST("/:id/cancel", deps.OrderHandler.CancelOrder)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/online", deps.DriverHandler.GoOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.GET("/:id/offers", deps.DriverHandler.GetOffers)
		}

		// Admin routes.
		admin := v1.Group("/admin")
		{
			admin.GET("/audit-logs", deps.AdminHandler.GetAuditLogs)
			admin.GET("/orders/:id/accept-stats", deps.AdminHandler.GetAcceptStats)
			admin.GET("/rate-plans", deps.AdminHandler.GetRatePlans)
			admin.PUT("/rate-plans/:type", deps.AdminHandler.UpdateRatePlan)
			admin.GET("/search-radius", deps.AdminHandler.GetSearchRadius)
			admin.PUT("/search-radius", deps.AdminHandler.SetSearchRadius)
			admin.GET("/stats", deps.AdminHandler.GetStats)
		}
	}

	return router
}
