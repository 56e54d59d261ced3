package routes

import (
	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/handlers"
	"vestingcontrol/internal/middleware"
)

// SetupClaimRoutes sets up all routes related to claim computation and settlement
func SetupClaimRoutes(r *gin.Engine) {
	claim := r.Group("/claim")
	claim.Use(middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	}))
	{
		claim.POST("/compute", handlers.ComputeClaim)
		claim.POST("/settle", handlers.SettleClaim)
		claim.GET("/available", handlers.GetAvailable)
		claim.GET("/records", handlers.ListClaimRecords)
	}
}
