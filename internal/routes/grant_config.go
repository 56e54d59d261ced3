package routes

import (
	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/handlers"
)

// SetupGrantConfigRoutes sets up all routes related to Vesting Grant management
func SetupGrantConfigRoutes(r *gin.Engine) {
	grant := r.Group("/grant-config")
	{
		grant.GET("", handlers.ListVestingGrants)
		grant.POST("", handlers.CreateVestingGrant)
		grant.PUT("/:id/cancel", handlers.CancelVestingGrant)
	}
}
