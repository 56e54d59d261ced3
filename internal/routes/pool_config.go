package routes

import (
	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/handlers"
)

// SetupPoolConfigRoutes sets up all routes related to Vesting Pool management
func SetupPoolConfigRoutes(r *gin.Engine) {
	pool := r.Group("/pool-config")
	{
		pool.GET("", handlers.ListVestingPools)
		pool.GET("/:id", handlers.GetVestingPool)
		pool.POST("", handlers.CreateVestingPool)
		pool.PUT("/:id/status", handlers.UpdateVestingPoolStatus)
	}
}
