package routes

import (
	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/handlers"
)

// SetupTokenConfigRoutes sets up all routes related to Token Config management
func SetupTokenConfigRoutes(r *gin.Engine) {
	token := r.Group("/token-config")
	{
		token.GET("", handlers.ListTokenConfigs)
		token.POST("/resolve", handlers.ResolveTokenConfig)
	}
}
