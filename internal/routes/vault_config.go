package routes

import (
	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/handlers"
)

// SetupVaultConfigRoutes sets up all routes related to custodial vault management
func SetupVaultConfigRoutes(r *gin.Engine) {
	vault := r.Group("/vault-config")
	{
		vault.GET("", handlers.ListVaultConfigs)
		vault.POST("", handlers.CreateVaultConfig)
	}
}
