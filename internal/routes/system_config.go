package routes

import (
	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/handlers"
)

// SetupSystemConfigRoutes sets up routes for system logs and system params
func SetupSystemConfigRoutes(r *gin.Engine) {
	logs := r.Group("/system-logs")
	{
		logs.GET("", handlers.ListSystemLogs)
	}

	params := r.Group("/system-params")
	{
		params.GET("", handlers.ListSystemParams)
		params.GET("/name/:name", handlers.GetSystemParamsByName)
		params.POST("", handlers.UpsertSystemParams)
	}
}
