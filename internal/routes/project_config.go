package routes

import (
	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/handlers"
)

// SetupProjectConfigRoutes sets up all routes related to Project Config management
func SetupProjectConfigRoutes(r *gin.Engine) {
	project := r.Group("/project-config")
	{
		project.GET("", handlers.ListProjectConfigs)
		project.GET("/:id", handlers.GetProjectConfig)
		project.POST("", handlers.CreateProjectConfig)
		project.PUT("/:id", handlers.UpdateProjectConfig)
	}
}
