package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/models"
	dbconfig "vestingcontrol/pkg/config"
)

// ProjectConfigRequest represents the request body for creating/updating a project config
type ProjectConfigRequest struct {
	Name          string `json:"name" binding:"required"`
	IsActive      *bool  `json:"is_active"`
	ClaimsEnabled *bool  `json:"claims_enabled"`
	FeeVault      string `json:"fee_vault"`
}

// ListProjectConfigs returns a list of all project configs
func ListProjectConfigs(c *gin.Context) {
	var projects []models.ProjectConfig
	if err := dbconfig.DB.Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProjectConfig returns a specific project config by ID
func GetProjectConfig(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var project models.ProjectConfig
	if err := dbconfig.DB.First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// CreateProjectConfig creates a new project config
func CreateProjectConfig(c *gin.Context) {
	var request ProjectConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := models.ProjectConfig{
		Name:          request.Name,
		IsActive:      true,
		ClaimsEnabled: true,
		FeeVault:      request.FeeVault,
	}
	if request.IsActive != nil {
		project.IsActive = *request.IsActive
	}
	if request.ClaimsEnabled != nil {
		project.ClaimsEnabled = *request.ClaimsEnabled
	}

	if err := dbconfig.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateProjectConfig updates an existing project config
func UpdateProjectConfig(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var project models.ProjectConfig
	if err := dbconfig.DB.First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	var request ProjectConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project.Name = request.Name
	project.FeeVault = request.FeeVault
	if request.IsActive != nil {
		project.IsActive = *request.IsActive
	}
	if request.ClaimsEnabled != nil {
		project.ClaimsEnabled = *request.ClaimsEnabled
	}

	if err := dbconfig.DB.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, project)
}
