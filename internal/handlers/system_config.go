package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/models"
	dbconfig "vestingcontrol/pkg/config"
)

// SystemParamsRequest represents the request body for creating/updating a system param
type SystemParamsRequest struct {
	Name         string         `json:"name" binding:"required"`
	IsActive     *bool          `json:"is_active"`
	ParamsConfig models.JSONMap `json:"params_config"`
}

// ListSystemLogs returns paginated system logs with optional filters
func ListSystemLogs(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	pageSize := 10
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	query := dbconfig.DB.Model(&models.SystemLog{})
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if module := c.Query("module"); module != "" {
		query = query.Where("module = ?", module)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var logs []models.SystemLog
	err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"logs":      logs,
	})
}

// ListSystemParams returns all system params
func ListSystemParams(c *gin.Context) {
	var params []models.SystemParams
	if err := dbconfig.DB.Find(&params).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, params)
}

// GetSystemParamsByName returns a system param by its unique name
func GetSystemParamsByName(c *gin.Context) {
	var param models.SystemParams
	if err := dbconfig.DB.Where("name = ?", c.Param("name")).First(&param).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, param)
}

// UpsertSystemParams creates or updates a system param by name. The
// "claims_enabled" param is the global claim switch.
func UpsertSystemParams(c *gin.Context) {
	var request SystemParamsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var param models.SystemParams
	err := dbconfig.DB.Where("name = ?", request.Name).First(&param).Error
	if err != nil {
		param = models.SystemParams{Name: request.Name, IsActive: true}
	}
	if request.IsActive != nil {
		param.IsActive = *request.IsActive
	}
	if request.ParamsConfig != nil {
		param.ParamsConfig = request.ParamsConfig
	}

	if err := dbconfig.DB.Save(&param).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, param)
}
