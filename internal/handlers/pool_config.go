package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vestingcontrol/internal/models"
	dbconfig "vestingcontrol/pkg/config"
)

// VestingPoolRequest represents the request body for creating a vesting pool
type VestingPoolRequest struct {
	ProjectID           uint   `json:"project_id" binding:"required"`
	TokenID             uint   `json:"token_id" binding:"required"`
	VaultAddress        string `json:"vault_address" binding:"required"`
	TotalPoolAmount     string `json:"total_pool_amount"`
	StartTime           int64  `json:"start_time" binding:"required"` // unix seconds
	CliffDurationSecs   int64  `json:"cliff_duration_secs"`
	VestingDurationSecs int64  `json:"vesting_duration_secs" binding:"required"`
	ProjectFeeLamports  uint64 `json:"project_fee_lamports"`
	ProjectFeeVault     string `json:"project_fee_vault"`
}

// PoolStatusRequest represents the request body for switching a pool's status
type PoolStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListVestingPools returns a list of all vesting pools
func ListVestingPools(c *gin.Context) {
	query := dbconfig.DB.Preload("Token")
	if projectID := c.Query("project_id"); projectID != "" {
		id, err := strconv.Atoi(projectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id format"})
			return
		}
		query = query.Where("project_id = ?", id)
	}

	var pools []models.VestingPool
	if err := query.Find(&pools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pools)
}

// GetVestingPool returns a specific vesting pool by ID
func GetVestingPool(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var pool models.VestingPool
	if err := dbconfig.DB.Preload("Token").First(&pool, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, pool)
}

// CreateVestingPool creates a new vesting pool. The schedule fields are fixed
// at creation; only the status can change afterwards.
func CreateVestingPool(c *gin.Context) {
	var request VestingPoolRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totalAmount := decimal.Zero
	if request.TotalPoolAmount != "" {
		parsed, err := decimal.NewFromString(request.TotalPoolAmount)
		if err != nil || parsed.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid total_pool_amount format"})
			return
		}
		totalAmount = parsed
	}
	if request.VestingDurationSecs <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vesting_duration_secs must be positive"})
		return
	}

	startTime := time.Unix(request.StartTime, 0).UTC()
	cliffTime := startTime.Add(time.Duration(request.CliffDurationSecs) * time.Second)
	pool := models.VestingPool{
		ProjectID:           request.ProjectID,
		TokenID:             request.TokenID,
		VaultAddress:        request.VaultAddress,
		TotalPoolAmount:     totalAmount,
		StartTime:           startTime,
		CliffDurationSecs:   request.CliffDurationSecs,
		VestingDurationSecs: request.VestingDurationSecs,
		EndTime:             cliffTime.Add(time.Duration(request.VestingDurationSecs) * time.Second),
		Status:              models.PoolStatusActive,
		ProjectFeeLamports:  request.ProjectFeeLamports,
		ProjectFeeVault:     request.ProjectFeeVault,
	}

	if err := dbconfig.DB.Create(&pool).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, pool)
}

// UpdateVestingPoolStatus pauses, resumes, or cancels a pool. Cancellation is
// final.
func UpdateVestingPoolStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request PoolStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch request.Status {
	case models.PoolStatusActive, models.PoolStatusPaused, models.PoolStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	var pool models.VestingPool
	if err := dbconfig.DB.First(&pool, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if pool.Status == models.PoolStatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Cancelled pools cannot change status"})
		return
	}

	pool.Status = request.Status
	if err := dbconfig.DB.Save(&pool).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pool)
}
