package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vestingcontrol/internal/models"
	dbconfig "vestingcontrol/pkg/config"
)

// VestingGrantRequest represents the request body for creating a grant
type VestingGrantRequest struct {
	PoolID          uint     `json:"pool_id" binding:"required"`
	HolderAddress   string   `json:"holder_address" binding:"required"`
	TotalAllocation string   `json:"total_allocation" binding:"required"`
	SharePercentage *float64 `json:"share_percentage"`
}

// ListVestingGrants returns grants, filterable by holder or pool
func ListVestingGrants(c *gin.Context) {
	query := dbconfig.DB.Preload("Pool").Order("created_at ASC, id ASC")
	if holder := c.Query("holder_address"); holder != "" {
		query = query.Where("holder_address = ?", holder)
	}
	if poolID := c.Query("pool_id"); poolID != "" {
		id, err := strconv.Atoi(poolID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool_id format"})
			return
		}
		query = query.Where("pool_id = ?", id)
	}

	var grants []models.VestingGrant
	if err := query.Find(&grants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, grants)
}

// CreateVestingGrant allocates part of a pool to a holder
func CreateVestingGrant(c *gin.Context) {
	var request VestingGrantRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allocation, err := decimal.NewFromString(request.TotalAllocation)
	if err != nil || !allocation.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid total_allocation format"})
		return
	}

	share := 0.0
	if request.SharePercentage != nil {
		if *request.SharePercentage < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid share_percentage value"})
			return
		}
		share = *request.SharePercentage
	}

	var pool models.VestingPool
	if err := dbconfig.DB.First(&pool, request.PoolID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
		return
	}
	if pool.Status == models.PoolStatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot grant against a cancelled pool"})
		return
	}

	grant := models.VestingGrant{
		PoolID:          pool.ID,
		ProjectID:       pool.ProjectID,
		HolderAddress:   request.HolderAddress,
		TotalAllocation: allocation,
		SharePercentage: share,
		IsActive:        true,
	}
	if err := dbconfig.DB.Create(&grant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, grant)
}

// CancelVestingGrant permanently removes a grant from future settlements.
// Claim history against the grant is kept.
func CancelVestingGrant(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var grant models.VestingGrant
	if err := dbconfig.DB.First(&grant, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if grant.IsCancelled {
		c.JSON(http.StatusOK, grant)
		return
	}

	grant.IsCancelled = true
	grant.IsActive = false
	if err := dbconfig.DB.Save(&grant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, grant)
}
