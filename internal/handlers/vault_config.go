package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/models"
	dbconfig "vestingcontrol/pkg/config"
	solanaUtil "vestingcontrol/pkg/solana"
)

// VaultConfigRequest represents the request body for creating a vault
type VaultConfigRequest struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Backend   string `json:"backend" binding:"required"`
}

// ListVaultConfigs returns vault addresses. Encrypted key material never
// leaves the server.
func ListVaultConfigs(c *gin.Context) {
	query := dbconfig.DB.Model(&models.VaultConfig{})
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var vaults []models.VaultConfig
	if err := query.Find(&vaults).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, vaults)
}

// CreateVaultConfig generates a new custodial vault keypair on the chosen
// backend. The backend is fixed for the vault's lifetime.
func CreateVaultConfig(c *gin.Context) {
	var request VaultConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch request.Backend {
	case models.VaultBackendKeystore, models.VaultBackendDatabase:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid backend value"})
		return
	}

	vault, err := solanaUtil.CreateVaultAccount(dbconfig.DB, request.ProjectID, request.Backend)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Vault created",
		"vault":   vault,
	})
}
