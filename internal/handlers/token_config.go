package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vestingcontrol/internal/models"
	dbconfig "vestingcontrol/pkg/config"
	solanaUtil "vestingcontrol/pkg/solana"
)

// ResolveTokenRequest represents the request body for registering a token
type ResolveTokenRequest struct {
	Mint string `json:"mint" binding:"required"`
}

// ListTokenConfigs returns all registered tokens
func ListTokenConfigs(c *gin.Context) {
	var tokens []models.TokenConfig
	if err := dbconfig.DB.Find(&tokens).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// ResolveTokenConfig registers a token by mint, pulling decimals and metadata
// from the chain when the mint is not already known.
func ResolveTokenConfig(c *gin.Context) {
	var request ResolveTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := solanaUtil.ResolveTokenInfo(c.Request.Context(), dbconfig.DB, chainClient(), request.Mint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, token)
}
