package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"vestingcontrol/internal/handlers/business"
	"vestingcontrol/internal/models"
	dbconfig "vestingcontrol/pkg/config"
	solanaUtil "vestingcontrol/pkg/solana"
)

var (
	rpcClientOnce sync.Once
	rpcClient     *rpc.Client
)

func chainClient() *rpc.Client {
	rpcClientOnce.Do(func() {
		rpcClient = solanaUtil.NewRPCClient()
	})
	return rpcClient
}

// ComputeClaimRequest represents the request body for computing a claim plan
type ComputeClaimRequest struct {
	HolderAddress   string `json:"holder_address" binding:"required"`
	RequestedAmount string `json:"requested_amount"`
	TokenMint       string `json:"token_mint"`
}

// SettleClaimRequest represents the request body for settling a computed plan
type SettleClaimRequest struct {
	Plan         *business.SettlementPlan `json:"plan" binding:"required"`
	FeeSignature string                   `json:"fee_signature"`
}

// ComputeClaim computes a settlement plan for a holder. Omitting
// requested_amount claims everything currently available.
func ComputeClaim(c *gin.Context) {
	var request ComputeClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var requested *decimal.Decimal
	if request.RequestedAmount != "" {
		amount, err := decimal.NewFromString(request.RequestedAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requested_amount format"})
			return
		}
		requested = &amount
	}

	result, err := business.ComputeClaim(c.Request.Context(), chainClient(), request.HolderAddress, requested, request.TokenMint)
	if err != nil {
		respondClaimError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SettleClaim executes a computed plan after the holder paid the fee.
func SettleClaim(c *gin.Context) {
	var request SettleClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transferSignature, err := business.SettleClaim(c.Request.Context(), chainClient(), request.Plan, request.FeeSignature)
	if err != nil {
		respondClaimError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Claim settled",
		"plan_id":            request.Plan.ID,
		"transfer_signature": transferSignature,
	})
}

// GetAvailable returns a holder's claimable amounts per grant plus the
// floored total.
func GetAvailable(c *gin.Context) {
	holder := c.Query("holder_address")
	if holder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "holder_address is required"})
		return
	}

	avails, err := business.ClaimableGrants(holder, c.Query("token_mint"), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	grants := make([]gin.H, 0, len(avails))
	for _, a := range avails {
		mint := ""
		if a.Pool.Token != nil {
			mint = a.Pool.Token.Mint
		}
		grants = append(grants, gin.H{
			"grant_id":   a.Grant.ID,
			"pool_id":    a.Pool.ID,
			"token_mint": mint,
			"vested":     a.Vested,
			"claimed":    a.Claimed,
			"available":  a.Available,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"holder_address":  holder,
		"total_available": business.TotalAvailable(avails),
		"grants":          grants,
	})
}

// ListClaimRecords returns the claim ledger, filterable by holder or grant.
func ListClaimRecords(c *gin.Context) {
	query := dbconfig.DB.Model(&models.ClaimRecord{}).Order("claimed_at DESC, id DESC")

	if holder := c.Query("holder_address"); holder != "" {
		query = query.Where("holder_address = ?", holder)
	}
	if grantID := c.Query("grant_id"); grantID != "" {
		id, err := strconv.Atoi(grantID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grant_id format"})
			return
		}
		query = query.Where("grant_id = ?", id)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		id, err := strconv.Atoi(projectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id format"})
			return
		}
		query = query.Where("project_id = ?", id)
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	var records []models.ClaimRecord
	if err := query.Limit(limit).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// respondClaimError maps reason-coded settlement failures to HTTP statuses.
func respondClaimError(c *gin.Context, err error) {
	var claimErr *business.ClaimError
	if !errors.As(err, &claimErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusBadRequest
	switch claimErr {
	case business.ErrNoEligibleGrants:
		status = http.StatusNotFound
	case business.ErrClaimsDisabled:
		status = http.StatusForbidden
	case business.ErrPlanExpired:
		status = http.StatusGone
	case business.ErrFeeNotConfirmed, business.ErrFeeFailed:
		status = http.StatusConflict
	case business.ErrTransferFailed:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": claimErr.Code})
}
