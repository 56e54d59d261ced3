package business

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"vestingcontrol/internal/models"
	"vestingcontrol/pkg/config"
	"vestingcontrol/pkg/utils"
)

// GrantAvailability is one grant's claimable state at a point in time.
type GrantAvailability struct {
	Grant     *models.VestingGrant
	Pool      *models.VestingPool
	Vested    decimal.Decimal
	Claimed   decimal.Decimal
	Available decimal.Decimal
}

// LoadEligibleGrants returns the holder's active, non-cancelled grants whose
// pool is active and has started, each with its vested / claimed / available
// amounts at now. Results are ordered oldest grant first. Pass an empty mint
// to load across all tokens.
func LoadEligibleGrants(holder string, tokenMint string, now time.Time) ([]GrantAvailability, error) {
	var grants []models.VestingGrant
	err := config.DB.
		Preload("Pool").
		Preload("Pool.Token").
		Where("holder_address = ? AND is_active = ? AND is_cancelled = ?", holder, true, false).
		Order("created_at ASC, id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}

	avails := make([]GrantAvailability, 0, len(grants))
	for i := range grants {
		grant := &grants[i]
		pool := grant.Pool
		if pool == nil || pool.Status != models.PoolStatusActive {
			continue
		}
		if pool.StartTime.After(now) {
			continue
		}
		if tokenMint != "" && (pool.Token == nil || pool.Token.Mint != tokenMint) {
			continue
		}

		claimed, err := claimedTotal(grant.ID)
		if err != nil {
			return nil, err
		}
		vested := VestedAmount(grant, pool, now)
		available := vested.Sub(claimed)
		if available.IsNegative() {
			available = decimal.Zero
		}
		avails = append(avails, GrantAvailability{
			Grant:     grant,
			Pool:      pool,
			Vested:    vested,
			Claimed:   claimed,
			Available: available,
		})
	}
	return avails, nil
}

// claimedTotal 汇总该 grant 历史已领取数量
func claimedTotal(grantID uint) (decimal.Decimal, error) {
	var claimed decimal.Decimal
	err := config.DB.Model(&models.ClaimRecord{}).
		Where("grant_id = ?", grantID).
		Select("COALESCE(SUM(amount_claimed), 0)").
		Scan(&claimed).Error
	return claimed, err
}

// TotalAvailable sums per-grant availability and floors the result to two
// decimal places. Flooring never over-promises: the displayed total is always
// coverable by the underlying grants.
func TotalAvailable(avails []GrantAvailability) decimal.Decimal {
	total := decimal.Zero
	for _, a := range avails {
		total = total.Add(a.Available)
	}
	return utils.FloorTo2dp(total)
}

// DistributionEntry is one grant's take within a settlement.
type DistributionEntry struct {
	GrantID uint            `json:"grant_id"`
	PoolID  uint            `json:"pool_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// BuildDistribution splits a requested amount across the holder's grants,
// draining the oldest grant fully before touching the next. The entry
// amounts always sum to exactly the requested amount. Returns
// ErrRequestExceedsAvailable when the request cannot be covered.
func BuildDistribution(avails []GrantAvailability, requested decimal.Decimal) ([]DistributionEntry, error) {
	if !requested.IsPositive() {
		return nil, ErrInvalidRequest
	}
	if requested.GreaterThan(TotalAvailable(avails)) {
		return nil, ErrRequestExceedsAvailable
	}

	ordered := make([]GrantAvailability, len(avails))
	copy(ordered, avails)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Grant.CreatedAt.Equal(ordered[j].Grant.CreatedAt) {
			return ordered[i].Grant.CreatedAt.Before(ordered[j].Grant.CreatedAt)
		}
		return ordered[i].Grant.ID < ordered[j].Grant.ID
	})

	entries := make([]DistributionEntry, 0, len(ordered))
	remaining := requested
	for _, a := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := a.Available
		if take.GreaterThan(remaining) {
			take = remaining
		}
		if !take.IsPositive() {
			continue
		}
		entries = append(entries, DistributionEntry{
			GrantID: a.Grant.ID,
			PoolID:  a.Pool.ID,
			Amount:  take,
		})
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		// 理论上不可达：总额校验已通过
		return nil, ErrRequestExceedsAvailable
	}
	return entries, nil
}
