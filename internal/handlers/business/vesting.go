package business

import (
	"time"

	"github.com/shopspring/decimal"

	"vestingcontrol/internal/models"
)

// VestedFraction returns the unlocked proportion of an allocation at the
// given moment. Nothing unlocks before the cliff, everything is unlocked at
// or after the vesting end, and in between the fraction grows linearly
// across the cliff→end window. Time spent between pool start and cliff
// contributes nothing; there is no lump-sum unlock at the cliff itself.
func VestedFraction(now, cliffTime, endTime time.Time) decimal.Decimal {
	if now.Before(cliffTime) {
		return decimal.Zero
	}
	if !now.Before(endTime) {
		return decimal.NewFromInt(1)
	}
	window := endTime.Sub(cliffTime)
	if window <= 0 {
		// 退化区间：已过 cliff 即视为全部解锁
		return decimal.NewFromInt(1)
	}
	elapsed := now.Sub(cliffTime)
	return decimal.NewFromInt(elapsed.Nanoseconds()).
		Div(decimal.NewFromInt(window.Nanoseconds()))
}

// VestedAmount returns how much of a grant's allocation has unlocked under
// its pool's schedule at the given moment.
func VestedAmount(grant *models.VestingGrant, pool *models.VestingPool, now time.Time) decimal.Decimal {
	fraction := VestedFraction(now, pool.CliffTime(), pool.VestingEnd())
	return grant.TotalAllocation.Mul(fraction)
}
