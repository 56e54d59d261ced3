package business

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan(t *testing.T) *SettlementPlan {
	t.Helper()
	return &SettlementPlan{
		ID:              newPlanID(),
		HolderAddress:   "FGnwNsEBxHsKH4nRkK2mFLqfL6kICBg1yh4dVZWSWdRU",
		RequestedAmount: decimal.NewFromInt(80),
		TokenMint:       "So11111111111111111111111111111111111111112",
		TokenDecimals:   9,
		Entries: []DistributionEntry{
			{GrantID: 1, PoolID: 1, Amount: decimal.NewFromInt(60)},
			{GrantID: 2, PoolID: 1, Amount: decimal.NewFromInt(20)},
		},
		Fee: FeeBreakdown{
			PlatformLamports: 1_000_000,
			PlatformVault:    testPlatformVault,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSettlementPlanSignature(t *testing.T) {
	t.Setenv("CLAIM_PLAN_SECRET", "unit-test-secret")

	t.Run("Sign Then Verify", func(t *testing.T) {
		plan := testPlan(t)
		require.NoError(t, plan.Sign())
		assert.NotEmpty(t, plan.Signature)
		assert.NoError(t, plan.Verify())
	})

	t.Run("Tampered Amount Rejected", func(t *testing.T) {
		plan := testPlan(t)
		require.NoError(t, plan.Sign())

		plan.RequestedAmount = decimal.NewFromInt(800)
		assert.ErrorIs(t, plan.Verify(), ErrPlanInvalid)
	})

	t.Run("Tampered Entry Rejected", func(t *testing.T) {
		plan := testPlan(t)
		require.NoError(t, plan.Sign())

		plan.Entries[0].Amount = decimal.NewFromInt(600)
		assert.ErrorIs(t, plan.Verify(), ErrPlanInvalid)
	})

	t.Run("Forged Signature Rejected", func(t *testing.T) {
		plan := testPlan(t)
		require.NoError(t, plan.Sign())

		plan.Signature = "deadbeef"
		assert.ErrorIs(t, plan.Verify(), ErrPlanInvalid)
	})

	t.Run("Missing Secret Errors", func(t *testing.T) {
		t.Setenv("CLAIM_PLAN_SECRET", "")
		plan := testPlan(t)
		assert.Error(t, plan.Sign())
	})
}

func TestSettlementPlanExpiry(t *testing.T) {
	plan := testPlan(t)
	now := plan.CreatedAt

	assert.False(t, plan.Expired(now))
	assert.False(t, plan.Expired(now.Add(PlanTTL)))
	assert.True(t, plan.Expired(now.Add(PlanTTL+time.Second)))
}
