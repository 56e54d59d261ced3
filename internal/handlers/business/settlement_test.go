package business

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vestingcontrol/internal/models"
	"vestingcontrol/pkg/config"
)

// setupSettlementDB swaps the package database for an in-memory one scoped to
// a single test.
func setupSettlementDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ProjectConfig{},
		&models.TokenConfig{},
		&models.VestingPool{},
		&models.VestingGrant{},
		&models.ClaimRecord{},
	))
	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })
	return db
}

func TestSettledBaseByPool(t *testing.T) {
	t.Run("Each Entry Floors Before Summing", func(t *testing.T) {
		// 1.5 + 0.6 base units: 每笔 entry 单独向下取整后只剩 1，
		// 而不是 floor(2.1) = 2，与台账口径一致
		entries := []DistributionEntry{
			{GrantID: 1, PoolID: 1, Amount: decimal.RequireFromString("0.0000000015")},
			{GrantID: 2, PoolID: 1, Amount: decimal.RequireFromString("0.0000000006")},
		}
		poolBase, order, err := settledBaseByPool(entries, 9)
		require.NoError(t, err)
		require.Equal(t, []uint{1}, order)
		assert.Equal(t, uint64(1), poolBase[1])
	})

	t.Run("Preserves Pool Order", func(t *testing.T) {
		entries := []DistributionEntry{
			{GrantID: 1, PoolID: 7, Amount: decimal.NewFromInt(2)},
			{GrantID: 2, PoolID: 3, Amount: decimal.NewFromInt(1)},
			{GrantID: 3, PoolID: 7, Amount: decimal.NewFromInt(4)},
		}
		poolBase, order, err := settledBaseByPool(entries, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint{7, 3}, order)
		assert.Equal(t, uint64(6), poolBase[7])
		assert.Equal(t, uint64(1), poolBase[3])
	})

	t.Run("Ledger Records Exactly The Transferred Units", func(t *testing.T) {
		db := setupSettlementDB(t)
		plan := &SettlementPlan{
			ID:            newPlanID(),
			HolderAddress: "FGnwNsEBxHsKH4nRkK2mFLqfL6kICBg1yh4dVZWSWdRU",
			TokenMint:     "So11111111111111111111111111111111111111112",
			TokenDecimals: 9,
			NoFee:         true,
			Entries: []DistributionEntry{
				{GrantID: 1, PoolID: 1, Amount: decimal.RequireFromString("0.0000000015")},
				{GrantID: 2, PoolID: 1, Amount: decimal.RequireFromString("0.0000000006")},
				{GrantID: 3, PoolID: 2, Amount: decimal.RequireFromString("2.5")},
			},
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, RecordClaims(plan, "", "transfer-sig-ledger", time.Now().UTC()))

		poolBase, _, err := settledBaseByPool(plan.Entries, plan.TokenDecimals)
		require.NoError(t, err)
		var transferred uint64
		for _, base := range poolBase {
			transferred += base
		}

		var records []models.ClaimRecord
		require.NoError(t, db.Find(&records).Error)
		var recorded uint64
		for _, r := range records {
			recorded += r.AmountClaimedBase
		}
		assert.Equal(t, transferred, recorded)
		// entry 2 落在 1 个 base unit 以下，既不转账也不记账
		assert.Len(t, records, 2)
	})
}

func TestSettleClaimIdempotence(t *testing.T) {
	t.Setenv("CLAIM_PLAN_SECRET", "unit-test-secret")
	db := setupSettlementDB(t)

	t.Run("Repeated Fee Signature Returns The Original Transfer", func(t *testing.T) {
		plan := testPlan(t)
		require.NoError(t, plan.Sign())
		record := models.ClaimRecord{
			GrantID:           1,
			HolderAddress:     plan.HolderAddress,
			AmountClaimedBase: 60_000_000_000,
			AmountClaimed:     decimal.NewFromInt(60),
			FeePaidLamports:   1_000_000,
			PlanID:            plan.ID,
			FeeSignature:      "fee-signature-settled",
			TransferSignature: "transfer-signature-settled",
			ClaimedAt:         time.Now().UTC(),
		}
		require.NoError(t, db.Create(&record).Error)

		// nil chain client：重放必须在任何链上交互之前短路
		got, err := SettleClaim(context.Background(), nil, plan, "fee-signature-settled")
		require.NoError(t, err)
		assert.Equal(t, "transfer-signature-settled", got)
	})

	t.Run("No Fee Plan Keyed By Plan ID", func(t *testing.T) {
		plan := testPlan(t)
		plan.NoFee = true
		plan.Fee = FeeBreakdown{}
		require.NoError(t, plan.Sign())
		record := models.ClaimRecord{
			GrantID:           2,
			HolderAddress:     plan.HolderAddress,
			AmountClaimedBase: 80_000_000_000,
			AmountClaimed:     decimal.NewFromInt(80),
			PlanID:            plan.ID,
			TransferSignature: "transfer-signature-nofee",
			ClaimedAt:         time.Now().UTC(),
		}
		require.NoError(t, db.Create(&record).Error)

		got, err := SettleClaim(context.Background(), nil, plan, "")
		require.NoError(t, err)
		assert.Equal(t, "transfer-signature-nofee", got)
	})
}

func TestClaimableGrants(t *testing.T) {
	db := setupSettlementDB(t)
	now := time.Now().UTC()
	holder := "FGnwNsEBxHsKH4nRkK2mFLqfL6kICBg1yh4dVZWSWdRU"
	haltedHolder := "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

	token := models.TokenConfig{Mint: "So11111111111111111111111111111111111111112", Symbol: "SOL", Name: "Wrapped SOL", Decimals: 9}
	require.NoError(t, db.Create(&token).Error)

	project := models.ProjectConfig{Name: "claims-on"}
	require.NoError(t, db.Create(&project).Error)
	halted := models.ProjectConfig{Name: "claims-off"}
	require.NoError(t, db.Create(&halted).Error)
	require.NoError(t, db.Model(&halted).Update("claims_enabled", false).Error)

	makePool := func(projectID uint) models.VestingPool {
		return models.VestingPool{
			ProjectID:    projectID,
			TokenID:      token.ID,
			VaultAddress: "vault-" + fmt.Sprint(projectID),
			StartTime:    now.Add(-2 * time.Hour),
			EndTime:      now.Add(-time.Hour),
			Status:       models.PoolStatusActive,
		}
	}
	livePool := makePool(project.ID)
	require.NoError(t, db.Create(&livePool).Error)
	haltedPool := makePool(halted.ID)
	require.NoError(t, db.Create(&haltedPool).Error)

	require.NoError(t, db.Create(&models.VestingGrant{
		PoolID: livePool.ID, ProjectID: project.ID,
		HolderAddress: holder, TotalAllocation: decimal.NewFromInt(100),
	}).Error)
	require.NoError(t, db.Create(&models.VestingGrant{
		PoolID: haltedPool.ID, ProjectID: halted.ID,
		HolderAddress: holder, TotalAllocation: decimal.NewFromInt(50),
	}).Error)
	require.NoError(t, db.Create(&models.VestingGrant{
		PoolID: haltedPool.ID, ProjectID: halted.ID,
		HolderAddress: haltedHolder, TotalAllocation: decimal.NewFromInt(30),
	}).Error)

	t.Run("Keeps Only Projects With Claims Enabled", func(t *testing.T) {
		avails, err := ClaimableGrants(holder, "", now)
		require.NoError(t, err)
		require.Len(t, avails, 1)
		assert.Equal(t, project.ID, avails[0].Grant.ProjectID)
		assert.True(t, avails[0].Available.Equal(decimal.NewFromInt(100)))
	})

	t.Run("Fully Halted Holder Sees Zero Not An Error", func(t *testing.T) {
		avails, err := ClaimableGrants(haltedHolder, "", now)
		require.NoError(t, err)
		assert.Empty(t, avails)
		assert.True(t, TotalAvailable(avails).IsZero())
	})

	t.Run("Compute Side Still Rejects When Everything Is Halted", func(t *testing.T) {
		a := availability(9, haltedPool.ID, now, "50")
		a.Grant.ProjectID = halted.ID
		_, err := filterClaimableProjects([]GrantAvailability{a})
		assert.ErrorIs(t, err, ErrClaimsDisabled)
	})
}
