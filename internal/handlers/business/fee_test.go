package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestingcontrol/internal/models"
)

const (
	testPlatformVault = "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"
	testProjectVault  = "9B5XszUGdMaxCZ7uSQhPzdks5ZQSmWxrmzCSvtJ6Ns6g"
)

func TestBuildFeeBreakdown(t *testing.T) {
	t.Run("Platform Plus Project Stay Separate", func(t *testing.T) {
		pool := &models.VestingPool{
			ID:                 1,
			ProjectFeeLamports: 500_000,
			ProjectFeeVault:    testProjectVault,
		}
		fee := BuildFeeBreakdown(1_000_000, testPlatformVault, []*models.VestingPool{pool})

		assert.Equal(t, uint64(1_500_000), fee.Total())
		assert.Equal(t, uint64(1_000_000), fee.PlatformLamports)
		require.Len(t, fee.ProjectFees, 1)
		assert.Equal(t, uint64(500_000), fee.ProjectFees[0].Lamports)
		assert.Equal(t, testProjectVault, fee.ProjectFees[0].Vault)
	})

	t.Run("Pool Without Fee Adds No Leg", func(t *testing.T) {
		pool := &models.VestingPool{ID: 1}
		fee := BuildFeeBreakdown(1_000_000, testPlatformVault, []*models.VestingPool{pool})
		assert.Empty(t, fee.ProjectFees)
		assert.Equal(t, uint64(1_000_000), fee.Total())
	})

	t.Run("Duplicate Pools Counted Once", func(t *testing.T) {
		pool := &models.VestingPool{
			ID:                 3,
			ProjectFeeLamports: 200_000,
			ProjectFeeVault:    testProjectVault,
		}
		fee := BuildFeeBreakdown(0, "", []*models.VestingPool{pool, pool})
		require.Len(t, fee.ProjectFees, 1)
		assert.Equal(t, uint64(200_000), fee.Total())
	})

	t.Run("No Fee Anywhere Totals Zero", func(t *testing.T) {
		fee := BuildFeeBreakdown(0, "", []*models.VestingPool{{ID: 1}})
		assert.Equal(t, uint64(0), fee.Total())
	})

	t.Run("Platform Fee Without Vault Is Dropped", func(t *testing.T) {
		// 没有收款地址就不能收费，Total 必须和实际转账保持一致
		fee := BuildFeeBreakdown(1_000_000, "", nil)
		assert.Equal(t, uint64(0), fee.PlatformLamports)
		assert.Equal(t, uint64(0), fee.Total())
		transfers, err := fee.Transfers()
		require.NoError(t, err)
		assert.Empty(t, transfers)
	})
}

func TestFeeBreakdownTransfers(t *testing.T) {
	t.Run("One Transfer Per Leg", func(t *testing.T) {
		fee := FeeBreakdown{
			PlatformLamports: 1_000_000,
			PlatformVault:    testPlatformVault,
			ProjectFees: []ProjectFeeLeg{
				{PoolID: 1, Lamports: 500_000, Vault: testProjectVault},
			},
		}
		transfers, err := fee.Transfers()
		require.NoError(t, err)
		require.Len(t, transfers, 2)
		assert.Equal(t, uint64(1_000_000), transfers[0].Lamports)
		assert.Equal(t, uint64(500_000), transfers[1].Lamports)
	})

	t.Run("Zero Legs Dropped", func(t *testing.T) {
		fee := FeeBreakdown{
			PlatformLamports: 0,
			PlatformVault:    testPlatformVault,
			ProjectFees: []ProjectFeeLeg{
				{PoolID: 1, Lamports: 0, Vault: testProjectVault},
			},
		}
		transfers, err := fee.Transfers()
		require.NoError(t, err)
		assert.Empty(t, transfers)
	})

	t.Run("Invalid Vault Address Rejected", func(t *testing.T) {
		fee := FeeBreakdown{PlatformLamports: 100, PlatformVault: "not-an-address"}
		_, err := fee.Transfers()
		assert.Error(t, err)
	})
}
