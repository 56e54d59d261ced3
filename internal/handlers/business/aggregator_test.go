package business

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestingcontrol/internal/models"
)

func availability(grantID uint, poolID uint, createdAt time.Time, available string) GrantAvailability {
	amount, _ := decimal.NewFromString(available)
	return GrantAvailability{
		Grant: &models.VestingGrant{
			ID:        grantID,
			CreatedAt: createdAt,
		},
		Pool:      &models.VestingPool{ID: poolID},
		Available: amount,
	}
}

func TestTotalAvailable(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Sums Across Grants", func(t *testing.T) {
		avails := []GrantAvailability{
			availability(1, 1, base, "60"),
			availability(2, 1, base.Add(time.Hour), "50"),
		}
		assert.True(t, TotalAvailable(avails).Equal(decimal.NewFromInt(110)))
	})

	t.Run("Floors To Two Decimals", func(t *testing.T) {
		// 33.333333 + 66.666666 = 99.999999 → 99.99, never 100.00
		avails := []GrantAvailability{
			availability(1, 1, base, "33.333333"),
			availability(2, 1, base.Add(time.Hour), "66.666666"),
		}
		total := TotalAvailable(avails)
		assert.Equal(t, "99.99", total.StringFixed(2))
	})

	t.Run("Empty Is Zero", func(t *testing.T) {
		assert.True(t, TotalAvailable(nil).IsZero())
	})
}

func TestBuildDistribution(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Single Grant Covers Request", func(t *testing.T) {
		avails := []GrantAvailability{availability(1, 1, base, "100")}
		entries, err := BuildDistribution(avails, decimal.NewFromInt(40))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint(1), entries[0].GrantID)
		assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(40)))
	})

	t.Run("Drains Oldest Grant First", func(t *testing.T) {
		avails := []GrantAvailability{
			availability(2, 1, base.Add(time.Hour), "50"),
			availability(1, 1, base, "60"),
		}
		entries, err := BuildDistribution(avails, decimal.NewFromInt(80))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, uint(1), entries[0].GrantID)
		assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(60)))
		assert.Equal(t, uint(2), entries[1].GrantID)
		assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(20)))
	})

	t.Run("Ties Break By Grant ID", func(t *testing.T) {
		avails := []GrantAvailability{
			availability(7, 2, base, "30"),
			availability(3, 1, base, "30"),
		}
		entries, err := BuildDistribution(avails, decimal.NewFromInt(40))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, uint(3), entries[0].GrantID)
		assert.Equal(t, uint(7), entries[1].GrantID)
	})

	t.Run("Entries Sum To Request", func(t *testing.T) {
		avails := []GrantAvailability{
			availability(1, 1, base, "12.345678"),
			availability(2, 2, base.Add(time.Minute), "7.654321"),
			availability(3, 2, base.Add(2*time.Minute), "5"),
		}
		requested := decimal.NewFromFloat(19.99)
		entries, err := BuildDistribution(avails, requested)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, e := range entries {
			sum = sum.Add(e.Amount)
		}
		assert.True(t, sum.Equal(requested), "got %s", sum)
	})

	t.Run("Skips Exhausted Grants", func(t *testing.T) {
		avails := []GrantAvailability{
			availability(1, 1, base, "0"),
			availability(2, 1, base.Add(time.Hour), "25"),
		}
		entries, err := BuildDistribution(avails, decimal.NewFromInt(10))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint(2), entries[0].GrantID)
	})

	t.Run("Rejects Request Over Total", func(t *testing.T) {
		avails := []GrantAvailability{availability(1, 1, base, "99.999")}
		// floored total is 99.99, so 99.999 itself is over-ask
		_, err := BuildDistribution(avails, decimal.NewFromFloat(99.999))
		assert.ErrorIs(t, err, ErrRequestExceedsAvailable)
	})

	t.Run("Rejects Zero And Negative", func(t *testing.T) {
		avails := []GrantAvailability{availability(1, 1, base, "100")}
		_, err := BuildDistribution(avails, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = BuildDistribution(avails, decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}
