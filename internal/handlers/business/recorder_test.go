package business

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApportionFee(t *testing.T) {
	t.Run("Proportional Floor", func(t *testing.T) {
		// 1_500_000 lamports over 80 base units: a 60-unit share gets 3/4
		assert.Equal(t, uint64(1_125_000), apportionFee(1_500_000, 60, 80))
		assert.Equal(t, uint64(375_000), apportionFee(1_500_000, 20, 80))
	})

	t.Run("Shares Never Exceed Total", func(t *testing.T) {
		cases := []struct {
			fee   uint64
			bases []uint64
		}{
			{fee: 1_000_001, bases: []uint64{3, 7, 11}},
			{fee: 999, bases: []uint64{1, 1, 1}},
			{fee: 5, bases: []uint64{1_000_000_000, 1}},
		}
		for _, c := range cases {
			var totalBase, sum uint64
			for _, b := range c.bases {
				totalBase += b
			}
			for _, b := range c.bases {
				sum += apportionFee(c.fee, b, totalBase)
			}
			assert.LessOrEqual(t, sum, c.fee)
		}
	})

	t.Run("Large Base Units Do Not Overflow", func(t *testing.T) {
		totalBase := uint64(math.MaxUint64)
		share := apportionFee(2_000_000, totalBase/2, totalBase)
		assert.InDelta(t, 1_000_000, float64(share), 1)
	})

	t.Run("Zero Total Base", func(t *testing.T) {
		assert.Equal(t, uint64(0), apportionFee(100, 10, 0))
	})
}
