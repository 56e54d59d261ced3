package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a display amount to the token's integer base units,
// flooring any fraction below one base unit. Negative amounts are rejected.
func ToBaseUnits(amount decimal.Decimal, decimals int) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("negative amount: %s", amount.String())
	}

	shifted := amount.Shift(int32(decimals)).Floor()
	bi := shifted.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows base units at %d decimals", amount.String(), decimals)
	}
	return bi.Uint64(), nil
}

// FromBaseUnits converts integer base units back to a display amount.
func FromBaseUnits(base uint64, decimals int) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(base), -int32(decimals))
}

// FloorTo2dp floors to two decimal places. Displayed/claimable totals are
// always floored, never rounded up, so the shown total can never exceed the
// true entitlement.
func FloorTo2dp(amount decimal.Decimal) decimal.Decimal {
	return amount.Shift(2).Floor().Shift(-2)
}
