package invoice

import (
	"github.com/shopspring/decimal"
)

// MinorUnits converts a currency amount to the processor's integer
// representation (e.g. 19.99 -> 1999). The shift is exact decimal
// arithmetic: amounts are assumed to already be at two-decimal currency
// precision, and all downstream comparisons happen in minor units.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}
