// Package money converts between Actual's signed minor-unit integers and
// Spliit's major-unit decimals.
package money

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// FromMinorUnits converts minor units (cents) to a major-unit decimal.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// ToMinorUnits converts a major-unit decimal to minor units, rounding half
// away from zero. The rounding is deterministic: the same input always yields
// the same result.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// Half returns half of a signed minor-unit amount, rounded half away from
// zero on the minor unit. Used for the 50/50 deposit mirror.
func Half(cents int64) int64 {
	return decimal.NewFromInt(cents).DivRound(two, 0).IntPart()
}
