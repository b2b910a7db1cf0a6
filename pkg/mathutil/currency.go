// Package mathutil provides common decimal utility functions for money and rates.
package mathutil

import (
	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	hundred   = decimal.NewFromInt(constants.PercentageMultiplier)
	tolerance = decimal.RequireFromString(constants.CurrencyTolerance)
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for presentation and logical comparisons only.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// IsZero checks if a value is effectively zero (within one penny)
func IsZero(val decimal.Decimal) bool {
	return val.Abs().LessThanOrEqual(tolerance)
}

// IsPositive checks if a value is positive (greater than one penny)
func IsPositive(val decimal.Decimal) bool {
	return val.GreaterThan(tolerance)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tol decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tol)
}

// Min returns the minimum of two values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// NonNegative floors a value at zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// CalculatePercentage calculates what percentage value is of total. A zero
// total yields zero rather than a division error.
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Mul(hundred).DivRound(total, constants.FactorPlaces)
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage).DivRound(hundred, constants.FactorPlaces)
}

// PercentToRate converts a percentage such as 12 into the fraction 0.12.
func PercentToRate(percentage decimal.Decimal) decimal.Decimal {
	return percentage.DivRound(hundred, constants.FactorPlaces)
}

// Div divides at factor precision.
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, constants.FactorPlaces)
}

// PowInt raises base to a non-negative integer power by repeated squaring,
// holding every intermediate product at factor precision so digit counts stay
// bounded over long terms.
func PowInt(base decimal.Decimal, exp int64) decimal.Decimal {
	result := decimal.NewFromInt(1)
	if exp <= 0 {
		return result
	}
	b := base
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(b).Round(constants.FactorPlaces)
		}
		exp >>= 1
		if exp > 0 {
			b = b.Mul(b).Round(constants.FactorPlaces)
		}
	}
	return result
}

// Sum adds a list of values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
