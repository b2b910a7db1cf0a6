package loans

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/iwvelando/loan-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	one             = decimal.NewFromInt(1)
	monthsPerYear   = decimal.NewFromInt(constants.MonthsPerYear)
	quartersPerYear = decimal.NewFromInt(constants.QuartersPerYear)
)

// Convention pairs an interest type with its day-count base.
type Convention struct {
	Type InterestType
	Base DayCountBase
}

// Span is an accrual interval measured in whole calendar months plus
// residual days.
type Span struct {
	Start  time.Time
	End    time.Time
	Months int
	Days   int
}

// NewSpan measures the interval from start to end.
func NewSpan(start, end time.Time) Span {
	months, days := datetime.MonthsAndDays(start, end)
	return Span{Start: start, End: end, Months: months, Days: days}
}

// Empty reports whether the span covers no time.
func (s Span) Empty() bool {
	return s.Months <= 0 && s.Days <= 0
}

// ElapsedDays returns the actual number of calendar days covered.
func (s Span) ElapsedDays() int {
	if s.Empty() {
		return 0
	}
	return datetime.DaysBetween(s.Start, s.End)
}

func (s Span) String() string {
	switch {
	case s.Empty():
		return "0 days"
	case s.Days == 0:
		return fmt.Sprintf("%d month(s)", s.Months)
	case s.Months == 0:
		return fmt.Sprintf("%d day(s)", s.Days)
	}
	return fmt.Sprintf("%d month(s) %d day(s)", s.Months, s.Days)
}

// Interest computes interest on balance at annualRate percent from start to
// end under the given convention.
func Interest(balance, annualRate decimal.Decimal, start, end time.Time, convention Convention) decimal.Decimal {
	return InterestForSpan(balance, annualRate, NewSpan(start, end), convention)
}

// InterestForSpan computes interest over a pre-measured span. Non-positive
// balances and rates, and empty spans, accrue nothing.
func InterestForSpan(balance, annualRate decimal.Decimal, span Span, convention Convention) decimal.Decimal {
	if !balance.IsPositive() || !annualRate.IsPositive() || span.Empty() {
		return decimal.Zero
	}
	rate := mathutil.PercentToRate(annualRate)
	base := decimal.NewFromInt(int64(convention.dayCountBase()))
	months := decimal.NewFromInt(int64(span.Months))
	days := decimal.NewFromInt(int64(span.Days))

	var interest decimal.Decimal
	switch convention.Type {
	case InterestCompoundDaily:
		daily := one.Add(rate.DivRound(base, constants.FactorPlaces))
		factor := mathutil.PowInt(daily, int64(span.ElapsedDays())).Sub(one)
		interest = balance.Mul(factor)
	case InterestCompoundMonthly:
		monthly := one.Add(rate.DivRound(monthsPerYear, constants.FactorPlaces))
		factor := mathutil.PowInt(monthly, int64(span.Months)).
			Mul(residualDays(rate, days, base)).
			Round(constants.FactorPlaces).
			Sub(one)
		interest = balance.Mul(factor)
	case InterestCompoundQuarterly:
		quarterly := one.Add(rate.DivRound(quartersPerYear, constants.FactorPlaces))
		quarters := int64(span.Months / constants.MonthsPerQuarter)
		residualMonths := decimal.NewFromInt(int64(span.Months % constants.MonthsPerQuarter))
		factor := mathutil.PowInt(quarterly, quarters).
			Mul(one.Add(rate.Mul(residualMonths).DivRound(monthsPerYear, constants.FactorPlaces))).
			Mul(residualDays(rate, days, base)).
			Round(constants.FactorPlaces).
			Sub(one)
		interest = balance.Mul(factor)
	default:
		// Simple: dividing last keeps whole-month accruals exact.
		interest = balance.Mul(rate).Mul(months).DivRound(monthsPerYear, constants.FactorPlaces).
			Add(balance.Mul(rate).Mul(days).DivRound(base, constants.FactorPlaces))
	}
	return interest.Round(constants.InterestPlaces)
}

func residualDays(rate, days, base decimal.Decimal) decimal.Decimal {
	return one.Add(rate.Mul(days).DivRound(base, constants.FactorPlaces))
}

func (c Convention) dayCountBase() DayCountBase {
	if c.Base.Valid() {
		return c.Base
	}
	return DayCount365
}
