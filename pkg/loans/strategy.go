package loans

import (
	"fmt"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Strategy applies a repayment option to each schedule period. It is
// selected once per request and carries no state between periods.
type Strategy struct {
	Option           RepaymentOption
	CapitalRepayment decimal.Decimal
	FlexiblePayment  decimal.Decimal
}

// PeriodInput is what a strategy sees for one period.
type PeriodInput struct {
	Opening  decimal.Decimal
	Release  decimal.Decimal
	Interest decimal.Decimal
}

// PeriodOutcome is the strategy's decision for one period.
type PeriodOutcome struct {
	Principal decimal.Decimal
	Payment   decimal.Decimal
	Note      string
}

// NewStrategy returns the strategy selected by the request.
func NewStrategy(req CalculationRequest) Strategy {
	return Strategy{
		Option:           req.RepaymentOption,
		CapitalRepayment: mathutil.NonNegative(req.CapitalRepayment),
		FlexiblePayment:  mathutil.NonNegative(req.FlexiblePayment),
	}
}

// CapitalizesInterest reports whether interest is added to the balance.
func (s Strategy) CapitalizesInterest() bool {
	return s.Option == RepaymentRetained || s.Option == RepaymentFlexiblePayment
}

// RetainsInterest reports whether interest is deducted from the advance up
// front.
func (s Strategy) RetainsInterest() bool {
	return s.Option == RepaymentRetained || s.Option == RepaymentCapitalPaymentOnly
}

// ServicesInterest reports whether interest is paid in cash each period.
func (s Strategy) ServicesInterest() bool {
	return s.Option == RepaymentServiceOnly || s.Option == RepaymentServiceAndCapital
}

// PaysDown reports whether the strategy reduces principal during the term.
func (s Strategy) PaysDown() bool {
	switch s.Option {
	case RepaymentServiceAndCapital, RepaymentFlexiblePayment, RepaymentCapitalPaymentOnly:
		return true
	}
	return false
}

// Truncates reports whether the schedule ends early once the balance is
// cleared.
func (s Strategy) Truncates() bool {
	return s.Option == RepaymentServiceAndCapital
}

// Settle decides the principal and cash payment for a period. Principal is
// never more than the balance available to repay.
func (s Strategy) Settle(in PeriodInput) PeriodOutcome {
	available := mathutil.NonNegative(in.Opening.Add(in.Release))
	switch s.Option {
	case RepaymentServiceOnly:
		return PeriodOutcome{
			Principal: decimal.Zero,
			Payment:   in.Interest,
			Note:      "interest serviced",
		}
	case RepaymentServiceAndCapital:
		principal := mathutil.Min(s.CapitalRepayment, available)
		return PeriodOutcome{
			Principal: principal,
			Payment:   in.Interest.Add(principal),
			Note:      fmt.Sprintf("interest serviced, capital %s repaid", principal.StringFixed(constants.CurrencyPlaces)),
		}
	case RepaymentFlexiblePayment:
		principal := mathutil.Min(s.FlexiblePayment, available.Add(in.Interest))
		return PeriodOutcome{
			Principal: principal,
			Payment:   principal,
			Note:      fmt.Sprintf("interest capitalized, payment %s applied", principal.StringFixed(constants.CurrencyPlaces)),
		}
	case RepaymentCapitalPaymentOnly:
		principal := mathutil.Min(s.CapitalRepayment, available)
		return PeriodOutcome{
			Principal: principal,
			Payment:   principal,
			Note:      fmt.Sprintf("interest retained, capital %s repaid", principal.StringFixed(constants.CurrencyPlaces)),
		}
	}
	return PeriodOutcome{
		Principal: decimal.Zero,
		Payment:   decimal.Zero,
		Note:      "interest retained and capitalized",
	}
}
