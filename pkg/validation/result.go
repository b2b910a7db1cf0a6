package validation

import (
	"fmt"

	"github.com/iwvelando/loan-engine/pkg/format"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/shopspring/decimal"
)

// CheckResult returns advisory warnings for a calculated loan. None of them
// invalidate the result.
func CheckResult(name string, result loans.CalculationResult, maxLTV decimal.Decimal) []string {
	var warnings []string

	if maxLTV.IsPositive() {
		if result.LTVStart.GreaterThan(maxLTV) {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' starts above the %s LTV ceiling (%s)",
				name, format.Percent(maxLTV), format.Percent(result.LTVStart)))
		}
		if result.LTVEnd.GreaterThan(maxLTV) && !result.LTVEnd.Equal(result.LTVStart) {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' ends above the %s LTV ceiling (%s)",
				name, format.Percent(maxLTV), format.Percent(result.LTVEnd)))
		}
	}

	if !result.TotalNetAdvance.IsPositive() {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' advances nothing to the borrower (net %s)",
			name, format.Currency(result.TotalNetAdvance, result.Currency)))
	}

	if result.ClosingBalance.IsPositive() && result.RepaymentOption == loans.RepaymentServiceAndCapital {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' leaves %s outstanding at maturity",
			name, format.Currency(result.ClosingBalance, result.Currency)))
	}

	return warnings
}
