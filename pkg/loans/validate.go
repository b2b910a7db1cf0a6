package loans

import (
	"fmt"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Validate checks the request before any schedule is built. It returns a
// *ValidationError or *UnsupportedCombinationError.
func (r CalculationRequest) Validate() error {
	if !r.LoanType.Valid() {
		return NewValidationError("loan_type", "unknown loan type %q", r.LoanType)
	}
	if !r.AmountInputType.Valid() {
		return NewValidationError("amount_input_type", "unknown amount input type %q", r.AmountInputType)
	}
	if !r.InterestType.Valid() {
		return NewValidationError("interest_type", "unknown interest type %q", r.InterestType)
	}
	if !r.RepaymentOption.Valid() {
		return NewValidationError("repayment_option", "unknown repayment option %q", r.RepaymentOption)
	}
	if r.DayCountBase != 0 && !r.DayCountBase.Valid() {
		return NewValidationError("day_count_base", "must be 360 or 365, got %d", r.DayCountBase)
	}
	if r.PaymentTiming != "" && !r.PaymentTiming.Valid() {
		return NewValidationError("payment_timing", "unknown payment timing %q", r.PaymentTiming)
	}
	if r.PaymentFrequency != "" && !r.PaymentFrequency.Valid() {
		return NewValidationError("payment_frequency", "unknown payment frequency %q", r.PaymentFrequency)
	}
	if r.Fees.TitleInsuranceBasis != "" && !r.Fees.TitleInsuranceBasis.Valid() {
		return NewValidationError("title_insurance_basis", "unknown fee basis %q", r.Fees.TitleInsuranceBasis)
	}

	if r.LoanTerm <= 0 {
		return NewValidationError("loan_term", "must be greater than zero, got %d", r.LoanTerm)
	}
	if r.LoanTerm > constants.MaxLoanTerm {
		return NewValidationError("loan_term", "must be at most %d months, got %d", constants.MaxLoanTerm, r.LoanTerm)
	}
	if r.StartDate.IsZero() {
		return NewValidationError("start_date", "is required")
	}
	if r.EndDate != nil {
		lastMonth := datetime.AddMonths(r.StartDate, r.LoanTerm-1)
		if !r.EndDate.After(lastMonth) {
			return NewValidationError("end_date", "%s must fall after %s, the start of the final month",
				datetime.Format(*r.EndDate), datetime.Format(lastMonth))
		}
	}

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"gross_amount", r.GrossAmount},
		{"net_amount", r.NetAmount},
		{"property_value", r.PropertyValue},
		{"annual_rate", r.AnnualRate},
		{"capital_repayment", r.CapitalRepayment},
		{"flexible_payment", r.FlexiblePayment},
		{"day1_advance", r.Day1Advance},
		{"arrangement_fee_percentage", r.Fees.ArrangementFeeRate},
		{"legal_fees", r.Fees.LegalFees},
		{"site_visit_fee", r.Fees.SiteVisitFee},
		{"title_insurance_rate", r.Fees.TitleInsuranceRate},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return NewValidationError(a.field, "must not be negative, got %s", a.value.String())
		}
	}

	if r.LoanType != LoanTypeDevelopment {
		if r.HasExplicitTranches() {
			return &UnsupportedCombinationError{LoanType: r.LoanType, Field: "tranches",
				Reason: "only development loans release capital in tranches"}
		}
		if r.Day1Advance.IsPositive() {
			return &UnsupportedCombinationError{LoanType: r.LoanType, Field: "day1_advance",
				Reason: "the full gross is advanced at drawdown"}
		}
		return nil
	}

	if r.AmountInputType == AmountInputNet && !r.HasExplicitTranches() && r.Day1Advance.GreaterThan(r.NetAmount) {
		return NewValidationError("day1_advance", "day 1 advance %s exceeds net amount %s",
			r.Day1Advance.StringFixed(constants.CurrencyPlaces), r.NetAmount.StringFixed(constants.CurrencyPlaces))
	}
	for i, t := range r.Tranches {
		field := fmt.Sprintf("tranches[%d]", i)
		if t.Amount.IsNegative() {
			return NewValidationError(field, "amount must not be negative, got %s", t.Amount.String())
		}
		if t.RateOverride != nil && t.RateOverride.IsNegative() {
			return NewValidationError(field, "rate must not be negative, got %s", t.RateOverride.String())
		}
		if t.ReleaseDate.IsZero() && t.MonthIndex == 0 {
			return NewValidationError(field, "a release date or month is required")
		}
	}
	return nil
}
