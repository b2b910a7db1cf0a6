// Package loans implements the loan calculation engine: fee and interest
// rules, gross/net resolution, development tranche releases, repayment
// strategies and the period-by-period payment schedule.
package loans

import (
	"time"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/shopspring/decimal"
)

// LoanType is the product a request prices.
type LoanType string

// Supported loan types.
const (
	LoanTypeBridge      LoanType = "bridge"
	LoanTypeTerm        LoanType = "term"
	LoanTypeDevelopment LoanType = "development"
)

// Valid reports whether t is a known loan type.
func (t LoanType) Valid() bool {
	switch t {
	case LoanTypeBridge, LoanTypeTerm, LoanTypeDevelopment:
		return true
	}
	return false
}

// AmountInputType says which of gross or net the caller specified.
type AmountInputType string

// Supported amount input types.
const (
	AmountInputGross AmountInputType = "gross"
	AmountInputNet   AmountInputType = "net"
)

// Valid reports whether a is a known amount input type.
func (a AmountInputType) Valid() bool {
	return a == AmountInputGross || a == AmountInputNet
}

// InterestType is the interest convention.
type InterestType string

// Supported interest conventions.
const (
	InterestSimple            InterestType = "simple"
	InterestCompoundDaily     InterestType = "compound_daily"
	InterestCompoundMonthly   InterestType = "compound_monthly"
	InterestCompoundQuarterly InterestType = "compound_quarterly"
)

// Valid reports whether i is a known interest convention.
func (i InterestType) Valid() bool {
	switch i {
	case InterestSimple, InterestCompoundDaily, InterestCompoundMonthly, InterestCompoundQuarterly:
		return true
	}
	return false
}

// capitalizationMonths is how often accrued interest joins the interest base.
// Zero means never.
func (i InterestType) capitalizationMonths() int {
	switch i {
	case InterestCompoundDaily, InterestCompoundMonthly:
		return 1
	case InterestCompoundQuarterly:
		return constants.MonthsPerQuarter
	}
	return 0
}

// DayCountBase is the divisor used to annualize a daily rate.
type DayCountBase int

// Supported day-count bases.
const (
	DayCount360 DayCountBase = 360
	DayCount365 DayCountBase = 365
)

// Valid reports whether b is a known day-count base.
func (b DayCountBase) Valid() bool {
	return b == DayCount360 || b == DayCount365
}

// RepaymentOption selects the repayment strategy.
type RepaymentOption string

// Supported repayment options.
const (
	RepaymentRetained           RepaymentOption = "retained"
	RepaymentServiceOnly        RepaymentOption = "service_only"
	RepaymentServiceAndCapital  RepaymentOption = "service_and_capital"
	RepaymentFlexiblePayment    RepaymentOption = "flexible_payment"
	RepaymentCapitalPaymentOnly RepaymentOption = "capital_payment_only"
)

// Valid reports whether o is a known repayment option.
func (o RepaymentOption) Valid() bool {
	switch o {
	case RepaymentRetained, RepaymentServiceOnly, RepaymentServiceAndCapital,
		RepaymentFlexiblePayment, RepaymentCapitalPaymentOnly:
		return true
	}
	return false
}

// PaymentTiming says whether a period's payment falls at its start or end.
type PaymentTiming string

// Supported payment timings.
const (
	PaymentInArrears PaymentTiming = "arrears"
	PaymentInAdvance PaymentTiming = "advance"
)

// Valid reports whether p is a known payment timing.
func (p PaymentTiming) Valid() bool {
	return p == PaymentInArrears || p == PaymentInAdvance
}

// PaymentFrequency is the schedule period length.
type PaymentFrequency string

// Supported payment frequencies.
const (
	PaymentMonthly   PaymentFrequency = "monthly"
	PaymentQuarterly PaymentFrequency = "quarterly"
)

// Valid reports whether f is a known payment frequency.
func (f PaymentFrequency) Valid() bool {
	return f == PaymentMonthly || f == PaymentQuarterly
}

// Months returns the period length in months.
func (f PaymentFrequency) Months() int {
	if f == PaymentQuarterly {
		return constants.MonthsPerQuarter
	}
	return 1
}

// FeeBasis is the amount a percentage fee is charged against.
type FeeBasis string

// Supported fee bases.
const (
	FeeBasisGross         FeeBasis = "gross"
	FeeBasisPropertyValue FeeBasis = "property_value"
)

// Valid reports whether b is a known fee basis.
func (b FeeBasis) Valid() bool {
	return b == FeeBasisGross || b == FeeBasisPropertyValue
}

// Fees holds the fee rules for a loan. Rates are percentages.
type Fees struct {
	ArrangementFeeRate  decimal.Decimal
	LegalFees           decimal.Decimal
	SiteVisitFee        decimal.Decimal
	TitleInsuranceRate  decimal.Decimal
	TitleInsuranceBasis FeeBasis
}

// Tranche is an explicit development capital release. Either ReleaseDate or
// MonthIndex (1-based) places it in the term.
type Tranche struct {
	Amount       decimal.Decimal
	ReleaseDate  time.Time
	MonthIndex   int
	RateOverride *decimal.Decimal
	Description  string
}

// CalculationRequest is the fully resolved, canonical input to the engine.
// It is never mutated once built.
type CalculationRequest struct {
	LoanType         LoanType
	AmountInputType  AmountInputType
	GrossAmount      decimal.Decimal
	NetAmount        decimal.Decimal
	PropertyValue    decimal.Decimal
	AnnualRate       decimal.Decimal
	LoanTerm         int
	StartDate        time.Time
	EndDate          *time.Time
	DayCountBase     DayCountBase
	InterestType     InterestType
	RepaymentOption  RepaymentOption
	Fees             Fees
	CapitalRepayment decimal.Decimal
	FlexiblePayment  decimal.Decimal
	Tranches         []Tranche
	Day1Advance      decimal.Decimal
	Currency         string
	PaymentTiming    PaymentTiming
	PaymentFrequency PaymentFrequency

	// Warnings records inputs the normalizer coerced to defaults.
	Warnings []NormalizationWarning
}

// MonthlyRate is the annual percentage rate divided by twelve.
func (r CalculationRequest) MonthlyRate() decimal.Decimal {
	return r.AnnualRate.DivRound(decimal.NewFromInt(constants.MonthsPerYear), constants.FactorPlaces)
}

// Convention returns the interest convention of the request.
func (r CalculationRequest) Convention() Convention {
	return Convention{Type: r.InterestType, Base: r.DayCountBase}
}

// WithRepaymentOption returns a copy of r using the given strategy and
// otherwise identical parameters.
func (r CalculationRequest) WithRepaymentOption(option RepaymentOption) CalculationRequest {
	r.RepaymentOption = option
	return r
}

// ScheduleRow is one period of the payment schedule.
type ScheduleRow struct {
	PeriodNumber     int
	Date             time.Time
	PeriodStart      time.Time
	PeriodEnd        time.Time
	Days             int
	OpeningBalance   decimal.Decimal
	TrancheRelease   decimal.Decimal
	InterestAmount   decimal.Decimal
	PrincipalPayment decimal.Decimal
	TotalPayment     decimal.Decimal
	ClosingBalance   decimal.Decimal
	CalculationNote  string
}

// FeeBreakdown holds the computed fees.
type FeeBreakdown struct {
	ArrangementFee decimal.Decimal
	LegalFees      decimal.Decimal
	SiteVisitFee   decimal.Decimal
	TitleInsurance decimal.Decimal
	Total          decimal.Decimal
}

// CalculationResult is the engine output. All amounts are unrounded.
type CalculationResult struct {
	LoanType         LoanType
	RepaymentOption  RepaymentOption
	InterestType     InterestType
	Currency         string
	Policy           ResolutionPolicy
	GrossAmount      decimal.Decimal
	NetAdvance       decimal.Decimal
	TotalNetAdvance  decimal.Decimal
	PropertyValue    decimal.Decimal
	AnnualRate       decimal.Decimal
	MonthlyRate      decimal.Decimal
	LoanTerm         int
	StartDate        time.Time
	MaturityDate     time.Time
	Fees             FeeBreakdown
	TotalInterest    decimal.Decimal
	RetainedInterest decimal.Decimal
	BaselineInterest decimal.Decimal
	InterestSavings  decimal.Decimal
	InterestRefund   decimal.Decimal
	TotalPayments    decimal.Decimal
	TotalReleased    decimal.Decimal
	ClosingBalance   decimal.Decimal
	LTVStart         decimal.Decimal
	LTVEnd           decimal.Decimal
	Schedule         []ScheduleRow
	Warnings         []NormalizationWarning
}
