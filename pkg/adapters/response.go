package adapters

import (
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/iwvelando/loan-engine/pkg/format"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/shopspring/decimal"
)

// Response is the JSON body returned to existing callers. Every field is
// present under its snake_case name and its camelCase alias.
type Response map[string]interface{}

// BuildResponse translates a result into the response contract. Amounts are
// raw decimals; the formatted blocks hold currency strings for display.
func BuildResponse(result loans.CalculationResult) Response {
	currency := result.Currency
	fields := []field{
		{"loan_type", string(result.LoanType)},
		{"repayment_option", string(result.RepaymentOption)},
		{"interest_type", string(result.InterestType)},
		{"currency", currency},
		{"resolution_policy", string(result.Policy)},
		{"gross_amount", result.GrossAmount},
		{"net_advance", result.NetAdvance},
		{"total_net_advance", result.TotalNetAdvance},
		{"property_value", result.PropertyValue},
		{"annual_rate", result.AnnualRate},
		{"monthly_rate", result.MonthlyRate},
		{"loan_term", result.LoanTerm},
		{"start_date", datetime.Format(result.StartDate)},
		{"maturity_date", datetime.Format(result.MaturityDate)},
		{"arrangement_fee", result.Fees.ArrangementFee},
		{"legal_fees", result.Fees.LegalFees},
		{"site_visit_fee", result.Fees.SiteVisitFee},
		{"title_insurance", result.Fees.TitleInsurance},
		{"total_fees", result.Fees.Total},
		{"total_interest", result.TotalInterest},
		{"retained_interest", result.RetainedInterest},
		{"baseline_interest", result.BaselineInterest},
		{"interest_savings", result.InterestSavings},
		{"interest_refund", result.InterestRefund},
		{"total_payments", result.TotalPayments},
		{"total_released", result.TotalReleased},
		{"closing_balance", result.ClosingBalance},
		{"ltv_start", result.LTVStart},
		{"ltv_end", result.LTVEnd},
		{"formatted", withAliases([]field{
			{"gross_amount", format.Currency(result.GrossAmount, currency)},
			{"net_advance", format.Currency(result.NetAdvance, currency)},
			{"total_net_advance", format.Currency(result.TotalNetAdvance, currency)},
			{"total_fees", format.Currency(result.Fees.Total, currency)},
			{"total_interest", format.Currency(result.TotalInterest, currency)},
			{"retained_interest", format.Currency(result.RetainedInterest, currency)},
			{"interest_savings", format.Currency(result.InterestSavings, currency)},
			{"closing_balance", format.Currency(result.ClosingBalance, currency)},
			{"ltv_start", format.Percent(result.LTVStart)},
			{"ltv_end", format.Percent(result.LTVEnd)},
		})},
		{"payment_schedule", scheduleRows(result.Schedule, currency)},
		{"warnings", warnings(result.Warnings)},
	}
	return Response(withAliases(fields))
}

type field struct {
	key   string
	value interface{}
}

// withAliases sets each field under its snake_case key and camelCase alias.
func withAliases(fields []field) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)*2)
	for _, f := range fields {
		out[f.key] = f.value
		out[camelCase(f.key)] = f.value
	}
	return out
}

func scheduleRows(rows []loans.ScheduleRow, currency string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		out = append(out, withAliases([]field{
			{"period_number", row.PeriodNumber},
			{"date", datetime.Format(row.Date)},
			{"period_start", datetime.Format(row.PeriodStart)},
			{"period_end", datetime.Format(row.PeriodEnd)},
			{"days", row.Days},
			{"opening_balance", row.OpeningBalance},
			{"tranche_release", row.TrancheRelease},
			{"interest_amount", row.InterestAmount},
			{"principal_payment", row.PrincipalPayment},
			{"total_payment", row.TotalPayment},
			{"closing_balance", row.ClosingBalance},
			{"calculation_note", row.CalculationNote},
			{"formatted", withAliases(formattedRow(row, currency))},
		}))
	}
	return out
}

func formattedRow(row loans.ScheduleRow, currency string) []field {
	amounts := []struct {
		key   string
		value decimal.Decimal
	}{
		{"opening_balance", row.OpeningBalance},
		{"tranche_release", row.TrancheRelease},
		{"interest_amount", row.InterestAmount},
		{"principal_payment", row.PrincipalPayment},
		{"total_payment", row.TotalPayment},
		{"closing_balance", row.ClosingBalance},
	}
	fields := make([]field, 0, len(amounts))
	for _, a := range amounts {
		fields = append(fields, field{a.key, format.Currency(a.value, currency)})
	}
	return fields
}

func warnings(in []loans.NormalizationWarning) []loans.NormalizationWarning {
	if in == nil {
		return []loans.NormalizationWarning{}
	}
	return in
}
