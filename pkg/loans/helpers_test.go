package loans

import (
	"testing"
	"time"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	return datetime.MustParseTime(constants.DateLayout, s)
}

func assertDecimal(t *testing.T, expected, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, expected.Equal(actual), append([]interface{}{"expected %s, got %s", expected, actual}, msgAndArgs...)...)
}

func assertWithinPenny(t *testing.T, expected, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	tolerance := d(constants.CurrencyTolerance)
	assert.True(t, expected.Sub(actual).Abs().LessThanOrEqual(tolerance),
		append([]interface{}{"expected %s within a penny, got %s", expected, actual}, msgAndArgs...)...)
}

// bridgeRequest is a 500,000 gross, 12% simple, 12 month retained bridge loan.
func bridgeRequest() CalculationRequest {
	return CalculationRequest{
		LoanType:         LoanTypeBridge,
		AmountInputType:  AmountInputGross,
		GrossAmount:      d("500000"),
		PropertyValue:    d("1000000"),
		AnnualRate:       d("12"),
		LoanTerm:         12,
		StartDate:        date("2025-01-01"),
		DayCountBase:     DayCount365,
		InterestType:     InterestSimple,
		RepaymentOption:  RepaymentRetained,
		Currency:         constants.DefaultCurrency,
		PaymentTiming:    PaymentInArrears,
		PaymentFrequency: PaymentMonthly,
	}
}

// developmentRequest is an 800,000 net, 100,000 day 1, 18 month development
// loan compounding daily.
func developmentRequest() CalculationRequest {
	return CalculationRequest{
		LoanType:         LoanTypeDevelopment,
		AmountInputType:  AmountInputNet,
		NetAmount:        d("800000"),
		PropertyValue:    d("1500000"),
		AnnualRate:       d("10"),
		LoanTerm:         18,
		StartDate:        date("2025-01-15"),
		DayCountBase:     DayCount365,
		InterestType:     InterestCompoundDaily,
		RepaymentOption:  RepaymentRetained,
		Day1Advance:      d("100000"),
		Currency:         constants.DefaultCurrency,
		PaymentTiming:    PaymentInArrears,
		PaymentFrequency: PaymentMonthly,
	}
}

// assertBalanceIdentity checks every row reconciles and rows chain.
func assertBalanceIdentity(t *testing.T, req CalculationRequest, rows []ScheduleRow) {
	t.Helper()
	capitalizes := NewStrategy(req).CapitalizesInterest()
	for i, row := range rows {
		expected := row.OpeningBalance.Add(row.TrancheRelease).Sub(row.PrincipalPayment)
		if capitalizes {
			expected = expected.Add(row.InterestAmount)
		}
		assertDecimal(t, expected, row.ClosingBalance, "period %d closing balance", row.PeriodNumber)
		if i > 0 {
			assertDecimal(t, rows[i-1].ClosingBalance, row.OpeningBalance, "period %d opening balance", row.PeriodNumber)
		}
	}
}
