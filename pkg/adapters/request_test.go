package adapters

import (
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bridgePayload() map[string]interface{} {
	return map[string]interface{}{
		"loan_type":      "bridge",
		"gross_amount":   500000.0,
		"property_value": "1,000,000",
		"annual_rate":    "12%",
		"loan_term":      12.0,
		"start_date":     "2025-01-01",
	}
}

func TestNormalizeDefaults(t *testing.T) {
	req, warnings, err := NewNormalizer(NormalizerOptions{}).Normalize(bridgePayload())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, loans.LoanTypeBridge, req.LoanType)
	assert.Equal(t, loans.AmountInputGross, req.AmountInputType)
	assert.Equal(t, loans.RepaymentRetained, req.RepaymentOption)
	assert.Equal(t, loans.InterestSimple, req.InterestType)
	assert.Equal(t, loans.DayCount365, req.DayCountBase)
	assert.Equal(t, loans.PaymentInArrears, req.PaymentTiming)
	assert.Equal(t, loans.PaymentMonthly, req.PaymentFrequency)
	assert.Equal(t, loans.FeeBasisGross, req.Fees.TitleInsuranceBasis)
	assert.Equal(t, "GBP", req.Currency)
	assert.Equal(t, 12, req.LoanTerm)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), req.StartDate)
	assert.True(t, d("500000").Equal(req.GrossAmount))
	assert.True(t, d("1000000").Equal(req.PropertyValue))
	assert.True(t, d("12").Equal(req.AnnualRate))
	assert.True(t, req.Fees.LegalFees.IsZero())
	assert.Nil(t, req.EndDate)
}

func TestNormalizeDevelopmentDefaultsToCompoundDaily(t *testing.T) {
	payload := map[string]interface{}{
		"loanType":        "Development",
		"amountInputType": "net",
		"netAmount":       "800000",
		"annualRate":      10,
		"loanTerm":        "18",
		"startDate":       "2025-01-15",
		"day1Advance":     100000,
	}

	req, _, err := NewNormalizer(NormalizerOptions{}).Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, loans.LoanTypeDevelopment, req.LoanType)
	assert.Equal(t, loans.InterestCompoundDaily, req.InterestType)
	assert.True(t, d("800000").Equal(req.NetAmount))
	assert.True(t, d("100000").Equal(req.Day1Advance))
	assert.Equal(t, 18, req.LoanTerm)
}

func TestNormalizeOptions(t *testing.T) {
	payload := bridgePayload()
	req, _, err := NewNormalizer(NormalizerOptions{
		DefaultCurrency:     "eur",
		DefaultDayCountBase: loans.DayCount360,
	}).Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, "eur", req.Currency)
	assert.Equal(t, loans.DayCount360, req.DayCountBase)

	payload["currency"] = "usd"
	payload["use_360_days"] = "false"
	req, _, err = NewNormalizer(NormalizerOptions{DefaultDayCountBase: loans.DayCount360}).Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, loans.DayCount365, req.DayCountBase)
}

func TestNormalizeCoercions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		check  func(t *testing.T, req loans.CalculationRequest)
	}{
		{
			name: "monthly rate input",
			mutate: func(p map[string]interface{}) {
				delete(p, "annual_rate")
				p["rate_input_type"] = "monthly"
				p["monthly_rate"] = "0.85"
			},
			check: func(t *testing.T, req loans.CalculationRequest) {
				assert.True(t, d("10.2").Equal(req.AnnualRate), "got %s", req.AnnualRate)
			},
		},
		{
			name: "gross from percentage of property value",
			mutate: func(p map[string]interface{}) {
				delete(p, "gross_amount")
				p["gross_amount_percentage"] = "65"
			},
			check: func(t *testing.T, req loans.CalculationRequest) {
				assert.True(t, d("650000").Equal(req.GrossAmount), "got %s", req.GrossAmount)
			},
		},
		{
			name: "term derived from end date",
			mutate: func(p map[string]interface{}) {
				delete(p, "loan_term")
				p["end_date"] = "2025-09-15"
			},
			check: func(t *testing.T, req loans.CalculationRequest) {
				assert.Equal(t, 9, req.LoanTerm)
				require.NotNil(t, req.EndDate)
			},
		},
		{
			name: "aliases and spacing",
			mutate: func(p map[string]interface{}) {
				p["repayment_option"] = "Interest Only"
				p["interest_type"] = "compound-monthly"
				p["payment_timing"] = "in advance"
				p["payment_frequency"] = "Quarterly"
				p["title_insurance_basis"] = "property value"
			},
			check: func(t *testing.T, req loans.CalculationRequest) {
				assert.Equal(t, loans.RepaymentServiceOnly, req.RepaymentOption)
				assert.Equal(t, loans.InterestCompoundMonthly, req.InterestType)
				assert.Equal(t, loans.PaymentInAdvance, req.PaymentTiming)
				assert.Equal(t, loans.PaymentQuarterly, req.PaymentFrequency)
				assert.Equal(t, loans.FeeBasisPropertyValue, req.Fees.TitleInsuranceBasis)
			},
		},
		{
			name: "fees with currency symbols",
			mutate: func(p map[string]interface{}) {
				p["arrangement_fee_percentage"] = "2%"
				p["legal_fees"] = "£1,500.00"
				p["siteVisitFee"] = 450
				p["title_insurance_rate"] = 0.1
			},
			check: func(t *testing.T, req loans.CalculationRequest) {
				assert.True(t, d("2").Equal(req.Fees.ArrangementFeeRate))
				assert.True(t, d("1500").Equal(req.Fees.LegalFees))
				assert.True(t, d("450").Equal(req.Fees.SiteVisitFee))
				assert.True(t, d("0.1").Equal(req.Fees.TitleInsuranceRate))
			},
		},
		{
			name: "use 360 days",
			mutate: func(p map[string]interface{}) {
				p["use_360_days"] = true
			},
			check: func(t *testing.T, req loans.CalculationRequest) {
				assert.Equal(t, loans.DayCount360, req.DayCountBase)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bridgePayload()
			tt.mutate(payload)

			req, warnings, err := NewNormalizer(NormalizerOptions{}).Normalize(payload)
			require.NoError(t, err)
			assert.Empty(t, warnings)
			tt.check(t, req)
		})
	}
}

func TestNormalizeWarnings(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    interface{}
		fallback string
	}{
		{"unparseable term", "loan_term", "twelve", "12"},
		{"fractional term rounds up", "loan_term", "6.5", "7"},
		{"unparseable legal fees", "legal_fees", "about a grand", "0"},
		{"boolean capital repayment", "capital_repayment", true, "0"},
		{"unparseable day count flag", "use_360_days", "sometimes", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bridgePayload()
			payload[tt.key] = tt.value

			req, warnings, err := NewNormalizer(NormalizerOptions{}).Normalize(payload)
			require.NoError(t, err)
			require.Len(t, warnings, 1)
			assert.Equal(t, tt.key, warnings[0].Field)
			assert.Equal(t, tt.fallback, warnings[0].Default)
			assert.Equal(t, warnings, req.Warnings)
		})
	}
}

func TestNormalizeValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		field  string
	}{
		{"missing loan type", func(p map[string]interface{}) { delete(p, "loan_type") }, "loan_type"},
		{"unknown loan type", func(p map[string]interface{}) { p["loan_type"] = "mezzanine" }, "loan_type"},
		{"unknown repayment option", func(p map[string]interface{}) { p["repayment_option"] = "balloon" }, "repayment_option"},
		{"missing gross", func(p map[string]interface{}) { delete(p, "gross_amount") }, "gross_amount"},
		{"missing net", func(p map[string]interface{}) { p["amount_input_type"] = "net" }, "net_amount"},
		{"missing rate", func(p map[string]interface{}) { delete(p, "annual_rate") }, "annual_rate"},
		{"missing start", func(p map[string]interface{}) { delete(p, "start_date") }, "start_date"},
		{"bad start", func(p map[string]interface{}) { p["start_date"] = "01/02/2025" }, "start_date"},
		{"missing term and end", func(p map[string]interface{}) { delete(p, "loan_term") }, "loan_term"},
		{"zero term", func(p map[string]interface{}) { p["loan_term"] = 0 }, "loan_term"},
		{"term above maximum", func(p map[string]interface{}) { p["loan_term"] = 601 }, "loan_term"},
		{"term far above maximum", func(p map[string]interface{}) { p["loan_term"] = "100000000000" }, "loan_term"},
		{"term beyond int64", func(p map[string]interface{}) { p["loan_term"] = "1e30" }, "loan_term"},
		{"end date beyond maximum term", func(p map[string]interface{}) {
			delete(p, "loan_term")
			p["end_date"] = "2200-01-01"
		}, "loan_term"},
		{"negative rate", func(p map[string]interface{}) { p["annual_rate"] = -2 }, "annual_rate"},
		{"negative gross", func(p map[string]interface{}) { p["gross_amount"] = "-1" }, "gross_amount"},
		{"bad day count base", func(p map[string]interface{}) { p["day_count_base"] = 364 }, "day_count_base"},
		{"percentage without property", func(p map[string]interface{}) {
			delete(p, "gross_amount")
			delete(p, "property_value")
			p["gross_amount_percentage"] = 70
		}, "property_value"},
		{"tranches not a list", func(p map[string]interface{}) {
			p["loan_type"] = "development"
			p["tranches"] = "monthly"
		}, "tranches"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bridgePayload()
			tt.mutate(payload)

			_, _, err := NewNormalizer(NormalizerOptions{}).Normalize(payload)
			var validationErr *loans.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestNormalizeUnsupportedCombination(t *testing.T) {
	payload := bridgePayload()
	payload["tranches"] = []interface{}{
		map[string]interface{}{"amount": 1000, "month": 2},
	}

	_, _, err := NewNormalizer(NormalizerOptions{}).Normalize(payload)
	var combinationErr *loans.UnsupportedCombinationError
	require.True(t, errors.As(err, &combinationErr), "got %v", err)
	assert.Equal(t, "tranches", combinationErr.Field)
}

func TestNormalizeLegacyCompatibility(t *testing.T) {
	payload := bridgePayload()
	payload["loan_type"] = "mezzanine"
	payload["repayment_option"] = "balloon"
	payload["interest_type"] = "continuous"

	req, warnings, err := NewNormalizer(NormalizerOptions{LegacyCompatibility: true}).Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, loans.LoanTypeBridge, req.LoanType)
	assert.Equal(t, loans.RepaymentRetained, req.RepaymentOption)
	assert.Equal(t, loans.InterestSimple, req.InterestType)

	require.Len(t, warnings, 3)
	assert.Equal(t, "loan_type", warnings[0].Field)
	assert.Equal(t, "mezzanine", warnings[0].Value)
	assert.Equal(t, "bridge", warnings[0].Default)
	assert.Equal(t, "repayment_option", warnings[1].Field)
	assert.Equal(t, "interest_type", warnings[2].Field)
}

func TestNormalizeTranches(t *testing.T) {
	payload := map[string]interface{}{
		"loan_type":    "development",
		"annual_rate":  9,
		"loan_term":    12,
		"start_date":   "2025-01-01",
		"day1_advance": "50000",
		"tranches": []interface{}{
			map[string]interface{}{"amount": "100,000", "date": "2025-03-01"},
			map[string]interface{}{"amount": 75000, "month": 6, "rate": "11"},
			map[string]interface{}{"amount": "lots", "releaseDate": "2025-09-01", "description": "roof"},
		},
	}

	req, warnings, err := NewNormalizer(NormalizerOptions{}).Normalize(payload)
	require.NoError(t, err)
	require.Len(t, req.Tranches, 3)

	assert.True(t, d("100000").Equal(req.Tranches[0].Amount))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), req.Tranches[0].ReleaseDate)
	assert.Nil(t, req.Tranches[0].RateOverride)

	assert.Equal(t, 6, req.Tranches[1].MonthIndex)
	require.NotNil(t, req.Tranches[1].RateOverride)
	assert.True(t, d("11").Equal(*req.Tranches[1].RateOverride))

	assert.Equal(t, "roof", req.Tranches[2].Description)
	assert.True(t, req.Tranches[2].Amount.IsZero())
	require.Len(t, warnings, 1)
	assert.Equal(t, "tranches[2].amount", warnings[0].Field)

	result, err := loans.Calculate(req)
	require.NoError(t, err)
	assert.True(t, d("225000").Equal(result.TotalNetAdvance), "got %s", result.TotalNetAdvance)
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"gross_amount":               "grossAmount",
		"day1_advance":               "day1Advance",
		"use_360_days":               "use360Days",
		"arrangement_fee_percentage": "arrangementFeePercentage",
		"currency":                   "currency",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, camelCase(input), input)
	}
}
