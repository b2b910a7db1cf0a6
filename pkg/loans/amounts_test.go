package loans

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionPolicyFor(t *testing.T) {
	netBridge := bridgeRequest()
	netBridge.AmountInputType = AmountInputNet

	compoundNetBridge := netBridge
	compoundNetBridge.InterestType = InterestCompoundDaily

	serviceCompoundNet := compoundNetBridge.WithRepaymentOption(RepaymentServiceOnly)

	end := date("2025-12-20")
	endDateNet := netBridge
	endDateNet.EndDate = &end

	grossDevelopment := developmentRequest()
	grossDevelopment.AmountInputType = AmountInputGross

	explicitGross := grossDevelopment
	explicitGross.Tranches = []Tranche{{Amount: d("1000"), MonthIndex: 2}}

	tests := []struct {
		name     string
		req      CalculationRequest
		expected ResolutionPolicy
	}{
		{"gross bridge", bridgeRequest(), PolicyGrossAuthoritative},
		{"net simple retained bridge", netBridge, PolicyClosedForm},
		{"net compound retained bridge", compoundNetBridge, PolicyNetAuthoritative},
		{"net compound serviced bridge", serviceCompoundNet, PolicyClosedForm},
		{"net bridge with end date", endDateNet, PolicyNetAuthoritative},
		{"net development", developmentRequest(), PolicyNetAuthoritative},
		{"gross development", grossDevelopment, PolicyGrossAuthoritative},
		{"gross development with tranches", explicitGross, PolicyNetAuthoritative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolutionPolicyFor(tt.req))
		})
	}
}

func TestResolveAmountsGross(t *testing.T) {
	tests := []struct {
		name   string
		option RepaymentOption
		fees   Fees
		net    string
	}{
		{"retained deducts interest", RepaymentRetained, Fees{}, "440000"},
		{"capital payment only deducts full interest", RepaymentCapitalPaymentOnly, Fees{}, "440000"},
		{"service only keeps interest", RepaymentServiceOnly, Fees{}, "500000"},
		{"fees and interest", RepaymentRetained, Fees{ArrangementFeeRate: d("2"), LegalFees: d("1500")}, "428500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bridgeRequest().WithRepaymentOption(tt.option)
			req.CapitalRepayment = d("10000")
			req.Fees = tt.fees

			res, err := NewCalculator(nil).ResolveAmounts(req)
			require.NoError(t, err)
			assert.Equal(t, PolicyGrossAuthoritative, res.Policy)
			assertDecimal(t, d("500000"), res.Gross)
			assertDecimal(t, d(tt.net), res.Net)
		})
	}
}

func TestResolveAmountsNetToGrossRoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		interestType InterestType
		option       RepaymentOption
		fees         Fees
		policy       ResolutionPolicy
	}{
		{
			name:         "simple retained closed form",
			interestType: InterestSimple,
			option:       RepaymentRetained,
			fees:         Fees{ArrangementFeeRate: d("2"), LegalFees: d("1500"), SiteVisitFee: d("450")},
			policy:       PolicyClosedForm,
		},
		{
			name:         "title insurance on property value",
			interestType: InterestSimple,
			option:       RepaymentCapitalPaymentOnly,
			fees:         Fees{TitleInsuranceRate: d("0.2"), TitleInsuranceBasis: FeeBasisPropertyValue},
			policy:       PolicyClosedForm,
		},
		{
			name:         "serviced fees only",
			interestType: InterestCompoundMonthly,
			option:       RepaymentServiceOnly,
			fees:         Fees{ArrangementFeeRate: d("1.75")},
			policy:       PolicyClosedForm,
		},
		{
			name:         "compound daily retained",
			interestType: InterestCompoundDaily,
			option:       RepaymentRetained,
			fees:         Fees{ArrangementFeeRate: d("2"), LegalFees: d("995")},
			policy:       PolicyNetAuthoritative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(nil)
			req := bridgeRequest().WithRepaymentOption(tt.option)
			req.AmountInputType = AmountInputNet
			req.NetAmount = d("440000")
			req.InterestType = tt.interestType
			req.Fees = tt.fees

			forward, err := calc.ResolveAmounts(req)
			require.NoError(t, err)
			assert.Equal(t, tt.policy, forward.Policy)
			assertDecimal(t, d("440000"), forward.Net)

			req.AmountInputType = AmountInputGross
			req.GrossAmount = forward.Gross
			back, err := calc.ResolveAmounts(req)
			require.NoError(t, err)
			assertWithinPenny(t, d("440000"), back.Net)
		})
	}
}

func TestResolveAmountsClosedFormExact(t *testing.T) {
	req := bridgeRequest()
	req.AmountInputType = AmountInputNet
	req.NetAmount = d("440000")

	res, err := NewCalculator(nil).ResolveAmounts(req)
	require.NoError(t, err)
	assertDecimal(t, d("500000"), res.Gross)
}

func TestResolveAmountsDevelopment(t *testing.T) {
	t.Run("net is authoritative", func(t *testing.T) {
		req := developmentRequest()
		req.Fees = Fees{ArrangementFeeRate: d("2"), LegalFees: d("2500")}

		result, err := Calculate(req)
		require.NoError(t, err)
		assert.Equal(t, PolicyNetAuthoritative, result.Policy)
		assertDecimal(t, d("800000"), result.TotalNetAdvance)
		assertDecimal(t, d("100000"), result.NetAdvance)

		derived := result.GrossAmount.Sub(result.Fees.Total).Sub(result.RetainedInterest)
		assertWithinPenny(t, d("800000"), derived)
	})

	t.Run("gross is split into net and retained interest", func(t *testing.T) {
		req := developmentRequest()
		req.AmountInputType = AmountInputGross
		req.GrossAmount = d("900000")
		req.Fees = Fees{ArrangementFeeRate: d("1")}

		result, err := Calculate(req)
		require.NoError(t, err)
		assert.Equal(t, PolicyGrossAuthoritative, result.Policy)
		assertDecimal(t, d("900000"), result.GrossAmount)

		total := result.TotalNetAdvance.Add(result.Fees.Total).Add(result.RetainedInterest)
		assertWithinPenny(t, d("900000"), total)
		assertWithinPenny(t, result.TotalNetAdvance, result.TotalReleased)
	})

	t.Run("explicit tranches fix net", func(t *testing.T) {
		req := developmentRequest()
		req.AmountInputType = AmountInputGross
		req.GrossAmount = d("2000000")
		req.LoanTerm = 6
		req.Tranches = []Tranche{{Amount: d("150000"), MonthIndex: 3}}

		result, err := Calculate(req)
		require.NoError(t, err)
		assertDecimal(t, d("250000"), result.TotalNetAdvance)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "gross_amount", result.Warnings[0].Field)
	})

	t.Run("gross too small for day 1 advance", func(t *testing.T) {
		req := developmentRequest()
		req.AmountInputType = AmountInputGross
		req.GrossAmount = d("100500")
		req.Fees = Fees{LegalFees: d("1000")}

		_, err := Calculate(req)
		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr), "got %v", err)
		assert.Equal(t, "day1_advance", validationErr.Field)
	})
}

func TestResolveAmountsDeductionsConsumeGross(t *testing.T) {
	req := bridgeRequest()
	req.AmountInputType = AmountInputNet
	req.NetAmount = d("100000")
	req.AnnualRate = d("60")
	req.LoanTerm = 24
	req.Fees = Fees{ArrangementFeeRate: d("5")}

	_, err := NewCalculator(nil).ResolveAmounts(req)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "got %v", err)
	assert.Equal(t, "fees", validationErr.Field)
}
