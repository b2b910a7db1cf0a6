package loans

import (
	"fmt"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ResolutionPolicy names how the gross and net amounts of a request are made
// consistent with each other.
type ResolutionPolicy string

const (
	// PolicyGrossAuthoritative derives net from the requested gross.
	PolicyGrossAuthoritative ResolutionPolicy = "gross_authoritative"
	// PolicyClosedForm solves gross from the requested net algebraically.
	PolicyClosedForm ResolutionPolicy = "closed_form"
	// PolicyNetAuthoritative keeps the requested net exactly and backs gross
	// out once from a schedule probe.
	PolicyNetAuthoritative ResolutionPolicy = "net_authoritative"
)

// Resolution is the outcome of amount resolution.
type Resolution struct {
	Policy   ResolutionPolicy
	Gross    decimal.Decimal
	Net      decimal.Decimal
	Warnings []NormalizationWarning
}

// ResolutionPolicyFor selects the resolution policy for a request. Explicit
// tranches always fix the net amount because the releases are given.
func ResolutionPolicyFor(req CalculationRequest) ResolutionPolicy {
	if req.LoanType == LoanTypeDevelopment && req.HasExplicitTranches() {
		return PolicyNetAuthoritative
	}
	if req.AmountInputType != AmountInputNet {
		return PolicyGrossAuthoritative
	}
	if req.LoanType == LoanTypeDevelopment {
		return PolicyNetAuthoritative
	}
	if !NewStrategy(req).RetainsInterest() {
		return PolicyClosedForm
	}
	if req.InterestType == InterestSimple && req.EndDate == nil {
		return PolicyClosedForm
	}
	return PolicyNetAuthoritative
}

// ResolveAmounts makes the gross and net amounts of req consistent.
func (c *Calculator) ResolveAmounts(req CalculationRequest) (Resolution, error) {
	policy := ResolutionPolicyFor(req)
	res := Resolution{Policy: policy}
	retains := NewStrategy(req).RetainsInterest()

	var err error
	switch policy {
	case PolicyGrossAuthoritative:
		res.Gross = req.GrossAmount
		res.Net, err = c.netFromGross(req, retains)
	case PolicyClosedForm:
		res.Net = req.NetAmount
		k := decimal.Zero
		if retains {
			k = mathutil.PercentToRate(req.AnnualRate).
				Mul(decimal.NewFromInt(int64(req.LoanTerm))).
				DivRound(monthsPerYear, constants.FactorPlaces)
		}
		res.Gross, err = grossFromNet(req, res.Net, decimal.Zero, k)
	case PolicyNetAuthoritative:
		if req.LoanType == LoanTypeDevelopment && req.HasExplicitTranches() {
			res.Net = req.ExplicitNetAmount()
			if req.AmountInputType == AmountInputGross {
				res.Warnings = append(res.Warnings, NormalizationWarning{
					Field:   "gross_amount",
					Value:   req.GrossAmount.String(),
					Default: res.Net.String(),
					Message: "explicit tranches fix the net amount; gross is derived from the releases",
				})
			}
		} else {
			res.Net = req.NetAmount
		}
		res.Gross, err = c.backOutGross(req, res.Net, retains)
	}
	if err != nil {
		return res, err
	}

	c.logger.Debug(fmt.Sprintf("resolved gross %s and net %s using %s",
		res.Gross.StringFixed(constants.CurrencyPlaces), res.Net.StringFixed(constants.CurrencyPlaces), policy),
		zap.String("op", "loans.ResolveAmounts"),
	)
	return res, nil
}

// netFromGross deducts fees and, when the strategy retains it, the retained
// baseline interest from the gross.
func (c *Calculator) netFromGross(req CalculationRequest, retains bool) (decimal.Decimal, error) {
	fees := CalculateFees(req.GrossAmount, req.PropertyValue, req.Fees)
	available := req.GrossAmount.Sub(fees.Total)
	if !retains {
		return available, nil
	}

	if req.LoanType != LoanTypeDevelopment {
		interest, err := c.baselineInterest(req, req.GrossAmount, available)
		if err != nil {
			return decimal.Zero, err
		}
		return available.Sub(interest), nil
	}

	// Development interest is linear in the amount drawn above the day 1
	// advance, so two probes give I(net) = a + b*net exactly and
	// net = (available - a) / (1 + b).
	n0 := req.Day1Advance
	n1 := available
	if n1.LessThan(n0) {
		return decimal.Zero, NewValidationError("day1_advance", "day 1 advance %s exceeds the %s available after fees",
			n0.StringFixed(constants.CurrencyPlaces), n1.StringFixed(constants.CurrencyPlaces))
	}
	i0, err := c.baselineInterest(req, req.GrossAmount, n0)
	if err != nil {
		return decimal.Zero, err
	}
	b := decimal.Zero
	if !n1.Equal(n0) {
		i1, err := c.baselineInterest(req, req.GrossAmount, n1)
		if err != nil {
			return decimal.Zero, err
		}
		b = i1.Sub(i0).DivRound(n1.Sub(n0), constants.FactorPlaces)
	}
	a := i0.Sub(b.Mul(n0))
	net := available.Sub(a).DivRound(one.Add(b), constants.FactorPlaces)
	if net.LessThan(req.Day1Advance) {
		return decimal.Zero, NewValidationError("gross_amount",
			"gross %s does not cover fees, retained interest and the day 1 advance %s",
			req.GrossAmount.StringFixed(constants.CurrencyPlaces), req.Day1Advance.StringFixed(constants.CurrencyPlaces))
	}
	return net, nil
}

// backOutGross derives gross once from an authoritative net.
func (c *Calculator) backOutGross(req CalculationRequest, net decimal.Decimal, retains bool) (decimal.Decimal, error) {
	if !retains {
		return grossFromNet(req, net, decimal.Zero, decimal.Zero)
	}
	if req.LoanType == LoanTypeDevelopment {
		interest, err := c.baselineInterest(req, net, net)
		if err != nil {
			return decimal.Zero, err
		}
		return grossFromNet(req, net, interest, decimal.Zero)
	}

	// A single-line schedule scales with its principal, so one probe at
	// gross = net gives the interest per unit of gross.
	k := decimal.Zero
	if net.IsPositive() {
		interest, err := c.baselineInterest(req, net, net)
		if err != nil {
			return decimal.Zero, err
		}
		k = interest.DivRound(net, constants.FactorPlaces)
	}
	return grossFromNet(req, net, decimal.Zero, k)
}

// grossFromNet solves gross = (net + fixed fees + extra) / (1 - fee rate - k)
// where k is interest per unit of gross.
func grossFromNet(req CalculationRequest, net, extra, k decimal.Decimal) (decimal.Decimal, error) {
	denominator := one.Sub(req.Fees.GrossRate()).Sub(k)
	if !denominator.IsPositive() {
		return decimal.Zero, NewValidationError("fees",
			"percentage fees and retained interest consume the whole gross amount")
	}
	numerator := net.Add(req.Fees.FixedAmount(req.PropertyValue)).Add(extra)
	return numerator.DivRound(denominator, constants.FactorPlaces), nil
}

// baselineInterest is the total interest of the retained schedule for the
// given amounts.
func (c *Calculator) baselineInterest(req CalculationRequest, gross, net decimal.Decimal) (decimal.Decimal, error) {
	schedule, err := c.BuildSchedule(req.WithRepaymentOption(RepaymentRetained), gross, net)
	if err != nil {
		return decimal.Zero, err
	}
	return schedule.TotalInterest, nil
}
