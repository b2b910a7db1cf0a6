package loans

import (
	"github.com/iwvelando/loan-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// CalculateFees computes the fee breakdown for a gross amount. Percentage
// fees are charged against the gross, except title insurance which may be
// charged against the property value.
func CalculateFees(gross, propertyValue decimal.Decimal, fees Fees) FeeBreakdown {
	breakdown := FeeBreakdown{
		ArrangementFee: mathutil.ApplyPercentage(gross, fees.ArrangementFeeRate),
		LegalFees:      fees.LegalFees,
		SiteVisitFee:   fees.SiteVisitFee,
		TitleInsurance: mathutil.ApplyPercentage(fees.titleInsuranceBase(gross, propertyValue), fees.TitleInsuranceRate),
	}
	breakdown.Total = mathutil.Sum(breakdown.ArrangementFee, breakdown.LegalFees,
		breakdown.SiteVisitFee, breakdown.TitleInsurance)
	return breakdown
}

// GrossRate is the fraction of the gross consumed by percentage fees.
func (f Fees) GrossRate() decimal.Decimal {
	rate := f.ArrangementFeeRate
	if f.TitleInsuranceBasis != FeeBasisPropertyValue {
		rate = rate.Add(f.TitleInsuranceRate)
	}
	return mathutil.PercentToRate(rate)
}

// FixedAmount is the part of the fees that does not scale with the gross.
func (f Fees) FixedAmount(propertyValue decimal.Decimal) decimal.Decimal {
	fixed := f.LegalFees.Add(f.SiteVisitFee)
	if f.TitleInsuranceBasis == FeeBasisPropertyValue {
		fixed = fixed.Add(mathutil.ApplyPercentage(propertyValue, f.TitleInsuranceRate))
	}
	return fixed
}

func (f Fees) titleInsuranceBase(gross, propertyValue decimal.Decimal) decimal.Decimal {
	if f.TitleInsuranceBasis == FeeBasisPropertyValue {
		return propertyValue
	}
	return gross
}
