package loans

import (
	"fmt"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Calculator runs loan calculations. It holds only a logger and is safe for
// concurrent use.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a calculator logging to logger.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Calculate runs req through a calculator without logging.
func Calculate(req CalculationRequest) (CalculationResult, error) {
	return NewCalculator(nil).Calculate(req)
}

// Calculate validates req, resolves its amounts, builds the schedule and
// assembles the result in one pass. Strategies that retain interest or pay
// down principal also run the retained baseline schedule.
func (c *Calculator) Calculate(req CalculationRequest) (CalculationResult, error) {
	if err := req.Validate(); err != nil {
		return CalculationResult{}, err
	}

	resolution, err := c.ResolveAmounts(req)
	if err != nil {
		return CalculationResult{}, fmt.Errorf("resolving amounts: %w", err)
	}

	schedule, err := c.BuildSchedule(req, resolution.Gross, resolution.Net)
	if err != nil {
		return CalculationResult{}, fmt.Errorf("building schedule: %w", err)
	}

	strategy := NewStrategy(req)
	baseline := schedule.TotalInterest
	if req.RepaymentOption != RepaymentRetained && (strategy.RetainsInterest() || strategy.PaysDown()) {
		baseline, err = c.baselineInterest(req, resolution.Gross, resolution.Net)
		if err != nil {
			return CalculationResult{}, fmt.Errorf("building retained baseline: %w", err)
		}
	}

	result := c.assemble(req, resolution, schedule, baseline)
	c.logger.Debug(fmt.Sprintf("calculated %s %s loan: gross %s, net %s, interest %s",
		req.LoanType, req.RepaymentOption,
		result.GrossAmount.StringFixed(constants.CurrencyPlaces),
		result.TotalNetAdvance.StringFixed(constants.CurrencyPlaces),
		result.TotalInterest.StringFixed(constants.CurrencyPlaces)),
		zap.String("op", "loans.Calculate"),
	)
	return result, nil
}

func (c *Calculator) assemble(req CalculationRequest, resolution Resolution, schedule Schedule, baseline decimal.Decimal) CalculationResult {
	strategy := NewStrategy(req)
	result := CalculationResult{
		LoanType:         req.LoanType,
		RepaymentOption:  req.RepaymentOption,
		InterestType:     req.InterestType,
		Currency:         req.Currency,
		Policy:           resolution.Policy,
		GrossAmount:      resolution.Gross,
		NetAdvance:       resolution.Net,
		TotalNetAdvance:  resolution.Net,
		PropertyValue:    req.PropertyValue,
		AnnualRate:       req.AnnualRate,
		MonthlyRate:      req.MonthlyRate(),
		LoanTerm:         req.LoanTerm,
		StartDate:        req.StartDate,
		MaturityDate:     req.MaturityDate(),
		Fees:             CalculateFees(resolution.Gross, req.PropertyValue, req.Fees),
		TotalInterest:    schedule.TotalInterest,
		RetainedInterest: decimal.Zero,
		BaselineInterest: baseline,
		InterestSavings:  decimal.Zero,
		InterestRefund:   decimal.Zero,
		TotalPayments:    schedule.TotalPayments,
		TotalReleased:    schedule.TotalReleased,
		ClosingBalance:   schedule.ClosingBalance,
		LTVStart:         mathutil.CalculatePercentage(resolution.Gross, req.PropertyValue),
		LTVEnd:           mathutil.CalculatePercentage(schedule.ClosingBalance, req.PropertyValue),
		Schedule:         schedule.Rows,
	}

	if req.LoanType == LoanTypeDevelopment && len(schedule.Rows) > 0 {
		result.NetAdvance = schedule.Rows[0].TrancheRelease
	}
	if strategy.RetainsInterest() {
		result.RetainedInterest = baseline
	}
	if strategy.PaysDown() {
		result.InterestSavings = baseline.Sub(schedule.TotalInterest)
	}
	if req.RepaymentOption == RepaymentCapitalPaymentOnly {
		result.InterestRefund = mathutil.NonNegative(baseline.Sub(schedule.TotalInterest))
	}

	result.Warnings = append(result.Warnings, req.Warnings...)
	result.Warnings = append(result.Warnings, resolution.Warnings...)
	return result
}
