// Package optimizer solves for the smallest periodic payment that repays a
// loan by maturity.
package optimizer

import (
	"fmt"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/format"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/iwvelando/loan-engine/pkg/optimization"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Payment fields the solver adjusts.
const (
	FieldCapitalRepayment = "capital_repayment"
	FieldFlexiblePayment  = "flexible_payment"
)

var penniesPerUnit = decimal.New(1, constants.CurrencyPlaces)

// Runner bisects over whole pennies of the periodic payment.
type Runner struct {
	logger        *zap.Logger
	calc          *loans.Calculator
	maxIterations int
	tolerance     decimal.Decimal
}

type evaluation struct {
	payment decimal.Decimal
	result  loans.CalculationResult
	cleared bool
}

// NewRunner constructs a Runner logging to logger.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:        logger,
		calc:          loans.NewCalculator(logger),
		maxIterations: constants.SolverMaxIterations,
		tolerance:     decimal.RequireFromString(constants.CurrencyTolerance),
	}
}

// FieldFor returns the request field holding the periodic payment of option.
// Strategies that never pay down principal have no such field.
func FieldFor(option loans.RepaymentOption) (string, bool) {
	switch option {
	case loans.RepaymentServiceAndCapital, loans.RepaymentCapitalPaymentOnly:
		return FieldCapitalRepayment, true
	case loans.RepaymentFlexiblePayment:
		return FieldFlexiblePayment, true
	}
	return "", false
}

// Solve finds the smallest whole-penny payment that leaves no more than a
// penny outstanding at maturity. It returns the summary and the result
// calculated at that payment.
func (r *Runner) Solve(name string, req loans.CalculationRequest) (optimization.Summary, loans.CalculationResult, error) {
	field, ok := FieldFor(req.RepaymentOption)
	if !ok {
		return optimization.Summary{}, loans.CalculationResult{},
			fmt.Errorf("payment solver does not apply to %s loans", req.RepaymentOption)
	}

	original := paymentOf(req, field)
	summary := optimization.Summary{
		Scope:           "loan",
		TargetName:      name,
		Field:           field,
		Original:        original,
		OriginalDisplay: format.Currency(original, req.Currency),
	}

	zero, err := r.evaluate(req, field, decimal.Zero)
	if err != nil {
		return optimization.Summary{}, loans.CalculationResult{}, err
	}
	if zero.cleared {
		return r.finish(summary, zero, 0, req.Currency), zero.result, nil
	}

	// Paying the whole unpaid balance every period clears any schedule.
	upper, err := r.evaluate(req, field, zero.result.ClosingBalance.RoundCeil(constants.CurrencyPlaces))
	if err != nil {
		return optimization.Summary{}, loans.CalculationResult{}, err
	}
	if !upper.cleared {
		summary = r.finish(summary, upper, 0, req.Currency)
		summary.Converged = false
		summary.Notes = []string{fmt.Sprintf("unable to clear the balance with a payment of %s",
			format.Currency(upper.payment, req.Currency))}
		return summary, upper.result, nil
	}

	lower := 0
	high := int(upper.payment.Mul(penniesPerUnit).IntPart())
	best := upper
	iterations := 0
	for iterations < r.maxIterations && high-lower > 1 {
		mid := lower + (high-lower)/2
		eval, err := r.evaluate(req, field, decimal.New(int64(mid), -constants.CurrencyPlaces))
		if err != nil {
			return optimization.Summary{}, loans.CalculationResult{}, err
		}
		iterations++
		if eval.cleared {
			high = mid
			best = eval
		} else {
			lower = mid
		}
	}

	summary = r.finish(summary, best, iterations, req.Currency)
	if high-lower > 1 {
		summary.Converged = false
		summary.Notes = []string{fmt.Sprintf("stopped after %d iterations between %s and %s",
			iterations,
			format.Currency(decimal.New(int64(lower), -constants.CurrencyPlaces), req.Currency),
			format.Currency(best.payment, req.Currency))}
	}

	r.logger.Debug(fmt.Sprintf("solved %s for loan %s: %s after %d iterations",
		field, name, best.payment.StringFixed(constants.CurrencyPlaces), iterations),
		zap.String("op", "optimizer.Solve"),
	)
	return summary, best.result, nil
}

func (r *Runner) finish(summary optimization.Summary, eval evaluation, iterations int, currency string) optimization.Summary {
	summary.Value = eval.payment
	summary.ValueDisplay = format.Currency(eval.payment, currency)
	summary.ClosingBalance = eval.result.ClosingBalance
	summary.TotalInterest = eval.result.TotalInterest
	summary.InterestSavings = eval.result.InterestSavings
	summary.Iterations = iterations
	summary.Converged = eval.cleared
	return summary
}

func (r *Runner) evaluate(req loans.CalculationRequest, field string, payment decimal.Decimal) (evaluation, error) {
	switch field {
	case FieldCapitalRepayment:
		req.CapitalRepayment = payment
	case FieldFlexiblePayment:
		req.FlexiblePayment = payment
	}
	result, err := r.calc.Calculate(req)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer evaluation at %s failed: %w",
			payment.StringFixed(constants.CurrencyPlaces), err)
	}
	return evaluation{
		payment: payment,
		result:  result,
		cleared: result.ClosingBalance.LessThanOrEqual(r.tolerance),
	}, nil
}

func paymentOf(req loans.CalculationRequest, field string) decimal.Decimal {
	if field == FieldFlexiblePayment {
		return req.FlexiblePayment
	}
	return req.CapitalRepayment
}
