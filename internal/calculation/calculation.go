// Package calculation defines the data structures related to a configured
// loan calculation and includes functions for computing them.
package calculation

import (
	"fmt"

	"github.com/iwvelando/loan-engine/internal/config"
	"github.com/iwvelando/loan-engine/internal/optimizer"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/iwvelando/loan-engine/pkg/optimization"
	"github.com/iwvelando/loan-engine/pkg/validation"
	"go.uber.org/zap"
)

// Calculation holds everything computed for one configured loan.
type Calculation struct {
	Name       string
	Result     loans.CalculationResult
	Advisories []string
	Solver     *optimization.Summary
}

// GetCalculations runs every active loan through the engine. Loans must have
// been processed with Configuration.ProcessLoans first.
func GetCalculations(logger *zap.Logger, conf config.Configuration) ([]Calculation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	calc := loans.NewCalculator(logger)
	var runner *optimizer.Runner
	if conf.Engine.SolvePayments {
		runner = optimizer.NewRunner(logger)
	}

	var results []Calculation
	for _, loan := range conf.Loans {
		if !loan.Active {
			logger.Debug(fmt.Sprintf("skipping loan %s because it is inactive", loan.Name),
				zap.String("op", "calculation.GetCalculations"),
			)
			continue
		}

		result, err := calc.Calculate(loan.Request)
		if err != nil {
			return results, fmt.Errorf("loan '%s': %w", loan.Name, err)
		}
		calculation := Calculation{Name: loan.Name, Result: result}

		if runner != nil {
			if _, ok := optimizer.FieldFor(loan.Request.RepaymentOption); ok {
				summary, solved, err := runner.Solve(loan.Name, loan.Request)
				if err != nil {
					return results, fmt.Errorf("loan '%s': %w", loan.Name, err)
				}
				calculation.Solver = &summary
				logger.Debug(fmt.Sprintf("loan %s repays by maturity with %s of %s", loan.Name, summary.Field, summary.ValueDisplay),
					zap.String("op", "calculation.GetCalculations"),
					zap.Bool("converged", summary.Converged),
					zap.String("closingBalance", solved.ClosingBalance.String()),
				)
			}
		}

		calculation.Advisories = validation.CheckResult(loan.Name, result, conf.MaxLTV())
		results = append(results, calculation)
	}

	return results, nil
}
