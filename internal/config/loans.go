package config

import (
	"fmt"

	"github.com/iwvelando/loan-engine/pkg/adapters"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"go.uber.org/zap"
)

// Loan indicates a named loan and its raw request parameters. Parameter keys
// are snake_case.
type Loan struct {
	Name       string
	Active     bool
	Parameters map[string]interface{}
	Request    loans.CalculationRequest     `yaml:"-" mapstructure:"-"`
	Warnings   []loans.NormalizationWarning `yaml:"-" mapstructure:"-"`
}

// ProcessLoans normalizes the parameters of every active loan into a
// calculation request.
func (conf *Configuration) ProcessLoans(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	normalizer := adapters.NewNormalizer(conf.NormalizerOptions())

	for i := range conf.Loans {
		if !conf.Loans[i].Active {
			continue
		}
		if err := conf.Loans[i].Normalize(logger, normalizer); err != nil {
			return err
		}
	}
	return nil
}

// Normalize builds the loan's calculation request from its parameters.
func (loan *Loan) Normalize(logger *zap.Logger, normalizer *adapters.Normalizer) error {
	req, warnings, err := normalizer.Normalize(loan.Parameters)
	if err != nil {
		return fmt.Errorf("loan '%s': %w", loan.Name, err)
	}
	for _, w := range warnings {
		logger.Warn(fmt.Sprintf("loan '%s' field %s: %s, using %s", loan.Name, w.Field, w.Message, w.Default),
			zap.String("op", "config.Normalize"),
		)
	}
	loan.Request = req
	loan.Warnings = warnings
	return nil
}
