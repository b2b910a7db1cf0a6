// Package optimization provides shared data structures for optimization results.
package optimization

import "github.com/shopspring/decimal"

// Summary captures the result of a single payment solve.
type Summary struct {
	Scope           string          `json:"scope"`
	TargetName      string          `json:"targetName"`
	Field           string          `json:"field"`
	Original        decimal.Decimal `json:"original"`
	Value           decimal.Decimal `json:"value"`
	ClosingBalance  decimal.Decimal `json:"closingBalance"`
	TotalInterest   decimal.Decimal `json:"totalInterest"`
	InterestSavings decimal.Decimal `json:"interestSavings"`
	Iterations      int             `json:"iterations"`
	Converged       bool            `json:"converged"`
	Notes           []string        `json:"notes,omitempty"`
	OriginalDisplay string          `json:"originalDisplay,omitempty"`
	ValueDisplay    string          `json:"valueDisplay,omitempty"`
}
