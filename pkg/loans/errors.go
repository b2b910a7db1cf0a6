package loans

import "fmt"

// ValidationError reports a missing or out-of-range field. No computation is
// attempted when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedCombinationError reports parameters that are individually valid
// but cannot be combined, such as tranches on a bridge loan.
type UnsupportedCombinationError struct {
	LoanType LoanType
	Field    string
	Reason   string
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("%s is not supported for %s loans: %s", e.Field, e.LoanType, e.Reason)
}

// NormalizationWarning records a forgivable input that was coerced to a
// default. Computation proceeds; the warning travels with the result.
type NormalizationWarning struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Default string `json:"default,omitempty"`
	Message string `json:"message"`
}

func (w NormalizationWarning) String() string {
	if w.Value == "" && w.Default == "" {
		return fmt.Sprintf("%s: %s", w.Field, w.Message)
	}
	return fmt.Sprintf("%s: %s (got %q, using %q)", w.Field, w.Message, w.Value, w.Default)
}
