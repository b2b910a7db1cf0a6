// Package adapters translates between the JSON and YAML request shapes used by
// existing callers and the canonical loans types.
package adapters

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/datetime"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/iwvelando/loan-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// NormalizerOptions carries the environment-derived defaults a caller passes
// in explicitly.
type NormalizerOptions struct {
	DefaultCurrency     string
	DefaultDayCountBase loans.DayCountBase
	// LegacyCompatibility falls back to defaults for unknown enumeration
	// values, with a warning, instead of rejecting the request.
	LegacyCompatibility bool
}

// Normalizer turns raw request mappings into canonical calculation requests.
type Normalizer struct {
	opts NormalizerOptions
}

// NewNormalizer creates a normalizer, filling unset options with defaults.
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	if strings.TrimSpace(opts.DefaultCurrency) == "" {
		opts.DefaultCurrency = constants.DefaultCurrency
	}
	if !opts.DefaultDayCountBase.Valid() {
		opts.DefaultDayCountBase = constants.DefaultDayCountBase
	}
	return &Normalizer{opts: opts}
}

// rawRequest reads fields by their snake_case name or its camelCase alias.
type rawRequest map[string]interface{}

func (r rawRequest) get(key string) (interface{}, bool) {
	if v, ok := r[key]; ok && v != nil {
		return v, true
	}
	if v, ok := r[camelCase(key)]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func (r rawRequest) has(key string) bool {
	v, ok := r.get(key)
	if !ok {
		return false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// normalization accumulates warnings while a request is built.
type normalization struct {
	raw      rawRequest
	opts     NormalizerOptions
	warnings []loans.NormalizationWarning
}

// Normalize validates and coerces raw into a fully defaulted request. The
// returned warnings are also attached to the request.
func (n *Normalizer) Normalize(raw map[string]interface{}) (loans.CalculationRequest, []loans.NormalizationWarning, error) {
	s := &normalization{raw: rawRequest(raw), opts: n.opts}
	req, err := s.build()
	if err != nil {
		return loans.CalculationRequest{}, s.warnings, err
	}
	req.Warnings = s.warnings
	if err := req.Validate(); err != nil {
		return loans.CalculationRequest{}, s.warnings, err
	}
	return req, s.warnings, nil
}

func (s *normalization) build() (loans.CalculationRequest, error) {
	var req loans.CalculationRequest
	var err error

	loanType, err := s.enum("loan_type", loanTypes, string(loans.LoanTypeBridge), "")
	if err != nil {
		return req, err
	}
	req.LoanType = loans.LoanType(loanType)

	amountInput, err := s.enum("amount_input_type", amountInputTypes, string(loans.AmountInputGross), string(loans.AmountInputGross))
	if err != nil {
		return req, err
	}
	req.AmountInputType = loans.AmountInputType(amountInput)

	option, err := s.enum("repayment_option", repaymentOptions, string(loans.RepaymentRetained), string(loans.RepaymentRetained))
	if err != nil {
		return req, err
	}
	req.RepaymentOption = loans.RepaymentOption(option)

	defaultInterest := loans.InterestSimple
	if req.LoanType == loans.LoanTypeDevelopment {
		defaultInterest = loans.InterestCompoundDaily
	}
	interestType, err := s.enum("interest_type", interestTypes, string(defaultInterest), string(defaultInterest))
	if err != nil {
		return req, err
	}
	req.InterestType = loans.InterestType(interestType)

	timing, err := s.enum("payment_timing", paymentTimings, string(loans.PaymentInArrears), string(loans.PaymentInArrears))
	if err != nil {
		return req, err
	}
	req.PaymentTiming = loans.PaymentTiming(timing)

	frequency, err := s.enum("payment_frequency", paymentFrequencies, string(loans.PaymentMonthly), string(loans.PaymentMonthly))
	if err != nil {
		return req, err
	}
	req.PaymentFrequency = loans.PaymentFrequency(frequency)

	req.Currency = s.currency()
	if req.DayCountBase, err = s.dayCountBase(); err != nil {
		return req, err
	}

	if req.StartDate, err = s.date("start_date"); err != nil {
		return req, err
	}
	if s.raw.has("end_date") {
		end, err := s.date("end_date")
		if err != nil {
			return req, err
		}
		req.EndDate = &end
	}
	if req.LoanTerm, err = s.term(req.StartDate, req.EndDate); err != nil {
		return req, err
	}

	req.PropertyValue = s.amount("property_value")
	if err := s.amounts(&req); err != nil {
		return req, err
	}
	if req.AnnualRate, err = s.annualRate(); err != nil {
		return req, err
	}

	basis, err := s.enum("title_insurance_basis", feeBases, string(loans.FeeBasisGross), string(loans.FeeBasisGross))
	if err != nil {
		return req, err
	}
	req.Fees = loans.Fees{
		ArrangementFeeRate:  s.amount("arrangement_fee_percentage"),
		LegalFees:           s.amount("legal_fees"),
		SiteVisitFee:        s.amount("site_visit_fee"),
		TitleInsuranceRate:  s.amount("title_insurance_rate"),
		TitleInsuranceBasis: loans.FeeBasis(basis),
	}
	req.CapitalRepayment = s.amount("capital_repayment")
	req.FlexiblePayment = s.amount("flexible_payment")
	req.Day1Advance = s.amount("day1_advance")

	if req.Tranches, err = s.tranches(); err != nil {
		return req, err
	}
	return req, nil
}

// amounts resolves the gross or net amount the caller specified.
func (s *normalization) amounts(req *loans.CalculationRequest) error {
	req.NetAmount = s.amount("net_amount")
	if req.AmountInputType == loans.AmountInputNet {
		if !s.raw.has("net_amount") && !(req.LoanType == loans.LoanTypeDevelopment && s.raw.has("tranches")) {
			return loans.NewValidationError("net_amount", "is required when amount_input_type is net")
		}
		req.GrossAmount = s.amount("gross_amount")
		return nil
	}

	switch {
	case s.raw.has("gross_amount"):
		req.GrossAmount = s.amount("gross_amount")
	case s.raw.has("gross_amount_percentage"):
		if !req.PropertyValue.IsPositive() {
			return loans.NewValidationError("property_value",
				"must be greater than zero when gross_amount_percentage is given")
		}
		percentage := s.amount("gross_amount_percentage")
		req.GrossAmount = mathutil.ApplyPercentage(req.PropertyValue, percentage)
	case req.LoanType == loans.LoanTypeDevelopment && s.raw.has("tranches"):
		// Explicit tranches fix the amounts on their own.
	default:
		return loans.NewValidationError("gross_amount", "gross_amount or gross_amount_percentage is required")
	}
	return nil
}

// annualRate reads the rate as entered and converts a monthly rate to annual.
func (s *normalization) annualRate() (decimal.Decimal, error) {
	rateType, err := s.enum("rate_input_type", rateInputTypes, "annual", "annual")
	if err != nil {
		return decimal.Zero, err
	}
	twelve := decimal.NewFromInt(constants.MonthsPerYear)

	if rateType == "monthly" {
		switch {
		case s.raw.has("monthly_rate"):
			return s.amount("monthly_rate").Mul(twelve), nil
		case s.raw.has("annual_rate"):
			return s.amount("annual_rate").Mul(twelve), nil
		}
		return decimal.Zero, loans.NewValidationError("monthly_rate", "is required when rate_input_type is monthly")
	}

	switch {
	case s.raw.has("annual_rate"):
		return s.amount("annual_rate"), nil
	case s.raw.has("monthly_rate"):
		return s.amount("monthly_rate").Mul(twelve), nil
	}
	return decimal.Zero, loans.NewValidationError("annual_rate", "annual_rate or monthly_rate is required")
}

func (s *normalization) term(start time.Time, end *time.Time) (int, error) {
	if !s.raw.has("loan_term") {
		if end == nil {
			return 0, loans.NewValidationError("loan_term", "loan_term or end_date is required")
		}
		return datetime.MonthsCeil(start, *end), nil
	}
	value, _ := s.raw.get("loan_term")
	parsed, ok := parseDecimal(value)
	if !ok {
		s.warn("loan_term", value, fmt.Sprint(constants.DefaultLoanTerm), "not a number of months, using the default term")
		return constants.DefaultLoanTerm, nil
	}
	// Checked here so IntPart cannot overflow.
	if parsed.GreaterThan(decimal.NewFromInt(constants.MaxLoanTerm)) {
		return 0, loans.NewValidationError("loan_term", "must be at most %d months, got %v", constants.MaxLoanTerm, value)
	}
	if whole := parsed.Ceil(); !whole.Equal(parsed) {
		s.warn("loan_term", value, whole.String(), "part month rounded up to a whole month")
		parsed = whole
	}
	return int(parsed.IntPart()), nil
}

func (s *normalization) dayCountBase() (loans.DayCountBase, error) {
	if value, ok := s.raw.get("day_count_base"); ok {
		parsed, valid := parseDecimal(value)
		base := loans.DayCountBase(parsed.IntPart())
		if valid && base.Valid() {
			return base, nil
		}
		if !s.opts.LegacyCompatibility {
			return 0, loans.NewValidationError("day_count_base", "must be 360 or 365, got %v", value)
		}
		s.warn("day_count_base", value, fmt.Sprint(s.opts.DefaultDayCountBase), "unknown day-count base")
		return s.opts.DefaultDayCountBase, nil
	}

	if value, ok := s.raw.get("use_360_days"); ok {
		use360, err := cast.ToBoolE(value)
		if err != nil {
			s.warn("use_360_days", value, "false", "not a boolean")
			return s.opts.DefaultDayCountBase, nil
		}
		if use360 {
			return loans.DayCount360, nil
		}
		return loans.DayCount365, nil
	}
	return s.opts.DefaultDayCountBase, nil
}

func (s *normalization) currency() string {
	value, ok := s.raw.get("currency")
	if !ok {
		return s.opts.DefaultCurrency
	}
	code := strings.ToUpper(strings.TrimSpace(cast.ToString(value)))
	if code == "" {
		return s.opts.DefaultCurrency
	}
	return code
}

func (s *normalization) date(key string) (time.Time, error) {
	value, ok := s.raw.get(key)
	if !ok {
		return time.Time{}, loans.NewValidationError(key, "is required")
	}
	if t, isTime := value.(time.Time); isTime {
		return datetime.Date(t), nil
	}
	parsed, err := datetime.ParseDate(cast.ToString(value))
	if err != nil {
		return time.Time{}, loans.NewValidationError(key, "%v is not an ISO date", value)
	}
	return parsed, nil
}

// amount reads an optional decimal. Absent values are zero; unparseable
// values are zero with a warning.
func (s *normalization) amount(key string) decimal.Decimal {
	value, ok := s.raw.get(key)
	if !ok {
		return decimal.Zero
	}
	parsed, valid := parseDecimal(value)
	if !valid {
		s.warn(key, value, "0", "not a number")
		return decimal.Zero
	}
	return parsed
}

// enum reads an enumerated field. An absent field takes absentDefault; an
// unknown value is an error unless legacy compatibility substitutes
// legacyDefault.
func (s *normalization) enum(key string, known map[string]string, legacyDefault, absentDefault string) (string, error) {
	value, ok := s.raw.get(key)
	if !ok || strings.TrimSpace(cast.ToString(value)) == "" {
		if absentDefault == "" {
			return "", loans.NewValidationError(key, "is required")
		}
		return absentDefault, nil
	}
	if canonical, found := known[enumKey(cast.ToString(value))]; found {
		return canonical, nil
	}
	if !s.opts.LegacyCompatibility {
		return "", loans.NewValidationError(key, "unknown value %q", cast.ToString(value))
	}
	s.warn(key, value, legacyDefault, "unknown value")
	return legacyDefault, nil
}

func (s *normalization) tranches() ([]loans.Tranche, error) {
	value, ok := s.raw.get("tranches")
	if !ok {
		return nil, nil
	}
	items, isSlice := value.([]interface{})
	if !isSlice {
		return nil, loans.NewValidationError("tranches", "must be a list")
	}

	tranches := make([]loans.Tranche, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("tranches[%d]", i)
		fields, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, loans.NewValidationError(field, "must be an object")
		}
		entry := &normalization{raw: rawRequest(fields), opts: s.opts}

		tranche := loans.Tranche{
			Amount:      entry.amount("amount"),
			Description: strings.TrimSpace(cast.ToString(fields["description"])),
		}
		switch {
		case entry.raw.has("date"):
			if tranche.ReleaseDate, err = entry.date("date"); err != nil {
				return nil, loans.NewValidationError(field, "date %v is not an ISO date", fields["date"])
			}
		case entry.raw.has("release_date"):
			if tranche.ReleaseDate, err = entry.date("release_date"); err != nil {
				return nil, loans.NewValidationError(field, "release date %v is not an ISO date", fields["release_date"])
			}
		case entry.raw.has("month"):
			tranche.MonthIndex = int(entry.amount("month").IntPart())
		case entry.raw.has("month_index"):
			tranche.MonthIndex = int(entry.amount("month_index").IntPart())
		}
		for _, key := range []string{"rate", "rate_override"} {
			if entry.raw.has(key) {
				rate := entry.amount(key)
				tranche.RateOverride = &rate
				break
			}
		}
		for _, w := range entry.warnings {
			w.Field = field + "." + w.Field
			s.warnings = append(s.warnings, w)
		}
		tranches = append(tranches, tranche)
	}
	return tranches, nil
}

func (s *normalization) warn(field string, value interface{}, fallback, message string) {
	s.warnings = append(s.warnings, loans.NormalizationWarning{
		Field:   field,
		Value:   cast.ToString(value),
		Default: fallback,
		Message: message,
	})
}

// parseDecimal accepts numbers and numeric strings, tolerating currency
// symbols, thousands separators and a trailing percent sign.
func parseDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		return parsed, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case bool:
		return decimal.Zero, false
	}
	text, err := cast.ToStringE(value)
	if err != nil {
		return decimal.Zero, false
	}
	text = strings.NewReplacer("£", "", "€", "", "$", "", ",", "", "%", "", " ", "", "_", "").Replace(text)
	parsed, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return parsed, true
}

func enumKey(value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer("-", "_", " ", "_").Replace(key)
}

// camelCase converts a snake_case key to its camelCase alias.
func camelCase(key string) string {
	parts := strings.Split(key, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

var (
	loanTypes = map[string]string{
		"bridge":           string(loans.LoanTypeBridge),
		"bridging":         string(loans.LoanTypeBridge),
		"bridge_loan":      string(loans.LoanTypeBridge),
		"term":             string(loans.LoanTypeTerm),
		"term_loan":        string(loans.LoanTypeTerm),
		"development":      string(loans.LoanTypeDevelopment),
		"development_loan": string(loans.LoanTypeDevelopment),
		"dev":              string(loans.LoanTypeDevelopment),
	}
	amountInputTypes = map[string]string{
		"gross": string(loans.AmountInputGross),
		"net":   string(loans.AmountInputNet),
	}
	repaymentOptions = map[string]string{
		"retained":                      string(loans.RepaymentRetained),
		"retained_interest":             string(loans.RepaymentRetained),
		"none":                          string(loans.RepaymentRetained),
		"service_only":                  string(loans.RepaymentServiceOnly),
		"interest_only":                 string(loans.RepaymentServiceOnly),
		"serviced":                      string(loans.RepaymentServiceOnly),
		"service_and_capital":           string(loans.RepaymentServiceAndCapital),
		"service_capital":               string(loans.RepaymentServiceAndCapital),
		"flexible_payment":              string(loans.RepaymentFlexiblePayment),
		"flexible":                      string(loans.RepaymentFlexiblePayment),
		"capital_payment_only":          string(loans.RepaymentCapitalPaymentOnly),
		"capital_only":                  string(loans.RepaymentCapitalPaymentOnly),
		"capital_payment":               string(loans.RepaymentCapitalPaymentOnly),
		"service_and_capital_repayment": string(loans.RepaymentServiceAndCapital),
	}
	interestTypes = map[string]string{
		"simple":             string(loans.InterestSimple),
		"compound_daily":     string(loans.InterestCompoundDaily),
		"daily":              string(loans.InterestCompoundDaily),
		"compound_monthly":   string(loans.InterestCompoundMonthly),
		"monthly":            string(loans.InterestCompoundMonthly),
		"compound_quarterly": string(loans.InterestCompoundQuarterly),
		"quarterly":          string(loans.InterestCompoundQuarterly),
	}
	rateInputTypes = map[string]string{
		"annual":  "annual",
		"monthly": "monthly",
	}
	paymentTimings = map[string]string{
		"arrears":    string(loans.PaymentInArrears),
		"in_arrears": string(loans.PaymentInArrears),
		"advance":    string(loans.PaymentInAdvance),
		"in_advance": string(loans.PaymentInAdvance),
	}
	paymentFrequencies = map[string]string{
		"monthly":   string(loans.PaymentMonthly),
		"quarterly": string(loans.PaymentQuarterly),
	}
	feeBases = map[string]string{
		"gross":          string(loans.FeeBasisGross),
		"property_value": string(loans.FeeBasisPropertyValue),
		"property":       string(loans.FeeBasisPropertyValue),
	}
)
