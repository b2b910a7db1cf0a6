// Package constants provides shared constants for the loan-engine application.
package constants

// DateLayout is the ISO date format expected in requests and config files and
// is also the output date format.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MonthsPerQuarter is the number of months in a quarter
	MonthsPerQuarter = 3

	// QuartersPerYear is the number of quarters in a year
	QuartersPerYear = 4

	// CurrencyPlaces is the number of decimal places used when presenting money
	CurrencyPlaces = 2

	// InterestPlaces is the precision interest amounts are carried at internally
	InterestPlaces = 16

	// FactorPlaces is the precision rates and compounding factors are carried at
	FactorPlaces = 28

	// DefaultLoanTerm is the term in months used when a term cannot be parsed
	DefaultLoanTerm = 12

	// MaxLoanTerm is the longest term in months a request may ask for
	MaxLoanTerm = 600

	// DefaultDayCountBase is the day-count divisor used unless 360 is requested
	DefaultDayCountBase = 365

	// DefaultCurrency is the ISO currency code used when a request omits one
	DefaultCurrency = "GBP"

	// DefaultMaxLTV is the advisory loan-to-value ceiling, in percent
	DefaultMaxLTV = 75
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format using the API response shape
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum JSON request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024

	// ServerAddressEnv overrides the configured listen address
	ServerAddressEnv = "LOAN_ENGINE_ADDRESS"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 penny)
	CurrencyTolerance = "0.01"

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// SolverMaxIterations bounds the payment solver bisection
	SolverMaxIterations = 100
)
