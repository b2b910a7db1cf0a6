// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-engine/pkg/adapters"
	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/iwvelando/loan-engine/pkg/loans"
	"github.com/iwvelando/loan-engine/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// Configuration holds all configuration for loan-engine.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Engine  EngineConfig  `yaml:"engine,omitempty"`
	Loans   []Loan        `yaml:"loans"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// EngineConfig holds the defaults handed to the request normalizer and the
// advisory checks run over each result.
type EngineConfig struct {
	Currency            string  `yaml:"currency,omitempty"`
	Use360Days          bool    `yaml:"use360Days,omitempty"`
	LegacyCompatibility bool    `yaml:"legacyCompatibility,omitempty"`
	MaxLTV              float64 `yaml:"maxLtv,omitempty"` // percent, 0 disables the check
	SolvePayments       bool    `yaml:"solvePayments,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.AutomaticEnv()
	v.SetDefault("engine.currency", constants.DefaultCurrency)
	v.SetDefault("engine.maxLtv", constants.DefaultMaxLTV)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// NormalizerOptions returns the request defaults this configuration implies.
func (c *Configuration) NormalizerOptions() adapters.NormalizerOptions {
	opts := adapters.NormalizerOptions{
		DefaultCurrency:     c.Engine.Currency,
		DefaultDayCountBase: loans.DayCount365,
		LegacyCompatibility: c.Engine.LegacyCompatibility,
	}
	if c.Engine.Use360Days {
		opts.DefaultDayCountBase = loans.DayCount360
	}
	return opts
}

// MaxLTV is the advisory loan-to-value ceiling in percent.
func (c *Configuration) MaxLTV() decimal.Decimal {
	return decimal.NewFromFloat(c.Engine.MaxLTV)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Engine.MaxLTV < 0 {
		warnings = append(warnings, fmt.Sprintf("engine maxLtv %.2f is negative; the LTV check is disabled", c.Engine.MaxLTV))
	}

	active := 0
	seen := make(map[string]bool, len(c.Loans))
	for i, loan := range c.Loans {
		name := strings.TrimSpace(loan.Name)
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("loan %d has no name", i+1))
		} else if seen[name] {
			warnings = append(warnings, fmt.Sprintf("loan name '%s' is used more than once", name))
		}
		seen[name] = true

		if !loan.Active {
			continue
		}
		active++
		if len(loan.Parameters) == 0 {
			warnings = append(warnings, fmt.Sprintf("loan '%s' is active but has no parameters", loan.Name))
		}
	}
	if active == 0 {
		warnings = append(warnings, "no active loans are configured")
	}

	return warnings
}
