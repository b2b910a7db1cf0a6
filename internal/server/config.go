package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/loan-engine/internal/config"
	"github.com/iwvelando/loan-engine/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address          string               `yaml:"address"`
	MaxRequestSize   string               `yaml:"maxRequestSize"`
	Logging          config.LoggingConfig `yaml:"logging"`
	Engine           config.EngineConfig  `yaml:"engine"`
	requestSizeBytes int64
}

// LoadConfig reads the server YAML at path. A blank path or a missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Address:        constants.DefaultServerAddress,
		MaxRequestSize: strconv.FormatInt(constants.DefaultMaxRequestSizeBytes, 10),
		Engine: config.EngineConfig{
			Currency: constants.DefaultCurrency,
			MaxLTV:   constants.DefaultMaxLTV,
		},
		requestSizeBytes: constants.DefaultMaxRequestSizeBytes,
	}
}

// ApplyEnv overrides the listen address from the environment.
func (c *Config) ApplyEnv() {
	if address := strings.TrimSpace(os.Getenv(constants.ServerAddressEnv)); address != "" {
		c.Address = address
	}
}

// RequestSizeBytes returns the configured request body limit in bytes.
func (c *Config) RequestSizeBytes() int64 {
	return c.requestSizeBytes
}

// SetRequestSizeBytes overrides the configured request body limit.
func (c *Config) SetRequestSizeBytes(size int64) {
	if size > 0 {
		c.requestSizeBytes = size
		c.MaxRequestSize = strconv.FormatInt(size, 10)
	}
}

// Engine settings as a full configuration, for the normalizer defaults.
func (c *Config) engineConfiguration() *config.Configuration {
	return &config.Configuration{Engine: c.Engine}
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}
	c.Engine.Currency = strings.ToUpper(strings.TrimSpace(c.Engine.Currency))
	if c.Engine.Currency == "" {
		c.Engine.Currency = constants.DefaultCurrency
	}

	size, err := ParseSize(c.MaxRequestSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxRequestSizeBytes
	}
	c.requestSizeBytes = size
	c.MaxRequestSize = strconv.FormatInt(size, 10)
	return nil
}

// sizeUnits are matched longest first so "KB" is not read as "B".
var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"B", 1},
}

// ParseSize converts a byte count with an optional B, K/KB or M/MB suffix
// into bytes. A blank value is the default request size.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	number, multiplier := trimmed, int64(1)
	for _, unit := range sizeUnits {
		if rest, ok := strings.CutSuffix(trimmed, unit.suffix); ok {
			number, multiplier = strings.TrimSpace(rest), unit.multiplier
			break
		}
	}
	if number == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		if strings.IndexFunc(number, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' && r != '-' }) >= 0 {
			return 0, fmt.Errorf("unsupported size unit in %q", value)
		}
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n < 0 || n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size out of range: %s", value)
	}
	return n * multiplier, nil
}
