// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cwhuang/wingbot/internal/types"
)

// Config represents the full application configuration.
type Config struct {
	Market      MarketConfig      `yaml:"market"`
	Strategy    StrategyConfig    `yaml:"strategy"`
	Execution   ExecutionConfig   `yaml:"execution"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	Alerting    AlertingConfig    `yaml:"alerting"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// MarketConfig holds market and session settings.
type MarketConfig struct {
	FuturesSymbol string `yaml:"futures_symbol"`
	Timezone      string `yaml:"timezone"`
}

// StrategyConfig holds the wing ladder settings.
type StrategyConfig struct {
	ReferencePrice  float64  `yaml:"reference_price"`
	Scale           float64  `yaml:"scale"`
	OptionSymbols   []string `yaml:"option_symbols"`
	PollIntervalSec int      `yaml:"poll_interval_sec"`
}

// ExecutionConfig holds retry loop settings.
type ExecutionConfig struct {
	TrialLimit    int `yaml:"trial_limit"`
	AttemptWaitMs int `yaml:"attempt_wait_ms"`
	ResendEvery   int `yaml:"resend_every"`
	EscalateEvery int `yaml:"escalate_every"`
	PriceTick     int `yaml:"price_tick"`
}

// GatewayConfig holds bridge connection settings.
type GatewayConfig struct {
	Type              string `yaml:"type"` // sinopac | paper
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	APIKey            string `yaml:"api_key"`
	SecretKey         string `yaml:"secret_key"`
	Simulation        bool   `yaml:"simulation"`
	ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
	RateLimitPerSec   int    `yaml:"rate_limit_per_sec"`
}

// AlertingConfig holds alerting settings.
type AlertingConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Channels []ChannelConfig `yaml:"channels"`
}

// ChannelConfig holds a single alert channel configuration.
type ChannelConfig struct {
	Type     string `yaml:"type"` // telegram | console
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// MetricsConfig holds metrics server settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// PersistenceConfig holds checkpoint settings.
type PersistenceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment variable
// references in the file are expanded before parsing.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration and fills defaults.
func (c *Config) Validate() error {
	var errs []string

	if c.Market.FuturesSymbol == "" {
		errs = append(errs, "market.futures_symbol is required")
	}

	if c.Strategy.ReferencePrice <= 0 {
		errs = append(errs, "strategy.reference_price must be positive")
	}
	if c.Strategy.Scale <= 0 {
		errs = append(errs, "strategy.scale must be positive")
	}
	if len(c.Strategy.OptionSymbols) == 0 {
		errs = append(errs, "strategy.option_symbols is required")
	}
	if c.Strategy.PollIntervalSec <= 0 {
		c.Strategy.PollIntervalSec = 1
	}

	if c.Execution.TrialLimit <= 0 {
		c.Execution.TrialLimit = 200
	}
	if c.Execution.AttemptWaitMs <= 0 {
		c.Execution.AttemptWaitMs = 500
	}
	if c.Execution.ResendEvery <= 0 {
		c.Execution.ResendEvery = 10
	}
	if c.Execution.EscalateEvery <= 0 {
		c.Execution.EscalateEvery = 50
	}
	if c.Execution.PriceTick <= 0 {
		c.Execution.PriceTick = 1
	}

	switch c.Gateway.Type {
	case "sinopac":
		if c.Gateway.Host == "" {
			errs = append(errs, "gateway.host is required")
		}
		if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
			errs = append(errs, "gateway.port must be a valid port")
		}
		if !c.Gateway.Simulation && (c.Gateway.APIKey == "" || c.Gateway.SecretKey == "") {
			errs = append(errs, "gateway.api_key and gateway.secret_key are required for live trading")
		}
	case "paper":
	case "":
		errs = append(errs, "gateway.type is required ('sinopac' or 'paper')")
	default:
		errs = append(errs, fmt.Sprintf("gateway.type '%s' is not supported", c.Gateway.Type))
	}
	if c.Gateway.ConnectTimeoutSec <= 0 {
		c.Gateway.ConnectTimeoutSec = 10
	}
	if c.Gateway.RateLimitPerSec <= 0 {
		c.Gateway.RateLimitPerSec = 10
	}

	if c.Alerting.Enabled {
		for i, ch := range c.Alerting.Channels {
			switch ch.Type {
			case "telegram":
				if ch.BotToken == "" || ch.ChatID == "" {
					errs = append(errs, fmt.Sprintf("alerting.channels[%d]: bot_token and chat_id are required for telegram", i))
				}
			case "console":
			default:
				errs = append(errs, fmt.Sprintf("alerting.channels[%d]: type '%s' is not supported", i, ch.Type))
			}
		}
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, "metrics.port must be a valid port")
	}

	if c.Persistence.Enabled && c.Persistence.Path == "" {
		errs = append(errs, "persistence.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", types.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// ReferencePriceDecimal returns the reference price as decimal.
func (c *Config) ReferencePriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Strategy.ReferencePrice)
}

// ScaleDecimal returns the ladder scale as decimal.
func (c *Config) ScaleDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Strategy.Scale)
}

// PriceTickDecimal returns the price concession step as decimal.
func (c *Config) PriceTickDecimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c.Execution.PriceTick))
}

// PollInterval returns the price polling cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Strategy.PollIntervalSec) * time.Second
}

// AttemptWait returns the pause between retry attempts.
func (c *Config) AttemptWait() time.Duration {
	return time.Duration(c.Execution.AttemptWaitMs) * time.Millisecond
}

// ConnectTimeout returns the gateway dial timeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Gateway.ConnectTimeoutSec) * time.Second
}
