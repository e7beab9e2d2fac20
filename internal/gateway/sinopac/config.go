// Package sinopac implements the gateway against the Shioaji bridge sidecar,
// a local process that owns the broker session and relays ticks, combo
// orders, and execution reports over a NUL-delimited TCP protocol.
package sinopac

import (
	"fmt"
	"time"

	"github.com/cwhuang/wingbot/internal/types"
)

// Config holds bridge connection settings.
type Config struct {
	Host                 string
	Port                 int
	APIKey               string
	SecretKey            string
	Simulation           bool
	ConnectTimeout       time.Duration
	MaxRequestsPerSecond int
}

// DefaultConfig returns sensible bridge defaults.
func DefaultConfig() Config {
	return Config{
		Host:                 "127.0.0.1",
		Port:                 6357,
		Simulation:           true,
		ConnectTimeout:       10 * time.Second,
		MaxRequestsPerSecond: 10,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: bridge host is required", types.ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: bridge port %d out of range", types.ErrInvalidConfig, c.Port)
	}
	if !c.Simulation {
		if c.APIKey == "" {
			return fmt.Errorf("%w: api key is required for live trading", types.ErrInvalidConfig)
		}
		if c.SecretKey == "" {
			return fmt.Errorf("%w: secret key is required for live trading", types.ErrInvalidConfig)
		}
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout must be positive", types.ErrInvalidConfig)
	}
	if c.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("%w: request rate must be positive", types.ErrInvalidConfig)
	}
	return nil
}
