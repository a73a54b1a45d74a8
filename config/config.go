package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"minance/gateway"
)

// Config is the dashboard configuration. Credentials are never part of the
// file; see Credentials().
type Config struct {
	Gateway   GatewayConfig   `json:"gateway" yaml:"gateway"`
	Ledger    LedgerConfig    `json:"ledger" yaml:"ledger"`
	Portfolio PortfolioConfig `json:"portfolio" yaml:"portfolio"`
}

// GatewayConfig locates the exchange bridge.
type GatewayConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "30s"
}

// ParseTimeout converts the timeout string to a time.Duration.
func (g GatewayConfig) ParseTimeout() (time.Duration, error) {
	if g.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(g.Timeout)
}

// LedgerConfig locates the local ledger database.
type LedgerConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PortfolioConfig tunes the active view.
type PortfolioConfig struct {
	StableAsset   string  `json:"stable_asset" yaml:"stable_asset"`
	DustThreshold float64 `json:"dust_threshold" yaml:"dust_threshold"`
}

// Threshold returns the dust threshold as a decimal.
func (p PortfolioConfig) Threshold() decimal.Decimal {
	return decimal.NewFromFloat(p.DustThreshold)
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if _, err := c.Gateway.ParseTimeout(); err != nil {
		return fmt.Errorf("gateway.timeout: %w", err)
	}
	if c.Ledger.DBPath == "" {
		return fmt.Errorf("ledger.db_path is required")
	}
	if c.Portfolio.StableAsset == "" {
		return fmt.Errorf("portfolio.stable_asset is required")
	}
	if c.Portfolio.DustThreshold < 0 {
		return fmt.Errorf("portfolio.dust_threshold must not be negative")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Ledger: LedgerConfig{
			DBPath: "./minance.db",
		},
		Portfolio: PortfolioConfig{
			StableAsset:   "USDT",
			DustThreshold: 5,
		},
	}
}

// Credentials reads the exchange API key pair from MINANCE_API_KEY and
// MINANCE_API_SECRET, loading a .env file first when one is present. Secrets
// stay out of the config file on purpose.
func Credentials() (gateway.Credentials, error) {
	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	creds := gateway.Credentials{
		APIKey:    os.Getenv("MINANCE_API_KEY"),
		APISecret: os.Getenv("MINANCE_API_SECRET"),
	}
	if creds.APIKey == "" || creds.APISecret == "" {
		return gateway.Credentials{}, fmt.Errorf("MINANCE_API_KEY and MINANCE_API_SECRET must be set")
	}
	return creds, nil
}
