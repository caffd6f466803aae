// Package config defines all configuration for a run. Config is loaded
// from a YAML file (default: configs/config.yaml) with sensitive fields
// overridable via TC_* environment variables, the same viper-driven
// pattern the teacher uses for its POLY_* overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Run       RunConfig       `mapstructure:"run"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// RunConfig controls what the run loop replays and how.
type RunConfig struct {
	DataPath     string   `mapstructure:"data_path"`
	BaseCurrency string   `mapstructure:"base_currency"`
	Assets       []string `mapstructure:"assets"`
	Parallelism  int      `mapstructure:"parallelism"`
}

// BrokerConfig configures the simulated account and its buying-power model.
//
//   - InitialCash: starting balance in BaseCurrency.
//   - Margin: if > 1, buying power comes from MarginAccount with initial and
//     maintenance rates of 1/Margin, i.e. equity * Margin less current
//     exposure; if <= 1, buying power is cash on hand only (CashAccount).
//   - FeeRate: percentage fee charged per trade notional, e.g. 0.001 for 10 bips.
type BrokerConfig struct {
	InitialCash float64 `mapstructure:"initial_cash"`
	Margin      float64 `mapstructure:"margin"`
	FeeRate     float64 `mapstructure:"fee_rate"`
}

// ExecutionConfig tunes the execution engine's pricing model.
//
//   - SpreadBips: if > 0, orders are priced through pricing.Spread instead
//     of pricing.NoCost, modelling the cost of crossing a spread.
//   - GTCMaxDays: default GTC expiry window in days when a Strategy doesn't
//     specify one explicitly.
type ExecutionConfig struct {
	SpreadBips float64 `mapstructure:"spread_bips"`
	GTCMaxDays int     `mapstructure:"gtc_max_days"`
	Exchange   string  `mapstructure:"exchange"`
}

// StoreConfig sets where the asset/exchange registry loads its
// definitions from at startup (spec §9's process-wide registries).
type StoreConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DashboardConfig controls the optional streaming dashboard server.
type DashboardConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config from a YAML file with env var overrides.
// Keys present in the file can be overridden by TC_* env vars with dots
// replaced by underscores (e.g. TC_BROKER_INITIAL_CASH); TC_DATA_PATH and
// TC_DASHBOARD_PORT are also read directly as short forms of run.data_path
// and dashboard.port.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if path := os.Getenv("TC_DATA_PATH"); path != "" {
		cfg.Run.DataPath = path
	}
	if port := os.Getenv("TC_DASHBOARD_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			cfg.Dashboard.Port = p
		}
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Run.DataPath == "" {
		return fmt.Errorf("run.data_path is required")
	}
	if c.Run.BaseCurrency == "" {
		return fmt.Errorf("run.base_currency is required")
	}
	if c.Broker.InitialCash <= 0 {
		return fmt.Errorf("broker.initial_cash must be > 0")
	}
	if c.Broker.FeeRate < 0 {
		return fmt.Errorf("broker.fee_rate must be >= 0")
	}
	if c.Execution.GTCMaxDays < 0 {
		return fmt.Errorf("execution.gtc_max_days must be >= 0")
	}
	if c.Dashboard.Enabled && c.Dashboard.Port == 0 {
		return fmt.Errorf("dashboard.port is required when dashboard.enabled is true")
	}
	return nil
}
