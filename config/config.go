// Package config loads the engine configuration. One file, read at
// startup, read-only afterwards; a malformed config fails the launch
// before any cycle runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/decision"
	"github.com/rustyeddy/papertrader/risk"
	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Session  SessionConfig   `json:"session" yaml:"session"`
	Decision decision.Config `json:"decision" yaml:"decision"`
	Risk     risk.Limits     `json:"risk" yaml:"risk"`
	Fees     FeesConfig      `json:"fees" yaml:"fees"`
	Source   SourceConfig    `json:"source" yaml:"source"`
	Model    ModelConfig     `json:"model" yaml:"model"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
	Snapshot SnapshotConfig  `json:"snapshot" yaml:"snapshot"`
}

// SessionConfig drives the polling loop.
type SessionConfig struct {
	Instrument          string   `json:"instrument" yaml:"instrument"`
	Interval            Duration `json:"interval" yaml:"interval"`
	QuoteTimeout        Duration `json:"quote_timeout" yaml:"quote_timeout"`
	MaxConsecutiveFails int      `json:"max_consecutive_failures" yaml:"max_consecutive_failures"`
	StartingCapital     float64  `json:"starting_capital" yaml:"starting_capital"`
	WindowCapacity      int      `json:"window_capacity" yaml:"window_capacity"`
	SystematicBlend     float64  `json:"systematic_blend" yaml:"systematic_blend"`
}

type FeesConfig struct {
	PerTrade float64 `json:"per_trade" yaml:"per_trade"`
	Rate     float64 `json:"rate" yaml:"rate"` // fraction of notional
}

// For returns the fee charged on a fill of the given notional value.
func (f FeesConfig) For(notional float64) float64 {
	return f.PerTrade + f.Rate*notional
}

type SourceConfig struct {
	Type       string  `json:"type" yaml:"type"` // "sim" or "replay"
	Seed       int64   `json:"seed" yaml:"seed"`
	StartPrice float64 `json:"start_price" yaml:"start_price"`
	Drift      float64 `json:"drift" yaml:"drift"`
	Volatility float64 `json:"volatility" yaml:"volatility"`
	ReplayFile string  `json:"replay_file" yaml:"replay_file"`
}

type ModelConfig struct {
	Path string `json:"path" yaml:"path"` // empty disables the learned engine
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	CyclesFile string `json:"cycles_file,omitempty" yaml:"cycles_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type SnapshotConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LoadFromFile loads a configuration file, YAML or JSON by content.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks everything the launch surface treats as fatal.
func (c *Config) Validate() error {
	if c.Session.Instrument == "" {
		return fmt.Errorf("session.instrument is required")
	}
	if c.Session.Interval <= 0 {
		return fmt.Errorf("session.interval must be positive")
	}
	if c.Session.QuoteTimeout <= 0 {
		return fmt.Errorf("session.quote_timeout must be positive")
	}
	if c.Session.MaxConsecutiveFails <= 0 {
		return fmt.Errorf("session.max_consecutive_failures must be positive")
	}
	if c.Session.StartingCapital <= 0 {
		return fmt.Errorf("session.starting_capital must be positive")
	}
	if c.Session.WindowCapacity < 64 {
		return fmt.Errorf("session.window_capacity must cover the longest lookback (64), got %d",
			c.Session.WindowCapacity)
	}
	if c.Session.SystematicBlend < 0 || c.Session.SystematicBlend > 1 {
		return fmt.Errorf("session.systematic_blend must be within [0, 1]")
	}
	if err := c.Decision.Validate(); err != nil {
		return err
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	if c.Fees.PerTrade < 0 || c.Fees.Rate < 0 {
		return fmt.Errorf("fees must be non-negative")
	}
	switch c.Source.Type {
	case "sim":
	case "replay":
		if c.Source.ReplayFile == "" {
			return fmt.Errorf("source.replay_file required for replay source")
		}
	default:
		return fmt.Errorf("source.type must be 'sim' or 'replay', got %q", c.Source.Type)
	}
	switch strings.ToLower(c.Journal.Type) {
	case "csv":
		if c.Journal.CyclesFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal cycles_file and trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none', got %q", c.Journal.Type)
	}
	if c.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path is required")
	}
	return nil
}

// Default returns the configuration the engine ships with.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Instrument:          "BTC-USD",
			Interval:            Duration(5 * time.Second),
			QuoteTimeout:        Duration(3 * time.Second),
			MaxConsecutiveFails: 5,
			StartingCapital:     10000,
			WindowCapacity:      120,
			SystematicBlend:     0.7,
		},
		Decision: decision.DefaultConfig(),
		Risk:     risk.DefaultLimits(),
		Source: SourceConfig{
			Type:       "sim",
			Seed:       1,
			StartPrice: 100,
		},
		Journal: JournalConfig{
			Type:       "csv",
			CyclesFile: "./cycles.csv",
			TradesFile: "./trades.csv",
		},
		Snapshot: SnapshotConfig{
			Path: "./snapshot.json",
		},
	}
}
