//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for tailor-etl.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

// DefaultConnection is used when neither a config file nor a flag names
// the source database.
const DefaultConnection = "postgres://postgres@localhost:5432/tailor"

// Seed modes for init.
const (
	SeedNone   = "none"
	SeedSample = "sample"
	SeedFake   = "fake"
)

// Config holds all configuration for tailor-etl.
type Config struct {
	// Connection is the PostgreSQL connection string of the source database.
	Connection string `mapstructure:"connection"`

	// TargetConnection is the warehouse database; empty means Connection.
	TargetConnection string `mapstructure:"target_connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Run holds configuration for an ETL run.
	Run RunConfig `mapstructure:"run"`
}

// InitConfig holds configuration for schema provisioning and seeding.
type InitConfig struct {
	// DropExisting drops existing tables before initialization.
	DropExisting bool `mapstructure:"drop_existing"`

	// Seed selects the source data to load: none, sample or fake.
	Seed string `mapstructure:"seed"`

	// FakeOrders is the number of orders generated by the fake seed.
	FakeOrders int `mapstructure:"fake_orders"`

	// FakeSeed makes fake data reproducible; 0 seeds from the clock.
	FakeSeed uint64 `mapstructure:"fake_seed"`
}

// RunConfig holds configuration for the ETL run.
type RunConfig struct {
	// DryRun loads into an in-memory warehouse instead of the target.
	DryRun bool `mapstructure:"dry_run"`

	// PaymentKey selects how fact rows reference dim_payment: order or lookup.
	PaymentKey string `mapstructure:"payment_key"`

	// DedupeFacts skips fact rows already loaded for the same order line.
	DedupeFacts bool `mapstructure:"dedupe_facts"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Connection: DefaultConnection,
		LogLevel:   "info",
		Init: InitConfig{
			Seed:       SeedSample,
			FakeOrders: 100,
		},
		Run: RunConfig{
			PaymentKey: string(warehouse.PaymentKeyOrder),
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./tailor-etl.yaml
// 3. ~/.config/tailor-etl/tailor-etl.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("tailor-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "tailor-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// TargetConn returns the warehouse connection string.
func (c *Config) TargetConn() string {
	if c.TargetConnection != "" {
		return c.TargetConnection
	}
	return c.Connection
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}

// ValidateInit checks configuration required for init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.Init.Seed {
	case SeedNone, SeedSample:
	case SeedFake:
		if c.Init.FakeOrders < 1 {
			return fmt.Errorf("fake_orders must be at least 1")
		}
	default:
		return fmt.Errorf("seed must be 'none', 'sample' or 'fake'")
	}
	return nil
}

// ValidateRun checks configuration required for an ETL run.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := warehouse.ParsePaymentKeyMode(c.Run.PaymentKey); err != nil {
		return err
	}
	return nil
}
