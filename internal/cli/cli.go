//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for tailor-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tailorworks/tailor-etl/internal/config"
	"github.com/tailorworks/tailor-etl/internal/logging"
	"github.com/tailorworks/tailor-etl/pkg/version"
)

var (
	// Global flags
	cfgFile          string
	connection       string
	targetConnection string
	logLevel         string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "tailor-etl",
		Short: "Refresh the tailoring star schema from the order database",
		Long: `tailor-etl reads customers, tailors, materials, services, order
statuses, orders, order lines and payments from the tailoring service's
transactional database and loads them into a star schema: a date dimension,
six descriptive dimensions and one fact row per order line.

Running tailor-etl without a subcommand performs an ETL run, the same as
'tailor-etl run'. Use 'tailor-etl init' to create the schemas and load
sample data.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE:          runRun,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./tailor-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string of the order database")
	rootCmd.PersistentFlags().StringVar(&targetConnection, "target-connection", "",
		"PostgreSQL connection string of the warehouse (default: same as --connection)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	addRunFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if targetConnection != "" {
		cfg.TargetConnection = targetConnection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
