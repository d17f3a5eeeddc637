package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/tailorworks/tailor-etl/internal/db"
	"github.com/tailorworks/tailor-etl/internal/logging"
	"github.com/tailorworks/tailor-etl/internal/store/memory"
	"github.com/tailorworks/tailor-etl/internal/store/postgres"
	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

var (
	runDryRun      bool
	runPaymentKey  string
	runDedupeFacts bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL once",
	Long: `Extract every source table, rebuild the date dimension, load the
dimensions and append the fact rows. Dimension loads skip rows that are
already present; facts are appended on every run unless --dedupe-facts is set.

A summary of rows read and inserted per table is printed on completion.
The exit status is non-zero when any stage fails.

Example:
  tailor-etl run --connection "postgres://..."
  tailor-etl run --payment-key lookup --dedupe-facts
  tailor-etl run --dry-run`,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
}

// addRunFlags registers the run flags; the root command runs the ETL too.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"load into an in-memory warehouse instead of the target database")
	cmd.Flags().StringVar(&runPaymentKey, "payment-key", "",
		"how facts reference payments: order (payment id = order id) or lookup")
	cmd.Flags().BoolVar(&runDedupeFacts, "dedupe-facts", false,
		"skip fact rows already loaded for the same order line")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if runDryRun {
		cfg.Run.DryRun = true
	}
	if runPaymentKey != "" {
		cfg.Run.PaymentKey = runPaymentKey
	}
	if runDedupeFacts {
		cfg.Run.DedupeFacts = true
	}

	// Validate configuration
	if err := cfg.ValidateRun(); err != nil {
		return err
	}
	mode, err := warehouse.ParsePaymentKeyMode(cfg.Run.PaymentKey)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	sourcePool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return warehouse.NewConnectionError("connect source", err)
	}
	defer sourcePool.Close()

	var (
		target     warehouse.Target
		targetPool *pgxpool.Pool
	)
	if cfg.Run.DryRun {
		target = memory.NewTarget(memory.TargetOptions{DedupeFacts: cfg.Run.DedupeFacts})
	} else {
		targetPool = sourcePool
		if cfg.TargetConn() != cfg.Connection {
			targetPool, err = db.Connect(ctx, cfg.TargetConn())
			if err != nil {
				return warehouse.NewConnectionError("connect target", err)
			}
			defer targetPool.Close()
		}
		target = postgres.NewTarget(targetPool, postgres.TargetOptions{DedupeFacts: cfg.Run.DedupeFacts})

		if exists, err := db.MetadataExists(ctx, targetPool); err == nil && !exists {
			logging.Warn().Msg("Warehouse metadata not found; has 'tailor-etl init' been run?")
		}
	}

	pipeline := warehouse.NewPipeline(postgres.NewSource(sourcePool), target, warehouse.Options{
		PaymentKey: mode,
		DryRun:     cfg.Run.DryRun,
	})
	report, runErr := pipeline.Run(ctx)

	for _, t := range report.Tables {
		logging.Debug().Object("stats", t).Msg("Table summary")
	}
	if err := WriteSummary(cmd.OutOrStdout(), report); err != nil {
		logging.Warn().Err(err).Msg("Failed to print summary")
	}

	if targetPool != nil {
		// The run context may already be cancelled; metadata is still recorded.
		if err := db.RecordRun(context.Background(), targetPool, report.StartedAt, runStatus(report)); err != nil {
			logging.Warn().Err(err).Msg("Failed to record run metadata")
		}
	}

	if runErr != nil {
		return fmt.Errorf("etl run failed: %w", runErr)
	}
	return nil
}

// runStatus is the last_run_status metadata value for report.
func runStatus(report *warehouse.Report) string {
	if report.Succeeded() {
		return "succeeded"
	}
	return "failed at " + string(report.FailedStage)
}

// elapsed formats a run duration for the summary.
func elapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
