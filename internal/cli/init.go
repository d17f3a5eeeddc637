package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/tailorworks/tailor-etl/internal/config"
	"github.com/tailorworks/tailor-etl/internal/datagen"
	"github.com/tailorworks/tailor-etl/internal/db"
	"github.com/tailorworks/tailor-etl/internal/logging"
	"github.com/tailorworks/tailor-etl/internal/store/postgres"
	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

var (
	initDropExisting bool
	initSeed         string
	initFakeOrders   int
	initFakeSeed     uint64
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the order and warehouse schemas and load seed data",
	Long: `Create the transactional tables and the star schema, then load
the order tables with either the built-in sample data set or generated
fake data. The warehouse itself is left empty until the first run.

Example:
  tailor-etl init --connection "postgres://..."
  tailor-etl init --seed fake --fake-orders 5000 --fake-seed 42
  tailor-etl init --drop-existing --seed none`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing tables before initialization")
	initCmd.Flags().StringVar(&initSeed, "seed", "",
		"seed data: none, sample or fake (default: sample)")
	initCmd.Flags().IntVar(&initFakeOrders, "fake-orders", 0,
		"number of orders to generate with --seed fake (default: 100)")
	initCmd.Flags().Uint64Var(&initFakeSeed, "fake-seed", 0,
		"random seed for --seed fake (default: time based)")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initDropExisting {
		cfg.Init.DropExisting = true
	}
	if initSeed != "" {
		cfg.Init.Seed = initSeed
	}
	if initFakeOrders > 0 {
		cfg.Init.FakeOrders = initFakeOrders
	}
	if initFakeSeed > 0 {
		cfg.Init.FakeSeed = initFakeSeed
	}

	// Validate configuration
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	logging.Info().
		Str("seed", cfg.Init.Seed).
		Bool("drop_existing", cfg.Init.DropExisting).
		Msg("Initializing databases")

	ctx := context.Background()
	sourcePool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return warehouse.NewConnectionError("connect source", err)
	}
	defer sourcePool.Close()

	targetPool := sourcePool
	if cfg.TargetConn() != cfg.Connection {
		targetPool, err = db.Connect(ctx, cfg.TargetConn())
		if err != nil {
			return warehouse.NewConnectionError("connect target", err)
		}
		defer targetPool.Close()
	}

	// Drop existing schema if requested
	if cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := postgres.DropWarehouseSchema(ctx, targetPool); err != nil {
			return fmt.Errorf("failed to drop warehouse schema: %w", err)
		}
		if err := postgres.DropSourceSchema(ctx, sourcePool); err != nil {
			return fmt.Errorf("failed to drop source schema: %w", err)
		}
		if err := db.DropMetadata(ctx, targetPool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating schema")
	if err := postgres.CreateSourceSchema(ctx, sourcePool); err != nil {
		return err
	}
	if err := postgres.CreateWarehouseSchema(ctx, targetPool); err != nil {
		return err
	}

	if err := seedSource(ctx, sourcePool, cfg.Init); err != nil {
		return err
	}

	if err := db.SaveMetadata(ctx, targetPool, cfg.Init.Seed); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("seed", cfg.Init.Seed).
		Msg("Database initialization complete")

	return nil
}

// seedSource loads the configured seed data into empty order tables.
func seedSource(ctx context.Context, pool *pgxpool.Pool, opts config.InitConfig) error {
	var snap warehouse.Snapshot
	switch opts.Seed {
	case config.SeedNone:
		return nil
	case config.SeedSample:
		snap = datagen.Sample()
	case config.SeedFake:
		f := datagen.NewFaker()
		if opts.FakeSeed != 0 {
			f = datagen.NewFakerWithSeed(opts.FakeSeed)
		}
		snap = datagen.Generate(f, opts.FakeOrders)
	}

	populated, err := postgres.HasSourceData(ctx, pool)
	if err != nil {
		return err
	}
	if populated {
		return fmt.Errorf("order tables already contain data; use --drop-existing to reseed")
	}

	logging.Info().
		Int("orders", len(snap.Orders)).
		Int("order_lines", len(snap.LineDetails)).
		Int("payments", len(snap.Payments)).
		Msg("Seeding order tables")

	if err := postgres.WriteSnapshot(ctx, pool, &snap, datagen.DefaultBatchConfig()); err != nil {
		return fmt.Errorf("failed to seed order tables: %w", err)
	}
	return nil
}
