//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse implements the batch ETL that refreshes the tailoring
// star schema from the transactional store.
//
// A run extracts every source table, derives the date dimension, loads the
// six descriptive dimensions by natural key and appends one fact row per
// order line. Stages run strictly in sequence on the caller's goroutine.
// There is no run-wide transaction: a failure leaves the writes of the
// completed stages in place. Dimension loads are idempotent, fact loads are
// not unless the target de-duplicates them.
package warehouse

import (
	"context"
	"time"

	"github.com/tailorworks/tailor-etl/internal/logging"
)

// Options tunes a pipeline run.
type Options struct {
	// PaymentKey selects how fact rows reference dim_payment.
	PaymentKey PaymentKeyMode

	// DryRun only marks the report; the caller chooses the target.
	DryRun bool
}

// Pipeline sequences the ETL stages over injected stores.
type Pipeline struct {
	source Source
	target Target
	opts   Options
}

// NewPipeline creates a pipeline reading from source and writing to target.
func NewPipeline(source Source, target Target, opts Options) *Pipeline {
	if opts.PaymentKey == "" {
		opts.PaymentKey = PaymentKeyOrder
	}
	return &Pipeline{
		source: source,
		target: target,
		opts:   opts,
	}
}

// Run executes extract, date dimension, dimensions and facts in order. The
// first fatal error aborts the remaining stages; it is returned wrapped in a
// *StageError and also recorded in the report, which is never nil.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		StartedAt: time.Now(),
		DryRun:    p.opts.DryRun,
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	logging.Info().
		Str("payment_key", string(p.opts.PaymentKey)).
		Bool("dry_run", p.opts.DryRun).
		Msg("Starting ETL run")

	var snap *Snapshot
	stages := []struct {
		stage Stage
		run   func() error
	}{
		{StageExtract, func() (err error) {
			snap, err = Extract(ctx, p.source, report)
			return err
		}},
		{StageDates, func() error {
			return BuildDateDimension(ctx, p.target, snap.Orders, snap.Payments, report)
		}},
		{StageDimensions, func() error {
			return LoadDimensions(ctx, p.target, snap, report)
		}},
		{StageFacts, func() error {
			return BuildFacts(ctx, p.target, snap, p.opts.PaymentKey, report)
		}},
	}

	for _, s := range stages {
		started := time.Now()
		if err := s.run(); err != nil {
			report.FailedStage = s.stage
			report.Err = &StageError{Stage: s.stage, Err: err}
			logging.Error().
				Err(err).
				Str("stage", string(s.stage)).
				Msg("ETL run aborted")
			return report, report.Err
		}
		logging.Debug().
			Str("stage", string(s.stage)).
			Dur("elapsed", time.Since(started)).
			Msg("Stage complete")
	}

	facts := report.Totals(StageFacts)
	logging.Info().
		Int("facts_inserted", facts.Inserted).
		Int("orphaned", facts.Orphaned).
		Dur("elapsed", time.Since(report.StartedAt)).
		Msg("ETL run completed")

	return report, nil
}
