//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tailorworks/tailor-etl/internal/logging"
	"github.com/tailorworks/tailor-etl/pkg/version"
)

const metadataTable = "warehouse_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS warehouse_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// putMetadata upserts every key of values.
func putMetadata(ctx context.Context, q Querier, values map[string]string) error {
	if _, err := q.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	ins := psql.Insert(metadataTable).Columns("key", "value").
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value")
	for key, value := range values {
		ins = ins.Values(key, value)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build metadata insert: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

// SaveMetadata records how the warehouse was initialized.
func SaveMetadata(ctx context.Context, q Querier, seed string) error {
	err := putMetadata(ctx, q, map[string]string{
		"version":        version.Short(),
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
		"seed":           seed,
	})
	if err != nil {
		return err
	}

	logging.Debug().
		Str("seed", seed).
		Msg("Saved metadata")

	return nil
}

// RecordRun records the outcome of the latest ETL run.
func RecordRun(ctx context.Context, q Querier, at time.Time, status string) error {
	return putMetadata(ctx, q, map[string]string{
		"version":         version.Short(),
		"last_run_at":     at.UTC().Format(time.RFC3339),
		"last_run_status": status,
	})
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, q Querier, key string) (string, error) {
	sql, args, err := psql.Select("value").From(metadataTable).
		Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return "", err
	}

	var value string
	if err := q.QueryRow(ctx, sql, args...).Scan(&value); err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, q Querier) (map[string]string, error) {
	rows, err := q.Query(ctx, `SELECT key, value FROM warehouse_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, q Querier) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}
