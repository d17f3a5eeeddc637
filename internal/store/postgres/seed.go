//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package postgres

import (
	"context"
	"fmt"

	"github.com/tailorworks/tailor-etl/internal/datagen"
	"github.com/tailorworks/tailor-etl/internal/logging"
	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

// tableWriter is one source table: its key column, its columns and a row
// accessor returning the values of row i in column order.
type tableWriter struct {
	table string
	key   string
	cols  []string
	rows  int
	row   func(i int) []any
}

// WriteSnapshot inserts snap into the transactional tables with explicit
// ids, then moves each identity sequence past the highest id.
func WriteSnapshot(ctx context.Context, db DB, snap *warehouse.Snapshot, cfg datagen.BatchInsertConfig) error {
	if cfg.BatchSize <= 0 {
		cfg = datagen.DefaultBatchConfig()
	}

	var total int64
	for _, w := range snapshotWriters(snap) {
		n, err := writeTable(ctx, db, w, cfg)
		if err != nil {
			return err
		}
		total += n
	}
	logging.Info().Int64("rows", total).Msg("Seed data written")
	return nil
}

// writeTable inserts the rows of w in batches and returns how many were sent.
func writeTable(ctx context.Context, db DB, w tableWriter, cfg datagen.BatchInsertConfig) (int64, error) {
	if w.rows == 0 {
		return 0, nil
	}
	logging.Info().Str("table", w.table).Int("count", w.rows).Msg("Seeding table")
	progress := datagen.NewProgressReporter(w.table, int64(w.rows), cfg.ProgressInterval)

	for start := 0; start < w.rows; start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, w.rows)

		q := psql.Insert(w.table).Columns(w.cols...)
		for i := start; i < end; i++ {
			q = q.Values(w.row(i)...)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return progress.Rows(), fmt.Errorf("build insert into %s: %w", w.table, err)
		}
		if _, err := db.Exec(ctx, sql, args...); err != nil {
			return progress.Rows(), fmt.Errorf("seed %s: %w", w.table, err)
		}
		progress.Update(int64(end - start))
	}
	progress.Done()

	_, err := db.Exec(ctx, fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', '%s'), (SELECT MAX(%s) FROM %s))",
		w.table, w.key, w.key, w.table))
	if err != nil {
		return progress.Rows(), fmt.Errorf("reset %s sequence: %w", w.table, err)
	}
	return progress.Rows(), nil
}

func snapshotWriters(s *warehouse.Snapshot) []tableWriter {
	return []tableWriter{
		{
			table: "customers", key: "customer_id", rows: len(s.Customers),
			cols: []string{"customer_id", "name", "phone", "address", "gender",
				"registered_on", "customer_type", "referral"},
			row: func(i int) []any {
				c := s.Customers[i]
				return []any{c.CustomerID, c.Name, c.Phone, c.Address, c.Gender,
					c.RegisteredOn, c.CustomerType, c.Referral}
			},
		},
		{
			table: "tailors", key: "tailor_id", rows: len(s.Tailors),
			cols: []string{"tailor_id", "name", "specialty", "started_on", "status"},
			row: func(i int) []any {
				t := s.Tailors[i]
				return []any{t.TailorID, t.Name, t.Specialty, t.StartedOn, t.Status}
			},
		},
		{
			table: "materials", key: "material_id", rows: len(s.Materials),
			cols: []string{"material_id", "name", "category", "supplier", "price_per_meter",
				"stock_meters", "unit", "received_on", "minimum_stock"},
			row: func(i int) []any {
				m := s.Materials[i]
				return []any{m.MaterialID, m.Name, m.Category, m.Supplier, m.PricePerMeter,
					m.StockMeters, m.Unit, m.ReceivedOn, m.MinimumStock}
			},
		},
		{
			table: "services", key: "service_id", rows: len(s.Services),
			cols: []string{"service_id", "name", "description", "base_price", "estimated_days"},
			row: func(i int) []any {
				v := s.Services[i]
				return []any{v.ServiceID, v.Name, v.Description, v.BasePrice, v.EstimatedDays}
			},
		},
		{
			table: "order_statuses", key: "status_id", rows: len(s.OrderStatuses),
			cols: []string{"status_id", "name", "description"},
			row: func(i int) []any {
				st := s.OrderStatuses[i]
				return []any{st.StatusID, st.Name, st.Description}
			},
		},
		{
			table: "orders", key: "order_id", rows: len(s.Orders),
			cols: []string{"order_id", "customer_id", "tailor_id", "service_id", "status_id",
				"order_date", "estimated_completion", "completion_date", "channel",
				"payment_status", "total_price", "rating", "customer_notes"},
			row: func(i int) []any {
				o := s.Orders[i]
				return []any{o.OrderID, o.CustomerID, o.TailorID, o.ServiceID, o.StatusID,
					o.OrderDate, o.EstimatedCompletion, o.CompletionDate, o.Channel,
					o.PaymentStatus, o.TotalPrice, o.Rating, o.CustomerNotes}
			},
		},
		{
			table: "order_details", key: "detail_id", rows: len(s.LineDetails),
			cols: []string{"detail_id", "order_id", "material_id", "color", "garment_model",
				"quantity_meters", "price_per_meter", "subtotal", "tailor_notes"},
			row: func(i int) []any {
				d := s.LineDetails[i]
				return []any{d.DetailID, d.OrderID, d.MaterialID, d.Color, d.GarmentModel,
					d.QuantityMeters, d.PricePerMeter, d.Subtotal, d.TailorNotes}
			},
		},
		{
			table: "payments", key: "payment_id", rows: len(s.Payments),
			cols: []string{"payment_id", "order_id", "method", "payment_date", "amount",
				"status", "discount", "reference_number", "cashier", "notes"},
			row: func(i int) []any {
				p := s.Payments[i]
				return []any{p.PaymentID, p.OrderID, p.Method, p.PaymentDate, p.Amount,
					p.Status, p.Discount, p.ReferenceNumber, p.Cashier, p.Notes}
			},
		},
	}
}
