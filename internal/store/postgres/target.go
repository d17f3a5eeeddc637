package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

// Target writes the star schema.
type Target struct {
	db          DB
	dedupeFacts bool
}

var _ warehouse.Target = (*Target)(nil)

// TargetOptions configures a Target.
type TargetOptions struct {
	// DedupeFacts skips fact rows whose (order_id, line_detail_id) pair is
	// already present, making fact loads re-runnable.
	DedupeFacts bool
}

// NewTarget returns a target writing through db.
func NewTarget(db DB, opts TargetOptions) *Target {
	return &Target{db: db, dedupeFacts: opts.DedupeFacts}
}

// insertIfAbsent inserts one row and ignores a conflict on conflictCol.
func (t *Target) insertIfAbsent(ctx context.Context, table, conflictCol string,
	cols []string, vals ...any) (bool, error) {
	sql, args, err := psql.Insert(table).
		Columns(cols...).
		Values(vals...).
		Suffix("ON CONFLICT (" + conflictCol + ") DO NOTHING").
		ToSql()
	if err != nil {
		return false, warehouse.NewWriteError(table, err)
	}

	tag, err := t.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, warehouse.NewWriteError(table, err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertDate implements warehouse.Target.
func (t *Target) InsertDate(ctx context.Context, row warehouse.DimDate) (bool, error) {
	return t.insertIfAbsent(ctx, "dim_date", "date_id",
		[]string{"date_id", "full_date", "day", "month", "year", "quarter", "week_of_month"},
		row.DateID, row.FullDate, row.Day, row.Month, row.Year, row.Quarter, row.WeekOfMonth)
}

// InsertCustomer implements warehouse.Target.
func (t *Target) InsertCustomer(ctx context.Context, row warehouse.DimCustomer) (bool, error) {
	return t.insertIfAbsent(ctx, "dim_customer", "customer_id",
		[]string{"customer_sk", "customer_id", "name", "phone", "address", "gender",
			"registered_on", "customer_type", "referral"},
		row.CustomerSK, row.CustomerID, row.Name, row.Phone, row.Address, row.Gender,
		row.RegisteredOn, row.CustomerType, row.Referral)
}

// InsertTailor implements warehouse.Target.
func (t *Target) InsertTailor(ctx context.Context, row warehouse.DimTailor) (bool, error) {
	return t.insertIfAbsent(ctx, "dim_tailor", "tailor_id",
		[]string{"tailor_sk", "tailor_id", "name", "specialty", "started_on", "status"},
		row.TailorSK, row.TailorID, row.Name, row.Specialty, row.StartedOn, row.Status)
}

// InsertMaterial implements warehouse.Target.
func (t *Target) InsertMaterial(ctx context.Context, row warehouse.DimMaterial) (bool, error) {
	return t.insertIfAbsent(ctx, "dim_material", "material_id",
		[]string{"material_sk", "material_id", "name", "category", "supplier",
			"price_per_meter", "unit"},
		row.MaterialSK, row.MaterialID, row.Name, row.Category, row.Supplier,
		row.PricePerMeter, row.Unit)
}

// InsertService implements warehouse.Target.
func (t *Target) InsertService(ctx context.Context, row warehouse.DimService) (bool, error) {
	return t.insertIfAbsent(ctx, "dim_service", "service_id",
		[]string{"service_sk", "service_id", "name", "description", "base_price", "estimated_days"},
		row.ServiceSK, row.ServiceID, row.Name, row.Description, row.BasePrice, row.EstimatedDays)
}

// InsertOrderStatus implements warehouse.Target.
func (t *Target) InsertOrderStatus(ctx context.Context, row warehouse.DimOrderStatus) (bool, error) {
	return t.insertIfAbsent(ctx, "dim_order_status", "status_id",
		[]string{"status_sk", "status_id", "name", "description"},
		row.StatusSK, row.StatusID, row.Name, row.Description)
}

// InsertPayment implements warehouse.Target.
func (t *Target) InsertPayment(ctx context.Context, row warehouse.DimPayment) (bool, error) {
	return t.insertIfAbsent(ctx, "dim_payment", "payment_id",
		[]string{"payment_sk", "payment_id", "method", "payment_date", "status", "discount"},
		row.PaymentSK, row.PaymentID, row.Method, row.PaymentDate, row.Status, row.Discount)
}

var factColumns = []string{
	"order_id", "line_detail_id", "date_id", "customer_sk", "tailor_sk",
	"material_sk", "service_sk", "status_sk", "payment_sk", "item_count",
	"quantity_meters", "total_price", "discount", "rating", "processing_days",
}

// factValues are cast so INSERT ... SELECT can type its parameters.
var factValues = []string{
	"?::bigint", "?::bigint", "?::integer", "?::bigint", "?::bigint",
	"?::bigint", "?::bigint", "?::bigint", "?::bigint", "?::integer",
	"?::numeric", "?::numeric", "?::numeric", "?::integer", "?::integer",
}

// InsertFact implements warehouse.Target.
func (t *Target) InsertFact(ctx context.Context, row warehouse.FactOrder) (bool, error) {
	vals := []any{
		row.OrderID, row.LineDetailID, row.DateID, row.CustomerSK, row.TailorSK,
		row.MaterialSK, row.ServiceSK, row.StatusSK, row.PaymentSK, row.ItemCount,
		row.QuantityMeters, row.TotalPrice, row.Discount, row.Rating, row.ProcessingDays,
	}

	q := psql.Insert("fact_order").Columns(factColumns...)
	if t.dedupeFacts {
		sel := psql.Select()
		for i, v := range vals {
			sel = sel.Column(squirrel.Expr(factValues[i], v))
		}
		sel = sel.Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM fact_order WHERE order_id = ? AND line_detail_id = ?)",
			row.OrderID, row.LineDetailID))
		q = q.Select(sel)
	} else {
		q = q.Values(vals...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return false, warehouse.NewWriteError("fact_order", err)
	}
	tag, err := t.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, warehouse.NewWriteError("fact_order", err)
	}
	return tag.RowsAffected() == 1, nil
}
