package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builds statements with PostgreSQL placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Source reads the transactional tables.
type Source struct {
	db DB
}

var _ warehouse.Source = (*Source)(nil)

// NewSource returns a source reading through db.
func NewSource(db DB) *Source {
	return &Source{db: db}
}

// dateCol selects a DATE column as ISO text under its own name.
func dateCol(name string) string {
	return name + "::text AS " + name
}

// selectAll reads every row of table ordered by key into a slice of T.
func selectAll[T any](ctx context.Context, db DB, table, key string, cols ...string) ([]T, error) {
	sql, args, err := psql.Select(cols...).From(table).OrderBy(key).ToSql()
	if err != nil {
		return nil, warehouse.NewReadError(table, err)
	}

	var rows []T
	if err := pgxscan.Select(ctx, db, &rows, sql, args...); err != nil {
		return nil, warehouse.NewReadError(table, err)
	}
	return rows, nil
}

// Customers implements warehouse.Source.
func (s *Source) Customers(ctx context.Context) ([]warehouse.Customer, error) {
	return selectAll[warehouse.Customer](ctx, s.db, "customers", "customer_id",
		"customer_id", "name", "phone", "address", "gender",
		dateCol("registered_on"), "customer_type", "referral")
}

// Tailors implements warehouse.Source.
func (s *Source) Tailors(ctx context.Context) ([]warehouse.Tailor, error) {
	return selectAll[warehouse.Tailor](ctx, s.db, "tailors", "tailor_id",
		"tailor_id", "name", "specialty", dateCol("started_on"), "status")
}

// Materials implements warehouse.Source.
func (s *Source) Materials(ctx context.Context) ([]warehouse.Material, error) {
	return selectAll[warehouse.Material](ctx, s.db, "materials", "material_id",
		"material_id", "name", "category", "supplier", "price_per_meter",
		"stock_meters", "unit", dateCol("received_on"), "minimum_stock")
}

// Services implements warehouse.Source.
func (s *Source) Services(ctx context.Context) ([]warehouse.Service, error) {
	return selectAll[warehouse.Service](ctx, s.db, "services", "service_id",
		"service_id", "name", "description", "base_price", "estimated_days")
}

// OrderStatuses implements warehouse.Source.
func (s *Source) OrderStatuses(ctx context.Context) ([]warehouse.OrderStatus, error) {
	return selectAll[warehouse.OrderStatus](ctx, s.db, "order_statuses", "status_id",
		"status_id", "name", "description")
}

// Orders implements warehouse.Source.
func (s *Source) Orders(ctx context.Context) ([]warehouse.Order, error) {
	return selectAll[warehouse.Order](ctx, s.db, "orders", "order_id",
		"order_id", "customer_id", "tailor_id", "service_id", "status_id",
		dateCol("order_date"), dateCol("estimated_completion"), dateCol("completion_date"),
		"channel", "payment_status", "total_price", "rating", "customer_notes")
}

// OrderLineDetails implements warehouse.Source.
func (s *Source) OrderLineDetails(ctx context.Context) ([]warehouse.OrderLineDetail, error) {
	return selectAll[warehouse.OrderLineDetail](ctx, s.db, "order_details", "detail_id",
		"detail_id", "order_id", "material_id", "color", "garment_model",
		"quantity_meters", "price_per_meter", "subtotal", "tailor_notes")
}

// Payments implements warehouse.Source.
func (s *Source) Payments(ctx context.Context) ([]warehouse.Payment, error) {
	return selectAll[warehouse.Payment](ctx, s.db, "payments", "payment_id",
		"payment_id", "order_id", "method", dateCol("payment_date"), "amount",
		"status", "discount", "reference_number", "cashier", "notes")
}
