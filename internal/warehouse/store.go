//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"errors"

	"github.com/tailorworks/tailor-etl/internal/logging"
)

// Source is read-only access to the transactional store. Each method returns
// every row of its table ordered by natural key.
type Source interface {
	Customers(ctx context.Context) ([]Customer, error)
	Tailors(ctx context.Context) ([]Tailor, error)
	Materials(ctx context.Context) ([]Material, error)
	Services(ctx context.Context) ([]Service, error)
	OrderStatuses(ctx context.Context) ([]OrderStatus, error)
	Orders(ctx context.Context) ([]Order, error)
	OrderLineDetails(ctx context.Context) ([]OrderLineDetail, error)
	Payments(ctx context.Context) ([]Payment, error)
}

// Target is write access to the dimensional store.
//
// Every Insert method reports whether a row was written. Dimension and date
// inserts are no-ops when the key is already present; InsertFact appends
// unless the target was configured to de-duplicate facts.
type Target interface {
	InsertDate(ctx context.Context, row DimDate) (bool, error)
	InsertCustomer(ctx context.Context, row DimCustomer) (bool, error)
	InsertTailor(ctx context.Context, row DimTailor) (bool, error)
	InsertMaterial(ctx context.Context, row DimMaterial) (bool, error)
	InsertService(ctx context.Context, row DimService) (bool, error)
	InsertOrderStatus(ctx context.Context, row DimOrderStatus) (bool, error)
	InsertPayment(ctx context.Context, row DimPayment) (bool, error)
	InsertFact(ctx context.Context, row FactOrder) (bool, error)
}

// Extract reads every source entity. The first failing read aborts the
// extract; its error is returned as a read error.
func Extract(ctx context.Context, src Source, report *Report) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error

	if snap.Customers, err = extractTable(ctx, report, "customers", src.Customers); err != nil {
		return nil, err
	}
	if snap.Tailors, err = extractTable(ctx, report, "tailors", src.Tailors); err != nil {
		return nil, err
	}
	if snap.Materials, err = extractTable(ctx, report, "materials", src.Materials); err != nil {
		return nil, err
	}
	if snap.Services, err = extractTable(ctx, report, "services", src.Services); err != nil {
		return nil, err
	}
	if snap.OrderStatuses, err = extractTable(ctx, report, "order_statuses", src.OrderStatuses); err != nil {
		return nil, err
	}
	if snap.Orders, err = extractTable(ctx, report, "orders", src.Orders); err != nil {
		return nil, err
	}
	if snap.LineDetails, err = extractTable(ctx, report, "order_details", src.OrderLineDetails); err != nil {
		return nil, err
	}
	if snap.Payments, err = extractTable(ctx, report, "payments", src.Payments); err != nil {
		return nil, err
	}

	return snap, nil
}

func extractTable[T any](ctx context.Context, report *Report, table string,
	read func(context.Context) ([]T, error)) ([]T, error) {
	rows, err := read(ctx)
	if err != nil {
		var werr *Error
		if errors.As(err, &werr) && werr.Kind == KindRead {
			return nil, err
		}
		return nil, NewReadError(table, err)
	}

	stats := report.track(StageExtract, table)
	stats.Read = len(rows)

	logging.Debug().
		Str("table", table).
		Int("rows", len(rows)).
		Msg("Extracted table")

	return rows, nil
}
