package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailorworks/tailor-etl/internal/datagen"
	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

type statement struct {
	sql  string
	args []any
}

// recordingDB records every Exec and answers with a fixed command tag.
type recordingDB struct {
	tag   string
	err   error
	execs []statement
}

func (r *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.execs = append(r.execs, statement{sql: sql, args: args})
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	return pgconn.NewCommandTag(r.tag), nil
}

func (r *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (r *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestInsertDimensionIgnoresConflict(t *testing.T) {
	db := &recordingDB{tag: "INSERT 0 1"}
	target := NewTarget(db, TargetOptions{})

	inserted, err := target.InsertCustomer(context.Background(),
		warehouse.DimCustomer{CustomerSK: 4, CustomerID: 4, Name: "Rahmat"})
	require.NoError(t, err)
	assert.True(t, inserted)

	require.Len(t, db.execs, 1)
	sql := db.execs[0].sql
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO dim_customer"))
	assert.Contains(t, sql, "ON CONFLICT (customer_id) DO NOTHING")
	assert.Contains(t, sql, "$9")
	assert.Len(t, db.execs[0].args, 9)
}

func TestInsertDimensionExisting(t *testing.T) {
	db := &recordingDB{tag: "INSERT 0 0"}
	target := NewTarget(db, TargetOptions{})

	inserted, err := target.InsertDate(context.Background(), warehouse.NewDimDate(mustDate(t, "2025-09-20")))
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Contains(t, db.execs[0].sql, "ON CONFLICT (date_id) DO NOTHING")
}

func TestInsertWriteError(t *testing.T) {
	db := &recordingDB{err: errors.New("permission denied")}
	target := NewTarget(db, TargetOptions{})

	_, err := target.InsertTailor(context.Background(), warehouse.DimTailor{TailorSK: 1, TailorID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, warehouse.ErrWrite))

	var werr *warehouse.Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "dim_tailor", werr.Op)
}

func sampleFact() warehouse.FactOrder {
	days := 2
	return warehouse.FactOrder{
		OrderID: 1, LineDetailID: 1, DateID: 20250920,
		CustomerSK: 1, TailorSK: 1, MaterialSK: 1, ServiceSK: 1, StatusSK: 3,
		ItemCount:      1,
		QuantityMeters: decimal.NewFromInt(2),
		TotalPrice:     decimal.NewFromInt(120000),
		Discount:       decimal.Zero,
		ProcessingDays: &days,
	}
}

func TestInsertFactAppends(t *testing.T) {
	db := &recordingDB{tag: "INSERT 0 1"}
	target := NewTarget(db, TargetOptions{})

	inserted, err := target.InsertFact(context.Background(), sampleFact())
	require.NoError(t, err)
	assert.True(t, inserted)

	sql := db.execs[0].sql
	assert.Contains(t, sql, "INSERT INTO fact_order")
	assert.Contains(t, sql, "VALUES")
	assert.NotContains(t, sql, "NOT EXISTS")
	assert.Len(t, db.execs[0].args, len(factColumns))
}

func TestInsertFactDedupe(t *testing.T) {
	db := &recordingDB{tag: "INSERT 0 0"}
	target := NewTarget(db, TargetOptions{DedupeFacts: true})

	inserted, err := target.InsertFact(context.Background(), sampleFact())
	require.NoError(t, err)
	assert.False(t, inserted)

	st := db.execs[0]
	assert.Contains(t, st.sql, "INSERT INTO fact_order")
	assert.Contains(t, st.sql, "SELECT $1::bigint")
	assert.Contains(t, st.sql, "NOT EXISTS (SELECT 1 FROM fact_order WHERE order_id = $16 AND line_detail_id = $17)")
	assert.NotContains(t, st.sql, "?")
	assert.Len(t, st.args, len(factColumns)+2)
}

func TestWriteSnapshotBatches(t *testing.T) {
	db := &recordingDB{tag: "INSERT 0 1"}
	snap := datagen.Generate(datagen.NewFakerWithSeed(5), 30)

	err := WriteSnapshot(context.Background(), db, &snap, datagen.BatchInsertConfig{BatchSize: 10, ProgressInterval: 10})
	require.NoError(t, err)

	inserts := map[string]int{}
	setvals := 0
	for _, st := range db.execs {
		switch {
		case strings.HasPrefix(st.sql, "INSERT INTO "):
			table := strings.Fields(st.sql)[2]
			inserts[table]++
		case strings.Contains(st.sql, "setval"):
			setvals++
		}
	}

	assert.Equal(t, 3, inserts["orders"])
	assert.Equal(t, (len(snap.Customers)+9)/10, inserts["customers"])
	assert.Equal(t, (len(snap.LineDetails)+9)/10, inserts["order_details"])
	assert.Equal(t, 1, inserts["order_statuses"])
	assert.Equal(t, 8, setvals)
}

func TestWriteSnapshotSkipsEmptyTables(t *testing.T) {
	db := &recordingDB{tag: "INSERT 0 1"}
	snap := warehouse.Snapshot{Customers: datagen.Sample().Customers}

	require.NoError(t, WriteSnapshot(context.Background(), db, &snap, datagen.BatchInsertConfig{}))
	require.Len(t, db.execs, 2)
	assert.True(t, strings.HasPrefix(db.execs[0].sql, "INSERT INTO customers"))
	assert.Len(t, db.execs[0].args, 3*8)
	assert.Contains(t, db.execs[1].sql, "pg_get_serial_sequence('customers', 'customer_id')")
}

func TestWriteTableReportsRows(t *testing.T) {
	db := &recordingDB{tag: "INSERT 0 1"}
	snap := datagen.Sample()

	var written int64
	for _, w := range snapshotWriters(&snap) {
		n, err := writeTable(context.Background(), db, w, datagen.BatchInsertConfig{BatchSize: 2, ProgressInterval: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(w.rows), n, w.table)
		written += n
	}
	assert.Equal(t, int64(3+2+2+2+3+2+2+2), written)
}

func TestWriteTableFailureReportsPartialRows(t *testing.T) {
	db := &failAfterDB{recordingDB: recordingDB{tag: "INSERT 0 2"}, ok: 1}
	snap := datagen.Sample()

	n, err := writeTable(context.Background(), db, snapshotWriters(&snap)[0],
		datagen.BatchInsertConfig{BatchSize: 2, ProgressInterval: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed customers")
	assert.Equal(t, int64(2), n)
}

// failAfterDB fails every Exec after the first ok calls.
type failAfterDB struct {
	recordingDB
	ok int
}

func (f *failAfterDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if len(f.execs) >= f.ok {
		f.execs = append(f.execs, statement{sql: sql, args: args})
		return pgconn.CommandTag{}, errors.New("connection reset")
	}
	return f.recordingDB.Exec(ctx, sql, args...)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := warehouse.ParseDate(s)
	require.NoError(t, err)
	return v
}
