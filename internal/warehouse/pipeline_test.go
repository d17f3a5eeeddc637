package warehouse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailorworks/tailor-etl/internal/datagen"
	"github.com/tailorworks/tailor-etl/internal/store/memory"
	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

func ptr[T any](v T) *T { return &v }

// scenario is one completed order for one customer with a single line.
func scenario() warehouse.Snapshot {
	return warehouse.Snapshot{
		Customers:     []warehouse.Customer{{CustomerID: 1, Name: "Ujang"}},
		Tailors:       []warehouse.Tailor{{TailorID: 1, Name: "Hastuti"}},
		Materials:     []warehouse.Material{{MaterialID: 1, Name: "Cotton"}},
		Services:      []warehouse.Service{{ServiceID: 1, Name: "Shirt"}},
		OrderStatuses: []warehouse.OrderStatus{{StatusID: 3, Name: "Completed"}},
		Orders: []warehouse.Order{{
			OrderID: 1, CustomerID: 1, TailorID: 1, ServiceID: 1, StatusID: 3,
			OrderDate:      "2025-09-20",
			CompletionDate: ptr("2025-09-22"),
			TotalPrice:     decimal.NewFromInt(120000),
			Rating:         ptr(5),
		}},
		LineDetails: []warehouse.OrderLineDetail{{
			DetailID: 1, OrderID: 1, MaterialID: 1,
			QuantityMeters: decimal.NewFromInt(2),
		}},
	}
}

func run(t *testing.T, snap warehouse.Snapshot, target *memory.Target, opts warehouse.Options) *warehouse.Report {
	t.Helper()
	report, err := warehouse.NewPipeline(memory.NewSource(snap), target, opts).Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Succeeded())
	return report
}

func TestEndToEndScenario(t *testing.T) {
	target := memory.NewTarget(memory.TargetOptions{})
	report := run(t, scenario(), target, warehouse.Options{})

	dates := target.Dates()
	require.Len(t, dates, 1)
	assert.Equal(t, 20250920, dates[0].DateID)
	assert.Equal(t, 2025, dates[0].Year)
	assert.Equal(t, 9, dates[0].Month)
	assert.Equal(t, 3, dates[0].Quarter)

	c, ok := target.Customer(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), c.CustomerSK)

	facts := target.Facts()
	require.Len(t, facts, 1)
	f := facts[0]
	assert.Equal(t, int64(1), f.OrderID)
	assert.Equal(t, int64(1), f.LineDetailID)
	assert.Equal(t, 20250920, f.DateID)
	assert.True(t, f.QuantityMeters.Equal(decimal.NewFromInt(2)))
	assert.True(t, f.TotalPrice.Equal(decimal.NewFromInt(120000)))
	assert.True(t, f.Discount.IsZero())
	assert.Equal(t, 1, f.ItemCount)
	require.NotNil(t, f.Rating)
	assert.Equal(t, 5, *f.Rating)
	require.NotNil(t, f.ProcessingDays)
	assert.Equal(t, 2, *f.ProcessingDays)
	require.NotNil(t, f.PaymentSK)
	assert.Equal(t, int64(1), *f.PaymentSK)

	assert.Equal(t, 1, report.Table("fact_order").Inserted)
	assert.Equal(t, 1, report.Table("dim_date").Inserted)
	assert.Equal(t, 1, report.Table("orders").Read)
	assert.Equal(t, 0, report.Table("payments").Read)
}

func TestRerunKeepsDimensionsAndAppendsFacts(t *testing.T) {
	target := memory.NewTarget(memory.TargetOptions{})
	snap := datagen.Sample()

	run(t, snap, target, warehouse.Options{})
	first := target.Counts()
	firstKeys := target.NaturalKeys("dim_customer")

	report := run(t, snap, target, warehouse.Options{})
	second := target.Counts()

	for table, n := range first {
		if table == "fact_order" {
			continue
		}
		assert.Equal(t, n, second[table], table)
	}
	assert.Equal(t, firstKeys, target.NaturalKeys("dim_customer"))
	assert.Equal(t, 2*first["fact_order"], second["fact_order"])

	dims := report.Totals(warehouse.StageDimensions)
	assert.Zero(t, dims.Inserted)
	assert.Equal(t, dims.Read, dims.Existing)
	assert.Equal(t, 3, report.Table("dim_date").Existing)
}

func TestSampleLoad(t *testing.T) {
	target := memory.NewTarget(memory.TargetOptions{})
	run(t, datagen.Sample(), target, warehouse.Options{})

	assert.Equal(t, map[string]int{
		"dim_date":         3, // 2025-09-20, 2025-09-25, 2025-09-22
		"dim_customer":     3,
		"dim_tailor":       2,
		"dim_material":     2,
		"dim_service":      2,
		"dim_order_status": 3,
		"dim_payment":      2,
		"fact_order":       2,
	}, target.Counts())
	assert.Equal(t, []int64{1, 2, 3}, target.NaturalKeys("dim_customer"))

	facts := target.Facts()
	require.Len(t, facts, 2)
	assert.Nil(t, facts[1].ProcessingDays)
	assert.Nil(t, facts[1].Rating)
	assert.True(t, facts[1].QuantityMeters.Equal(decimal.RequireFromString("1.5")))
}

func TestOrphanedLineDetailSkipped(t *testing.T) {
	snap := scenario()
	snap.LineDetails = append(snap.LineDetails, warehouse.OrderLineDetail{
		DetailID: 2, OrderID: 99, MaterialID: 1, QuantityMeters: decimal.NewFromInt(1),
	})

	target := memory.NewTarget(memory.TargetOptions{})
	report := run(t, snap, target, warehouse.Options{})

	facts := target.Facts()
	require.Len(t, facts, 1)
	assert.Equal(t, int64(1), facts[0].LineDetailID)

	stats := report.Table("fact_order")
	assert.Equal(t, 2, stats.Read)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Orphaned)
}

func TestMalformedDatesSkipped(t *testing.T) {
	snap := scenario()
	snap.Orders = append(snap.Orders, warehouse.Order{
		OrderID: 2, CustomerID: 1, TailorID: 1, ServiceID: 1, StatusID: 3,
		OrderDate:  "2025-02-30",
		TotalPrice: decimal.NewFromInt(50000),
	})
	snap.LineDetails = append(snap.LineDetails, warehouse.OrderLineDetail{
		DetailID: 2, OrderID: 2, MaterialID: 1, QuantityMeters: decimal.NewFromInt(1),
	})
	snap.Payments = []warehouse.Payment{{PaymentID: 1, OrderID: 1, PaymentDate: ptr("soon")}}

	target := memory.NewTarget(memory.TargetOptions{})
	report := run(t, snap, target, warehouse.Options{})

	dates := report.Table("dim_date")
	assert.Equal(t, 2, dates.Invalid)
	assert.Equal(t, 1, dates.Inserted)
	assert.Len(t, target.Dates(), 1)

	facts := report.Table("fact_order")
	assert.Equal(t, 1, facts.Invalid)
	assert.Equal(t, 1, facts.Inserted)
	require.Len(t, target.Facts(), 1)
	assert.Equal(t, int64(1), target.Facts()[0].OrderID)
}

func TestPaymentKeyLookup(t *testing.T) {
	snap := scenario()
	snap.Orders = append(snap.Orders, warehouse.Order{
		OrderID: 2, CustomerID: 1, TailorID: 1, ServiceID: 1, StatusID: 3,
		OrderDate: "2025-09-21", TotalPrice: decimal.NewFromInt(1),
	}, warehouse.Order{
		OrderID: 3, CustomerID: 1, TailorID: 1, ServiceID: 1, StatusID: 3,
		OrderDate: "2025-09-21", TotalPrice: decimal.NewFromInt(1),
	})
	snap.LineDetails = append(snap.LineDetails,
		warehouse.OrderLineDetail{DetailID: 2, OrderID: 2, MaterialID: 1},
		warehouse.OrderLineDetail{DetailID: 3, OrderID: 3, MaterialID: 1},
	)
	// order 1 has two payments, order 2 has one, order 3 has none
	snap.Payments = []warehouse.Payment{
		{PaymentID: 12, OrderID: 1},
		{PaymentID: 10, OrderID: 1},
		{PaymentID: 11, OrderID: 2},
	}

	target := memory.NewTarget(memory.TargetOptions{})
	run(t, snap, target, warehouse.Options{PaymentKey: warehouse.PaymentKeyLookup})

	keys := make(map[int64]*int64)
	for _, f := range target.Facts() {
		keys[f.OrderID] = f.PaymentSK
	}
	require.Len(t, keys, 3)
	require.NotNil(t, keys[1])
	assert.Equal(t, int64(10), *keys[1])
	require.NotNil(t, keys[2])
	assert.Equal(t, int64(11), *keys[2])
	assert.Nil(t, keys[3])
}

func TestPaymentKeyOrderPassthrough(t *testing.T) {
	snap := scenario()
	snap.Payments = []warehouse.Payment{{PaymentID: 7, OrderID: 1}}

	target := memory.NewTarget(memory.TargetOptions{})
	run(t, snap, target, warehouse.Options{PaymentKey: warehouse.PaymentKeyOrder})

	require.NotNil(t, target.Facts()[0].PaymentSK)
	assert.Equal(t, int64(1), *target.Facts()[0].PaymentSK)
}

func TestParsePaymentKeyMode(t *testing.T) {
	m, err := warehouse.ParsePaymentKeyMode("")
	require.NoError(t, err)
	assert.Equal(t, warehouse.PaymentKeyOrder, m)

	m, err = warehouse.ParsePaymentKeyMode("lookup")
	require.NoError(t, err)
	assert.Equal(t, warehouse.PaymentKeyLookup, m)

	_, err = warehouse.ParsePaymentKeyMode("newest")
	assert.Error(t, err)
}

func TestDedupeFacts(t *testing.T) {
	target := memory.NewTarget(memory.TargetOptions{DedupeFacts: true})
	snap := datagen.Sample()

	run(t, snap, target, warehouse.Options{})
	report := run(t, snap, target, warehouse.Options{})

	assert.Len(t, target.Facts(), 2)
	stats := report.Table("fact_order")
	assert.Zero(t, stats.Inserted)
	assert.Equal(t, 2, stats.Existing)
}

func TestFakeDataLoadsCompletely(t *testing.T) {
	snap := datagen.Generate(datagen.NewFakerWithSeed(11), 150)

	target := memory.NewTarget(memory.TargetOptions{})
	report := run(t, snap, target, warehouse.Options{PaymentKey: warehouse.PaymentKeyLookup})

	counts := target.Counts()
	assert.Equal(t, len(snap.LineDetails), counts["fact_order"])
	assert.Equal(t, len(snap.Customers), counts["dim_customer"])
	assert.Equal(t, len(snap.Payments), counts["dim_payment"])
	assert.Zero(t, report.Table("fact_order").Orphaned)
	assert.Zero(t, report.Table("dim_date").Invalid)
}

// failingSource fails to read payments.
type failingSource struct {
	*memory.Source
}

func (failingSource) Payments(context.Context) ([]warehouse.Payment, error) {
	return nil, errors.New("connection reset by peer")
}

func TestSourceFailureAbortsExtract(t *testing.T) {
	target := memory.NewTarget(memory.TargetOptions{})
	src := failingSource{memory.NewSource(datagen.Sample())}

	report, err := warehouse.NewPipeline(src, target, warehouse.Options{}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, warehouse.ErrRead))
	assert.False(t, errors.Is(err, warehouse.ErrWrite))

	stage, ok := warehouse.FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, warehouse.StageExtract, stage)
	assert.Equal(t, warehouse.StageExtract, report.FailedStage)
	assert.False(t, report.Succeeded())

	var werr *warehouse.Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "payments", werr.Op)

	for table, n := range target.Counts() {
		assert.Zero(t, n, table)
	}
}

// failingTarget rejects every material.
type failingTarget struct {
	*memory.Target
}

func (failingTarget) InsertMaterial(context.Context, warehouse.DimMaterial) (bool, error) {
	return false, errors.New("disk full")
}

func TestTargetFailureAbortsRun(t *testing.T) {
	mem := memory.NewTarget(memory.TargetOptions{})
	target := failingTarget{mem}

	report, err := warehouse.NewPipeline(memory.NewSource(datagen.Sample()), target,
		warehouse.Options{}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, warehouse.ErrWrite))

	stage, ok := warehouse.FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, warehouse.StageDimensions, stage)

	// stages before the failure keep their writes, later ones never ran
	counts := mem.Counts()
	assert.Equal(t, 3, counts["dim_date"])
	assert.Equal(t, 3, counts["dim_customer"])
	assert.Equal(t, 2, counts["dim_tailor"])
	assert.Zero(t, counts["dim_service"])
	assert.Zero(t, counts["fact_order"])
	assert.Nil(t, report.Table("fact_order"))
}
