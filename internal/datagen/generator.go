package datagen

import (
	"github.com/shopspring/decimal"

	"github.com/tailorworks/tailor-etl/internal/logging"
	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

// BatchInsertConfig configures batch insert behavior.
type BatchInsertConfig struct {
	// BatchSize is the number of rows per batch insert.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchInsertConfig {
	return BatchInsertConfig{
		BatchSize:        500,
		ProgressInterval: 10000,
	}
}

// ProgressReporter tracks and reports seeding progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultBatchConfig().ProgressInterval
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Seeding data")
	}
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}

func str(s string) *string { return &s }

func num(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// Sample returns the small reference data set: three customers, two
// tailors, two materials, two services, three statuses, two orders with
// one line each and two payments, one of them not yet paid.
func Sample() warehouse.Snapshot {
	three, two, five := 3, 2, 5

	return warehouse.Snapshot{
		Customers: []warehouse.Customer{
			{CustomerID: 1, Name: "Ujang Snapdragon", Phone: str("08123456789"),
				Address: str("Jl. Anggrek Pontianak No. 2"), Gender: str("Male"),
				RegisteredOn: str("2025-01-10"), CustomerType: str("Regular"), Referral: str("Instagram")},
			{CustomerID: 2, Name: "Rahmat Seluncur", Phone: str("08213456780"),
				Address: str("Jl. Stasiun Lempuyangan No. 5"), Gender: str("Female"),
				RegisteredOn: str("2025-02-01"), CustomerType: str("Member"), Referral: str("Family")},
			{CustomerID: 3, Name: "Budiono Siregar", Phone: str("08187654321"),
				Address: str("Jl. Selat Sunda No. 9"), Gender: str("Male"),
				RegisteredOn: str("2025-03-05"), CustomerType: str("VIP"), Referral: str("Google")},
		},
		Tailors: []warehouse.Tailor{
			{TailorID: 1, Name: "Hastuti", Specialty: str("Shirts and Trousers"),
				StartedOn: str("2022-03-10"), Status: str("Active")},
			{TailorID: 2, Name: "Radha", Specialty: str("Dresses and Kebaya"),
				StartedOn: str("2023-01-05"), Status: str("Active")},
		},
		Materials: []warehouse.Material{
			{MaterialID: 1, Name: "Premium Cotton", Category: str("Shirt"), Supplier: str("PT Tekstil Jaya"),
				PricePerMeter: num(45000), StockMeters: num(100), Unit: str("meter"),
				ReceivedOn: str("2025-09-01"), MinimumStock: num(10)},
			{MaterialID: 2, Name: "Denim", Category: str("Trousers"), Supplier: str("PT DenimKu"),
				PricePerMeter: num(60000), StockMeters: num(50), Unit: str("meter"),
				ReceivedOn: str("2025-09-05"), MinimumStock: num(8)},
		},
		Services: []warehouse.Service{
			{ServiceID: 1, Name: "Shirt Tailoring", Description: str("Custom shirt, roomier armholes, extra buttons"),
				BasePrice: num(120000), EstimatedDays: &three},
			{ServiceID: 2, Name: "Trouser Tailoring", Description: str("Bootcut hem"),
				BasePrice: num(100000), EstimatedDays: &two},
		},
		OrderStatuses: []warehouse.OrderStatus{
			{StatusID: 1, Name: "Pending", Description: str("Order has been received but not processed")},
			{StatusID: 2, Name: "In Progress", Description: str("Order is currently being sewn")},
			{StatusID: 3, Name: "Completed", Description: str("Order finished and ready for pickup")},
		},
		Orders: []warehouse.Order{
			{OrderID: 1, CustomerID: 1, TailorID: 1, ServiceID: 1, StatusID: 3,
				OrderDate: "2025-09-20", EstimatedCompletion: str("2025-09-23"), CompletionDate: str("2025-09-22"),
				Channel: str("Online"), PaymentStatus: str("Paid"), TotalPrice: decimal.NewFromInt(120000),
				Rating: &five, CustomerNotes: str("Quick and neat")},
			{OrderID: 2, CustomerID: 2, TailorID: 2, ServiceID: 2, StatusID: 2,
				OrderDate: "2025-09-25", EstimatedCompletion: str("2025-09-27"),
				Channel: str("Offline"), PaymentStatus: str("Pending"), TotalPrice: decimal.NewFromInt(100000),
				CustomerNotes: str("Please use a soft fabric")},
		},
		LineDetails: []warehouse.OrderLineDetail{
			{DetailID: 1, OrderID: 1, MaterialID: 1, Color: str("White"), GarmentModel: str("Formal"),
				QuantityMeters: decimal.NewFromInt(2), PricePerMeter: num(45000), Subtotal: num(90000),
				TailorNotes: str("Use a regular fit pattern")},
			{DetailID: 2, OrderID: 2, MaterialID: 2, Color: str("Blue"), GarmentModel: str("Slim Fit"),
				QuantityMeters: decimal.RequireFromString("1.5"), PricePerMeter: num(60000), Subtotal: num(90000),
				TailorNotes: str("Add a back pocket")},
		},
		Payments: []warehouse.Payment{
			{PaymentID: 1, OrderID: 1, Method: str("Transfer"), PaymentDate: str("2025-09-22"),
				Amount: num(120000), Status: str("Paid"), Discount: num(0),
				ReferenceNumber: str("TRX-0001"), Cashier: str("Hastuti"), Notes: str("Payment received")},
			{PaymentID: 2, OrderID: 2, Method: str("Cash"),
				Amount: num(0), Status: str("Unpaid"), Discount: num(0), Cashier: str("Radha")},
		},
	}
}
