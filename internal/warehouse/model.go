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
	"time"

	"github.com/shopspring/decimal"
)

// Source entities. Calendar dates are carried as ISO-8601 text exactly as the
// source store returned them; the transform parses them.

// Customer is a row of the customers table.
type Customer struct {
	CustomerID   int64   `db:"customer_id"`
	Name         string  `db:"name"`
	Phone        *string `db:"phone"`
	Address      *string `db:"address"`
	Gender       *string `db:"gender"`
	RegisteredOn *string `db:"registered_on"`
	CustomerType *string `db:"customer_type"`
	Referral     *string `db:"referral"`
}

// Tailor is a row of the tailors table.
type Tailor struct {
	TailorID  int64   `db:"tailor_id"`
	Name      string  `db:"name"`
	Specialty *string `db:"specialty"`
	StartedOn *string `db:"started_on"`
	Status    *string `db:"status"`
}

// Material is a row of the materials table.
type Material struct {
	MaterialID    int64               `db:"material_id"`
	Name          string              `db:"name"`
	Category      *string             `db:"category"`
	Supplier      *string             `db:"supplier"`
	PricePerMeter decimal.NullDecimal `db:"price_per_meter"`
	StockMeters   decimal.NullDecimal `db:"stock_meters"`
	Unit          *string             `db:"unit"`
	ReceivedOn    *string             `db:"received_on"`
	MinimumStock  decimal.NullDecimal `db:"minimum_stock"`
}

// Service is a row of the services table.
type Service struct {
	ServiceID     int64               `db:"service_id"`
	Name          string              `db:"name"`
	Description   *string             `db:"description"`
	BasePrice     decimal.NullDecimal `db:"base_price"`
	EstimatedDays *int                `db:"estimated_days"`
}

// OrderStatus is a row of the order_statuses table.
type OrderStatus struct {
	StatusID    int64   `db:"status_id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
}

// Order is an order header.
type Order struct {
	OrderID             int64           `db:"order_id"`
	CustomerID          int64           `db:"customer_id"`
	TailorID            int64           `db:"tailor_id"`
	ServiceID           int64           `db:"service_id"`
	StatusID            int64           `db:"status_id"`
	OrderDate           string          `db:"order_date"`
	EstimatedCompletion *string         `db:"estimated_completion"`
	CompletionDate      *string         `db:"completion_date"`
	Channel             *string         `db:"channel"`
	PaymentStatus       *string         `db:"payment_status"`
	TotalPrice          decimal.Decimal `db:"total_price"`
	Rating              *int            `db:"rating"`
	CustomerNotes       *string         `db:"customer_notes"`
}

// OrderLineDetail is one material line of an order.
type OrderLineDetail struct {
	DetailID       int64               `db:"detail_id"`
	OrderID        int64               `db:"order_id"`
	MaterialID     int64               `db:"material_id"`
	Color          *string             `db:"color"`
	GarmentModel   *string             `db:"garment_model"`
	QuantityMeters decimal.Decimal     `db:"quantity_meters"`
	PricePerMeter  decimal.NullDecimal `db:"price_per_meter"`
	Subtotal       decimal.NullDecimal `db:"subtotal"`
	TailorNotes    *string             `db:"tailor_notes"`
}

// Payment is a row of the payments table. PaymentDate is nil until paid.
type Payment struct {
	PaymentID       int64               `db:"payment_id"`
	OrderID         int64               `db:"order_id"`
	Method          *string             `db:"method"`
	PaymentDate     *string             `db:"payment_date"`
	Amount          decimal.NullDecimal `db:"amount"`
	Status          *string             `db:"status"`
	Discount        decimal.NullDecimal `db:"discount"`
	ReferenceNumber *string             `db:"reference_number"`
	Cashier         *string             `db:"cashier"`
	Notes           *string             `db:"notes"`
}

// Snapshot is the full extract of every source entity taken by one run.
type Snapshot struct {
	Customers     []Customer
	Tailors       []Tailor
	Materials     []Material
	Services      []Service
	OrderStatuses []OrderStatus
	Orders        []Order
	LineDetails   []OrderLineDetail
	Payments      []Payment
}

// Dimension rows. Every surrogate key is seeded from the natural key.

// DimCustomer is a row of dim_customer.
type DimCustomer struct {
	CustomerSK   int64
	CustomerID   int64
	Name         string
	Phone        *string
	Address      *string
	Gender       *string
	RegisteredOn *string
	CustomerType *string
	Referral     *string
}

// DimTailor is a row of dim_tailor.
type DimTailor struct {
	TailorSK  int64
	TailorID  int64
	Name      string
	Specialty *string
	StartedOn *string
	Status    *string
}

// DimMaterial is a row of dim_material.
type DimMaterial struct {
	MaterialSK    int64
	MaterialID    int64
	Name          string
	Category      *string
	Supplier      *string
	PricePerMeter decimal.NullDecimal
	Unit          *string
}

// DimService is a row of dim_service.
type DimService struct {
	ServiceSK     int64
	ServiceID     int64
	Name          string
	Description   *string
	BasePrice     decimal.NullDecimal
	EstimatedDays *int
}

// DimOrderStatus is a row of dim_order_status.
type DimOrderStatus struct {
	StatusSK    int64
	StatusID    int64
	Name        string
	Description *string
}

// DimPayment is a row of dim_payment.
type DimPayment struct {
	PaymentSK   int64
	PaymentID   int64
	Method      *string
	PaymentDate *string
	Status      *string
	Discount    decimal.NullDecimal
}

// DimDate is a row of dim_date.
type DimDate struct {
	DateID      int
	FullDate    time.Time
	Day         int
	Month       int
	Year        int
	Quarter     int
	WeekOfMonth int
}

// FactOrder is one row of fact_order: an (order, line-detail) pair.
type FactOrder struct {
	OrderID        int64
	LineDetailID   int64
	DateID         int
	CustomerSK     int64
	TailorSK       int64
	MaterialSK     int64
	ServiceSK      int64
	StatusSK       int64
	PaymentSK      *int64
	ItemCount      int
	QuantityMeters decimal.Decimal
	TotalPrice     decimal.Decimal
	Discount       decimal.Decimal
	Rating         *int
	ProcessingDays *int
}
