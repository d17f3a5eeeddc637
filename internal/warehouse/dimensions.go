package warehouse

import (
	"context"
	"errors"

	"github.com/tailorworks/tailor-etl/internal/logging"
)

// loadDimension maps each source row and inserts it if its natural key is
// absent. Existing rows are never refreshed (type-0 dimension).
func loadDimension[S, D any](ctx context.Context, report *Report, table string,
	rows []S, toDim func(S) D, insert func(context.Context, D) (bool, error)) error {
	stats := report.track(StageDimensions, table)

	for _, src := range rows {
		stats.Read++
		inserted, err := insert(ctx, toDim(src))
		if err != nil {
			return wrapWrite(table, err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Existing++
		}
	}

	logging.Info().EmbedObject(stats).Msg("Dimension loaded")
	return nil
}

// LoadCustomers loads dim_customer.
func LoadCustomers(ctx context.Context, target Target, rows []Customer, report *Report) error {
	return loadDimension(ctx, report, "dim_customer", rows, CustomerDim, target.InsertCustomer)
}

// LoadTailors loads dim_tailor.
func LoadTailors(ctx context.Context, target Target, rows []Tailor, report *Report) error {
	return loadDimension(ctx, report, "dim_tailor", rows, TailorDim, target.InsertTailor)
}

// LoadMaterials loads dim_material.
func LoadMaterials(ctx context.Context, target Target, rows []Material, report *Report) error {
	return loadDimension(ctx, report, "dim_material", rows, MaterialDim, target.InsertMaterial)
}

// LoadServices loads dim_service.
func LoadServices(ctx context.Context, target Target, rows []Service, report *Report) error {
	return loadDimension(ctx, report, "dim_service", rows, ServiceDim, target.InsertService)
}

// LoadOrderStatuses loads dim_order_status.
func LoadOrderStatuses(ctx context.Context, target Target, rows []OrderStatus, report *Report) error {
	return loadDimension(ctx, report, "dim_order_status", rows, OrderStatusDim, target.InsertOrderStatus)
}

// LoadPayments loads dim_payment.
func LoadPayments(ctx context.Context, target Target, rows []Payment, report *Report) error {
	return loadDimension(ctx, report, "dim_payment", rows, PaymentDim, target.InsertPayment)
}

// LoadDimensions runs every dimension loader. The loaders do not depend on
// each other; they run in a fixed order so reports are stable.
func LoadDimensions(ctx context.Context, target Target, snap *Snapshot, report *Report) error {
	loaders := []func() error{
		func() error { return LoadCustomers(ctx, target, snap.Customers, report) },
		func() error { return LoadTailors(ctx, target, snap.Tailors, report) },
		func() error { return LoadMaterials(ctx, target, snap.Materials, report) },
		func() error { return LoadServices(ctx, target, snap.Services, report) },
		func() error { return LoadOrderStatuses(ctx, target, snap.OrderStatuses, report) },
		func() error { return LoadPayments(ctx, target, snap.Payments, report) },
	}
	for _, load := range loaders {
		if err := load(); err != nil {
			return err
		}
	}
	return nil
}

// CustomerDim maps a customer to its dimension row.
func CustomerDim(c Customer) DimCustomer {
	return DimCustomer{
		CustomerSK:   c.CustomerID,
		CustomerID:   c.CustomerID,
		Name:         c.Name,
		Phone:        c.Phone,
		Address:      c.Address,
		Gender:       c.Gender,
		RegisteredOn: c.RegisteredOn,
		CustomerType: c.CustomerType,
		Referral:     c.Referral,
	}
}

// TailorDim maps a tailor to its dimension row.
func TailorDim(t Tailor) DimTailor {
	return DimTailor{
		TailorSK:  t.TailorID,
		TailorID:  t.TailorID,
		Name:      t.Name,
		Specialty: t.Specialty,
		StartedOn: t.StartedOn,
		Status:    t.Status,
	}
}

// MaterialDim maps a material to its dimension row. Stock levels are
// operational and stay out of the warehouse.
func MaterialDim(m Material) DimMaterial {
	return DimMaterial{
		MaterialSK:    m.MaterialID,
		MaterialID:    m.MaterialID,
		Name:          m.Name,
		Category:      m.Category,
		Supplier:      m.Supplier,
		PricePerMeter: m.PricePerMeter,
		Unit:          m.Unit,
	}
}

// ServiceDim maps a service to its dimension row.
func ServiceDim(s Service) DimService {
	return DimService{
		ServiceSK:     s.ServiceID,
		ServiceID:     s.ServiceID,
		Name:          s.Name,
		Description:   s.Description,
		BasePrice:     s.BasePrice,
		EstimatedDays: s.EstimatedDays,
	}
}

// OrderStatusDim maps an order status to its dimension row.
func OrderStatusDim(s OrderStatus) DimOrderStatus {
	return DimOrderStatus{
		StatusSK:    s.StatusID,
		StatusID:    s.StatusID,
		Name:        s.Name,
		Description: s.Description,
	}
}

// PaymentDim maps a payment to its dimension row.
func PaymentDim(p Payment) DimPayment {
	return DimPayment{
		PaymentSK:   p.PaymentID,
		PaymentID:   p.PaymentID,
		Method:      p.Method,
		PaymentDate: p.PaymentDate,
		Status:      p.Status,
		Discount:    p.Discount,
	}
}

func wrapWrite(table string, err error) error {
	var werr *Error
	if errors.As(err, &werr) && werr.Kind == KindWrite {
		return err
	}
	return NewWriteError(table, err)
}
