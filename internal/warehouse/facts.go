package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tailorworks/tailor-etl/internal/logging"
)

// PaymentKeyMode selects how a fact row's payment key is derived.
type PaymentKeyMode string

const (
	// PaymentKeyOrder assumes one payment per order whose id equals the
	// order id.
	PaymentKeyOrder PaymentKeyMode = "order"

	// PaymentKeyLookup resolves the payment by its order reference.
	PaymentKeyLookup PaymentKeyMode = "lookup"
)

// ParsePaymentKeyMode validates s.
func ParsePaymentKeyMode(s string) (PaymentKeyMode, error) {
	switch m := PaymentKeyMode(s); m {
	case PaymentKeyOrder, PaymentKeyLookup:
		return m, nil
	case "":
		return PaymentKeyOrder, nil
	}
	return "", fmt.Errorf("unknown payment key mode %q (want order or lookup)", s)
}

// FactBuilder turns order headers and their line details into fact rows.
type FactBuilder struct {
	orders   map[int64]Order
	payments map[int64]int64
	mode     PaymentKeyMode
}

// NewFactBuilder indexes orders (and, in lookup mode, payments) by order id.
func NewFactBuilder(orders []Order, payments []Payment, mode PaymentKeyMode) *FactBuilder {
	b := &FactBuilder{
		orders: make(map[int64]Order, len(orders)),
		mode:   mode,
	}
	for _, o := range orders {
		b.orders[o.OrderID] = o
	}

	if mode == PaymentKeyLookup {
		b.payments = make(map[int64]int64, len(payments))
		for _, p := range payments {
			prev, ok := b.payments[p.OrderID]
			if !ok {
				b.payments[p.OrderID] = p.PaymentID
				continue
			}
			logging.Warn().
				Int64("order_id", p.OrderID).
				Int64("payment_id", p.PaymentID).
				Msg("Order has more than one payment; using the lowest payment id")
			if p.PaymentID < prev {
				b.payments[p.OrderID] = p.PaymentID
			}
		}
	}
	return b
}

// Build returns the fact row for d. It fails with a reference error when the
// parent order is unknown and with a validation error when the order date
// cannot be parsed.
//
// Dimension keys are the natural keys: every loader seeds its surrogate key
// from the natural key, so no lookup is needed.
func (b *FactBuilder) Build(d OrderLineDetail) (FactOrder, error) {
	o, ok := b.orders[d.OrderID]
	if !ok {
		return FactOrder{}, &Error{
			Kind: KindReference,
			Op:   fmt.Sprintf("order %d of line detail %d", d.OrderID, d.DetailID),
		}
	}

	orderDate, err := ParseDate(o.OrderDate)
	if err != nil {
		return FactOrder{}, err
	}

	return FactOrder{
		OrderID:        o.OrderID,
		LineDetailID:   d.DetailID,
		DateID:         DateKey(orderDate),
		CustomerSK:     o.CustomerID,
		TailorSK:       o.TailorID,
		MaterialSK:     d.MaterialID,
		ServiceSK:      o.ServiceID,
		StatusSK:       o.StatusID,
		PaymentSK:      b.paymentKey(o.OrderID),
		ItemCount:      1,
		QuantityMeters: d.QuantityMeters,
		TotalPrice:     o.TotalPrice,
		Discount:       decimal.Zero,
		Rating:         o.Rating,
		ProcessingDays: ProcessingDays(o.OrderDate, o.CompletionDate),
	}, nil
}

func (b *FactBuilder) paymentKey(orderID int64) *int64 {
	if b.mode != PaymentKeyLookup {
		id := orderID
		return &id
	}
	id, ok := b.payments[orderID]
	if !ok {
		return nil
	}
	return &id
}

// BuildFacts writes one fact row per line detail. Line details whose order
// is missing, or whose order date is malformed, are counted and skipped.
func BuildFacts(ctx context.Context, target Target, snap *Snapshot,
	mode PaymentKeyMode, report *Report) error {
	stats := report.track(StageFacts, "fact_order")
	builder := NewFactBuilder(snap.Orders, snap.Payments, mode)

	for _, d := range snap.LineDetails {
		stats.Read++

		fact, err := builder.Build(d)
		if err != nil {
			var e *Error
			if !errors.As(err, &e) {
				return err
			}
			switch e.Kind {
			case KindReference:
				stats.Orphaned++
				logging.Debug().Err(err).Msg("Skipping line detail")
				continue
			case KindValidation:
				stats.Invalid++
				logging.Warn().
					Int64("line_detail_id", d.DetailID).
					Err(err).
					Msg("Skipping line detail with malformed order date")
				continue
			}
			return err
		}

		inserted, err := target.InsertFact(ctx, fact)
		if err != nil {
			return wrapWrite("fact_order", err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Existing++
		}
	}

	if stats.Orphaned > 0 {
		logging.Warn().
			Int("orphaned", stats.Orphaned).
			Msg("Line details without a matching order were skipped")
	}
	logging.Info().EmbedObject(stats).Msg("Facts loaded")
	return nil
}
