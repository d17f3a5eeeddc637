package warehouse

import (
	"context"
	"sort"

	"github.com/tailorworks/tailor-etl/internal/logging"
)

// CollectDates returns the distinct date values referenced by orders and
// payments. Payments without a date contribute nothing.
func CollectDates(orders []Order, payments []Payment) []string {
	seen := make(map[string]struct{}, len(orders)+len(payments))
	var dates []string
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		dates = append(dates, v)
	}

	for _, o := range orders {
		add(o.OrderDate)
	}
	for _, p := range payments {
		if p.PaymentDate != nil {
			add(*p.PaymentDate)
		}
	}
	return dates
}

// BuildDateDimension derives and loads dim_date from the order and payment
// dates. A malformed date is logged and skipped; only write failures abort.
func BuildDateDimension(ctx context.Context, target Target, orders []Order,
	payments []Payment, report *Report) error {
	stats := report.track(StageDates, "dim_date")

	rows := make(map[int]DimDate)
	for _, raw := range CollectDates(orders, payments) {
		t, err := ParseDate(raw)
		if err != nil {
			stats.Invalid++
			logging.Warn().Err(err).Msg("Skipping malformed date")
			continue
		}
		row := NewDimDate(t)
		rows[row.DateID] = row
	}

	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		stats.Read++
		inserted, err := target.InsertDate(ctx, rows[k])
		if err != nil {
			return wrapWrite("dim_date", err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Existing++
		}
	}

	logging.Info().EmbedObject(stats).Msg("Date dimension loaded")
	return nil
}
