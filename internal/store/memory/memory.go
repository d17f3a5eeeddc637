// Package memory provides in-process implementations of the warehouse
// source and target. The target backs dry runs; both back the tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

var (
	_ warehouse.Source = (*Source)(nil)
	_ warehouse.Target = (*Target)(nil)
)

// Source serves a fixed snapshot.
type Source struct {
	snap warehouse.Snapshot
}

// NewSource returns a source that serves snap.
func NewSource(snap warehouse.Snapshot) *Source {
	return &Source{snap: snap}
}

// Customers returns all customers.
func (s *Source) Customers(ctx context.Context) ([]warehouse.Customer, error) {
	return clone(s.snap.Customers), nil
}

// Tailors returns all tailors.
func (s *Source) Tailors(ctx context.Context) ([]warehouse.Tailor, error) {
	return clone(s.snap.Tailors), nil
}

// Materials returns all materials.
func (s *Source) Materials(ctx context.Context) ([]warehouse.Material, error) {
	return clone(s.snap.Materials), nil
}

// Services returns all services.
func (s *Source) Services(ctx context.Context) ([]warehouse.Service, error) {
	return clone(s.snap.Services), nil
}

// OrderStatuses returns all order statuses.
func (s *Source) OrderStatuses(ctx context.Context) ([]warehouse.OrderStatus, error) {
	return clone(s.snap.OrderStatuses), nil
}

// Orders returns all orders.
func (s *Source) Orders(ctx context.Context) ([]warehouse.Order, error) {
	return clone(s.snap.Orders), nil
}

// OrderLineDetails returns all order line details.
func (s *Source) OrderLineDetails(ctx context.Context) ([]warehouse.OrderLineDetail, error) {
	return clone(s.snap.LineDetails), nil
}

// Payments returns all payments.
func (s *Source) Payments(ctx context.Context) ([]warehouse.Payment, error) {
	return clone(s.snap.Payments), nil
}

func clone[T any](rows []T) []T {
	if rows == nil {
		return nil
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}

// factKey identifies a fact row for de-duplication.
type factKey struct {
	orderID      int64
	lineDetailID int64
}

// Target is an in-memory star schema. Dimension tables enforce natural-key
// uniqueness the way the PostgreSQL target's UNIQUE constraints do.
type Target struct {
	mu          sync.Mutex
	dedupeFacts bool

	dates     map[int]warehouse.DimDate
	customers map[int64]warehouse.DimCustomer
	tailors   map[int64]warehouse.DimTailor
	materials map[int64]warehouse.DimMaterial
	services  map[int64]warehouse.DimService
	statuses  map[int64]warehouse.DimOrderStatus
	payments  map[int64]warehouse.DimPayment
	facts     []warehouse.FactOrder
	factKeys  map[factKey]struct{}
}

// TargetOptions configures a Target.
type TargetOptions struct {
	// DedupeFacts skips facts whose (order, line detail) pair is present.
	DedupeFacts bool
}

// NewTarget returns an empty target.
func NewTarget(opts TargetOptions) *Target {
	return &Target{
		dedupeFacts: opts.DedupeFacts,
		dates:       make(map[int]warehouse.DimDate),
		customers:   make(map[int64]warehouse.DimCustomer),
		tailors:     make(map[int64]warehouse.DimTailor),
		materials:   make(map[int64]warehouse.DimMaterial),
		services:    make(map[int64]warehouse.DimService),
		statuses:    make(map[int64]warehouse.DimOrderStatus),
		payments:    make(map[int64]warehouse.DimPayment),
		factKeys:    make(map[factKey]struct{}),
	}
}

// insertOnce stores row under key unless key is taken.
func insertOnce[K comparable, V any](mu *sync.Mutex, m map[K]V, key K, row V) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := m[key]; ok {
		return false
	}
	m[key] = row
	return true
}

// InsertDate implements warehouse.Target.
func (t *Target) InsertDate(ctx context.Context, row warehouse.DimDate) (bool, error) {
	return insertOnce(&t.mu, t.dates, row.DateID, row), nil
}

// InsertCustomer implements warehouse.Target.
func (t *Target) InsertCustomer(ctx context.Context, row warehouse.DimCustomer) (bool, error) {
	return insertOnce(&t.mu, t.customers, row.CustomerID, row), nil
}

// InsertTailor implements warehouse.Target.
func (t *Target) InsertTailor(ctx context.Context, row warehouse.DimTailor) (bool, error) {
	return insertOnce(&t.mu, t.tailors, row.TailorID, row), nil
}

// InsertMaterial implements warehouse.Target.
func (t *Target) InsertMaterial(ctx context.Context, row warehouse.DimMaterial) (bool, error) {
	return insertOnce(&t.mu, t.materials, row.MaterialID, row), nil
}

// InsertService implements warehouse.Target.
func (t *Target) InsertService(ctx context.Context, row warehouse.DimService) (bool, error) {
	return insertOnce(&t.mu, t.services, row.ServiceID, row), nil
}

// InsertOrderStatus implements warehouse.Target.
func (t *Target) InsertOrderStatus(ctx context.Context, row warehouse.DimOrderStatus) (bool, error) {
	return insertOnce(&t.mu, t.statuses, row.StatusID, row), nil
}

// InsertPayment implements warehouse.Target.
func (t *Target) InsertPayment(ctx context.Context, row warehouse.DimPayment) (bool, error) {
	return insertOnce(&t.mu, t.payments, row.PaymentID, row), nil
}

// InsertFact implements warehouse.Target.
func (t *Target) InsertFact(ctx context.Context, row warehouse.FactOrder) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := factKey{orderID: row.OrderID, lineDetailID: row.LineDetailID}
	if t.dedupeFacts {
		if _, ok := t.factKeys[key]; ok {
			return false, nil
		}
	}
	t.factKeys[key] = struct{}{}
	t.facts = append(t.facts, row)
	return true, nil
}

// Dates returns dim_date ordered by key.
func (t *Target) Dates() []warehouse.DimDate {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]warehouse.DimDate, 0, len(t.dates))
	for _, d := range t.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateID < out[j].DateID })
	return out
}

// Customer returns the dim_customer row with the natural key id.
func (t *Target) Customer(id int64) (warehouse.DimCustomer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.customers[id]
	return c, ok
}

// Counts returns the row count of every table, keyed by table name.
func (t *Target) Counts() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return map[string]int{
		"dim_date":         len(t.dates),
		"dim_customer":     len(t.customers),
		"dim_tailor":       len(t.tailors),
		"dim_material":     len(t.materials),
		"dim_service":      len(t.services),
		"dim_order_status": len(t.statuses),
		"dim_payment":      len(t.payments),
		"fact_order":       len(t.facts),
	}
}

// NaturalKeys returns the sorted natural keys of the named dimension table.
func (t *Target) NaturalKeys(table string) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var keys []int64
	switch table {
	case "dim_customer":
		keys = mapKeys(t.customers)
	case "dim_tailor":
		keys = mapKeys(t.tailors)
	case "dim_material":
		keys = mapKeys(t.materials)
	case "dim_service":
		keys = mapKeys(t.services)
	case "dim_order_status":
		keys = mapKeys(t.statuses)
	case "dim_payment":
		keys = mapKeys(t.payments)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func mapKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Facts returns a copy of fact_order in insertion order.
func (t *Target) Facts() []warehouse.FactOrder {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clone(t.facts)
}
