package quotes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/enums"
	"github.com/angelmondragon/rental-pricing/pkg/geo"
	"github.com/angelmondragon/rental-pricing/pkg/types"
)

// Thursday 2025-03-13 10:00 UTC.
var testNow = time.Date(2025, time.March, 13, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func todPtr(s string) *types.TimeOfDay {
	tod := types.MustTimeOfDay(s)
	return &tod
}

func mustDate(s string) types.Date {
	d, err := types.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func openStore(id int64) StoreCandidate {
	return StoreCandidate{
		ID:              id,
		TenantID:        7,
		Name:            fmt.Sprintf("store-%d", id),
		BusinessStart:   todPtr("08:00"),
		BusinessEnd:     todPtr("22:00"),
		MinAdvanceHours: intPtr(2),
		MaxAdvanceDays:  intPtr(30),
		ServiceFeeCents: int64Ptr(1000),
	}
}

func product(id, storeID int64) ProductOffering {
	return ProductOffering{
		ID:                id,
		StoreID:           storeID,
		TenantID:          7,
		CarModelID:        id * 10,
		Name:              fmt.Sprintf("product-%d", id),
		WeekdayPriceCents: int64Ptr(30000),
		WeekendPriceCents: int64Ptr(40000),
	}
}

type fakeDirectory struct {
	mu          sync.Mutex
	stores      []StoreCandidate
	nearbyErr   error
	areas       map[int64][]ServiceAreaRule
	areasErr    map[int64]error
	products    map[int64][]ProductOffering
	productsErr map[int64]error
	overrides   map[int64]*SpecialPricingOverride
	overrideErr map[int64]error
	radiusSeen  float64
	onProducts  func(storeID int64)
}

func (f *fakeDirectory) FindStoresNear(_ context.Context, _ geo.Point, radiusKm float64) ([]StoreCandidate, error) {
	f.mu.Lock()
	f.radiusSeen = radiusKm
	f.mu.Unlock()
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	return f.stores, nil
}

func (f *fakeDirectory) FindServiceAreasByStore(_ context.Context, storeID int64) ([]ServiceAreaRule, error) {
	if err := f.areasErr[storeID]; err != nil {
		return nil, err
	}
	return f.areas[storeID], nil
}

func (f *fakeDirectory) FindProductsByStore(_ context.Context, storeID int64) ([]ProductOffering, error) {
	if f.onProducts != nil {
		f.onProducts(storeID)
	}
	if err := f.productsErr[storeID]; err != nil {
		return nil, err
	}
	return f.products[storeID], nil
}

func (f *fakeDirectory) FindSpecialPricing(_ context.Context, _ int64, productID int64, date types.Date) (*SpecialPricingOverride, error) {
	if err := f.overrideErr[productID]; err != nil {
		return nil, err
	}
	o := f.overrides[productID]
	if o == nil || o.Date != date {
		return nil, nil
	}
	return o, nil
}

type fakePolicies struct {
	product       *ProductOffering
	productErr    error
	templates     []ValueAddedServiceTemplate
	templatesErr  error
	cancellation  map[int64]*CancellationPolicy
	servicePolicy map[int64]*ServicePolicy
	policyErr     error
	lookedUp      [2]int64
}

func (f *fakePolicies) FindProductByStoreAndModel(_ context.Context, storeID, carModelID int64) (*ProductOffering, error) {
	f.lookedUp = [2]int64{storeID, carModelID}
	return f.product, f.productErr
}

func (f *fakePolicies) ListValueAddedServiceTemplates(context.Context) ([]ValueAddedServiceTemplate, error) {
	return f.templates, f.templatesErr
}

func (f *fakePolicies) FindCancellationPolicy(_ context.Context, id int64) (*CancellationPolicy, error) {
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return f.cancellation[id], nil
}

func (f *fakePolicies) FindServicePolicy(_ context.Context, id int64) (*ServicePolicy, error) {
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return f.servicePolicy[id], nil
}

type fakeCache struct {
	mu      sync.Mutex
	seq     int
	items   map[string]Quote
	failFor map[int64]bool
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]Quote{}, failFor: map[int64]bool{}}
}

func (c *fakeCache) Put(_ context.Context, q Quote) (Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFor[q.ProductID] {
		return Quote{}, errors.New("cache unavailable")
	}
	c.seq++
	q.ID = fmt.Sprintf("q%04d", c.seq)
	q.CreatedAt = testNow
	q.ExpiresAt = testNow.Add(30 * time.Minute)
	c.items[q.ID] = q
	return q, nil
}

func (c *fakeCache) Get(_ context.Context, id string) (Quote, error) {
	if c.getErr != nil {
		return Quote{}, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.items[id]
	if !ok {
		return Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	skipped  map[string]int
	details  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{skipped: map[string]int{}, details: map[string]int{}}
}

func (m *recordingMetrics) ObserveSearch(outcome string, _ time.Duration, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) IncSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[reason]++
}

func (m *recordingMetrics) IncDetail(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.details[outcome]++
}

type fakeEvents struct {
	mu         sync.Mutex
	types      []string
	payloads   []any
	err        error
	block      chan struct{}
	lastCtxErr error
}

func (f *fakeEvents) Publish(ctx context.Context, eventType string, payload any) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.lastCtxErr = ctx.Err()
	defer f.mu.Unlock()
	f.types = append(f.types, eventType)
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return "", f.err
	}
	return "evt-1", nil
}

var (
	pickupRule = func(storeID int64, fee int64) ServiceAreaRule {
		return ServiceAreaRule{StoreID: storeID, AreaType: enums.AreaTypePickup, DoorToDoorDelivery: true, DeliveryFeeCents: &fee}
	}
	returnRule = func(storeID int64, fee int64) ServiceAreaRule {
		return ServiceAreaRule{StoreID: storeID, AreaType: enums.AreaTypeReturn, DoorToDoorDelivery: true, DeliveryFeeCents: &fee}
	}
)
