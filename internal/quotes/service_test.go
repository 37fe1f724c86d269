package quotes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/config"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.svc.(Drainer).Drain(ctx))
}

type harness struct {
	dir      *fakeDirectory
	policies *fakePolicies
	cache    *fakeCache
	metrics  *recordingMetrics
	events   *fakeEvents
	svc      Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dir: &fakeDirectory{
			stores: []StoreCandidate{openStore(1), openStore(2)},
			products: map[int64][]ProductOffering{
				1: {product(11, 1), product(12, 1)},
				2: {product(21, 2)},
			},
			areas:       map[int64][]ServiceAreaRule{},
			areasErr:    map[int64]error{},
			productsErr: map[int64]error{},
			overrides:   map[int64]*SpecialPricingOverride{},
			overrideErr: map[int64]error{},
		},
		policies: &fakePolicies{},
		cache:    newFakeCache(),
		metrics:  newRecordingMetrics(),
		events:   &fakeEvents{},
	}
	svc, err := NewService(ServiceParams{
		Directory: h.dir,
		Policies:  h.policies,
		Cache:     h.cache,
		Metrics:   h.metrics,
		Events:    h.events,
		Pricing: config.PricingConfig{
			SearchRadiusKm:      5,
			BaseProtectionCents: 3000,
			Currency:            "CNY",
			SearchWorkers:       2,
		},
		Location: time.UTC,
		Clock:    fixedClock,
	})
	require.NoError(t, err)
	h.svc = svc
	return h
}

func searchRequest() Request {
	return Request{Date: mustDate("2025-03-15"), Time: types.MustTimeOfDay("10:00"), Longitude: 121.47, Latitude: 31.23}
}

func productIDs(quotes []Quote) []int64 {
	out := make([]int64, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.ProductID)
	}
	return out
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Directory: &fakeDirectory{}, Policies: &fakePolicies{}, Cache: newFakeCache()})
	assert.Error(t, err, "zero radius should be rejected")
}

func TestSearchQuotesReturnsStoreThenProductOrder(t *testing.T) {
	h := newHarness(t)

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12, 21}, productIDs(quotes))
	assert.Equal(t, 5.0, h.dir.radiusSeen)

	for _, q := range quotes {
		require.NotEmpty(t, q.ID)
		cached, err := h.cache.Get(context.Background(), q.ID)
		require.NoError(t, err)
		assert.Equal(t, q, cached)
		assert.Equal(t, "400.00", q.DailyRate.String())
	}
	assert.Equal(t, []string{"ok"}, h.metrics.outcomes)
}

func TestSearchQuotesNearbyFailureYieldsEmptyResult(t *testing.T) {
	h := newHarness(t)
	h.dir.nearbyErr = errors.New("base data down")

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)
	assert.Empty(t, h.events.types, "no event for a degraded search")
}

func TestSearchQuotesSkipsStoreWhoseLookupFails(t *testing.T) {
	h := newHarness(t)
	h.dir.productsErr[1] = errors.New("product service timeout")

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{21}, productIDs(quotes))
	assert.Equal(t, 1, h.metrics.skipped[skipStoreLookup])

	h2 := newHarness(t)
	h2.dir.areasErr[2] = errors.New("areas down")
	quotes, err = h2.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, productIDs(quotes))
}

func TestSearchQuotesSkipsPairOnSpecialPricingFailure(t *testing.T) {
	h := newHarness(t)
	h.dir.overrideErr[12] = errors.New("pricing lookup failed")

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 21}, productIDs(quotes))
	assert.Equal(t, 1, h.metrics.skipped[skipSpecialPricing])
}

func TestSearchQuotesAppliesOverride(t *testing.T) {
	h := newHarness(t)
	req := searchRequest()
	h.dir.overrides[21] = &SpecialPricingOverride{ProductID: 21, Date: req.Date, PriceCents: 88800}

	quotes, err := h.svc.SearchQuotes(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, "888.00", quotes[2].DailyRate.String())
	assert.True(t, quotes[2].SpecialPricing)
	assert.Equal(t, "400.00", quotes[0].DailyRate.String())
}

func TestSearchQuotesSkipsUnpriceablePair(t *testing.T) {
	h := newHarness(t)
	broken := product(13, 1)
	broken.WeekendPriceCents = nil
	h.dir.products[1] = append(h.dir.products[1], broken)

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12, 21}, productIDs(quotes))
	assert.Equal(t, 1, h.metrics.skipped[skipComputation])
}

func TestSearchQuotesDropsQuoteThatCannotBeCached(t *testing.T) {
	h := newHarness(t)
	h.cache.failFor[11] = true

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 21}, productIDs(quotes))
	assert.Equal(t, 1, h.metrics.skipped[skipCacheWrite])
}

func TestSearchQuotesFiltersUnavailableStores(t *testing.T) {
	h := newHarness(t)
	closed := openStore(2)
	closed.BusinessStart = todPtr("12:00")
	h.dir.stores = []StoreCandidate{openStore(1), closed}

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, productIDs(quotes))
}

func TestSearchQuotesRejectsInvalidInput(t *testing.T) {
	h := newHarness(t)
	req := searchRequest()
	req.Latitude = 95

	_, err := h.svc.SearchQuotes(context.Background(), req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "latitude")
}

func TestSearchQuotesReturnsContextError(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	h.dir.onProducts = func(int64) { cancel() }

	_, err := h.svc.SearchQuotes(ctx, searchRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchQuotesPublishesEvent(t *testing.T) {
	h := newHarness(t)

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	h.drain(t)
	require.Equal(t, []string{EventSearchCompleted}, h.events.types)

	event, ok := h.events.payloads[0].(SearchCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, event.StoresNearby)
	assert.Equal(t, 2, event.StoresAvailable)
	require.Len(t, event.QuoteIDs, len(quotes))
	assert.Equal(t, quotes[0].ID, event.QuoteIDs[0])
}

func TestSearchQuotesIgnoresPublishFailure(t *testing.T) {
	h := newHarness(t)
	h.events.err = errors.New("pubsub unavailable")

	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Len(t, quotes, 3)
	h.drain(t)
}

func TestSearchQuotesDoesNotWaitForPublisher(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.events.block = release

	type result struct {
		quotes []Quote
		err    error
	}
	// the search context is canceled on return, the publish must outlive it
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan result, 1)
	go func() {
		quotes, err := h.svc.SearchQuotes(ctx, searchRequest())
		done <- result{quotes, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Len(t, res.quotes, 3)
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("search blocked on the event publisher")
	}
	cancel()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer drainCancel()
	assert.ErrorIs(t, h.svc.(Drainer).Drain(drainCtx), context.DeadlineExceeded)

	close(release)
	h.drain(t)
	assert.Equal(t, []string{EventSearchCompleted}, h.events.types)
	assert.NoError(t, h.events.lastCtxErr, "publish context must not inherit the request cancellation")
}

func TestConcurrentSearchesProduceDistinctQuotes(t *testing.T) {
	h := newHarness(t)

	var wg sync.WaitGroup
	results := make([][]Quote, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := h.svc.SearchQuotes(context.Background(), searchRequest())
			if err == nil {
				results[i] = q
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, quotes := range results {
		require.Len(t, quotes, 3)
		for _, q := range quotes {
			require.False(t, seen[q.ID], "duplicate quote id %s", q.ID)
			seen[q.ID] = true
		}
	}
}

func TestGetQuoteDetailNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.GetQuoteDetail(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, 1, h.metrics.details["miss"])

	_, err = h.svc.GetQuoteDetail(context.Background(), "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetQuoteDetailCacheFailureIsDependencyError(t *testing.T) {
	h := newHarness(t)
	h.cache.getErr = errors.New("redis down")

	_, err := h.svc.GetQuoteDetail(context.Background(), "q0001")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestGetQuoteDetailEnrichesFromPolicies(t *testing.T) {
	h := newHarness(t)
	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)
	target := quotes[0]

	p := product(11, 1)
	p.VASTemplateID = int64Ptr(100)
	p.VASTemplateIDVvip = int64Ptr(300)
	p.CancellationTemplateID = int64Ptr(5)
	p.ServicePolicyTemplateID = int64Ptr(6)
	h.policies.product = &p
	h.policies.templates = []ValueAddedServiceTemplate{
		{ID: 100, Name: "basic", PriceCents: int64Ptr(5000), IncludeTireDamage: intPtr(1), Deductible: int64Ptr(1500)},
		{ID: 200, Name: "vip", PriceCents: int64Ptr(8000)},
		{ID: 300, Name: "vvip", PriceCents: int64Ptr(12000), IncludeGlassDamage: intPtr(1), ChargeDepreciation: intPtr(0)},
	}
	h.policies.cancellation = map[int64]*CancellationPolicy{5: {ID: 5, Name: "flexible", WeekdayRule: "free until 24h"}}
	h.policies.servicePolicy = map[int64]*ServicePolicy{6: {ID: 6, MileageLimit: "300km/day"}}

	detail, err := h.svc.GetQuoteDetail(context.Background(), target.ID)
	require.NoError(t, err)

	assert.Equal(t, target, detail.Quote)
	assert.Equal(t, [2]int64{target.StoreID, target.CarModelID}, h.policies.lookedUp)
	require.Len(t, detail.ValueAddedServices, 2)
	assert.Equal(t, "basic", detail.ValueAddedServices[0].Name)
	assert.Equal(t, "50.00", detail.ValueAddedServices[0].Price.String())
	assert.True(t, detail.ValueAddedServices[0].IncludeTireDamage)
	assert.Equal(t, int64(1500), *detail.ValueAddedServices[0].Deductible)
	assert.Equal(t, "vvip", detail.ValueAddedServices[1].Name)
	assert.True(t, detail.ValueAddedServices[1].IncludeGlassDamage)
	assert.False(t, detail.ValueAddedServices[1].ChargeDepreciation)
	assert.Equal(t, "flexible", detail.CancellationPolicy.Name)
	assert.Equal(t, "300km/day", detail.ServicePolicy.MileageLimit)
	assert.Equal(t, 1, h.metrics.details["hit"])
}

func TestGetQuoteDetailDegradesToEmptyPolicies(t *testing.T) {
	h := newHarness(t)
	quotes, err := h.svc.SearchQuotes(context.Background(), searchRequest())
	require.NoError(t, err)

	h.policies.productErr = errors.New("product service down")
	detail, err := h.svc.GetQuoteDetail(context.Background(), quotes[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, detail.ValueAddedServices)
	assert.Empty(t, detail.ValueAddedServices)
	assert.Equal(t, CancellationPolicy{}, detail.CancellationPolicy)
	assert.Equal(t, ServicePolicy{}, detail.ServicePolicy)

	p := product(11, 1)
	p.VASTemplateID = int64Ptr(100)
	p.CancellationTemplateID = int64Ptr(5)
	h.policies.productErr = nil
	h.policies.product = &p
	h.policies.templatesErr = errors.New("templates down")
	h.policies.policyErr = errors.New("policies down")

	detail, err = h.svc.GetQuoteDetail(context.Background(), quotes[0].ID)
	require.NoError(t, err)
	assert.Empty(t, detail.ValueAddedServices)
	assert.Equal(t, CancellationPolicy{}, detail.CancellationPolicy)
}
