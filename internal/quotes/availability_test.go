package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter(now time.Time) *AvailabilityFilter {
	return NewAvailabilityFilter(func() time.Time { return now }, time.UTC, nil, nil)
}

func ids(stores []StoreCandidate) []int64 {
	out := make([]int64, 0, len(stores))
	for _, s := range stores {
		out = append(out, s.ID)
	}
	return out
}

func TestFilterKeepsStoreOpenTomorrowMorning(t *testing.T) {
	f := newTestFilter(testNow)
	kept := f.Filter(context.Background(), []StoreCandidate{openStore(1)}, mustDate("2025-03-14"), types.MustTimeOfDay("09:00"))
	assert.Equal(t, []int64{1}, ids(kept))
}

func TestFilterExcludesPickupAfterClosing(t *testing.T) {
	f := newTestFilter(testNow)
	kept := f.Filter(context.Background(), []StoreCandidate{openStore(1)}, mustDate("2025-03-14"), types.MustTimeOfDay("23:00"))
	assert.Empty(t, kept)
}

func TestFilterBusinessHoursAreInclusive(t *testing.T) {
	f := newTestFilter(testNow)
	date := mustDate("2025-03-14")
	for _, tod := range []string{"08:00", "22:00"} {
		kept := f.Filter(context.Background(), []StoreCandidate{openStore(1)}, date, types.MustTimeOfDay(tod))
		assert.Len(t, kept, 1, "pickup at %s should be inside business hours", tod)
	}
	for _, tod := range []string{"07:59:59", "22:00:01"} {
		kept := f.Filter(context.Background(), []StoreCandidate{openStore(1)}, date, types.MustTimeOfDay(tod))
		assert.Empty(t, kept, "pickup at %s should be outside business hours", tod)
	}
}

func TestFilterMinAdvanceBoundary(t *testing.T) {
	store := openStore(1)
	date := mustDate("2025-03-13")

	// exactly two hours ahead
	kept := newTestFilter(testNow).Filter(context.Background(), []StoreCandidate{store}, date, types.MustTimeOfDay("12:00"))
	assert.Len(t, kept, 1)

	// one second short of two hours truncates to one
	kept = newTestFilter(testNow.Add(time.Second)).Filter(context.Background(), []StoreCandidate{store}, date, types.MustTimeOfDay("12:00"))
	assert.Empty(t, kept)
}

func TestFilterMaxAdvanceDays(t *testing.T) {
	store := openStore(1)
	f := newTestFilter(testNow)

	// 30 days and 11 hours truncates to 30
	kept := f.Filter(context.Background(), []StoreCandidate{store}, mustDate("2025-04-12"), types.MustTimeOfDay("21:00"))
	assert.Len(t, kept, 1)

	kept = f.Filter(context.Background(), []StoreCandidate{store}, mustDate("2025-04-13"), types.MustTimeOfDay("10:00"))
	assert.Empty(t, kept)
}

func TestFilterRejectsPastPickup(t *testing.T) {
	kept := newTestFilter(testNow).Filter(context.Background(), []StoreCandidate{openStore(1)}, mustDate("2025-03-12"), types.MustTimeOfDay("10:00"))
	assert.Empty(t, kept)
}

func TestFilterSkipsMalformedStoresOnly(t *testing.T) {
	noHours := openStore(2)
	noHours.BusinessEnd = nil
	noMin := openStore(3)
	noMin.MinAdvanceHours = nil
	noMax := openStore(4)
	noMax.MaxAdvanceDays = nil

	metrics := newRecordingMetrics()
	f := NewAvailabilityFilter(fixedClock, time.UTC, nil, metrics)
	kept := f.Filter(context.Background(), []StoreCandidate{openStore(1), noHours, noMin, noMax, openStore(5)}, mustDate("2025-03-14"), types.MustTimeOfDay("09:00"))

	assert.Equal(t, []int64{1, 5}, ids(kept))
	assert.Equal(t, 3, metrics.skipped[skipStoreMalformed])
}

func TestFilterUsesBusinessLocation(t *testing.T) {
	shanghai := time.FixedZone("UTC+8", 8*3600)
	// 10:00 in Shanghai is 02:00 UTC
	now := time.Date(2025, time.March, 13, 2, 0, 0, 0, time.UTC)
	f := NewAvailabilityFilter(func() time.Time { return now }, shanghai, nil, nil)

	kept := f.Filter(context.Background(), []StoreCandidate{openStore(1)}, mustDate("2025-03-13"), types.MustTimeOfDay("12:00"))
	require.Len(t, kept, 1)

	kept = f.Filter(context.Background(), []StoreCandidate{openStore(1)}, mustDate("2025-03-13"), types.MustTimeOfDay("11:00"))
	assert.Empty(t, kept)
}
