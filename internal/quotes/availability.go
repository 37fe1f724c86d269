package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/logger"
	"github.com/angelmondragon/rental-pricing/pkg/types"
)

var errMalformedStore = errors.New("store is missing availability settings")

// AvailabilityFilter keeps the stores that can hand over a car at the
// requested pickup instant.
type AvailabilityFilter struct {
	clock   func() time.Time
	loc     *time.Location
	logg    *logger.Logger
	metrics Metrics
}

func NewAvailabilityFilter(clock func() time.Time, loc *time.Location, logg *logger.Logger, metrics Metrics) *AvailabilityFilter {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AvailabilityFilter{clock: clock, loc: loc, logg: logg, metrics: metrics}
}

// Filter returns the candidates, in input order, that are open at tod and
// whose advance booking window contains the pickup. now is sampled once.
func (f *AvailabilityFilter) Filter(ctx context.Context, candidates []StoreCandidate, date types.Date, tod types.TimeOfDay) []StoreCandidate {
	now := f.clock()
	pickup := date.At(tod, f.loc)

	kept := make([]StoreCandidate, 0, len(candidates))
	for _, store := range candidates {
		ok, err := available(store, tod, pickup, now)
		if err != nil {
			f.logg.Warn(f.logg.WithFields(f.logg.WithStoreID(ctx, store.ID), map[string]any{"reason": err.Error()}), "store excluded from availability")
			f.metrics.IncSkipped(skipStoreMalformed)
			continue
		}
		if ok {
			kept = append(kept, store)
		}
	}
	return kept
}

func available(store StoreCandidate, tod types.TimeOfDay, pickup, now time.Time) (bool, error) {
	switch {
	case store.BusinessStart == nil || store.BusinessEnd == nil:
		return false, fmt.Errorf("%w: business hours", errMalformedStore)
	case store.MinAdvanceHours == nil:
		return false, fmt.Errorf("%w: min advance hours", errMalformedStore)
	case store.MaxAdvanceDays == nil:
		return false, fmt.Errorf("%w: max advance days", errMalformedStore)
	}

	if !tod.Within(*store.BusinessStart, *store.BusinessEnd) {
		return false, nil
	}

	// both counts truncate toward zero
	lead := pickup.Sub(now)
	if int64(lead/time.Hour) < int64(*store.MinAdvanceHours) {
		return false, nil
	}
	if int64(lead/(24*time.Hour)) > int64(*store.MaxAdvanceDays) {
		return false, nil
	}
	return true, nil
}
