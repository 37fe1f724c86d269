package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/geo"
	"github.com/angelmondragon/rental-pricing/pkg/types"
)

// ErrQuoteNotFound is returned by a Cache for unknown or expired ids.
var ErrQuoteNotFound = errors.New("quote not found")

// Directory is the read-only store and product data the search prices from.
type Directory interface {
	FindStoresNear(ctx context.Context, center geo.Point, radiusKm float64) ([]StoreCandidate, error)
	FindServiceAreasByStore(ctx context.Context, storeID int64) ([]ServiceAreaRule, error)
	FindProductsByStore(ctx context.Context, storeID int64) ([]ProductOffering, error)
	// FindSpecialPricing returns nil when the product has no override on date.
	FindSpecialPricing(ctx context.Context, tenantID, productID int64, date types.Date) (*SpecialPricingOverride, error)
}

// PolicyCatalog serves the policy data shown on a quote detail. Lookups
// return nil, nil when the record does not exist.
type PolicyCatalog interface {
	FindProductByStoreAndModel(ctx context.Context, storeID, carModelID int64) (*ProductOffering, error)
	ListValueAddedServiceTemplates(ctx context.Context) ([]ValueAddedServiceTemplate, error)
	FindCancellationPolicy(ctx context.Context, templateID int64) (*CancellationPolicy, error)
	FindServicePolicy(ctx context.Context, templateID int64) (*ServicePolicy, error)
}

// Cache stores quotes for a fixed time to live. Put assigns the id and the
// CreatedAt/ExpiresAt timestamps and returns the stored quote.
type Cache interface {
	Put(ctx context.Context, quote Quote) (Quote, error)
	Get(ctx context.Context, id string) (Quote, error)
}

// Metrics records search and detail outcomes.
type Metrics interface {
	ObserveSearch(outcome string, duration time.Duration, quotes int)
	IncSkipped(reason string)
	IncDetail(outcome string)
}

// EventPublisher publishes a JSON event and returns its id.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) (string, error)
}

const (
	skipStoreMalformed = "store_malformed"
	skipStoreLookup    = "store_lookup"
	skipSpecialPricing = "special_pricing"
	skipComputation    = "computation"
	skipCacheWrite     = "cache_write"
)

type noopMetrics struct{}

func (noopMetrics) ObserveSearch(string, time.Duration, int) {}
func (noopMetrics) IncSkipped(string)                        {}
func (noopMetrics) IncDetail(string)                         {}
