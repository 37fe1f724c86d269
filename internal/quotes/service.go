package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/config"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const defaultSearchWorkers = 8

// Service exposes quote search and retrieval.
type Service interface {
	SearchQuotes(ctx context.Context, req Request) ([]Quote, error)
	GetQuoteDetail(ctx context.Context, quoteID string) (Detail, error)
}

// ServiceParams wires the quote service. Metrics, Events and Clock are optional.
type ServiceParams struct {
	Directory Directory
	Policies  PolicyCatalog
	Cache     Cache
	Logger    *logger.Logger
	Metrics   Metrics
	Events    EventPublisher
	Pricing   config.PricingConfig
	Location  *time.Location
	Clock     func() time.Time
}

type service struct {
	directory Directory
	policies  PolicyCatalog
	cache     Cache
	logg      *logger.Logger
	metrics   Metrics
	events    EventPublisher
	filter    *AvailabilityFilter
	calc      *Calculator
	clock     func() time.Time
	radiusKm  float64
	workers   int

	publishing sync.WaitGroup
}

// NewService builds the quote service with the provided collaborators.
func NewService(params ServiceParams) (Service, error) {
	if params.Directory == nil {
		return nil, fmt.Errorf("directory required")
	}
	if params.Policies == nil {
		return nil, fmt.Errorf("policy catalog required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("quote cache required")
	}
	if params.Pricing.SearchRadiusKm <= 0 {
		return nil, fmt.Errorf("search radius must be positive")
	}

	calc, err := NewCalculator(params.Pricing.Currency, params.Pricing.BaseProtectionCents)
	if err != nil {
		return nil, err
	}

	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	metrics := params.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	workers := params.Pricing.SearchWorkers
	if workers <= 0 {
		workers = defaultSearchWorkers
	}

	return &service{
		directory: params.Directory,
		policies:  params.Policies,
		cache:     params.Cache,
		logg:      params.Logger,
		metrics:   metrics,
		events:    params.Events,
		filter:    NewAvailabilityFilter(clock, params.Location, params.Logger, metrics),
		calc:      calc,
		clock:     clock,
		radiusKm:  params.Pricing.SearchRadiusKm,
		workers:   workers,
	}, nil
}

// SearchQuotes prices every product of every available nearby store and
// caches each quote. Quotes come back grouped by store in directory order.
// Upstream failures shrink the result instead of failing the call; only
// invalid input and cancellation are returned as errors.
func (s *service) SearchQuotes(ctx context.Context, req Request) ([]Quote, error) {
	started := s.clock()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"pickup_date": req.Date.String(),
		"pickup_time": req.Time.String(),
		"longitude":   req.Longitude,
		"latitude":    req.Latitude,
	})

	nearby, err := s.directory.FindStoresNear(ctx, req.Point(), s.radiusKm)
	if err != nil {
		s.logg.Error(ctx, "nearby store lookup failed", err)
		s.metrics.ObserveSearch("degraded", s.clock().Sub(started), 0)
		return []Quote{}, nil
	}

	stores := s.filter.Filter(ctx, nearby, req.Date, req.Time)

	slots := make([][]Quote, len(stores))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, store := range stores {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			slots[i] = s.quoteStore(gctx, store, req)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.metrics.ObserveSearch("canceled", s.clock().Sub(started), 0)
		return nil, err
	}

	out := []Quote{}
	for _, slot := range slots {
		out = append(out, slot...)
	}

	outcome := "ok"
	if len(out) == 0 {
		outcome = "empty"
	}
	s.metrics.ObserveSearch(outcome, s.clock().Sub(started), len(out))
	s.publishSearchCompleted(ctx, req, len(nearby), len(stores), out)
	return out, nil
}

func (s *service) quoteStore(ctx context.Context, store StoreCandidate, req Request) []Quote {
	ctx = s.logg.WithStoreID(ctx, store.ID)

	rules, err := s.directory.FindServiceAreasByStore(ctx, store.ID)
	if err != nil {
		s.logg.Error(ctx, "service area lookup failed, skipping store", err)
		s.metrics.IncSkipped(skipStoreLookup)
		return nil
	}
	products, err := s.directory.FindProductsByStore(ctx, store.ID)
	if err != nil {
		s.logg.Error(ctx, "product lookup failed, skipping store", err)
		s.metrics.IncSkipped(skipStoreLookup)
		return nil
	}

	out := make([]Quote, 0, len(products))
	for _, product := range products {
		if ctx.Err() != nil {
			return out
		}
		pctx := s.logg.WithProductID(ctx, product.ID)

		override, err := s.directory.FindSpecialPricing(pctx, product.TenantID, product.ID, req.Date)
		if err != nil {
			s.logg.Error(pctx, "special pricing lookup failed, skipping product", err)
			s.metrics.IncSkipped(skipSpecialPricing)
			continue
		}

		quote, err := s.calc.PriceFor(store, product, req, rules, override)
		if err != nil {
			s.logg.Warn(s.logg.WithField(pctx, "error", err.Error()), "product could not be priced")
			s.metrics.IncSkipped(skipComputation)
			continue
		}

		stored, err := s.cache.Put(pctx, quote)
		if err != nil {
			s.logg.Error(pctx, "quote cache write failed, dropping quote", err)
			s.metrics.IncSkipped(skipCacheWrite)
			continue
		}
		out = append(out, stored)
	}
	return out
}

// GetQuoteDetail loads a cached quote and attaches its product's policies.
// Policy lookups are best effort and fall back to empty values.
func (s *service) GetQuoteDetail(ctx context.Context, quoteID string) (Detail, error) {
	quoteID = strings.TrimSpace(quoteID)
	if quoteID == "" {
		return Detail{}, pkgerrors.New(pkgerrors.CodeValidation, "quote id is required")
	}
	ctx = s.logg.WithQuoteID(ctx, quoteID)

	quote, err := s.cache.Get(ctx, quoteID)
	if err != nil {
		if errors.Is(err, ErrQuoteNotFound) {
			s.metrics.IncDetail("miss")
			return Detail{}, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found or expired")
		}
		s.metrics.IncDetail("error")
		return Detail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}

	s.metrics.IncDetail("hit")
	return s.enrich(ctx, quote), nil
}
