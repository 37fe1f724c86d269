package quotecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/rental-pricing/internal/quotes"
	"github.com/angelmondragon/rental-pricing/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

// KeyValueStore is the subset of pkg/redis.Client the cache needs.
type KeyValueStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	QuoteKey(id string) string
}

// Redis keeps quotes as JSON strings under rental:quote:<id> with SET EX.
type Redis struct {
	store KeyValueStore
	ttl   time.Duration
	logg  *logger.Logger
	clock func() time.Time
}

var _ quotes.Cache = (*Redis)(nil)

func NewRedis(store KeyValueStore, ttl time.Duration, logg *logger.Logger, clock func() time.Time) (*Redis, error) {
	if store == nil {
		return nil, errors.New("redis store required")
	}
	if ttl <= 0 {
		return nil, errors.New("quote ttl must be positive")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Redis{store: store, ttl: ttl, logg: logg, clock: clock}, nil
}

func (r *Redis) Put(ctx context.Context, quote quotes.Quote) (quotes.Quote, error) {
	stored := stamp(quote, r.clock(), r.ttl)
	payload, err := json.Marshal(stored)
	if err != nil {
		return quotes.Quote{}, fmt.Errorf("encode quote: %w", err)
	}
	if err := r.store.Set(ctx, r.store.QuoteKey(stored.ID), payload, r.ttl); err != nil {
		return quotes.Quote{}, fmt.Errorf("write quote: %w", err)
	}
	return stored, nil
}

func (r *Redis) Get(ctx context.Context, id string) (quotes.Quote, error) {
	raw, err := r.store.Get(ctx, r.store.QuoteKey(id))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return quotes.Quote{}, quotes.ErrQuoteNotFound
		}
		return quotes.Quote{}, fmt.Errorf("read quote: %w", err)
	}

	var quote quotes.Quote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil {
		r.logg.Error(r.logg.WithQuoteID(ctx, id), "cached quote is unreadable", err)
		return quotes.Quote{}, quotes.ErrQuoteNotFound
	}
	return quote, nil
}
