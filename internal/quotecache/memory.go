package quotecache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/rental-pricing/internal/quotes"
)

// Memory is an in-process cache. Expired entries are dropped when read, and
// Put sweeps the whole map at most once per ttl.
type Memory struct {
	mu        sync.RWMutex
	items     map[string]quotes.Quote
	ttl       time.Duration
	clock     func() time.Time
	lastSweep time.Time
}

var _ quotes.Cache = (*Memory)(nil)

func NewMemory(ttl time.Duration, clock func() time.Time) (*Memory, error) {
	if ttl <= 0 {
		return nil, errors.New("quote ttl must be positive")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Memory{items: map[string]quotes.Quote{}, ttl: ttl, clock: clock, lastSweep: clock()}, nil
}

func (m *Memory) Put(ctx context.Context, quote quotes.Quote) (quotes.Quote, error) {
	if err := ctx.Err(); err != nil {
		return quotes.Quote{}, err
	}
	now := m.clock()
	stored := stamp(quote, now, m.ttl)

	m.mu.Lock()
	if now.Sub(m.lastSweep) >= m.ttl {
		m.sweepLocked(now)
	}
	m.items[stored.ID] = stored
	m.mu.Unlock()
	return stored, nil
}

func (m *Memory) sweepLocked(now time.Time) {
	for id, q := range m.items {
		if !now.Before(q.ExpiresAt) {
			delete(m.items, id)
		}
	}
	m.lastSweep = now
}

func (m *Memory) Get(ctx context.Context, id string) (quotes.Quote, error) {
	if err := ctx.Err(); err != nil {
		return quotes.Quote{}, err
	}

	m.mu.RLock()
	quote, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return quotes.Quote{}, quotes.ErrQuoteNotFound
	}
	if !m.clock().Before(quote.ExpiresAt) {
		m.mu.Lock()
		delete(m.items, id)
		m.mu.Unlock()
		return quotes.Quote{}, quotes.ErrQuoteNotFound
	}
	return quote, nil
}

// Len reports the number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
