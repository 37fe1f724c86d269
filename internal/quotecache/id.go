package quotecache

import (
	"strings"
	"time"

	"github.com/angelmondragon/rental-pricing/internal/quotes"
	"github.com/google/uuid"
)

// NewQuoteID returns a random v4 UUID as 32 lowercase hex characters.
func NewQuoteID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func stamp(q quotes.Quote, now time.Time, ttl time.Duration) quotes.Quote {
	q.ID = NewQuoteID()
	q.CreatedAt = now.UTC()
	q.ExpiresAt = q.CreatedAt.Add(ttl)
	return q
}
