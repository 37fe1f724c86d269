package quotes

import (
	"context"
	"time"

	"github.com/angelmondragon/rental-pricing/pkg/types"
)

// EventSearchCompleted is published after every successful search.
const EventSearchCompleted = "quote.search.completed"

// publishTimeout bounds one background publish, ack included.
const publishTimeout = 10 * time.Second

// Drainer is implemented by a Service that publishes in the background.
type Drainer interface {
	// Drain waits for in-flight publishes or until ctx is done.
	Drain(ctx context.Context) error
}

// SearchCompletedEvent summarises one finished search.
type SearchCompletedEvent struct {
	PickupDate      types.Date      `json:"pickup_date"`
	PickupTime      types.TimeOfDay `json:"pickup_time"`
	Longitude       float64         `json:"longitude"`
	Latitude        float64         `json:"latitude"`
	StoresNearby    int             `json:"stores_nearby"`
	StoresAvailable int             `json:"stores_available"`
	QuoteIDs        []string        `json:"quote_ids"`
	SearchedAt      time.Time       `json:"searched_at"`
}

// publishSearchCompleted hands the event to a background goroutine so the
// publisher ack never delays the search response.
func (s *service) publishSearchCompleted(ctx context.Context, req Request, nearby, available int, quotes []Quote) {
	if s.events == nil {
		return
	}
	ids := make([]string, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, q.ID)
	}
	event := SearchCompletedEvent{
		PickupDate:      req.Date,
		PickupTime:      req.Time,
		Longitude:       req.Longitude,
		Latitude:        req.Latitude,
		StoresNearby:    nearby,
		StoresAvailable: available,
		QuoteIDs:        ids,
		SearchedAt:      s.clock().UTC(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		defer cancel()
		eventID, err := s.events.Publish(pubCtx, EventSearchCompleted, event)
		if err != nil {
			s.logg.Error(pubCtx, "publish search event failed", err)
			return
		}
		s.logg.Debug(s.logg.WithField(pubCtx, "event_id", eventID), "search event published")
	}()
}

func (s *service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.publishing.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
