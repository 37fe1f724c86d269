package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const defaultPublishTimeout = 10 * time.Second

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	Stop()
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// Envelope is the JSON body of every published event.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// TopicPublisher publishes JSON events to a single topic.
type TopicPublisher struct {
	pub     publisher
	topic   string
	timeout time.Duration
	now     func() time.Time
}

// NewTopicPublisher binds a publisher to topic on c.
func NewTopicPublisher(c *Client, topic string) (*TopicPublisher, error) {
	p := c.Publisher(topic)
	if p == nil {
		return nil, fmt.Errorf("publisher not configured for topic %q", topic)
	}
	return newTopicPublisher(&gcpPublisher{Publisher: p}, topic), nil
}

func newTopicPublisher(pub publisher, topic string) *TopicPublisher {
	return &TopicPublisher{
		pub:     pub,
		topic:   topic,
		timeout: defaultPublishTimeout,
		now:     time.Now,
	}
}

// Publish wraps payload in an Envelope and waits for the server ack. It
// returns the generated event id.
func (p *TopicPublisher) Publish(ctx context.Context, eventType string, payload any) (string, error) {
	if p == nil || p.pub == nil {
		return "", errors.New("topic publisher not initialized")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	occurredAt := p.now().UTC()
	env := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: occurredAt,
		Data:       data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_id":    env.EventID,
			"event_type":  eventType,
			"occurred_at": occurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		return "", fmt.Errorf("publisher returned nil for topic %s", p.topic)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return "", fmt.Errorf("publish %s to %s: %w", eventType, p.topic, err)
	}
	return env.EventID, nil
}

// Stop flushes pending messages and releases the publisher.
func (p *TopicPublisher) Stop() {
	if p == nil || p.pub == nil {
		return
	}
	p.pub.Stop()
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
