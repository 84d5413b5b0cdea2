package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"topichat/internal/pubsub"
)

// TopicStats holds monotonic counters for one topic. Counters survive the
// topic itself: a topic that emptied out and was deleted keeps its history
// here until the process exits.
type TopicStats struct {
	Joins    int64 `json:"joins"`
	Leaves   int64 `json:"leaves"`
	Messages int64 `json:"messages"`
}

// Collector aggregates chat lifecycle events from the bus into per-topic
// counters for the informational stats endpoint.
type Collector struct {
	mu       sync.RWMutex
	perTopic map[string]*TopicStats
	logger   *slog.Logger
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		perTopic: make(map[string]*TopicStats),
		logger:   slog.Default().With("component", "stats"),
	}
}

// Start subscribes the collector to the three lifecycle topics. Delivery
// runs on the subscriber's goroutines until ctx is cancelled.
func (c *Collector) Start(ctx context.Context, sub pubsub.Subscriber) error {
	subscriptions := map[string]pubsub.Handler{
		pubsub.TopicUserJoined:  c.onUserJoined,
		pubsub.TopicUserLeft:    c.onUserLeft,
		pubsub.TopicMessageSent: c.onMessageSent,
	}
	for topic, handler := range subscriptions {
		if err := sub.Subscribe(ctx, topic, handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

func (c *Collector) onUserJoined(ctx context.Context, evt pubsub.Event) error {
	var body pubsub.UserEvent
	if err := json.Unmarshal(evt.Payload, &body); err != nil {
		return fmt.Errorf("decode user event: %w", err)
	}
	c.bump(body.Topic, func(s *TopicStats) { s.Joins++ })
	return nil
}

func (c *Collector) onUserLeft(ctx context.Context, evt pubsub.Event) error {
	var body pubsub.UserEvent
	if err := json.Unmarshal(evt.Payload, &body); err != nil {
		return fmt.Errorf("decode user event: %w", err)
	}
	c.bump(body.Topic, func(s *TopicStats) { s.Leaves++ })
	return nil
}

func (c *Collector) onMessageSent(ctx context.Context, evt pubsub.Event) error {
	var body pubsub.MessageEvent
	if err := json.Unmarshal(evt.Payload, &body); err != nil {
		return fmt.Errorf("decode message event: %w", err)
	}
	c.bump(body.Topic, func(s *TopicStats) { s.Messages++ })
	return nil
}

func (c *Collector) bump(topic string, apply func(*TopicStats)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.perTopic[topic]
	if !ok {
		s = &TopicStats{}
		c.perTopic[topic] = s
	}
	apply(s)
}

// Snapshot returns a copy of all counters, safe for the caller to use
// without further locking.
func (c *Collector) Snapshot() map[string]TopicStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]TopicStats, len(c.perTopic))
	for topic, s := range c.perTopic {
		out[topic] = *s
	}
	return out
}
