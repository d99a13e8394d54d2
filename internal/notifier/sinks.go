package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// LogSink writes every event to the application log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(_ context.Context, e Event) error {
	log.Info().
		Str("event_id", e.ID.String()).
		Str("event_type", string(e.Type)).
		Str("account_id", e.AccountID).
		Interface("data", e.Data).
		Time("occurred_at", e.OccurredAt).
		Msg("ledger event")
	return nil
}

// Publisher is the subset of the Redis client used by RedisSink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSink publishes events as JSON on a Redis pub/sub channel.
type RedisSink struct {
	client  Publisher
	channel string
}

// NewRedisSink creates a sink publishing to channel.
func NewRedisSink(client Publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.ID, err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event %s to %s: %w", e.ID, s.channel, err)
	}
	return nil
}
