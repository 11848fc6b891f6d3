package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
)

// Sink receives status-change events for downstream display and
// export. Delivery is fire-and-forget; the domain never waits on or
// retries a publish.
type Sink interface {
	Publish(ctx context.Context, event domain.Event) error
}

type redisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink publishes events as JSON on a redis pub/sub channel.
func NewRedisSink(client *redis.Client, channel string) Sink {
	return &redisSink{client: client, channel: channel}
}

func (s *redisSink) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		log.Printf("event publish failed (%s): %v", event.Type, err)
		return err
	}

	return nil
}

type noopSink struct{}

// NewNoopSink returns a sink that drops every event.
func NewNoopSink() Sink {
	return noopSink{}
}

func (noopSink) Publish(context.Context, domain.Event) error {
	return nil
}
