package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher pushes analysis events to the claim channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishAnalysisEvent(ctx context.Context, evt AnalysisEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis event: %w", err)
	}

	channel := ClaimChannel(evt.ClaimID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish analysis event: %w", err)
	}

	slog.Info("Analysis event published", "channel", channel, "type", evt.Type, "evidence_id", evt.EvidenceID)
	return nil
}

// RedisSubscriber delivers claim-scoped analysis events as a Go channel.
type RedisSubscriber struct {
	client *redis.Client
}

func NewRedisSubscriber(client *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{client: client}
}

// Subscribe returns a channel that is closed when ctx ends. Malformed
// payloads are logged and skipped.
func (s *RedisSubscriber) Subscribe(ctx context.Context, claimID uuid.UUID) (<-chan AnalysisEvent, error) {
	pubsub := s.client.Subscribe(ctx, ClaimChannel(claimID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to claim channel: %w", err)
	}

	out := make(chan AnalysisEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				evt, err := DecodeAnalysisEvent(msg.Payload)
				if err != nil {
					slog.Warn("Skipping analysis event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
