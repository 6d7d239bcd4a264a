package worker

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// FieldWrite sets one hash field. A nil Value removes the field.
type FieldWrite struct {
	Key   string
	Field string
	Value []byte
}

// Message is a pub/sub payload.
type Message struct {
	Channel string
	Payload []byte
}

// LiveStore abstracts the storage presentation consumers read from (e.g., Redis)
type LiveStore interface {
	// Apply performs every write and publish in a single round trip.
	Apply(ctx context.Context, writes []FieldWrite, messages []Message) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// RedisLiveStore implements LiveStore using Redis
type RedisLiveStore struct {
	client *redis.Client
}

// NewRedisLiveStore wraps a connected client.
func NewRedisLiveStore(client *redis.Client) *RedisLiveStore {
	return &RedisLiveStore{client: client}
}

func (s *RedisLiveStore) Apply(ctx context.Context, writes []FieldWrite, messages []Message) error {
	if len(writes) == 0 && len(messages) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, w := range writes {
		if w.Value == nil {
			pipe.HDel(ctx, w.Key, w.Field)
			continue
		}
		pipe.HSet(ctx, w.Key, w.Field, w.Value)
	}
	for _, m := range messages {
		pipe.Publish(ctx, m.Channel, m.Payload)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisLiveStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisLiveStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
