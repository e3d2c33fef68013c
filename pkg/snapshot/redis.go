package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// RedisStore keeps the snapshot in a Redis string.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore stores the snapshot under namespace+Key.
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{client: client, key: namespace + Key}
}

func (s *RedisStore) Load(ctx context.Context) (template.Content, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return template.DefaultContent(), nil
	}
	if err != nil {
		return template.Content{}, fmt.Errorf("read snapshot: %w", err)
	}
	return decode(data), nil
}

func (s *RedisStore) Save(ctx context.Context, c template.Content) error {
	data, err := encode(c)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
