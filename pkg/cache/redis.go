package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "flowdesk:"

// RedisStore shares the cache between CLI processes. Keys are namespaced by a prefix,
// taken from the "prefix" query parameter of the cache URL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

func NewRedisStore(ctx context.Context, logger *slog.Logger, cacheURL *url.URL) (*RedisStore, error) {
	prefix := defaultKeyPrefix
	if p := cacheURL.Query().Get("prefix"); p != "" {
		prefix = p
	}

	stripped := *cacheURL
	stripped.RawQuery = ""

	options, err := redis.ParseURL(stripped.String())
	if err != nil {
		return nil, fmt.Errorf("invalid redis cache url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger = logger.With("module", "redis_cache")
	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return &RedisStore{client: client, prefix: prefix, logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	err := s.client.Set(ctx, s.prefix+key, value, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
