// Package cache provides the local key/value string store that backs the workflow collection
// and the builder snapshots.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ErrUnsupportedScheme is returned by New for cache URLs it cannot open.
var ErrUnsupportedScheme = errors.New("unsupported cache scheme")

// Store is a string key/value store. Writers do not coordinate; the last write wins.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New opens a store from a URL: memory://, file://path or redis://host:port/db.
func New(ctx context.Context, logger *slog.Logger, cacheURL string) (Store, error) {
	scheme, _, found := strings.Cut(cacheURL, "://")
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, cacheURL)
	}

	switch scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(strings.TrimPrefix(cacheURL, "file://"), logger)
	case "redis", "rediss":
		parsed, err := url.Parse(cacheURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis cache url: %w", err)
		}

		return NewRedisStore(ctx, logger, parsed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}
