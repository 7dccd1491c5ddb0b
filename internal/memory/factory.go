package memory

import (
	"context"
	"strings"
	"time"
)

// NewStore picks a driver from configuration: Redis when a Redis URL is
// set, Postgres when a database URL is set, otherwise in-memory for
// local/dev use.
func NewStore(ctx context.Context, redisURL, databaseURL string, ttl time.Duration) (Store, error) {
	if strings.TrimSpace(redisURL) != "" {
		return NewRedisStore(ctx, redisURL, ttl)
	}
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewInMemoryStore(ttl), nil
}
