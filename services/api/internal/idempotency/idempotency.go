// Package idempotency de-duplicates webhook deliveries by event id.
//
// Primary backend: Redis SETNX with TTL (REDIS_URL).
// Fallback: Postgres INSERT ... ON CONFLICT (DATABASE_URL).
// If neither is available, an in-memory store is used (development only).
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Store checks whether an event has already been processed and marks it.
type Store interface {
	// Check returns true if eventID was already processed.
	// If not seen, it atomically marks it as processed.
	Check(ctx context.Context, eventID string) (duplicate bool, err error)
	// Forget clears the mark so a redelivery of a failed event is processed.
	Forget(ctx context.Context, eventID string) error
}

// Backends are the shared clients a Store may use. Nil fields are skipped.
type Backends struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
}

// NewStore creates the best available idempotency store:
// Redis > Postgres > in-memory (dev fallback).
// When isProd is true, in-memory fallback is not allowed and the function
// returns nil with an error.
func NewStore(b Backends, ttl time.Duration, isProd bool) (Store, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if b.Redis != nil {
		return newRedisStore(b.Redis, ttl), nil
	}
	if b.Postgres != nil {
		return newPostgresStore(b.Postgres), nil
	}
	if isProd {
		return nil, errors.New("production requires REDIS_URL or DATABASE_URL for idempotency; in-memory store is not allowed")
	}
	return newMemoryStore(ttl), nil
}

// Key namespaces an event id by its source so ids from different providers
// never collide.
func Key(source, eventID string) string {
	return source + ":" + eventID
}
