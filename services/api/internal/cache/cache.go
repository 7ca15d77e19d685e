// Package cache is the read-through response cache for anonymous first pages
// and the category list. Values are stored as JSON so every backend decodes
// into the caller's type the same way.
package cache

import (
	"context"
)

// Cache implementations must be safe for concurrent use.
type Cache interface {
	// Get decodes the entry into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	// InvalidatePrefix drops every entry whose key starts with prefix.
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Key prefixes of the cached collections.
const (
	PrefixCategories = "categories"
	PrefixVideos     = "videos:"
)

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Cache failures degrade to calling load. A nil Cache always loads.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	var cached T
	if ok, err := c.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	_ = c.Set(ctx, key, v)
	return v, nil
}
