package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type cacheItem struct {
	val       []byte
	expiresAt time.Time
}

// TTLCache is an in-memory Cache with per-entry expiry and optional NATS
// invalidation: every instance publishes invalidated prefixes and drops the
// prefixes other instances publish.
type TTLCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
	now   func() time.Time

	nc   *nats.Conn
	subj string
	sub  *nats.Subscription
	log  *zap.Logger
}

// NewTTLCache creates a TTLCache and wires up NATS invalidation when nc is
// non-nil.
func NewTTLCache(ttl time.Duration, nc *nats.Conn, subj string, log *zap.Logger) (*TTLCache, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &TTLCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
		now:   time.Now,
		log:   log,
	}
	if nc != nil && subj != "" {
		sub, err := nc.Subscribe(subj, func(m *nats.Msg) {
			c.dropPrefix(string(m.Data))
		})
		if err != nil {
			return nil, err
		}
		c.nc, c.subj, c.sub = nc, subj, sub
	}
	return c, nil
}

func (c *TTLCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if c.now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok2 := c.items[key]; ok2 && c.now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(it.val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *TTLCache) Set(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = cacheItem{val: b, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *TTLCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.dropPrefix(prefix)
	if c.nc == nil {
		return nil
	}
	if err := c.nc.Publish(c.subj, []byte(prefix)); err != nil {
		c.log.Warn("cache: publish invalidation", zap.String("prefix", prefix), zap.Error(err))
		return err
	}
	return nil
}

// dropPrefix removes matching keys. An empty prefix clears everything.
func (c *TTLCache) dropPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prefix == "" {
		c.items = make(map[string]cacheItem)
		return
	}
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
}

// Close stops listening for invalidations.
func (c *TTLCache) Close() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Unsubscribe()
}
