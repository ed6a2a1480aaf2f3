package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/sagarc03/edgeserve"
)

// Memory is an in-process cache backed by ttlcache.
type Memory struct {
	items *ttlcache.Cache[string, edgeserve.CachedResponse]
}

// NewMemory creates a cache whose entries live for ttl. A zero capacity means
// unbounded. The expiry loop starts immediately; call Stop to end it.
func NewMemory(ttl time.Duration, capacity uint64) *Memory {
	opts := []ttlcache.Option[string, edgeserve.CachedResponse]{
		ttlcache.WithTTL[string, edgeserve.CachedResponse](ttl),
		// Hits must not extend freshness.
		ttlcache.WithDisableTouchOnHit[string, edgeserve.CachedResponse](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, edgeserve.CachedResponse](capacity))
	}

	m := &Memory{items: ttlcache.New(opts...)}
	go m.items.Start()

	return m
}

func (m *Memory) Match(ctx context.Context, key string) (edgeserve.CachedResponse, bool, error) {
	if err := ctx.Err(); err != nil {
		return edgeserve.CachedResponse{}, false, err
	}

	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return edgeserve.CachedResponse{}, false, nil
	}

	return item.Value(), true, nil
}

func (m *Memory) Put(ctx context.Context, key string, resp edgeserve.CachedResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.items.Set(key, resp, ttlcache.DefaultTTL)
	return nil
}

// Len reports the number of stored entries, including ones not yet evicted.
func (m *Memory) Len() int {
	return m.items.Len()
}

// Stop ends the expiry loop.
func (m *Memory) Stop() {
	m.items.Stop()
}
