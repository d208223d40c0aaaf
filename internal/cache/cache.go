// Package cache provides a shared-flight resource cache: at most one network
// request per distinct resource key, ever.
package cache

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc performs the underlying fetch for a resource key.
type FetchFunc func(ctx context.Context, key string) ([]byte, error)

// outcome is a settled fetch result. Errors are memoized the same as
// successes: a failed key stays failed for the cache's lifetime.
type outcome struct {
	body []byte
	err  error
}

// ResourceCache deduplicates fetches by exact-string resource key. Concurrent
// callers for the same key join a single flight; once a flight settles, its
// outcome is memoized permanently. There is no eviction, no TTL, and no retry:
// upstream data is static reference data within a session, so staleness is
// traded for zero redundant network traffic. A key whose fetch failed is
// poisoned until the cache is discarded; construct a fresh cache to retry.
type ResourceCache struct {
	fetch  FetchFunc
	logger *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	settled map[string]outcome
}

// New creates a cache that resolves misses through fetch.
func New(fetch FetchFunc, logger *slog.Logger) *ResourceCache {
	return &ResourceCache{
		fetch:   fetch,
		logger:  logger,
		settled: make(map[string]outcome),
	}
}

// Get returns the resource for key, fetching it at most once process-wide.
// All callers for the same key observe the same resolution or the same
// failure. Cancelling ctx abandons the wait but never the flight: the fetch
// runs to completion and settles the key regardless, so a later Get still
// finds the outcome.
func (c *ResourceCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	o, ok := c.settled[key]
	c.mu.RUnlock()
	if ok {
		return o.body, o.err
	}

	ch := c.group.DoChan(key, func() (any, error) {
		c.logger.Debug("fetching resource", "key", key)

		// The flight outlives any single caller.
		body, err := c.fetch(context.WithoutCancel(ctx), key)
		if err != nil {
			c.logger.Warn("resource fetch failed", "key", key, "error", err)
		}

		c.mu.Lock()
		c.settled[key] = outcome{body: body, err: err}
		c.mu.Unlock()

		return body, err
	})

	select {
	case res := <-ch:
		body, _ := res.Val.([]byte)
		return body, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports how many keys have settled.
func (c *ResourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.settled)
}
