package knowledge

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize matches the number of distinct queries remembered per source.
const DefaultCacheSize = 128

// sharedLookupTimeout bounds an upstream call that outlives the caller
// which started it. It exceeds every source's own client timeout.
const sharedLookupTimeout = 30 * time.Second

type cached struct {
	Source
	cache *lru.Cache[string, string]
	group singleflight.Group
}

// NewCached memoizes successful lookups of src in an LRU of size entries.
// Concurrent lookups for the same query share one upstream call, which is
// detached from any single caller's cancellation. Errors are never cached.
func NewCached(src Source, size int) Source {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, _ := lru.New[string, string](size)
	return &cached{Source: src, cache: c}
}

func cacheKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (c *cached) Lookup(ctx context.Context, query string) (string, error) {
	key := cacheKey(query)
	if key == "" {
		return c.Source.Lookup(ctx, query)
	}
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	ch := c.group.DoChan(key, func() (interface{}, error) {
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		res, err := c.Source.Lookup(uctx, query)
		if err != nil {
			return "", err
		}
		c.cache.Add(key, res)
		return res, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}
