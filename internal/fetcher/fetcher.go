package fetcher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/vlink/internal/cache"
	"github.com/xxxsen/vlink/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves an opaque metadata blob for a URL. Implementations may
// block on network or subprocess I/O; the caller owns cancellation through
// the context.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (json.RawMessage, error)
}

// FetchFunc adapts a plain function to the Fetcher interface.
type FetchFunc func(ctx context.Context, url string) (json.RawMessage, error)

func (f FetchFunc) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	return f(ctx, url)
}

type cachedFetcher struct {
	next  Fetcher
	cache *cache.MetaCache
	group singleflight.Group
}

// WithCache wraps a fetcher with the metadata cache. Concurrent fetches of
// the same URL are collapsed into one upstream call.
func WithCache(next Fetcher, metaCache *cache.MetaCache) Fetcher {
	if metaCache == nil {
		return next
	}
	return &cachedFetcher{next: next, cache: metaCache}
}

func (c *cachedFetcher) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	if value, ok := c.cache.Get(url); ok {
		metrics.MetaCacheHits.WithLabelValues("hit").Inc()
		return value, nil
	}
	metrics.MetaCacheHits.WithLabelValues("miss").Inc()

	value, err, shared := c.group.Do(url, func() (interface{}, error) {
		start := time.Now()
		info, err := c.next.Fetch(ctx, url)
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		c.cache.Set(url, info)
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logutil.GetLogger(ctx).Debug("metadata fetch shared", zap.String("url", url))
	}
	return value.(json.RawMessage), nil
}
