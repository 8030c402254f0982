package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"StockOracle/internal/collector"
	"StockOracle/internal/model"
)

// Observer is told about every lookup.
type Observer interface {
	ObserveCache(hit bool)
}

// Stats tracks cache performance.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// SeriesCache decorates a Fetcher with a Redis JSON cache. Redis failures are
// logged and the call falls through to the wrapped fetcher.
type SeriesCache struct {
	next   collector.Fetcher
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	log    logrus.FieldLogger
	obs    Observer

	hits, misses, sets atomic.Int64
}

// NewSeriesCache wraps next. obs may be nil.
func NewSeriesCache(next collector.Fetcher, client *redis.Client, ttl time.Duration, log logrus.FieldLogger, obs Observer) *SeriesCache {
	return &SeriesCache{
		next:   next,
		redis:  client,
		ttl:    ttl,
		prefix: "series_cache:",
		log:    log.WithField("component", "cache"),
		obs:    obs,
	}
}

func (c *SeriesCache) Name() string { return c.next.Name() }

func (c *SeriesCache) key(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s:%s", c.prefix, c.next.Name(), symbol,
		start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly))
}

// FetchSeries returns the cached series when present, otherwise fetches and stores it.
func (c *SeriesCache) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	key := c.key(symbol, start, end)

	if s, ok := c.get(ctx, key); ok {
		c.record(true)
		return s, nil
	}
	c.record(false)

	s, err := c.next.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, s)
	return s, nil
}

func (c *SeriesCache) get(ctx context.Context, key string) (*model.PriceSeries, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis get failed, bypassing cache")
		return nil, false
	}
	var s model.PriceSeries
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("corrupt cache entry")
		return nil, false
	}
	if len(s.Bars) == 0 {
		return nil, false
	}
	return &s, true
}

func (c *SeriesCache) set(ctx context.Context, key string, s *model.PriceSeries) {
	data, err := json.Marshal(s)
	if err != nil {
		c.log.WithError(err).Warn("cannot encode series for cache")
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis set failed")
		return
	}
	c.sets.Add(1)
	c.log.WithFields(logrus.Fields{"symbol": s.Symbol, "bars": s.Len(), "ttl": c.ttl}).Debug("cached series")
}

func (c *SeriesCache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.obs != nil {
		c.obs.ObserveCache(hit)
	}
}

// Stats returns current cache statistics.
func (c *SeriesCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}
