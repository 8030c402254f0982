package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockOracle/internal/collector"
	"StockOracle/internal/model"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var (
	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func TestSeriesCache_HitAndMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mock := &collector.MockFetcher{Price: 100}
	c := NewSeriesCache(mock, client, time.Hour, quietLogger(), nil)

	first, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	second, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	assert.Equal(t, 1, mock.Calls)
	assert.Equal(t, first.Closes(), second.Closes())
	assert.True(t, first.Last().Time.Equal(second.Last().Time))
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Sets: 1}, c.Stats())

	assert.True(t, mr.Exists("series_cache:mock:AAPL:2024-01-01:2024-03-01"))
	assert.Equal(t, time.Hour, mr.TTL("series_cache:mock:AAPL:2024-01-01:2024-03-01"))
}

func TestSeriesCache_ExpiredEntryRefetches(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mock := &collector.MockFetcher{Price: 100}
	c := NewSeriesCache(mock, client, time.Minute, quietLogger(), nil)

	_, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls)
}

func TestSeriesCache_RedisDownPassesThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	mock := &collector.MockFetcher{Price: 100}
	c := NewSeriesCache(mock, client, time.Hour, quietLogger(), nil)

	s, err := c.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	assert.Positive(t, s.Len())
	assert.Equal(t, 1, mock.Calls)
}

func TestSeriesCache_FetchErrorsAreNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mock := &collector.MockFetcher{Err: model.DataErrorf("no data for symbol %q", "NOPE")}
	c := NewSeriesCache(mock, client, time.Hour, quietLogger(), nil)

	_, err := c.FetchSeries(context.Background(), "NOPE", start, end)
	assert.ErrorIs(t, err, model.ErrData)
	assert.Empty(t, mr.Keys())

	mock.Err = errors.New("still failing")
	_, err = c.FetchSeries(context.Background(), "NOPE", start, end)
	assert.Error(t, err)
	assert.Equal(t, 2, mock.Calls)
}

type countingObserver struct{ hits, misses int }

func (o *countingObserver) ObserveCache(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestSeriesCache_Observer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	obs := &countingObserver{}
	c := NewSeriesCache(&collector.MockFetcher{}, client, time.Hour, quietLogger(), obs)
	for i := 0; i < 3; i++ {
		_, err := c.FetchSeries(context.Background(), "MSFT", start, end)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, obs.hits)
	assert.Equal(t, 1, obs.misses)
}
