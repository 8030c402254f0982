package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"StockOracle/internal/model"
)

// Fetcher downloads the daily price history of a symbol over [start, end].
// A symbol with no rows in range is a model.ErrData error.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error)
	Name() string
}

// MetricsProvider fetches company snapshot and analyst metrics.
type MetricsProvider interface {
	FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
}

// newHTTPClient builds a client with the given timeout and optional proxy.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// dateOnly truncates t to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
