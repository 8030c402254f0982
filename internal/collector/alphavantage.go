package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"StockOracle/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using the TIME_SERIES_DAILY endpoint.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
func NewAlphaVantageFetcher(apiKey, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: alphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avBar is one day of the TIME_SERIES_DAILY payload; numbers arrive as strings.
type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type avDailyResponse struct {
	TimeSeries   map[string]avBar `json:"Time Series (Daily)"`
	ErrorMessage string           `json:"Error Message"`
	Note         string           `json:"Note"`
	Information  string           `json:"Information"`
}

func (f *AlphaVantageFetcher) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", f.APIKey)
	endpoint := f.BaseURL + "/query?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d", resp.StatusCode)
	}

	var out avDailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if out.ErrorMessage != "" {
		return nil, model.DataErrorf("no data for symbol %q: %s", symbol, out.ErrorMessage)
	}
	if out.TimeSeries == nil {
		msg := out.Note
		if msg == "" {
			msg = out.Information
		}
		return nil, fmt.Errorf("alphavantage: %s", msg)
	}

	from, to := dateOnly(start), dateOnly(end)
	bars := make([]model.Bar, 0, len(out.TimeSeries))
	for day, raw := range out.TimeSeries {
		t, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: bad date %q: %w", day, err)
		}
		if t.Before(from) || t.After(to) {
			continue
		}
		bar, err := raw.toBar(t)
		if err != nil {
			return nil, fmt.Errorf("alphavantage %s: %w", day, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, model.DataErrorf("no data for symbol %q between %s and %s",
			symbol, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return model.NewPriceSeries(symbol, bars)
}

func (b avBar) toBar(t time.Time) (model.Bar, error) {
	fields := [5]string{b.Open, b.High, b.Low, b.Close, b.Volume}
	var v [5]float64
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Bar{}, err
		}
		v[i] = f
	}
	return model.Bar{Time: t, Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: v[4]}, nil
}
