package collector

import (
	"context"
	"math"
	"time"

	"StockOracle/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.Bar // served as-is when set
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return model.NewPriceSeries(symbol, m.Bars)
	}
	return model.NewPriceSeries(symbol, generateMockBars(m.Price, start, end))
}

// generateMockBars produces one weekday bar per day in [start, end] along a
// deterministic oscillating trend around basePrice.
func generateMockBars(basePrice float64, start, end time.Time) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	var bars []model.Bar
	i := 0
	for d := dateOnly(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.0005*float64(i) + 0.03*math.Sin(float64(i)/9))
		bars = append(bars, model.Bar{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 + float64(i%7)*25000,
		})
		i++
	}
	return bars
}

// StaticMetrics is a MetricsProvider returning fixed fundamentals.
type StaticMetrics struct {
	Fundamentals *model.Fundamentals
	Err          error
}

func (s StaticMetrics) FetchFundamentals(_ context.Context, symbol string) (*model.Fundamentals, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Fundamentals == nil {
		return nil, model.DataErrorf("no fundamentals for %q", symbol)
	}
	return s.Fundamentals, nil
}
