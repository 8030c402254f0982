package model

import (
	"math"
	"sort"
	"time"
)

// Bar represents a single daily candlestick.
type Bar struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Feature names a Bar column usable as a model input.
type Feature string

const (
	FeatureOpen   Feature = "Open"
	FeatureHigh   Feature = "High"
	FeatureLow    Feature = "Low"
	FeatureClose  Feature = "Close"
	FeatureVolume Feature = "Volume"
)

// Value returns the bar's value for the feature.
func (b Bar) Value(f Feature) (float64, bool) {
	switch f {
	case FeatureOpen:
		return b.Open, true
	case FeatureHigh:
		return b.High, true
	case FeatureLow:
		return b.Low, true
	case FeatureClose:
		return b.Close, true
	case FeatureVolume:
		return b.Volume, true
	}
	return 0, false
}

// PriceSeries holds the daily history of one symbol, strictly increasing by date.
// Treat it as read-only once built.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Bars      []Bar     `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewPriceSeries sorts bars by date and validates them.
func NewPriceSeries(symbol string, bars []Bar) (*PriceSeries, error) {
	if len(bars) == 0 {
		return nil, DataErrorf("no data for symbol %q", symbol)
	}
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	for i, b := range sorted {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			return nil, DataErrorf("%s: non-finite close on %s", symbol, b.Time.Format(time.DateOnly))
		}
		if i > 0 && !sorted[i-1].Time.Before(b.Time) {
			return nil, DataErrorf("%s: duplicate date %s", symbol, b.Time.Format(time.DateOnly))
		}
	}
	return &PriceSeries{Symbol: symbol, Bars: sorted, FetchedAt: time.Now()}, nil
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes returns a fresh slice of close prices.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Dates returns a fresh slice of bar dates.
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

// Last returns the most recent bar.
func (s *PriceSeries) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Matrix returns one row per bar holding the requested features in order.
func (s *PriceSeries) Matrix(features []Feature) ([][]float64, error) {
	rows := make([][]float64, len(s.Bars))
	for i, b := range s.Bars {
		row := make([]float64, len(features))
		for j, f := range features {
			v, ok := b.Value(f)
			if !ok {
				return nil, ConfigErrorf("unknown feature %q", f)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}
