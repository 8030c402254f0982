package model

import "time"

// Metrics maps display names to raw metric values (numbers or strings).
type Metrics map[string]any

// EPSPoint is one period of the earnings-per-share trend.
type EPSPoint struct {
	Period time.Time `json:"period"`
	EPS    float64   `json:"eps"`
}

// Fundamentals bundles the company snapshot and analyst metrics of one symbol.
type Fundamentals struct {
	Symbol   string     `json:"symbol"`
	Source   string     `json:"source"`
	Overview Metrics    `json:"overview"`
	Analysis Metrics    `json:"analysis"`
	EPSTrend []EPSPoint `json:"eps_trend,omitempty"`
}

// PriceRange holds recent extremes derived from the daily bars.
type PriceRange struct {
	High52w     float64 `json:"high_52w"`
	Low52w      float64 `json:"low_52w"`
	High30d     float64 `json:"high_30d"`
	Low30d      float64 `json:"low_30d"`
	Position52w float64 `json:"position_52w"` // 0.0 ~ 1.0
}
