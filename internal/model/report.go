package model

import "time"

// Report is everything one analysis run produced.
type Report struct {
	RunID        string          `json:"run_id"`
	Symbol       string          `json:"symbol"`
	GeneratedAt  time.Time       `json:"generated_at"`
	LastBar      Bar             `json:"last_bar"`
	Bars         int             `json:"bars"`
	Indicators   IndicatorRow    `json:"indicators"`
	Range        PriceRange      `json:"range"`
	Backtest     *BacktestResult `json:"backtest,omitempty"`
	Forecast     ForecastPath    `json:"forecast"`
	Fundamentals *Fundamentals   `json:"fundamentals,omitempty"`
	Signal       *TradeSignal    `json:"signal"`
	Advice       string          `json:"advice,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`

	Series *PriceSeries    `json:"-"`
	Frame  *IndicatorFrame `json:"-"`
}

// NextClose returns the first forecast value, or the last close when the path is empty.
func (r *Report) NextClose() float64 {
	if p, ok := r.Forecast.Next(); ok {
		return p.PredictedClose
	}
	return r.LastBar.Close
}
