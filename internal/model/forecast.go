package model

import "time"

// ForecastPoint is one predicted close.
type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedClose float64   `json:"predicted_close"`
}

// ForecastPath is the ordered output of an iterative rollout.
type ForecastPath []ForecastPoint

// Next returns the first predicted close, if any.
func (p ForecastPath) Next() (ForecastPoint, bool) {
	if len(p) == 0 {
		return ForecastPoint{}, false
	}
	return p[0], true
}

// BacktestPoint pairs a model prediction with the observed close for one test window.
type BacktestPoint struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// BacktestResult summarises one-step-ahead predictions over the test split.
type BacktestResult struct {
	Points []BacktestPoint `json:"points"`
	RMSE   float64         `json:"rmse"`
	MAE    float64         `json:"mae"`
	MAPE   float64         `json:"mape"`
}
