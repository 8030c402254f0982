package calculator

import (
	"github.com/guregu/null/v6"

	"StockOracle/internal/model"
)

// MovingAverage returns the trailing mean over window rows for every row.
// The first window-1 rows are absent.
func MovingAverage(closes []float64, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, model.ConfigErrorf("moving average window must be positive, got %d", window)
	}
	out := make([]null.Float, len(closes))
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = null.FloatFrom(sum / float64(window))
		}
	}
	return out, nil
}

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
