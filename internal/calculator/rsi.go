package calculator

import (
	"github.com/guregu/null/v6"

	"StockOracle/internal/model"
)

// rsiEpsilon keeps RS finite when a window has no down moves.
const rsiEpsilon = 1e-9

// RSI computes the relative strength index with simple (not Wilder) averaging
// of up and down moves over period rows. The first row has no predecessor and
// counts as no movement, so the first value appears on row period-1.
func RSI(closes []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, model.ConfigErrorf("RSI period must be positive, got %d", period)
	}
	n := len(closes)
	up := make([]float64, n)
	down := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			up[i] = delta
		} else {
			down[i] = -delta
		}
	}

	out := make([]null.Float, n)
	for t := period - 1; t < n; t++ {
		var sumUp, sumDown float64
		for i := t - period + 1; i <= t; i++ {
			sumUp += up[i]
			sumDown += down[i]
		}
		rollUp := sumUp / float64(period)
		rollDown := sumDown / float64(period)
		rs := rollUp / (rollDown + rsiEpsilon)
		out[t] = null.FloatFrom(100.0 - 100.0/(1.0+rs))
	}
	return out, nil
}
