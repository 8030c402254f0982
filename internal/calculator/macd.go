package calculator

import (
	"github.com/guregu/null/v6"

	"StockOracle/internal/model"
)

// EMA computes the exponential moving average with alpha = 2/(span+1),
// seeded with the first value and without bias adjustment.
func EMA(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, model.ConfigErrorf("EMA span must be positive, got %d", span)
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// MACD returns the MACD line, its signal line and the histogram.
// All three are defined from the first row because EMA is seeded.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []null.Float, err error) {
	if fast >= slow {
		return nil, nil, nil, model.ConfigErrorf("MACD fast span %d must be shorter than slow span %d", fast, slow)
	}
	fastEMA, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, nil, err
	}
	slowEMA, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, nil, err
	}
	raw := make([]float64, len(closes))
	for i := range closes {
		raw[i] = fastEMA[i] - slowEMA[i]
	}
	signalEMA, err := EMA(raw, signal)
	if err != nil {
		return nil, nil, nil, err
	}

	line = make([]null.Float, len(raw))
	sig = make([]null.Float, len(raw))
	hist = make([]null.Float, len(raw))
	for i := range raw {
		line[i] = null.FloatFrom(raw[i])
		sig[i] = null.FloatFrom(signalEMA[i])
		hist[i] = null.FloatFrom(raw[i] - signalEMA[i])
	}
	return line, sig, hist, nil
}
