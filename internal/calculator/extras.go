package calculator

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/cinar/indicator/v2/volume"
	"github.com/guregu/null/v6"

	"StockOracle/internal/model"
)

// ATR computes the 14-period average true range.
func ATR(bars []model.Bar) []null.Float {
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i], lows[i], closes[i] = b.High, b.Low, b.Close
	}
	atr := volatility.NewAtr[float64]()
	result := helper.ChanToSlice(atr.Compute(
		helper.SliceToChan(highs),
		helper.SliceToChan(lows),
		helper.SliceToChan(closes),
	))
	return alignTail(result, len(bars))
}

// OBV computes on-balance volume.
func OBV(bars []model.Bar) []null.Float {
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i], volumes[i] = b.Close, b.Volume
	}
	obv := volume.NewObv[float64]()
	result := helper.ChanToSlice(obv.Compute(helper.SliceToChan(closes), helper.SliceToChan(volumes)))
	return alignTail(result, len(bars))
}

// alignTail right-aligns values that skip an idle period so that the last
// value lands on the last row.
func alignTail(values []float64, n int) []null.Float {
	out := make([]null.Float, n)
	if len(values) > n {
		values = values[len(values)-n:]
	}
	offset := n - len(values)
	for i, v := range values {
		out[offset+i] = null.FloatFrom(v)
	}
	return out
}
