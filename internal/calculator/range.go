package calculator

import (
	"errors"
	"math"

	"StockOracle/internal/model"
)

// Calculate52WeekRange scans the most recent 252 trading days and returns the high and low.
func Calculate52WeekRange(dailyBars []model.Bar) (high, low float64, err error) {
	return calculateRange(dailyBars, 252)
}

// Calculate30DayRange scans the most recent 22 trading days and returns the high and low.
func Calculate30DayRange(dailyBars []model.Bar) (high, low float64, err error) {
	return calculateRange(dailyBars, 22)
}

func calculateRange(bars []model.Bar, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, model.DataErrorf("no daily bars provided")
	}
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < len(bars); i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// CalculatePriceRange bundles the 52-week and 30-day extremes of the series.
func CalculatePriceRange(series *model.PriceSeries) (model.PriceRange, error) {
	var pr model.PriceRange
	var err error
	if pr.High52w, pr.Low52w, err = Calculate52WeekRange(series.Bars); err != nil {
		return pr, err
	}
	if pr.High30d, pr.Low30d, err = Calculate30DayRange(series.Bars); err != nil {
		return pr, err
	}
	if pr.Position52w, err = Calculate52WeekPosition(series.Last().Close, pr.High52w, pr.Low52w); err != nil {
		return pr, err
	}
	return pr, nil
}
