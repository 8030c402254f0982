package calculator

import (
	"github.com/guregu/null/v6"

	"StockOracle/internal/model"
)

// IndicatorConfig selects the derived columns of an IndicatorFrame.
type IndicatorConfig struct {
	MAWindows  []int `yaml:"ma_windows"`
	RSIPeriod  int   `yaml:"rsi_period"`
	MACDFast   int   `yaml:"macd_fast"`
	MACDSlow   int   `yaml:"macd_slow"`
	MACDSignal int   `yaml:"macd_signal"`
}

// DefaultIndicatorConfig returns MA(20/50/100/200), RSI(14) and MACD(12,26,9).
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		MAWindows:  []int{20, 50, 100, 200},
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

// Validate rejects non-positive windows and periods.
func (c IndicatorConfig) Validate() error {
	for _, w := range c.MAWindows {
		if w <= 0 {
			return model.ConfigErrorf("indicators.ma_windows: %d is not positive", w)
		}
	}
	if c.RSIPeriod <= 0 {
		return model.ConfigErrorf("indicators.rsi_period must be positive, got %d", c.RSIPeriod)
	}
	if c.MACDFast <= 0 || c.MACDSlow <= 0 || c.MACDSignal <= 0 {
		return model.ConfigErrorf("indicators.macd spans must be positive")
	}
	if c.MACDFast >= c.MACDSlow {
		return model.ConfigErrorf("indicators.macd_fast (%d) must be below macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}
	return nil
}

// BuildFrame derives every configured column from the series. The series is
// not modified; rows lacking history hold absent values.
func BuildFrame(series *model.PriceSeries, cfg IndicatorConfig) (*model.IndicatorFrame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bars := make([]model.Bar, len(series.Bars))
	copy(bars, series.Bars)
	closes := extractCloses(bars)

	frame := &model.IndicatorFrame{
		Symbol: series.Symbol,
		Bars:   bars,
		MA:     make(map[int][]null.Float, len(cfg.MAWindows)),
	}
	for _, w := range cfg.MAWindows {
		ma, err := MovingAverage(closes, w)
		if err != nil {
			return nil, err
		}
		frame.MA[w] = ma
	}

	var err error
	if frame.RSI, err = RSI(closes, cfg.RSIPeriod); err != nil {
		return nil, err
	}
	if frame.MACD, frame.Signal, frame.Histogram, err = MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal); err != nil {
		return nil, err
	}
	frame.ATR = ATR(bars)
	frame.OBV = OBV(bars)
	return frame, nil
}
