package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// IndicatorFrame is a PriceSeries augmented with derived columns. Every column
// is aligned with Bars; rows without enough history hold an invalid null.Float.
type IndicatorFrame struct {
	Symbol    string               `json:"symbol"`
	Bars      []Bar                `json:"bars"`
	MA        map[int][]null.Float `json:"ma"`
	RSI       []null.Float         `json:"rsi"`
	MACD      []null.Float         `json:"macd"`
	Signal    []null.Float         `json:"macd_signal"`
	Histogram []null.Float         `json:"macd_histogram"`
	ATR       []null.Float         `json:"atr"`
	OBV       []null.Float         `json:"obv"`
}

// IndicatorRow is one row of an IndicatorFrame.
type IndicatorRow struct {
	Date      time.Time          `json:"date"`
	Close     float64            `json:"close"`
	MA        map[int]null.Float `json:"ma"`
	RSI       null.Float         `json:"rsi"`
	MACD      null.Float         `json:"macd"`
	Signal    null.Float         `json:"macd_signal"`
	Histogram null.Float         `json:"macd_histogram"`
	ATR       null.Float         `json:"atr"`
	OBV       null.Float         `json:"obv"`
}

// Len returns the number of rows.
func (f *IndicatorFrame) Len() int { return len(f.Bars) }

// Row returns row i.
func (f *IndicatorFrame) Row(i int) IndicatorRow {
	row := IndicatorRow{
		Date:      f.Bars[i].Time,
		Close:     f.Bars[i].Close,
		MA:        make(map[int]null.Float, len(f.MA)),
		RSI:       at(f.RSI, i),
		MACD:      at(f.MACD, i),
		Signal:    at(f.Signal, i),
		Histogram: at(f.Histogram, i),
		ATR:       at(f.ATR, i),
		OBV:       at(f.OBV, i),
	}
	for w, col := range f.MA {
		row.MA[w] = at(col, i)
	}
	return row
}

// Latest returns the last row.
func (f *IndicatorFrame) Latest() IndicatorRow { return f.Row(len(f.Bars) - 1) }

// Tail returns the last n rows, or all rows when n exceeds the frame.
func (f *IndicatorFrame) Tail(n int) []IndicatorRow {
	start := len(f.Bars) - n
	if start < 0 || n <= 0 {
		start = 0
	}
	rows := make([]IndicatorRow, 0, len(f.Bars)-start)
	for i := start; i < len(f.Bars); i++ {
		rows = append(rows, f.Row(i))
	}
	return rows
}

func at(col []null.Float, i int) null.Float {
	if i < len(col) {
		return col[i]
	}
	return null.Float{}
}
