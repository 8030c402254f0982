// Package export renders price series and forecast paths as CSV downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"StockOracle/internal/model"
)

const dateLayout = "2006-01-02"

// WriteSeries writes one row per bar: Date,Open,High,Low,Close,Volume.
func WriteSeries(w io.Writer, series *model.PriceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range series.Bars {
		rec := []string{
			b.Time.Format(dateLayout),
			money(b.Open),
			money(b.High),
			money(b.Low),
			money(b.Close),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write bar %s: %w", b.Time.Format(dateLayout), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteForecast writes one row per forecast point: Date,Predicted Close.
func WriteForecast(w io.Writer, path model.ForecastPath) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Predicted Close"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range path {
		if err := cw.Write([]string{p.Date.Format(dateLayout), money(p.PredictedClose)}); err != nil {
			return fmt.Errorf("write forecast %s: %w", p.Date.Format(dateLayout), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
