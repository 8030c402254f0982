package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"StockOracle/internal/config"
	"StockOracle/internal/export"
	"StockOracle/internal/model"
)

const defaultIndicatorRows = 30

type handler struct {
	svc            Service
	defaultHorizon int
}

// ForecastResponse is the JSON body of GET /api/v1/forecast/:symbol.
type ForecastResponse struct {
	Symbol    string                `json:"symbol"`
	LastClose float64               `json:"last_close"`
	Forecast  model.ForecastPath    `json:"forecast"`
	Backtest  *model.BacktestResult `json:"backtest,omitempty"`
}

// IndicatorsResponse is the JSON body of GET /api/v1/indicators/:symbol.
type IndicatorsResponse struct {
	Symbol string               `json:"symbol"`
	Rows   []model.IndicatorRow `json:"rows"`
}

func (h *handler) analysis(c *gin.Context) {
	report, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) forecast(c *gin.Context) {
	report, ok := h.analyze(c)
	if !ok {
		return
	}
	if c.Query("format") == "csv" {
		writeCSV(c, report.Symbol+"_forecast.csv", func(c *gin.Context) error {
			return export.WriteForecast(c.Writer, report.Forecast)
		})
		return
	}
	c.JSON(http.StatusOK, ForecastResponse{
		Symbol:    report.Symbol,
		LastClose: report.LastBar.Close,
		Forecast:  report.Forecast,
		Backtest:  report.Backtest,
	})
}

func (h *handler) indicators(c *gin.Context) {
	n := defaultIndicatorRows
	if v := c.Query("rows"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rows must be a positive integer"})
			return
		}
		n = parsed
	}
	symbol := symbolParam(c)
	frame, err := h.svc.Indicators(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, IndicatorsResponse{Symbol: symbol, Rows: frame.Tail(n)})
}

func (h *handler) series(c *gin.Context) {
	symbol := symbolParam(c)
	frame, err := h.svc.Indicators(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	series := &model.PriceSeries{Symbol: symbol, Bars: frame.Bars}
	writeCSV(c, symbol+"_history.csv", func(c *gin.Context) error {
		return export.WriteSeries(c.Writer, series)
	})
}

func (h *handler) analyze(c *gin.Context) (*model.Report, bool) {
	horizon, err := h.horizon(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	report, err := h.svc.Analyze(c.Request.Context(), symbolParam(c), horizon)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return report, true
}

func (h *handler) horizon(c *gin.Context) (int, error) {
	v := c.Query("horizon")
	if v == "" {
		return h.defaultHorizon, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > config.MaxHorizon {
		return 0, fmt.Errorf("horizon must be an integer between 1 and %d", config.MaxHorizon)
	}
	return n, nil
}

func symbolParam(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
}

func writeCSV(c *gin.Context, filename string, write func(*gin.Context) error) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := write(c); err != nil {
		_ = c.Error(err)
	}
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrConfig):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrModel):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
