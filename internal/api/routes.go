package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"StockOracle/internal/model"
)

// Service is the analysis pipeline behind the HTTP API.
type Service interface {
	Analyze(ctx context.Context, symbol string, horizon int) (*model.Report, error)
	Indicators(ctx context.Context, symbol string) (*model.IndicatorFrame, error)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRouter builds the gin engine serving the analysis API. metrics may be
// nil to leave /metrics unregistered.
func NewRouter(svc Service, defaultHorizon int, metrics http.Handler, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	h := &handler{svc: svc, defaultHorizon: defaultHorizon}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/analysis/:symbol", h.analysis)
		v1.GET("/forecast/:symbol", h.forecast)
		v1.GET("/indicators/:symbol", h.indicators)
		v1.GET("/series/:symbol", h.series)
	}
	return router
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	log = log.WithField("component", "api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
