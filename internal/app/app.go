// Package app wires configuration into a ready-to-use analysis pipeline.
package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"StockOracle/internal/advisor"
	"StockOracle/internal/analyzer"
	"StockOracle/internal/cache"
	"StockOracle/internal/collector"
	"StockOracle/internal/config"
	"StockOracle/internal/forecast"
	"StockOracle/internal/metrics"
	"StockOracle/internal/model"
	"StockOracle/internal/recorder"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config   *config.Config
	Log      logrus.FieldLogger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Analyzer *analyzer.Analyzer
	Recorder recorder.Recorder

	redis *redis.Client
}

// New builds every component. Optional parts (cache, recorder, advisor)
// degrade to disabled with a warning rather than failing.
func New(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	a := &App{
		Config:   cfg,
		Log:      log,
		Registry: prometheus.NewRegistry(),
	}
	a.Metrics = metrics.New(a.Registry)

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.WithField("provider", fetcher.Name()).Info("data source ready")
	var source collector.Fetcher = instrumentedFetcher{Fetcher: fetcher, metrics: a.Metrics}
	if cfg.Cache.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		source = cache.NewSeriesCache(source, a.redis, cfg.Cache.TTL, log, a.Metrics)
		log.WithField("addr", cfg.Cache.RedisAddr).Info("series cache enabled")
	}

	opts, err := analyzer.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	deps := analyzer.Deps{
		Fetcher:  source,
		Model:    forecast.Instrument(newModel(cfg, opts.TargetIndex, log), a.Metrics),
		Recorder: newRecorder(cfg, log),
		Observer: a.Metrics,
		Log:      log,
	}
	a.Recorder = deps.Recorder
	if cfg.DataSource.Provider != "mock" {
		deps.Fundamentals = collector.NewYahooSummaryProvider(cfg.Proxy, cfg.DataSource.Timeout)
	}
	if cfg.Advisor.Enabled {
		if cfg.Advisor.APIKey == "" {
			log.Warn("advisor enabled without api key, advice disabled")
		} else {
			client := advisor.NewClient(cfg.Advisor.APIKey, cfg.Advisor.BaseURL, cfg.Advisor.Timeout)
			deps.Advisor = advisor.NewOpenAIAdvisor(client, cfg.Advisor.Model)
		}
	}

	an, err := analyzer.New(deps, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Analyzer = an
	return a, nil
}

// Close releases the recorder and cache connections.
func (a *App) Close() error {
	var firstErr error
	if a.Recorder != nil {
		if err := a.Recorder.Close(); err != nil {
			firstErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout), nil
	case "alphavantage":
		return collector.NewAlphaVantageFetcher(cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout), nil
	case "mock":
		return &collector.MockFetcher{Price: 2500}, nil
	default:
		return nil, model.ConfigErrorf("unknown data provider %q", cfg.DataSource.Provider)
	}
}

func newModel(cfg *config.Config, targetIndex int, log logrus.FieldLogger) forecast.Model {
	if cfg.Model.Endpoint == "" {
		log.Warn("no model endpoint configured, using persistence baseline")
		return forecast.PersistenceModel{TargetIndex: targetIndex}
	}
	log.WithField("endpoint", cfg.Model.Endpoint).WithField("model", cfg.Model.Name).Info("sequence model ready")
	return forecast.NewHTTPModel(cfg.Model.Endpoint, cfg.Model.Name, cfg.Model.Timeout)
}

func newRecorder(cfg *config.Config, log logrus.FieldLogger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.WithError(err).Warn("create database directory failed, using noop recorder")
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.WithError(err).Warn("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// instrumentedFetcher counts provider failures.
type instrumentedFetcher struct {
	collector.Fetcher
	metrics *metrics.Metrics
}

func (f instrumentedFetcher) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	s, err := f.Fetcher.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		f.metrics.FetchFailed(f.Name())
	}
	return s, err
}
