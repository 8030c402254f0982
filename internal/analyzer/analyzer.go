package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"StockOracle/internal/advisor"
	"StockOracle/internal/calculator"
	"StockOracle/internal/collector"
	"StockOracle/internal/config"
	"StockOracle/internal/forecast"
	"StockOracle/internal/model"
	"StockOracle/internal/recorder"
	"StockOracle/internal/strategy"
	"StockOracle/internal/window"
)

// RunObserver receives the outcome of every analysis run.
type RunObserver interface {
	ObserveRun(status string, elapsed time.Duration)
}

// Options are the per-run parameters of the pipeline.
type Options struct {
	Features     []model.Feature
	TargetIndex  int
	WindowLength int
	TrainRatio   float64
	HistoryYears int
	Indicators   calculator.IndicatorConfig
}

// OptionsFromConfig extracts the pipeline options from a validated config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	features, err := cfg.FeatureList()
	if err != nil {
		return Options{}, err
	}
	target, err := cfg.TargetIndex()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Features:     features,
		TargetIndex:  target,
		WindowLength: cfg.Model.WindowLength,
		TrainRatio:   cfg.Forecast.TrainRatio,
		HistoryYears: cfg.DataSource.HistoryYears,
		Indicators:   cfg.Indicators,
	}, nil
}

// Deps are the collaborators of an Analyzer. Fundamentals, Advisor and
// Observer are optional.
type Deps struct {
	Fetcher      collector.Fetcher
	Fundamentals collector.MetricsProvider
	Model        forecast.Model
	Advisor      advisor.Advisor
	Recorder     recorder.Recorder
	Observer     RunObserver
	Log          logrus.FieldLogger
}

// Analyzer runs the full pipeline for one symbol: fetch, indicators,
// scaling, backtest, rollout, fundamentals, signal, advice and record.
type Analyzer struct {
	deps Deps
	opts Options
	log  logrus.FieldLogger
	now  func() time.Time
}

// New checks the required collaborators and options.
func New(deps Deps, opts Options) (*Analyzer, error) {
	if deps.Fetcher == nil {
		return nil, model.ConfigErrorf("analyzer: fetcher is required")
	}
	if deps.Model == nil {
		return nil, model.ConfigErrorf("analyzer: model is required")
	}
	if err := opts.Indicators.Validate(); err != nil {
		return nil, err
	}
	if opts.WindowLength <= 0 {
		return nil, model.ConfigErrorf("window length must be positive, got %d", opts.WindowLength)
	}
	if opts.TrainRatio <= 0 || opts.TrainRatio > 1 {
		return nil, model.ConfigErrorf("train ratio must be in (0, 1], got %v", opts.TrainRatio)
	}
	if opts.TargetIndex < 0 || opts.TargetIndex >= len(opts.Features) {
		return nil, model.ConfigErrorf("target index %d out of range for %d features", opts.TargetIndex, len(opts.Features))
	}
	if opts.HistoryYears <= 0 {
		opts.HistoryYears = 15
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Log == nil {
		deps.Log = logrus.New()
	}
	return &Analyzer{
		deps: deps,
		opts: opts,
		log:  deps.Log.WithField("component", "analyzer"),
		now:  time.Now,
	}, nil
}

// Analyze runs the pipeline and records the outcome. Fundamentals and advice
// failures only add warnings to the report; any other failure fails the run.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, horizon int) (*model.Report, error) {
	start := a.now()
	runID := uuid.NewString()
	log := a.log.WithFields(logrus.Fields{"symbol": symbol, "run_id": runID})

	report, err := a.run(ctx, log, runID, symbol, horizon)
	status := recorder.StatusOK
	if err != nil {
		status = recorder.StatusError
		log.WithError(err).Error("analysis failed")
		if rerr := a.deps.Recorder.RecordFailure(ctx, runID, symbol, err); rerr != nil {
			log.WithError(rerr).Warn("record failure")
		}
	} else {
		if rerr := a.deps.Recorder.RecordRun(ctx, report); rerr != nil {
			log.WithError(rerr).Warn("record run")
		}
		log.WithFields(logrus.Fields{
			"next_close": report.NextClose(),
			"decision":   report.Signal.Tier.Decision,
		}).Info("analysis finished")
	}
	if a.deps.Observer != nil {
		a.deps.Observer.ObserveRun(status, a.now().Sub(start))
	}
	return report, err
}

// Indicators fetches the history of symbol and computes its indicator frame.
func (a *Analyzer) Indicators(ctx context.Context, symbol string) (*model.IndicatorFrame, error) {
	_, frame, err := a.load(ctx, symbol)
	return frame, err
}

// History returns the most recent recorded runs of symbol.
func (a *Analyzer) History(ctx context.Context, symbol string, limit int) ([]recorder.RunSummary, error) {
	return a.deps.Recorder.RecentRuns(ctx, symbol, limit)
}

func (a *Analyzer) load(ctx context.Context, symbol string) (*model.PriceSeries, *model.IndicatorFrame, error) {
	end := a.now()
	start := end.AddDate(-a.opts.HistoryYears, 0, 0)
	series, err := a.deps.Fetcher.FetchSeries(ctx, symbol, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s from %s: %w", symbol, a.deps.Fetcher.Name(), err)
	}
	frame, err := calculator.BuildFrame(series, a.opts.Indicators)
	if err != nil {
		return nil, nil, fmt.Errorf("indicators: %w", err)
	}
	return series, frame, nil
}

func (a *Analyzer) run(ctx context.Context, log logrus.FieldLogger, runID, symbol string, horizon int) (*model.Report, error) {
	if horizon < 0 {
		return nil, model.ConfigErrorf("horizon must not be negative, got %d", horizon)
	}
	series, frame, err := a.load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	log.WithField("bars", series.Len()).Debug("series loaded")

	rows, err := series.Matrix(a.opts.Features)
	if err != nil {
		return nil, err
	}
	n, L := len(rows), a.opts.WindowLength
	if n <= L {
		return nil, model.DataErrorf("need more than %d bars to forecast, got %d", L, n)
	}
	train := max(int(float64(n)*a.opts.TrainRatio), L)

	scaler, err := window.FitColumns(rows, train)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	scaled, err := scaler.Transform(rows)
	if err != nil {
		return nil, err
	}
	driver := &forecast.Driver{
		Model:        a.deps.Model,
		Scale:        scaler.Params[a.opts.TargetIndex],
		TargetIndex:  a.opts.TargetIndex,
		WindowLength: L,
	}

	report := &model.Report{
		RunID:       runID,
		Symbol:      symbol,
		GeneratedAt: a.now().UTC(),
		LastBar:     series.Last(),
		Bars:        n,
		Indicators:  frame.Latest(),
		Series:      series,
		Frame:       frame,
	}

	if train < n {
		windows, err := window.MakeFeatureWindows(scaled[train-L:], L, a.opts.TargetIndex)
		if err != nil {
			return nil, fmt.Errorf("test windows: %w", err)
		}
		bt, err := driver.Backtest(ctx, windows, series.Dates()[train:])
		if err != nil {
			return nil, fmt.Errorf("backtest: %w", err)
		}
		report.Backtest = bt
	} else {
		report.Warnings = append(report.Warnings, "backtest skipped: no rows after the training split")
	}

	path, err := driver.Rollout(ctx, scaled[n-L:], series.Last().Time, horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	report.Forecast = path

	if rng, err := calculator.CalculatePriceRange(series); err != nil {
		report.Warnings = append(report.Warnings, "price range unavailable: "+err.Error())
	} else {
		report.Range = rng
	}

	a.attachFundamentals(ctx, log, report)

	report.Signal = strategy.Evaluate(strategy.Inputs{
		Row:         report.Indicators,
		Range:       report.Range,
		NextClose:   report.NextClose(),
		HasForecast: len(path) > 0,
	})

	a.attachAdvice(ctx, log, report)
	return report, nil
}

func (a *Analyzer) attachFundamentals(ctx context.Context, log logrus.FieldLogger, report *model.Report) {
	if a.deps.Fundamentals == nil {
		return
	}
	f, err := a.deps.Fundamentals.FetchFundamentals(ctx, report.Symbol)
	if err != nil {
		log.WithError(err).Warn("fundamentals unavailable")
		report.Warnings = append(report.Warnings, "fundamentals unavailable: "+err.Error())
		return
	}
	report.Fundamentals = f
}

func (a *Analyzer) attachAdvice(ctx context.Context, log logrus.FieldLogger, report *model.Report) {
	if a.deps.Advisor == nil {
		return
	}
	if report.Fundamentals == nil || len(report.Fundamentals.Overview) == 0 {
		report.Warnings = append(report.Warnings, "advice skipped: no company overview")
		return
	}
	advice, err := a.deps.Advisor.Advise(ctx, advisor.AdviceRequest{
		Symbol:         report.Symbol,
		PredictedClose: report.NextClose(),
		Overview:       report.Fundamentals.Overview,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("advice cancelled")
		} else {
			log.WithError(err).Warn("advice unavailable")
		}
		report.Warnings = append(report.Warnings, "advice unavailable: "+err.Error())
		return
	}
	report.Advice = advice
}
