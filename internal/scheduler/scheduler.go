package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StockOracle/internal/config"
	"StockOracle/internal/model"
	"StockOracle/internal/notifier"
	"StockOracle/internal/recorder"
)

const historyLimit = 10

// Analyzer is the part of the analysis pipeline the scheduler drives.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, horizon int) (*model.Report, error)
	History(ctx context.Context, symbol string, limit int) ([]recorder.RunSummary, error)
}

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the daily watchlist analysis and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Notifier Notifier // nil disables delivery
	Symbols  []string
	Horizon  int
	Ctx      context.Context
	log      logrus.FieldLogger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an Analyzer, n Notifier, symbols []string, horizon int, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: an,
		Notifier: n,
		Symbols:  symbols,
		Horizon:  horizon,
		Ctx:      ctx,
		log:      log.WithField("component", "scheduler"),
	}
}

// Register registers the daily watchlist task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunWatchlistNow executes the watchlist task immediately (RUN_ON_START).
func (s *Scheduler) RunWatchlistNow() {
	s.watchlistTask()
}

func (s *Scheduler) watchlistTask() {
	s.log.WithField("symbols", len(s.Symbols)).Info("running watchlist analysis")
	for _, symbol := range s.Symbols {
		if s.Ctx.Err() != nil {
			return
		}
		s.trySend(s.analyze(s.Ctx, symbol, s.Horizon))
	}
}

func (s *Scheduler) analyze(ctx context.Context, symbol string, horizon int) string {
	report, err := s.Analyzer.Analyze(ctx, symbol, horizon)
	if err != nil {
		return notifier.FormatError(symbol, err)
	}
	return notifier.FormatReport(report)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	// "/analyze@MyBot" in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/analyze":
		if len(args) == 0 {
			return "Usage: /analyze SYMBOL [horizon]"
		}
		horizon := s.Horizon
		if len(args) > 1 {
			h, err := strconv.Atoi(args[1])
			if err != nil || h < 1 || h > config.MaxHorizon {
				return fmt.Sprintf("Horizon must be a number between 1 and %d", config.MaxHorizon)
			}
			horizon = h
		}
		return s.analyze(ctx, strings.ToUpper(args[0]), horizon)
	case "/history":
		if len(args) == 0 {
			return "Usage: /history SYMBOL"
		}
		symbol := strings.ToUpper(args[0])
		runs, err := s.Analyzer.History(ctx, symbol, historyLimit)
		if err != nil {
			return notifier.FormatError(symbol, err)
		}
		return notifier.FormatHistory(symbol, runs)
	case "/watchlist":
		s.watchlistTask()
		return ""
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		s.log.Debug("no notifier configured, message dropped")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.WithError(err).Error("send notification")
	}
}
