package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"StockOracle/internal/api"
	"StockOracle/internal/app"
	"StockOracle/internal/config"
	"StockOracle/internal/logger"
	"StockOracle/internal/notifier"
	"StockOracle/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config validation")
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}
	log.Info("StockOracle starting...")

	a, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("init pipeline")
	}
	defer a.Close()

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sink scheduler.Notifier
	if cfg.Telegram.BotToken != "" {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		if err != nil {
			log.WithError(err).Fatal("init telegram notifier")
		}
		sink = tn
	} else {
		log.Warn("telegram not configured, reports are only logged and recorded")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, a.Analyzer, sink, cfg.DataSource.Symbols, cfg.Forecast.Horizon, log)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.WithError(err).Fatal("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
	}

	// HTTP API
	var srv *http.Server
	if cfg.Server.Addr != "" {
		gin.SetMode(gin.ReleaseMode)
		srv = &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.NewRouter(a.Analyzer, cfg.Forecast.Horizon, a.Metrics.Handler(), log),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.WithField("addr", cfg.Server.Addr).Info("http api listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("http api stopped")
				stop()
			}
		}()
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, analysing watchlist now")
		go sched.RunWatchlistNow()
	}

	log.Info("StockOracle is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http api shutdown")
		}
	}
	log.Info("StockOracle stopped")
}
