package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"StockOracle/internal/model"
)

// SQLiteRecorder persists run summaries to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log logrus.FieldLogger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log logrus.FieldLogger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.WithField("component", "recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			status      TEXT NOT NULL,
			error       TEXT,
			bars        INTEGER,
			last_close  REAL,
			next_close  REAL,
			horizon     INTEGER,
			rsi         REAL,
			macd        REAL,
			total_score REAL,
			decision    TEXT,
			rmse        REAL,
			mae         REAL,
			mape        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_points (
			run_id          TEXT NOT NULL,
			step            INTEGER NOT NULL,
			date            TEXT NOT NULL,
			predicted_close REAL NOT NULL,
			PRIMARY KEY (run_id, step)
		)`,

		`CREATE TABLE IF NOT EXISTS factor_scores (
			run_id    TEXT NOT NULL,
			name      TEXT NOT NULL,
			raw_score REAL,
			weighted  REAL,
			available INTEGER,
			PRIMARY KEY (run_id, name)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the summary, forecast path and factor scores of a report
// in one transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var next null.Float
	if p, ok := rep.Forecast.Next(); ok {
		next = null.FloatFrom(p.PredictedClose)
	}
	var rmse, mae, mape null.Float
	if bt := rep.Backtest; bt != nil {
		rmse, mae, mape = null.FloatFrom(bt.RMSE), null.FloatFrom(bt.MAE), null.FloatFrom(bt.MAPE)
	}
	var score null.Float
	var decision string
	if sig := rep.Signal; sig != nil {
		score = null.FloatFrom(sig.TotalScore)
		decision = string(sig.Tier.Decision)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(run_id, timestamp, symbol, status, bars, last_close, next_close, horizon,
		 rsi, macd, total_score, decision, rmse, mae, mape)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rep.RunID, rep.GeneratedAt.Unix(), rep.Symbol, StatusOK, rep.Bars,
		rep.LastBar.Close, next, len(rep.Forecast),
		rep.Indicators.RSI, rep.Indicators.MACD, score, decision,
		rmse, mae, mape,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, p := range rep.Forecast {
		if _, err := tx.ExecContext(ctx, `INSERT INTO forecast_points
			(run_id, step, date, predicted_close) VALUES (?,?,?,?)`,
			rep.RunID, i+1, p.Date.Format(time.DateOnly), p.PredictedClose,
		); err != nil {
			return fmt.Errorf("insert forecast point %d: %w", i+1, err)
		}
	}
	if rep.Signal != nil {
		for _, f := range rep.Signal.Factors {
			if _, err := tx.ExecContext(ctx, `INSERT INTO factor_scores
				(run_id, name, raw_score, weighted, available) VALUES (?,?,?,?,?)`,
				rep.RunID, f.Name, f.RawScore, f.Weighted, f.Available,
			); err != nil {
				return fmt.Errorf("insert factor %s: %w", f.Name, err)
			}
		}
	}
	return tx.Commit()
}

// RecordFailure logs a run that did not produce a report.
func (r *SQLiteRecorder) RecordFailure(ctx context.Context, runID, symbol string, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO runs
		(run_id, timestamp, symbol, status, error) VALUES (?,?,?,?,?)`,
		runID, time.Now().Unix(), symbol, StatusError, runErr.Error(),
	)
	return err
}

// RecentRuns returns the latest runs for symbol, newest first.
func (r *SQLiteRecorder) RecentRuns(ctx context.Context, symbol string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		run_id, timestamp, symbol, status, COALESCE(error, ''), COALESCE(bars, 0),
		last_close, next_close, COALESCE(horizon, 0), rsi, total_score,
		COALESCE(decision, ''), rmse, mape
		FROM runs WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		symbol, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.RunID, &ts, &s.Symbol, &s.Status, &s.Error, &s.Bars,
			&s.LastClose, &s.NextClose, &s.Horizon, &s.RSI, &s.TotalScore,
			&s.Decision, &s.RMSE, &s.MAPE); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.GeneratedAt = time.Unix(ts, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
