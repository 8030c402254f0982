package recorder

import (
	"context"
	"time"

	"github.com/guregu/null/v6"

	"StockOracle/internal/model"
)

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RunSummary is one row of the run audit log.
type RunSummary struct {
	RunID       string     `json:"run_id"`
	Symbol      string     `json:"symbol"`
	GeneratedAt time.Time  `json:"generated_at"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Bars        int        `json:"bars"`
	LastClose   null.Float `json:"last_close"`
	NextClose   null.Float `json:"next_close"`
	Horizon     int        `json:"horizon"`
	RSI         null.Float `json:"rsi"`
	TotalScore  null.Float `json:"total_score"`
	Decision    string     `json:"decision,omitempty"`
	RMSE        null.Float `json:"rmse"`
	MAPE        null.Float `json:"mape"`
}

// Recorder keeps an audit log of analysis runs. Price series and scaled
// data are never stored.
type Recorder interface {
	RecordRun(ctx context.Context, report *model.Report) error
	RecordFailure(ctx context.Context, runID, symbol string, runErr error) error
	RecentRuns(ctx context.Context, symbol string, limit int) ([]RunSummary, error)
	Close() error
}
