package recorder

import (
	"context"

	"StockOracle/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(context.Context, *model.Report) error             { return nil }
func (n *NoopRecorder) RecordFailure(context.Context, string, string, error) error { return nil }
func (n *NoopRecorder) RecentRuns(context.Context, string, int) ([]RunSummary, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
