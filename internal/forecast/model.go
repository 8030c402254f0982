package forecast

import (
	"context"
	"time"

	"StockOracle/internal/model"
)

// Model is a pre-trained sequence regressor. It maps one window of
// WindowLength rows by F features (scaled) to the next scaled value of the
// target feature. Implementations must not retain the window slices.
type Model interface {
	Predict(ctx context.Context, window [][]float64) (float64, error)
}

// BatchModel is implemented by models that can score many windows per call.
type BatchModel interface {
	Model
	PredictBatch(ctx context.Context, windows [][][]float64) ([]float64, error)
}

// PersistenceModel predicts that the target keeps its last observed value.
type PersistenceModel struct {
	TargetIndex int
}

func (m PersistenceModel) Predict(_ context.Context, window [][]float64) (float64, error) {
	if len(window) == 0 {
		return 0, model.DataErrorf("empty window")
	}
	last := window[len(window)-1]
	if m.TargetIndex < 0 || m.TargetIndex >= len(last) {
		return 0, model.ConfigErrorf("target index %d out of range", m.TargetIndex)
	}
	return last[m.TargetIndex], nil
}

// Observer receives one callback per model call.
type Observer interface {
	ObserveModelCall(elapsed time.Duration, err error)
}

type instrumented struct {
	Model
	obs Observer
}

type instrumentedBatch struct {
	instrumented
	batch BatchModel
}

// Instrument wraps m so every call is reported to obs. A BatchModel stays a BatchModel.
func Instrument(m Model, obs Observer) Model {
	if obs == nil {
		return m
	}
	base := instrumented{Model: m, obs: obs}
	if b, ok := m.(BatchModel); ok {
		return instrumentedBatch{instrumented: base, batch: b}
	}
	return base
}

func (m instrumented) Predict(ctx context.Context, window [][]float64) (float64, error) {
	start := time.Now()
	y, err := m.Model.Predict(ctx, window)
	m.obs.ObserveModelCall(time.Since(start), err)
	return y, err
}

func (m instrumentedBatch) PredictBatch(ctx context.Context, windows [][][]float64) ([]float64, error) {
	start := time.Now()
	ys, err := m.batch.PredictBatch(ctx, windows)
	m.obs.ObserveModelCall(time.Since(start), err)
	return ys, err
}
