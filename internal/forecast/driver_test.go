package forecast

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockOracle/internal/model"
	"StockOracle/internal/window"
)

// meanModel predicts the mean of the target column plus a drift.
type meanModel struct {
	target int
	drift  float64
	calls  atomic.Int32
}

func (m *meanModel) Predict(_ context.Context, w [][]float64) (float64, error) {
	m.calls.Add(1)
	sum := 0.0
	for _, row := range w {
		sum += row[m.target]
	}
	return sum/float64(len(w)) + m.drift, nil
}

type funcModel func(ctx context.Context, w [][]float64) (float64, error)

func (f funcModel) Predict(ctx context.Context, w [][]float64) (float64, error) { return f(ctx, w) }

func column(values ...float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, v := range values {
		out[i] = []float64{v}
	}
	return out
}

var friday = time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)

func TestRollout_Deterministic(t *testing.T) {
	m := &meanModel{drift: 0.01}
	d := &Driver{Model: m, Scale: window.ScaleParams{Min: 100, Max: 200}, WindowLength: 4}
	initial := column(0.1, 0.2, 0.3, 0.4)

	first, err := d.Rollout(context.Background(), initial, friday, 10)
	require.NoError(t, err)
	second, err := d.Rollout(context.Background(), initial, friday, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 10)
	assert.Equal(t, int32(20), m.calls.Load())
	// initial window untouched
	assert.Equal(t, column(0.1, 0.2, 0.3, 0.4), initial)
}

func TestRollout_FeedsPredictionsBack(t *testing.T) {
	// Window of 2: [a, b] -> a+b.
	sum := funcModel(func(_ context.Context, w [][]float64) (float64, error) {
		return w[0][0] + w[1][0], nil
	})
	d := &Driver{Model: sum, Scale: window.ScaleParams{Min: 0, Max: 1}, WindowLength: 2}

	path, err := d.Rollout(context.Background(), column(1, 1), friday, 5)
	require.NoError(t, err)

	got := make([]float64, len(path))
	for i, p := range path {
		got[i] = p.PredictedClose
	}
	assert.Equal(t, []float64{2, 3, 5, 8, 13}, got)
}

func TestRollout_CarriesOtherFeatures(t *testing.T) {
	var seen [][]float64
	m := funcModel(func(_ context.Context, w [][]float64) (float64, error) {
		last := w[len(w)-1]
		seen = append(seen, []float64{last[0], last[1]})
		return last[0] + 0.1, nil
	})
	d := &Driver{Model: m, Scale: window.ScaleParams{Min: 0, Max: 1}, WindowLength: 2}

	initial := [][]float64{{0.1, 0.7}, {0.2, 0.9}}
	_, err := d.Rollout(context.Background(), initial, friday, 3)
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.InDelta(t, 0.3, seen[1][0], 1e-12)
	assert.Equal(t, 0.9, seen[1][1])
	assert.InDelta(t, 0.4, seen[2][0], 1e-12)
	assert.Equal(t, 0.9, seen[2][1])
}

func TestRollout_InverseScales(t *testing.T) {
	d := &Driver{Model: PersistenceModel{}, Scale: window.ScaleParams{Min: 10, Max: 20}, WindowLength: 3}
	path, err := d.Rollout(context.Background(), column(0, 0.5, 1), friday, 2)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, path[0].PredictedClose, 1e-12)
	assert.InDelta(t, 20.0, path[1].PredictedClose, 1e-12)
}

func TestRollout_CalendarDaysAcrossWeekend(t *testing.T) {
	d := &Driver{Model: PersistenceModel{}, Scale: window.ScaleParams{Min: 0, Max: 1}, WindowLength: 1}
	path, err := d.Rollout(context.Background(), column(0.5), friday, 3)
	require.NoError(t, err)

	assert.Equal(t, time.Saturday, path[0].Date.Weekday())
	assert.Equal(t, time.Sunday, path[1].Date.Weekday())
	assert.Equal(t, time.Monday, path[2].Date.Weekday())
	assert.Equal(t, friday.AddDate(0, 0, 3), path[2].Date)
}

func TestRollout_ZeroHorizonSkipsModel(t *testing.T) {
	m := &meanModel{}
	d := &Driver{Model: m, WindowLength: 3}
	for _, h := range []int{0, -2} {
		path, err := d.Rollout(context.Background(), column(0.1, 0.2, 0.3), friday, h)
		require.NoError(t, err)
		assert.Empty(t, path)
	}
	assert.Equal(t, int32(0), m.calls.Load())
}

func TestRollout_NaNIsModelError(t *testing.T) {
	m := funcModel(func(context.Context, [][]float64) (float64, error) { return math.NaN(), nil })
	d := &Driver{Model: m, Scale: window.ScaleParams{Min: 0, Max: 1}, WindowLength: 2}
	_, err := d.Rollout(context.Background(), column(0.1, 0.2), friday, 3)
	assert.ErrorIs(t, err, model.ErrModel)
}

func TestRollout_FailingModelIsModelError(t *testing.T) {
	boom := errors.New("backend unavailable")
	m := funcModel(func(context.Context, [][]float64) (float64, error) { return 0, boom })
	d := &Driver{Model: m, Scale: window.ScaleParams{Min: 0, Max: 1}, WindowLength: 2}
	_, err := d.Rollout(context.Background(), column(0.1, 0.2), friday, 3)
	assert.ErrorIs(t, err, model.ErrModel)
	assert.ErrorIs(t, err, boom)
}

func TestRollout_BadWindowIsDataError(t *testing.T) {
	d := &Driver{Model: PersistenceModel{}, WindowLength: 3}
	_, err := d.Rollout(context.Background(), column(0.1, 0.2), friday, 1)
	assert.ErrorIs(t, err, model.ErrData)

	_, err = d.Rollout(context.Background(), [][]float64{{1, 2}, {1}, {1, 2}}, friday, 1)
	assert.ErrorIs(t, err, model.ErrData)
}

func TestRollout_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	m := funcModel(func(context.Context, [][]float64) (float64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 0.5, nil
	})
	d := &Driver{Model: m, Scale: window.ScaleParams{Min: 0, Max: 1}, WindowLength: 1}

	_, err := d.Rollout(ctx, column(0.5), friday, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

type batchCounter struct {
	PersistenceModel
	batches int
}

func (b *batchCounter) PredictBatch(ctx context.Context, ws [][][]float64) ([]float64, error) {
	b.batches++
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i], _ = b.Predict(ctx, w)
	}
	return out, nil
}

func TestBacktest_Metrics(t *testing.T) {
	rows := column(0, 0.5, 1, 0.5, 0)
	windows, err := window.MakeFeatureWindows(rows, 2, 0)
	require.NoError(t, err)
	dates := []time.Time{friday, friday.AddDate(0, 0, 1), friday.AddDate(0, 0, 2)}

	bm := &batchCounter{}
	d := &Driver{Model: bm, Scale: window.ScaleParams{Min: 100, Max: 200}, WindowLength: 2}
	res, err := d.Backtest(context.Background(), windows, dates)
	require.NoError(t, err)
	assert.Equal(t, 1, bm.batches)

	// persistence: predicted 150,200,150 vs actual 200,150,100
	require.Len(t, res.Points, 3)
	assert.InDelta(t, 150.0, res.Points[0].Predicted, 1e-9)
	assert.InDelta(t, 200.0, res.Points[0].Actual, 1e-9)
	assert.InDelta(t, 50.0, res.MAE, 1e-9)
	assert.InDelta(t, 50.0, res.RMSE, 1e-9)
	assert.InDelta(t, 100*(0.25+1.0/3+0.5)/3, res.MAPE, 1e-9)
}

func TestBacktest_Errors(t *testing.T) {
	d := &Driver{Model: PersistenceModel{}, WindowLength: 2}
	_, err := d.Backtest(context.Background(), nil, nil)
	assert.ErrorIs(t, err, model.ErrData)

	windows, err := window.MakeFeatureWindows(column(1, 2, 3), 2, 0)
	require.NoError(t, err)
	_, err = d.Backtest(context.Background(), windows, nil)
	assert.ErrorIs(t, err, model.ErrData)
}

type recordingObserver struct {
	calls int
	errs  int
}

func (o *recordingObserver) ObserveModelCall(_ time.Duration, err error) {
	o.calls++
	if err != nil {
		o.errs++
	}
}

func TestInstrument(t *testing.T) {
	obs := &recordingObserver{}
	m := Instrument(&batchCounter{}, obs)
	_, ok := m.(BatchModel)
	require.True(t, ok)

	d := &Driver{Model: m, Scale: window.ScaleParams{Min: 0, Max: 1}, WindowLength: 1}
	_, err := d.Rollout(context.Background(), column(0.5), friday, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, obs.calls)
	assert.Equal(t, 0, obs.errs)
}
