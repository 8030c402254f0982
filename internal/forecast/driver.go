package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockOracle/internal/model"
	"StockOracle/internal/window"
)

// Driver rolls a sequence model forward over its own predictions.
type Driver struct {
	Model        Model
	Scale        window.ScaleParams // scaler of the target feature
	TargetIndex  int
	WindowLength int
}

// Rollout predicts horizon closes after lastDate, starting from the scaled
// initialWindow (WindowLength rows). Each prediction becomes the target of a
// new row that carries the other features of the previous last row; the
// oldest row is dropped. Point i is dated lastDate + i+1 calendar days.
func (d *Driver) Rollout(ctx context.Context, initialWindow [][]float64, lastDate time.Time, horizon int) (model.ForecastPath, error) {
	if horizon <= 0 {
		return model.ForecastPath{}, nil
	}
	width, err := d.checkWindow(initialWindow)
	if err != nil {
		return nil, err
	}

	buf := newWindowBuffer(initialWindow, width)
	scaled := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rollout cancelled at step %d: %w", i, err)
		}
		y, err := d.Model.Predict(ctx, buf.ordered())
		if err != nil {
			return nil, fmt.Errorf("%w: rollout step %d: %w", model.ErrModel, i, err)
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, model.ModelErrorf("rollout step %d: non-finite prediction %v", i, y)
		}
		scaled[i] = y
		buf.slide(d.TargetIndex, y)
	}

	path := make(model.ForecastPath, horizon)
	for i, v := range window.InverseScale(scaled, d.Scale) {
		path[i] = model.ForecastPoint{
			Date:           lastDate.AddDate(0, 0, i+1),
			PredictedClose: v,
		}
	}
	return path, nil
}

// Backtest predicts every window one step ahead and compares the
// inverse-scaled predictions with the actual targets. dates[i] is the date of
// the target of windows[i].
func (d *Driver) Backtest(ctx context.Context, windows []window.FeatureWindow, dates []time.Time) (*model.BacktestResult, error) {
	if len(windows) == 0 {
		return nil, model.DataErrorf("no test windows")
	}
	if len(dates) != len(windows) {
		return nil, model.DataErrorf("%d dates for %d test windows", len(dates), len(windows))
	}
	for i, w := range windows {
		if _, err := d.checkWindow(w.Inputs); err != nil {
			return nil, fmt.Errorf("test window %d: %w", i, err)
		}
	}

	preds, err := d.predictAll(ctx, windows)
	if err != nil {
		return nil, err
	}

	res := &model.BacktestResult{Points: make([]model.BacktestPoint, len(windows))}
	for i, w := range windows {
		res.Points[i] = model.BacktestPoint{
			Date:      dates[i],
			Actual:    d.Scale.Inverse(w.Target),
			Predicted: d.Scale.Inverse(preds[i]),
		}
	}
	res.RMSE, res.MAE, res.MAPE = errorMetrics(res.Points)
	return res, nil
}

func (d *Driver) predictAll(ctx context.Context, windows []window.FeatureWindow) ([]float64, error) {
	if bm, ok := d.Model.(BatchModel); ok {
		inputs := make([][][]float64, len(windows))
		for i, w := range windows {
			inputs[i] = w.Inputs
		}
		preds, err := bm.PredictBatch(ctx, inputs)
		if err != nil {
			return nil, fmt.Errorf("%w: batch predict: %w", model.ErrModel, err)
		}
		if len(preds) != len(windows) {
			return nil, model.ModelErrorf("batch predict returned %d values for %d windows", len(preds), len(windows))
		}
		for i, y := range preds {
			if math.IsNaN(y) || math.IsInf(y, 0) {
				return nil, model.ModelErrorf("test window %d: non-finite prediction %v", i, y)
			}
		}
		return preds, nil
	}

	preds := make([]float64, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest cancelled at window %d: %w", i, err)
		}
		y, err := d.Model.Predict(ctx, w.Inputs)
		if err != nil {
			return nil, fmt.Errorf("%w: test window %d: %w", model.ErrModel, i, err)
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, model.ModelErrorf("test window %d: non-finite prediction %v", i, y)
		}
		preds[i] = y
	}
	return preds, nil
}

// checkWindow validates shape and returns the feature count.
func (d *Driver) checkWindow(w [][]float64) (int, error) {
	if d.Model == nil {
		return 0, model.ConfigErrorf("forecast driver has no model")
	}
	if d.WindowLength <= 0 {
		return 0, model.ConfigErrorf("window length must be positive, got %d", d.WindowLength)
	}
	if len(w) != d.WindowLength {
		return 0, model.DataErrorf("window has %d rows, want %d", len(w), d.WindowLength)
	}
	width := len(w[0])
	if d.TargetIndex < 0 || d.TargetIndex >= width {
		return 0, model.DataErrorf("target index %d out of range for %d features", d.TargetIndex, width)
	}
	for i, row := range w {
		if len(row) != width {
			return 0, model.DataErrorf("window row %d has %d features, want %d", i, len(row), width)
		}
	}
	return width, nil
}

// errorMetrics returns RMSE, MAE and MAPE (percent). Points with a zero
// actual value are left out of MAPE.
func errorMetrics(points []model.BacktestPoint) (rmse, mae, mape float64) {
	var sq, abs, pct float64
	var pctN int
	for _, p := range points {
		e := p.Predicted - p.Actual
		sq += e * e
		abs += math.Abs(e)
		if p.Actual != 0 {
			pct += math.Abs(e / p.Actual)
			pctN++
		}
	}
	n := float64(len(points))
	rmse = math.Sqrt(sq / n)
	mae = abs / n
	if pctN > 0 {
		mape = 100 * pct / float64(pctN)
	}
	return rmse, mae, mape
}
