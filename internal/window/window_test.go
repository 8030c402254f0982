package window

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockOracle/internal/model"
)

func tenToTwenty() []float64 {
	out := make([]float64, 0, 11)
	for v := 10.0; v <= 20; v++ {
		out = append(out, v)
	}
	return out
}

func TestFitScale_Bounds(t *testing.T) {
	s, err := FitScale(tenToTwenty())
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.Values[0])
	assert.Equal(t, 1.0, s.Values[10])
	for _, v := range s.Values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, ScaleParams{Min: 10, Max: 20}, s.Params)
}

func TestScale_RoundTrip(t *testing.T) {
	values := []float64{101.3, 99.87, 105.02, 250.5, 0.01, 42, 42.000001}
	s, err := FitScale(values)
	require.NoError(t, err)

	back := InverseScale(s.Values, s.Params)
	for i := range values {
		assert.InDelta(t, values[i], back[i], 1e-9)
	}
}

func TestFit_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"empty", nil},
		{"constant", []float64{5, 5, 5, 5}},
		{"nan", []float64{1, math.NaN(), 3}},
		{"inf", []float64{1, math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.values)
			assert.ErrorIs(t, err, model.ErrData)
		})
	}
}

func TestMakeWindows_TenToTwenty(t *testing.T) {
	s, err := FitScale(tenToTwenty())
	require.NoError(t, err)

	windows, err := MakeWindows(s.Values, 5)
	require.NoError(t, err)
	require.Len(t, windows, 6)

	want := []float64{0, 0.1, 0.2, 0.3, 0.4}
	for i, v := range want {
		assert.InDelta(t, v, windows[0].Inputs[i], 1e-12)
	}
	assert.InDelta(t, 0.5, windows[0].Target, 1e-12)
	assert.InDelta(t, 1.0, windows[5].Target, 1e-12)
}

func TestMakeWindows_Count(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	for _, l := range []int{1, 10, 60, 99} {
		windows, err := MakeWindows(values, l)
		require.NoError(t, err)
		assert.Len(t, windows, 100-l)
		for _, w := range windows {
			assert.Len(t, w.Inputs, l)
		}
	}
}

func TestMakeWindows_InputsAreCapped(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	windows, err := MakeWindows(values, 2)
	require.NoError(t, err)

	_ = append(windows[0].Inputs, 99)
	assert.Equal(t, 3.0, values[2])
}

func TestMakeWindows_Errors(t *testing.T) {
	_, err := MakeWindows([]float64{1, 2, 3}, 3)
	assert.ErrorIs(t, err, model.ErrData)
	_, err = MakeWindows([]float64{1, 2, 3}, 5)
	assert.ErrorIs(t, err, model.ErrData)
	_, err = MakeWindows([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestFitColumns_UsesTrainingRowsOnly(t *testing.T) {
	rows := [][]float64{
		{10, 1000},
		{20, 2000},
		{30, 3000},
		{40, 9000},
	}
	s, err := FitColumns(rows, 2)
	require.NoError(t, err)
	assert.Equal(t, ScaleParams{Min: 10, Max: 20}, s.Params[0])
	assert.Equal(t, ScaleParams{Min: 1000, Max: 2000}, s.Params[1])

	scaled, err := s.Transform(rows)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, scaled[3][0], 1e-12)
	assert.InDelta(t, 8.0, scaled[3][1], 1e-12)
}

func TestFitColumns_Errors(t *testing.T) {
	_, err := FitColumns(nil, 1)
	assert.ErrorIs(t, err, model.ErrData)
	_, err = FitColumns([][]float64{{1}, {2}}, 3)
	assert.ErrorIs(t, err, model.ErrData)
	_, err = FitColumns([][]float64{{1, 2}, {2}}, 2)
	assert.ErrorIs(t, err, model.ErrData)
	_, err = FitColumns([][]float64{{1, 7}, {2, 7}}, 2)
	assert.ErrorIs(t, err, model.ErrData)
}

func TestMakeFeatureWindows(t *testing.T) {
	rows := [][]float64{{0, 9}, {1, 8}, {2, 7}, {3, 6}, {4, 5}}
	windows, err := MakeFeatureWindows(rows, 3, 1)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, [][]float64{{0, 9}, {1, 8}, {2, 7}}, windows[0].Inputs)
	assert.Equal(t, 6.0, windows[0].Target)
	assert.Equal(t, 5.0, windows[1].Target)

	_, err = MakeFeatureWindows(rows, 3, 2)
	assert.ErrorIs(t, err, model.ErrConfig)
	_, err = MakeFeatureWindows(rows, 5, 0)
	assert.ErrorIs(t, err, model.ErrData)
}
