package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPriceSeries_SortsByDate(t *testing.T) {
	bars := []Bar{
		{Time: day(3), Close: 3},
		{Time: day(1), Close: 1},
		{Time: day(2), Close: 2},
	}
	s, err := NewPriceSeries("AAPL", bars)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Closes())
	assert.Equal(t, day(3), s.Last().Time)
	// input untouched
	assert.Equal(t, 3.0, bars[0].Close)
}

func TestNewPriceSeries_Rejects(t *testing.T) {
	tests := []struct {
		name string
		bars []Bar
	}{
		{"empty", nil},
		{"duplicate date", []Bar{{Time: day(1), Close: 1}, {Time: day(1), Close: 2}}},
		{"nan close", []Bar{{Time: day(1), Close: math.NaN()}}},
		{"inf close", []Bar{{Time: day(1), Close: math.Inf(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceSeries("X", tt.bars)
			assert.ErrorIs(t, err, ErrData)
		})
	}
}

func TestPriceSeries_Matrix(t *testing.T) {
	s, err := NewPriceSeries("X", []Bar{
		{Time: day(1), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Time: day(2), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 200},
	})
	require.NoError(t, err)

	m, err := s.Matrix([]Feature{FeatureClose, FeatureVolume})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1.5, 100}, {2, 200}}, m)

	_, err = s.Matrix([]Feature{"Dividend"})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestIndicatorFrame_TailAndLatest(t *testing.T) {
	f := &IndicatorFrame{
		Bars: []Bar{{Time: day(1), Close: 1}, {Time: day(2), Close: 2}, {Time: day(3), Close: 3}},
	}
	assert.Equal(t, 3.0, f.Latest().Close)
	assert.False(t, f.Latest().RSI.Valid)
	assert.Len(t, f.Tail(2), 2)
	assert.Len(t, f.Tail(10), 3)
	assert.Equal(t, 2.0, f.Tail(2)[0].Close)
}
