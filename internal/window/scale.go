package window

import (
	"math"

	"StockOracle/internal/model"
)

// ScaleParams is a fitted min-max transform. Once fitted it is reused verbatim
// for every later Scale and Inverse call.
type ScaleParams struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScaledSeries holds values scaled with Params.
type ScaledSeries struct {
	Values []float64   `json:"values"`
	Params ScaleParams `json:"params"`
}

// Fit records the minimum and maximum of values.
func Fit(values []float64) (ScaleParams, error) {
	if len(values) == 0 {
		return ScaleParams{}, model.DataErrorf("cannot fit scaler on empty input")
	}
	p := ScaleParams{Min: math.Inf(1), Max: math.Inf(-1)}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ScaleParams{}, model.DataErrorf("non-finite value at index %d", i)
		}
		p.Min = math.Min(p.Min, v)
		p.Max = math.Max(p.Max, v)
	}
	if p.Max == p.Min {
		return ScaleParams{}, model.DataErrorf("constant series (%g) cannot be scaled", p.Min)
	}
	return p, nil
}

// FitScale fits on values and scales the same values into [0, 1].
func FitScale(values []float64) (ScaledSeries, error) {
	p, err := Fit(values)
	if err != nil {
		return ScaledSeries{}, err
	}
	return ScaledSeries{Values: p.Scale(values), Params: p}, nil
}

// ScaleValue maps v into the fitted range. Values outside the fitted range
// land outside [0, 1].
func (p ScaleParams) ScaleValue(v float64) float64 {
	return (v - p.Min) / (p.Max - p.Min)
}

// Scale returns a new slice of scaled values.
func (p ScaleParams) Scale(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = p.ScaleValue(v)
	}
	return out
}

// Inverse maps a scaled value back to original units.
func (p ScaleParams) Inverse(v float64) float64 {
	return v*(p.Max-p.Min) + p.Min
}

// InverseScale maps scaled values back to original units.
func InverseScale(values []float64, p ScaleParams) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = p.Inverse(v)
	}
	return out
}

// ColumnScaler holds one ScaleParams per feature column.
type ColumnScaler struct {
	Params []ScaleParams `json:"params"`
}

// FitColumns fits every column on the first trainRows rows only.
func FitColumns(rows [][]float64, trainRows int) (*ColumnScaler, error) {
	if len(rows) == 0 {
		return nil, model.DataErrorf("cannot fit scaler on empty input")
	}
	if trainRows <= 0 || trainRows > len(rows) {
		return nil, model.DataErrorf("training rows %d out of range (1..%d)", trainRows, len(rows))
	}
	width := len(rows[0])
	if width == 0 {
		return nil, model.DataErrorf("rows have no features")
	}
	if err := checkWidth(rows, width); err != nil {
		return nil, err
	}

	s := &ColumnScaler{Params: make([]ScaleParams, width)}
	col := make([]float64, trainRows)
	for j := 0; j < width; j++ {
		for i := 0; i < trainRows; i++ {
			col[i] = rows[i][j]
		}
		p, err := Fit(col)
		if err != nil {
			return nil, model.DataErrorf("feature %d: %v", j, err)
		}
		s.Params[j] = p
	}
	return s, nil
}

// Width returns the number of features.
func (s *ColumnScaler) Width() int { return len(s.Params) }

// Transform scales every row into a new matrix.
func (s *ColumnScaler) Transform(rows [][]float64) ([][]float64, error) {
	if err := checkWidth(rows, len(s.Params)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = s.Params[j].ScaleValue(v)
		}
		out[i] = scaled
	}
	return out, nil
}

// Column returns column j of rows as a new slice.
func Column(rows [][]float64, j int) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[j]
	}
	return out
}

func checkWidth(rows [][]float64, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return model.DataErrorf("row %d has %d features, want %d", i, len(row), width)
		}
	}
	return nil
}
