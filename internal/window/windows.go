package window

import "StockOracle/internal/model"

// Window is length consecutive scaled values and the value right after them.
type Window struct {
	Inputs []float64 `json:"inputs"`
	Target float64   `json:"target"`
}

// FeatureWindow is the multi-feature form of Window: length rows of every
// feature, and the next value of the target feature.
type FeatureWindow struct {
	Inputs [][]float64 `json:"inputs"`
	Target float64     `json:"target"`
}

// MakeWindows cuts n scaled values into n-length windows, one for every t in
// [length, n). Inputs are capped views into scaled.
func MakeWindows(scaled []float64, length int) ([]Window, error) {
	if err := checkLength(len(scaled), length); err != nil {
		return nil, err
	}
	out := make([]Window, 0, len(scaled)-length)
	for t := length; t < len(scaled); t++ {
		out = append(out, Window{
			Inputs: scaled[t-length : t : t],
			Target: scaled[t],
		})
	}
	return out, nil
}

// MakeFeatureWindows is MakeWindows over rows of features, taking the target
// from column targetIndex.
func MakeFeatureWindows(rows [][]float64, length, targetIndex int) ([]FeatureWindow, error) {
	if err := checkLength(len(rows), length); err != nil {
		return nil, err
	}
	width := len(rows[0])
	if targetIndex < 0 || targetIndex >= width {
		return nil, model.ConfigErrorf("target index %d out of range for %d features", targetIndex, width)
	}
	if err := checkWidth(rows, width); err != nil {
		return nil, err
	}
	out := make([]FeatureWindow, 0, len(rows)-length)
	for t := length; t < len(rows); t++ {
		out = append(out, FeatureWindow{
			Inputs: rows[t-length : t : t],
			Target: rows[t][targetIndex],
		})
	}
	return out, nil
}

func checkLength(n, length int) error {
	if length <= 0 {
		return model.ConfigErrorf("window length must be positive, got %d", length)
	}
	if n <= length {
		return model.DataErrorf("need more than %d values to build windows, got %d", length, n)
	}
	return nil
}
