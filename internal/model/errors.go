package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the analysis core. Wrap them with the constructors
// below and test with errors.Is.
var (
	ErrData   = errors.New("data error")
	ErrModel  = errors.New("model error")
	ErrConfig = errors.New("config error")
)

// DataErrorf reports malformed, empty or insufficient input.
func DataErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrData, fmt.Sprintf(format, args...))
}

// ModelErrorf reports a failing model or a non-finite prediction.
func ModelErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrModel, fmt.Sprintf(format, args...))
}

// ConfigErrorf reports invalid parameters.
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
