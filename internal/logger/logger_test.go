package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockOracle/internal/model"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOutput(&buf, "debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("symbol", "AAPL").Info("analysis finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Equal(t, "analysis finished", entry["msg"])
}

func TestNewWithOutput_Defaults(t *testing.T) {
	l, err := NewWithOutput(&bytes.Buffer{}, "", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNewWithOutput_Invalid(t *testing.T) {
	_, err := NewWithOutput(&bytes.Buffer{}, "loud", "text")
	assert.ErrorIs(t, err, model.ErrConfig)
	_, err = NewWithOutput(&bytes.Buffer{}, "info", "xml")
	assert.ErrorIs(t, err, model.ErrConfig)
}
