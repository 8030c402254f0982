package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockOracle/internal/model"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	yaml := "log:\n  level: error\n" +
		"data_source:\n  provider: mock\n  history_years: 1\n" +
		"model:\n  window_length: 20\n" +
		"database:\n  sqlite_path: " + filepath.Join(dir, "runs.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPredictPrintsTable(t *testing.T) {
	cfg, _ := writeConfig(t)
	out, err := run(t, "predict", "test.ns", "--config", cfg, "--horizon", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "TEST.NS last close")
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "PREDICTED CLOSE")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2+1+3) // summary, backtest, header, rows
}

func TestPredictWritesCSV(t *testing.T) {
	cfg, dir := writeConfig(t)
	csvPath := filepath.Join(dir, "forecast.csv")
	_, err := run(t, "predict", "TEST.NS", "--config", cfg, "--horizon", "2", "--csv", csvPath)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "Date,Predicted Close", lines[0])
	assert.Len(t, lines, 3)
}

func TestPredictRejectsHorizon(t *testing.T) {
	cfg, _ := writeConfig(t)
	_, err := run(t, "predict", "TEST.NS", "--config", cfg, "--horizon", "31")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestAnalyzeRequiresSymbol(t *testing.T) {
	_, err := run(t, "analyze")
	assert.Error(t, err)
}

func TestPrintIndicators(t *testing.T) {
	rows := []model.IndicatorRow{
		{
			Date:  time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
			Close: 101.5,
			MA:    map[int]null.Float{20: null.FloatFrom(100)},
			RSI:   null.FloatFrom(55.55),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, printIndicators(&buf, []int{20, 50}, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"DATE", "CLOSE", "MA20", "MA50", "RSI", "MACD", "SIGNAL", "HIST"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2024-03-08", "101.50", "100.00", "-", "55.55", "-", "-", "-"}, strings.Fields(lines[1]))
}
