package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockOracle/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 100, cfg.Model.WindowLength)
	assert.Equal(t, 7, cfg.Forecast.Horizon)
	assert.Equal(t, 0.70, cfg.Forecast.TrainRatio)
	assert.Equal(t, []int{20, 50, 100, 200}, cfg.Indicators.MAWindows)
	assert.Equal(t, 14, cfg.Indicators.RSIPeriod)
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Schedule.DailyCron)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
data_source:
  provider: alphavantage
  api_key: from-file
  symbols: [AAPL, MSFT]
model:
  features: [Close, Volume]
  target: Close
  window_length: 60
  timeout: 3s
forecast:
  horizon: 14
indicators:
  ma_windows: [10, 30]
`)
	t.Setenv("ALPHAVANTAGE_API_KEY", "from-env")
	t.Setenv("WATCHLIST", "TSLA, NVDA,")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, []string{"TSLA", "NVDA"}, cfg.DataSource.Symbols)
	assert.Equal(t, 60, cfg.Model.WindowLength)
	assert.Equal(t, 3*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 14, cfg.Forecast.Horizon)
	assert.Equal(t, []int{10, 30}, cfg.Indicators.MAWindows)
	assert.Equal(t, 26, cfg.Indicators.MACDSlow)

	features, err := cfg.FeatureList()
	require.NoError(t, err)
	assert.Equal(t, []model.Feature{model.FeatureClose, model.FeatureVolume}, features)
	idx, err := cfg.TargetIndex()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "model: [unclosed"))
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"horizon too long", func(c *Config) { c.Forecast.Horizon = 31 }},
		{"negative horizon", func(c *Config) { c.Forecast.Horizon = -1 }},
		{"train ratio", func(c *Config) { c.Forecast.TrainRatio = 1 }},
		{"window", func(c *Config) { c.Model.WindowLength = -5 }},
		{"unknown feature", func(c *Config) { c.Model.Features = []string{"Close", "Dividends"} }},
		{"duplicate feature", func(c *Config) { c.Model.Features = []string{"Close", "Close"} }},
		{"target missing", func(c *Config) { c.Model.Target = "Open" }},
		{"provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"alphavantage key", func(c *Config) { c.DataSource.Provider = "alphavantage"; c.DataSource.APIKey = "" }},
		{"macd spans", func(c *Config) { c.Indicators.MACDFast = 30 }},
		{"telegram chat", func(c *Config) { c.Telegram.BotToken = "t"; c.Telegram.ChatID = "" }},
		{"advisor key", func(c *Config) { c.Advisor.Enabled = true; c.Advisor.APIKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), model.ErrConfig)
		})
	}
}
