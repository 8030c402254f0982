package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockOracle/internal/calculator"
	"StockOracle/internal/model"
)

// MaxHorizon is the longest forecast accepted from users.
const MaxHorizon = 30

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider     string        `yaml:"provider"` // yahoo, alphavantage or mock
		APIKey       string        `yaml:"api_key"`
		Symbols      []string      `yaml:"symbols"`
		HistoryYears int           `yaml:"history_years"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Model struct {
		Endpoint     string        `yaml:"endpoint"` // empty: persistence baseline
		Name         string        `yaml:"name"`
		Timeout      time.Duration `yaml:"timeout"`
		Features     []string      `yaml:"features"`
		Target       string        `yaml:"target"`
		WindowLength int           `yaml:"window_length"`
	} `yaml:"model"`
	Forecast struct {
		Horizon    int     `yaml:"horizon"`
		TrainRatio float64 `yaml:"train_ratio"`
	} `yaml:"forecast"`
	Indicators calculator.IndicatorConfig `yaml:"indicators"`
	Advisor    struct {
		Enabled bool          `yaml:"enabled"`
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"advisor"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"` // empty disables the cache
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"` // empty disables the HTTP API
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, model.ConfigErrorf("parse %s: %v", path, err)
		}
	}

	// .env never overrides variables already set in the process.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"LOG_LEVEL":            &c.Log.Level,
		"TELEGRAM_BOT_TOKEN":   &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":     &c.Telegram.ChatID,
		"DATA_PROVIDER":        &c.DataSource.Provider,
		"ALPHAVANTAGE_API_KEY": &c.DataSource.APIKey,
		"MODEL_ENDPOINT":       &c.Model.Endpoint,
		"ADVISOR_API_KEY":      &c.Advisor.APIKey,
		"ADVISOR_BASE_URL":     &c.Advisor.BaseURL,
		"REDIS_ADDR":           &c.Cache.RedisAddr,
		"REDIS_PASSWORD":       &c.Cache.Password,
		"SERVER_ADDR":          &c.Server.Addr,
		"SQLITE_PATH":          &c.Database.SQLitePath,
		"CRON_DAILY":           &c.Schedule.DailyCron,
		"HTTPS_PROXY":          &c.Proxy,
	}
	for env, dst := range str {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	// Gemini keys work against its OpenAI-compatible endpoint.
	if c.Advisor.APIKey == "" {
		c.Advisor.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.DataSource.Symbols = splitList(v)
	}
	if v := os.Getenv("FORECAST_HORIZON"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return model.ConfigErrorf("FORECAST_HORIZON: %v", err)
		}
		c.Forecast.Horizon = h
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if len(c.DataSource.Symbols) == 0 {
		c.DataSource.Symbols = []string{"RELIANCE.NS"}
	}
	if c.DataSource.HistoryYears == 0 {
		c.DataSource.HistoryYears = 15
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Model.Name == "" {
		c.Model.Name = "stock_lstm"
	}
	if c.Model.Timeout == 0 {
		c.Model.Timeout = 10 * time.Second
	}
	if len(c.Model.Features) == 0 {
		c.Model.Features = []string{string(model.FeatureClose)}
	}
	if c.Model.Target == "" {
		c.Model.Target = string(model.FeatureClose)
	}
	if c.Model.WindowLength == 0 {
		c.Model.WindowLength = 100
	}
	if c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = 7
	}
	if c.Forecast.TrainRatio == 0 {
		c.Forecast.TrainRatio = 0.70
	}
	def := calculator.DefaultIndicatorConfig()
	if len(c.Indicators.MAWindows) == 0 {
		c.Indicators.MAWindows = def.MAWindows
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = def.RSIPeriod
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = def.MACDFast
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = def.MACDSlow
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = def.MACDSignal
	}
	if c.Advisor.BaseURL == "" {
		c.Advisor.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.Advisor.Model == "" {
		c.Advisor.Model = "gemma-3n-e4b-it"
	}
	if c.Advisor.Timeout == 0 {
		c.Advisor.Timeout = 60 * time.Second
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 0 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_oracle.db"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 6 * time.Hour
	}
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return model.ConfigErrorf("telegram.chat_id is required when bot_token is set")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return model.ConfigErrorf("data_source.api_key is required for alphavantage")
		}
	default:
		return model.ConfigErrorf("data_source.provider %q is not one of yahoo, alphavantage, mock", c.DataSource.Provider)
	}
	if c.DataSource.HistoryYears <= 0 {
		return model.ConfigErrorf("data_source.history_years must be positive")
	}
	if c.Model.WindowLength <= 0 {
		return model.ConfigErrorf("model.window_length must be positive, got %d", c.Model.WindowLength)
	}
	if _, err := c.FeatureList(); err != nil {
		return err
	}
	if _, err := c.TargetIndex(); err != nil {
		return err
	}
	if c.Forecast.Horizon < 1 || c.Forecast.Horizon > MaxHorizon {
		return model.ConfigErrorf("forecast.horizon must be within 1..%d, got %d", MaxHorizon, c.Forecast.Horizon)
	}
	if c.Forecast.TrainRatio <= 0 || c.Forecast.TrainRatio >= 1 {
		return model.ConfigErrorf("forecast.train_ratio must be within (0, 1), got %g", c.Forecast.TrainRatio)
	}
	if err := c.Indicators.Validate(); err != nil {
		return err
	}
	if c.Advisor.Enabled && c.Advisor.APIKey == "" {
		return model.ConfigErrorf("advisor.api_key is required when the advisor is enabled")
	}
	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		return model.ConfigErrorf("cache.ttl must be positive")
	}
	return nil
}

// FeatureList returns the model input features in order.
func (c *Config) FeatureList() ([]model.Feature, error) {
	out := make([]model.Feature, len(c.Model.Features))
	for i, name := range c.Model.Features {
		f := model.Feature(name)
		if _, ok := (model.Bar{}).Value(f); !ok {
			return nil, model.ConfigErrorf("model.features: unknown feature %q", name)
		}
		if slices.Contains(out[:i], f) {
			return nil, model.ConfigErrorf("model.features: duplicate feature %q", name)
		}
		out[i] = f
	}
	if len(out) == 0 {
		return nil, model.ConfigErrorf("model.features must not be empty")
	}
	return out, nil
}

// TargetIndex returns the position of the target feature in FeatureList.
func (c *Config) TargetIndex() (int, error) {
	idx := slices.Index(c.Model.Features, c.Model.Target)
	if idx < 0 {
		return 0, model.ConfigErrorf("model.target %q is not among model.features", c.Model.Target)
	}
	return idx, nil
}

// HistoryStart returns the first date to download relative to now.
func (c *Config) HistoryStart(now time.Time) time.Time {
	return now.AddDate(-c.DataSource.HistoryYears, 0, 0)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
