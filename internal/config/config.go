package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockPulse/internal/logger"
)

// Universe is a named list of symbols analyzed together.
type Universe struct {
	Category string   `yaml:"category"`
	Symbols  []string `yaml:"symbols"`
}

// Band is an inclusive closing-price range for the screener.
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config holds all application configuration.
type Config struct {
	Log      logger.Config `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider      string `yaml:"provider"` // yahoo or nse
		YahooBaseURL  string `yaml:"yahoo_base_url"`
		NSEBaseURL    string `yaml:"nse_base_url"`
		NSERateLimit  int    `yaml:"nse_rate_limit"`
		TimeoutSecond int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Seasonal struct {
		Years       int        `yaml:"years"`
		Concurrency int        `yaml:"concurrency"`
		TopN        int        `yaml:"top_n"`
		Universes   []Universe `yaml:"universes"`
	} `yaml:"seasonal"`
	Screener struct {
		ArchiveURL  string `yaml:"archive_url"`
		CacheDir    string `yaml:"cache_dir"`
		Band        Band   `yaml:"band"`
		TopN        int    `yaml:"top_n"`
		PredictBand Band   `yaml:"predict_band"`
		PredictTopN int    `yaml:"predict_top_n"`
	} `yaml:"screener"`
	Predictor struct {
		EndpointURL string `yaml:"endpoint_url"`
		APIKey      string `yaml:"api_key"`
	} `yaml:"predictor"`
	Schedule struct {
		SeasonalCron string `yaml:"seasonal_cron"`
		ScreenCron   string `yaml:"screen_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	OutputDir string `yaml:"output_dir"`
	Proxy     string `yaml:"proxy"`
}

// PSUStocks are the default public sector undertakings universe.
var PSUStocks = []string{
	"SBIN.NS", "NTPC.NS", "ONGC.NS", "HAL.NS", "BEL.NS",
	"COALINDIA.NS", "POWERGRID.NS", "BPCL.NS", "IOC.NS", "PFC.NS",
}

// GrowthStocks are the default consistently growing stocks universe.
var GrowthStocks = []string{
	"BAJFINANCE.NS", "TITAN.NS", "TRENT.NS", "VBL.NS",
	"PIIND.NS", "ASTRAL.NS", "POLYCAB.NS", "DIXON.NS", "KPITTECH.NS", "LTIM.NS",
}

// DefaultUniverses returns fresh copies of the built-in universes.
func DefaultUniverses() []Universe {
	return []Universe{
		{Category: "PSU", Symbols: append([]string(nil), PSUStocks...)},
		{Category: "Growth", Symbols: append([]string(nil), GrowthStocks...)},
	}
}

// Load reads config from a YAML file, then a .env file, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("PREDICTOR_ENDPOINT_URL"); v != "" {
		c.Predictor.EndpointURL = v
	}
	if v := os.Getenv("PREDICTOR_API_KEY"); v != "" {
		c.Predictor.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SEASONAL_YEARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Seasonal.Years = n
		}
	}
	if v := os.Getenv("CRON_SEASONAL"); v != "" {
		c.Schedule.SeasonalCron = v
	}
	if v := os.Getenv("CRON_SCREEN"); v != "" {
		c.Schedule.ScreenCron = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	if c.DataSource.YahooBaseURL == "" {
		c.DataSource.YahooBaseURL = "https://query1.finance.yahoo.com"
	}
	if c.DataSource.NSEBaseURL == "" {
		c.DataSource.NSEBaseURL = "https://www.nseindia.com"
	}
	if c.DataSource.NSERateLimit == 0 {
		c.DataSource.NSERateLimit = 2
	}
	if c.DataSource.TimeoutSecond == 0 {
		c.DataSource.TimeoutSecond = 30
	}
	if c.Seasonal.Years == 0 {
		c.Seasonal.Years = 5
	}
	if c.Seasonal.Concurrency == 0 {
		c.Seasonal.Concurrency = 4
	}
	if c.Seasonal.TopN == 0 {
		c.Seasonal.TopN = 5
	}
	if len(c.Seasonal.Universes) == 0 {
		c.Seasonal.Universes = DefaultUniverses()
	}
	if c.Screener.ArchiveURL == "" {
		c.Screener.ArchiveURL = "https://archives.nseindia.com/products/content"
	}
	if c.Screener.CacheDir == "" {
		c.Screener.CacheDir = "data"
	}
	if c.Screener.Band == (Band{}) {
		c.Screener.Band = Band{Min: 190, Max: 210}
	}
	if c.Screener.TopN == 0 {
		c.Screener.TopN = 5
	}
	if c.Screener.PredictBand == (Band{}) {
		c.Screener.PredictBand = Band{Min: 950, Max: 1050}
	}
	if c.Screener.PredictTopN == 0 {
		c.Screener.PredictTopN = 5
	}
	if c.Schedule.SeasonalCron == "" {
		c.Schedule.SeasonalCron = "0 0 18 1 * *"
	}
	if c.Schedule.ScreenCron == "" {
		c.Schedule.ScreenCron = "0 30 18 * * 1-5"
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
}

// Validate checks that required fields are consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "nse":
	default:
		return fmt.Errorf("data_source.provider must be yahoo or nse, got %q", c.DataSource.Provider)
	}
	if c.Seasonal.Years <= 0 {
		return fmt.Errorf("seasonal.years must be positive")
	}
	if c.Seasonal.Concurrency <= 0 {
		return fmt.Errorf("seasonal.concurrency must be positive")
	}
	for i, u := range c.Seasonal.Universes {
		if u.Category == "" {
			return fmt.Errorf("seasonal.universes[%d].category is required", i)
		}
		if len(u.Symbols) == 0 {
			return fmt.Errorf("seasonal.universes[%d] (%s) has no symbols", i, u.Category)
		}
	}
	for name, b := range map[string]Band{"screener.band": c.Screener.Band, "screener.predict_band": c.Screener.PredictBand} {
		if b.Min < 0 || b.Max < b.Min {
			return fmt.Errorf("%s must satisfy 0 <= min <= max", name)
		}
	}
	return nil
}

// TelegramEnabled reports whether both bot token and chat ID are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
