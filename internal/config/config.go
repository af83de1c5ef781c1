package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is loaded once at startup
// and immutable afterwards; the only live control is the pause/resume toggle.
type Config struct {
	Telegram struct {
		BotToken      string `yaml:"bot_token"`
		AllowedChatID int64  `yaml:"allowed_chat_id"`
	} `yaml:"telegram"`
	Exchange struct {
		Mode      string `yaml:"mode"` // "paper" or "bybit"
		BaseURL   string `yaml:"base_url"`
		WSURL     string `yaml:"ws_url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		Leverage  int    `yaml:"leverage"`
	} `yaml:"exchange"`
	Symbols []string `yaml:"symbols"`
	Risk    struct {
		StartingEquity float64 `yaml:"starting_equity"`
		RiskPerTrade   float64 `yaml:"risk_per_trade"`
		MaxDailyLoss   float64 `yaml:"max_daily_loss"`
		MaxDrawdown    float64 `yaml:"max_drawdown"`
	} `yaml:"risk"`
	Candles struct {
		StoreDepth  int           `yaml:"store_depth"`
		EntryTF     time.Duration `yaml:"entry_timeframe"`
		StructureTF time.Duration `yaml:"structure_timeframe"`
		BiasTF      time.Duration `yaml:"bias_timeframe"`
	} `yaml:"candles"`
	Trading struct {
		// Blackout window in UTC minutes-of-day during which entries are
		// vetoed. May wrap midnight (start > end).
		BlackoutStartMin int `yaml:"blackout_start_min"`
		BlackoutEndMin   int `yaml:"blackout_end_min"`
	} `yaml:"trading"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_ALLOWED_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.AllowedChatID = id
		}
	}
	if v := os.Getenv("BYBIT_TESTNET_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("BYBIT_TESTNET_API_SECRET"); v != "" {
		cfg.Exchange.APISecret = v
	}
	if v := os.Getenv("EXCHANGE_MODE"); v != "" {
		cfg.Exchange.Mode = v
	}
	if v := os.Getenv("STARTING_EQUITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.StartingEquity = f
		}
	}
	if v := os.Getenv("RISK_PER_TRADE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.RiskPerTrade = f
		}
	}
	if v := os.Getenv("MAX_DAILY_LOSS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.MaxDailyLoss = f
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Exchange.Mode == "" {
		cfg.Exchange.Mode = "paper"
	}
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://api-testnet.bybit.com"
	}
	if cfg.Exchange.WSURL == "" {
		cfg.Exchange.WSURL = "wss://stream-testnet.bybit.com/v5/public/linear"
	}
	if cfg.Exchange.Leverage == 0 {
		cfg.Exchange.Leverage = 10
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"BTCUSDT", "TRXUSDT"}
	}
	if cfg.Risk.MaxDrawdown == 0 {
		cfg.Risk.MaxDrawdown = 0.20
	}
	if cfg.Candles.StoreDepth == 0 {
		cfg.Candles.StoreDepth = 200
	}
	if cfg.Candles.EntryTF == 0 {
		cfg.Candles.EntryTF = time.Minute
	}
	if cfg.Candles.StructureTF == 0 {
		cfg.Candles.StructureTF = 5 * time.Minute
	}
	if cfg.Candles.BiasTF == 0 {
		cfg.Candles.BiasTF = 4 * time.Hour
	}
	if cfg.Trading.BlackoutStartMin == 0 && cfg.Trading.BlackoutEndMin == 0 {
		cfg.Trading.BlackoutStartMin = 20*60 + 30 // 20:30 UTC
		cfg.Trading.BlackoutEndMin = 30           // 00:30 UTC
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trading_bot.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set. A failure here is fatal:
// the process must not proceed into the trading loop on incomplete config.
func (c *Config) Validate() error {
	if c.Risk.StartingEquity <= 0 {
		return fmt.Errorf("risk.starting_equity must be positive")
	}
	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 1 {
		return fmt.Errorf("risk.risk_per_trade must be in (0, 1]")
	}
	if c.Risk.MaxDailyLoss <= 0 || c.Risk.MaxDailyLoss > 1 {
		return fmt.Errorf("risk.max_daily_loss must be in (0, 1]")
	}
	if c.Risk.MaxDrawdown <= 0 || c.Risk.MaxDrawdown > 1 {
		return fmt.Errorf("risk.max_drawdown must be in (0, 1]")
	}
	if c.Exchange.Mode != "paper" && c.Exchange.Mode != "bybit" {
		return fmt.Errorf("exchange.mode must be paper or bybit")
	}
	if c.Exchange.Mode == "bybit" {
		if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
			return fmt.Errorf("exchange.api_key and exchange.api_secret are required in bybit mode")
		}
	}
	if c.Telegram.BotToken != "" && c.Telegram.AllowedChatID == 0 {
		return fmt.Errorf("telegram.allowed_chat_id is required when telegram.bot_token is set")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	return nil
}

// EntryAllowedAt reports whether the UTC minute-of-day of t falls outside the
// configured blackout window.
func (c *Config) EntryAllowedAt(t time.Time) bool {
	minutes := t.UTC().Hour()*60 + t.UTC().Minute()
	start, end := c.Trading.BlackoutStartMin, c.Trading.BlackoutEndMin
	if start <= end {
		// Window within a single day.
		if minutes >= start && minutes < end {
			return false
		}
		return true
	}
	// Window wraps midnight.
	if minutes >= start || minutes < end {
		return false
	}
	return true
}
