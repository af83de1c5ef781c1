package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "paper", cfg.Exchange.Mode)
	assert.Equal(t, 10, cfg.Exchange.Leverage)
	assert.Equal(t, []string{"BTCUSDT", "TRXUSDT"}, cfg.Symbols)
	assert.Equal(t, 0.20, cfg.Risk.MaxDrawdown)
	assert.Equal(t, 200, cfg.Candles.StoreDepth)
	assert.Equal(t, time.Minute, cfg.Candles.EntryTF)
	assert.Equal(t, 5*time.Minute, cfg.Candles.StructureTF)
	assert.Equal(t, 4*time.Hour, cfg.Candles.BiasTF)
	assert.Equal(t, 20*60+30, cfg.Trading.BlackoutStartMin)
	assert.Equal(t, 30, cfg.Trading.BlackoutEndMin)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
exchange:
  mode: bybit
symbols:
  - ETHUSDT
risk:
  starting_equity: 5000
  risk_per_trade: 0.02
`)
	t.Setenv("STARTING_EQUITY", "7500")
	t.Setenv("EXCHANGE_MODE", "paper")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment beats the file.
	assert.Equal(t, "paper", cfg.Exchange.Mode)
	assert.Equal(t, 7500.0, cfg.Risk.StartingEquity)

	// File beats the defaults.
	assert.Equal(t, []string{"ETHUSDT"}, cfg.Symbols)
	assert.Equal(t, 0.02, cfg.Risk.RiskPerTrade)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.Risk.StartingEquity = 10000
		cfg.Risk.RiskPerTrade = 0.01
		cfg.Risk.MaxDailyLoss = 0.03
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Risk.StartingEquity = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Risk.RiskPerTrade = 1.5
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Exchange.Mode = "bybit"
	assert.Error(t, cfg.Validate()) // missing API credentials

	cfg = valid()
	cfg.Exchange.Mode = "bybit"
	cfg.Exchange.APIKey = "k"
	cfg.Exchange.APISecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Telegram.BotToken = "token"
	assert.Error(t, cfg.Validate()) // token without allowed chat

	cfg = valid()
	cfg.Symbols = nil
	assert.Error(t, cfg.Validate())
}

func TestEntryAllowedAtWrapsMidnight(t *testing.T) {
	cfg := &Config{}
	cfg.Trading.BlackoutStartMin = 20*60 + 30 // 20:30
	cfg.Trading.BlackoutEndMin = 30           // 00:30

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	assert.True(t, cfg.EntryAllowedAt(at(12, 0)))
	assert.True(t, cfg.EntryAllowedAt(at(20, 29)))
	assert.False(t, cfg.EntryAllowedAt(at(20, 30)))
	assert.False(t, cfg.EntryAllowedAt(at(23, 59)))
	assert.False(t, cfg.EntryAllowedAt(at(0, 0)))
	assert.False(t, cfg.EntryAllowedAt(at(0, 29)))
	assert.True(t, cfg.EntryAllowedAt(at(0, 30)))
}

func TestEntryAllowedAtSameDayWindow(t *testing.T) {
	cfg := &Config{}
	cfg.Trading.BlackoutStartMin = 9 * 60 // 09:00
	cfg.Trading.BlackoutEndMin = 10 * 60  // 10:00

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, cfg.EntryAllowedAt(day.Add(8*time.Hour)))
	assert.False(t, cfg.EntryAllowedAt(day.Add(9*time.Hour+30*time.Minute)))
	assert.True(t, cfg.EntryAllowedAt(day.Add(10*time.Hour)))
}
