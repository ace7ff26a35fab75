package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Dataset:  DatasetConfig{Kind: "csv", Path: "rooms.csv"},
		Channel:  ChannelConfig{ChatID: -1001},
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, 300, cfg.Dataset.CacheTTLSeconds)
	assert.Equal(t, 60, cfg.Throttle.WindowSeconds)
	assert.Equal(t, 30, cfg.Throttle.MaxRequests)
	assert.Equal(t, 30, cfg.Channel.RevokeDelayMinutes)
	assert.Equal(t, 10, cfg.InteractionTimeoutSeconds)
	assert.Equal(t, ":8081", cfg.Ops.Listen)
}

func TestNormalizeRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }},
		{"missing channel chat id", func(c *Config) { c.Channel.ChatID = 0 }},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }},
		{"bad dataset kind", func(c *Config) { c.Dataset.Kind = "sqlite" }},
		{"csv without path", func(c *Config) { c.Dataset.Path = "" }},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = RunModeWebhook }},
		{"postgres without host", func(c *Config) {
			c.Dataset.Kind = DatasetPostgres
			c.Dataset.Database.Name = "gatebot"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, Normalize(cfg))
		})
	}
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: "123:abc"
dataset:
  kind: csv
  path: rooms.csv
channel:
  chat_id: -1001234
  revoke_delay_minutes: 45
throttle:
  max_requests: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234), cfg.Channel.ChatID)
	assert.Equal(t, 45, cfg.Channel.RevokeDelayMinutes)
	assert.Equal(t, 5, cfg.Throttle.MaxRequests)
	assert.Equal(t, 60, cfg.Throttle.WindowSeconds, "unset fields fall back to defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
