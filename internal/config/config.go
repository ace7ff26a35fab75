package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// ThrottleConfig holds sliding-window admission settings.
type ThrottleConfig struct {
	WindowSeconds int `yaml:"window_seconds" envconfig:"THROTTLE_WINDOW_SECONDS"`
	MaxRequests   int `yaml:"max_requests" envconfig:"THROTTLE_MAX_REQUESTS"`
}

// DatabaseConfig holds Postgres connection settings for the dataset source.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// DatasetConfig selects and tunes the tabular dataset source.
type DatasetConfig struct {
	// Kind selects the source backend: "csv" or "postgres".
	Kind            string         `yaml:"kind" envconfig:"DATASET_KIND"`
	Path            string         `yaml:"path" envconfig:"DATASET_PATH"`
	Database        DatabaseConfig `yaml:"database"`
	CacheTTLSeconds int            `yaml:"cache_ttl_seconds" envconfig:"DATASET_CACHE_TTL_SECONDS"`
}

// ChannelConfig describes the restricted group whose membership is managed.
type ChannelConfig struct {
	ChatID             int64 `yaml:"chat_id" envconfig:"CHANNEL_CHAT_ID"`
	RevokeDelayMinutes int   `yaml:"revoke_delay_minutes" envconfig:"CHANNEL_REVOKE_DELAY_MINUTES"`
}

// OpsConfig configures the health/metrics HTTP endpoint.
type OpsConfig struct {
	Listen string `yaml:"listen" envconfig:"OPS_LISTEN"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// DatasetCSV selects the CSV file dataset source.
	DatasetCSV = "csv"
	// DatasetPostgres selects the Postgres dataset source.
	DatasetPostgres = "postgres"
)

// Config aggregates all application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Channel  ChannelConfig  `yaml:"channel"`
	Ops      OpsConfig      `yaml:"ops"`
	// InteractionTimeoutSeconds bounds processing of a single update.
	InteractionTimeoutSeconds int `yaml:"interaction_timeout_seconds" envconfig:"INTERACTION_TIMEOUT_SECONDS"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills in defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Channel.ChatID == 0 {
		return fmt.Errorf("channel.chat_id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	kind := strings.ToLower(strings.TrimSpace(cfg.Dataset.Kind))
	if kind == "" {
		kind = DatasetCSV
	}
	switch kind {
	case DatasetCSV:
		if strings.TrimSpace(cfg.Dataset.Path) == "" {
			return fmt.Errorf("dataset.path is required when dataset.kind is 'csv'")
		}
	case DatasetPostgres:
		if strings.TrimSpace(cfg.Dataset.Database.Host) == "" {
			return fmt.Errorf("dataset.database.host is required when dataset.kind is 'postgres'")
		}
		if strings.TrimSpace(cfg.Dataset.Database.Name) == "" {
			return fmt.Errorf("dataset.database.name is required when dataset.kind is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid dataset.kind %q; allowed: csv, postgres", cfg.Dataset.Kind)
	}
	cfg.Dataset.Kind = kind

	if cfg.Dataset.CacheTTLSeconds <= 0 {
		cfg.Dataset.CacheTTLSeconds = 300
	}
	if cfg.Throttle.WindowSeconds <= 0 {
		cfg.Throttle.WindowSeconds = 60
	}
	if cfg.Throttle.MaxRequests <= 0 {
		cfg.Throttle.MaxRequests = 30
	}
	if cfg.Channel.RevokeDelayMinutes <= 0 {
		cfg.Channel.RevokeDelayMinutes = 30
	}
	if cfg.InteractionTimeoutSeconds <= 0 {
		cfg.InteractionTimeoutSeconds = 10
	}
	if strings.TrimSpace(cfg.Ops.Listen) == "" {
		cfg.Ops.Listen = ":8081"
	}
	if cfg.Dataset.Database.SSLMode == "" {
		cfg.Dataset.Database.SSLMode = "disable"
	}
	if cfg.Dataset.Database.MaxConnections <= 0 {
		cfg.Dataset.Database.MaxConnections = 4
	}
	if cfg.Dataset.Database.Port == "" {
		cfg.Dataset.Database.Port = "5432"
	}
	return nil
}
