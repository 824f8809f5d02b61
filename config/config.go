package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds all service configuration.
type Config struct {
	// Environment Configuration
	Environment EnvironmentConfig

	// Server Configuration
	Server ServerConfig
	Logger LoggerConfig

	// Ko-fi Configuration
	Kofi    KofiConfig
	SignalR SignalRConfig

	// Sinks
	Redis   RedisConfig
	Discord DiscordConfig
}

// EnvironmentConfig is the configuration for environment-aware features
type EnvironmentConfig struct {
	Name string `env:"ENV" envDefault:"production"`
}

// ServerConfig is the configuration for the status HTTP server
type ServerConfig struct {
	Enabled bool   `env:"HTTP_ENABLED" envDefault:"true"`
	Host    string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"HTTP_PORT" envDefault:"8080"`
	Mode    string `env:"HTTP_MODE" envDefault:"release"`
}

// LoggerConfig is the configuration for the logger
type LoggerConfig struct {
	Level        string `env:"LOGGER_LEVEL" envDefault:"info"`
	Mode         string `env:"LOGGER_MODE" envDefault:"production"`
	Encoding     string `env:"LOGGER_ENCODING" envDefault:"json"`
	ColorEnabled bool   `env:"LOGGER_COLOR_ENABLED" envDefault:"false"`
}

// KofiConfig holds the creator credentials and negotiation endpoints.
type KofiConfig struct {
	UserKey          string        `env:"KOFI_USER_KEY"`
	PageID           string        `env:"KOFI_PAGE_ID"`
	TokenURL         string        `env:"KOFI_TOKEN_URL" envDefault:"https://ko-fi.com/api/streamalerts/negotiation-token"`
	AccessTokenURL   string        `env:"KOFI_ACCESS_TOKEN_URL" envDefault:"https://sa-functions.ko-fi.com/api/negotiate"`
	NegotiateTimeout time.Duration `env:"KOFI_NEGOTIATE_TIMEOUT" envDefault:"15s"`
}

// SignalRConfig is the configuration for the hub connection
type SignalRConfig struct {
	KeepAliveInterval time.Duration   `env:"SIGNALR_KEEP_ALIVE_INTERVAL" envDefault:"15s"`
	ServerTimeout     time.Duration   `env:"SIGNALR_SERVER_TIMEOUT" envDefault:"30s"`
	HandshakeTimeout  time.Duration   `env:"SIGNALR_HANDSHAKE_TIMEOUT" envDefault:"15s"`
	Reconnect         bool            `env:"SIGNALR_RECONNECT" envDefault:"true"`
	ReconnectDelays   []time.Duration `env:"SIGNALR_RECONNECT_DELAYS" envDefault:"0s,2s,10s,30s"`
}

// RedisConfig is the configuration for the optional Redis sink
type RedisConfig struct {
	Enabled      bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         int           `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	UseTLS       bool          `env:"REDIS_USE_TLS" envDefault:"false"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	LastAlertTTL time.Duration `env:"REDIS_LAST_ALERT_TTL" envDefault:"24h"`
}

// DiscordConfig is the configuration for Discord webhook announcements
type DiscordConfig struct {
	WebhookURL string `env:"DISCORD_WEBHOOK_URL"`
	Username   string `env:"DISCORD_USERNAME" envDefault:"Ko-fi Alerts"`
}

// Load reads an optional .env file (or the given files), then parses the environment.
// Variables already present in the environment take precedence over file values.
func Load(filenames ...string) (*Config, error) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Kofi.UserKey == "" {
		return fmt.Errorf("KOFI_USER_KEY is required")
	}
	if cfg.Kofi.PageID == "" {
		return fmt.Errorf("KOFI_PAGE_ID is required")
	}

	if cfg.Server.Enabled && (cfg.Server.Port <= 0 || cfg.Server.Port > 65535) {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}

	if cfg.Redis.Enabled && cfg.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when REDIS_ENABLED is set")
	}

	for _, d := range cfg.SignalR.ReconnectDelays {
		if d < 0 {
			return fmt.Errorf("SIGNALR_RECONNECT_DELAYS must not contain negative durations")
		}
	}

	return nil
}

// Delays returns the reconnect schedule for the hub transport. An empty, non-nil
// slice disables automatic reconnect.
func (c SignalRConfig) Delays() []time.Duration {
	if !c.Reconnect {
		return []time.Duration{}
	}
	return c.ReconnectDelays
}
