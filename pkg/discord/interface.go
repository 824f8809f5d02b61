package discord

import (
	"context"
	"net/url"
	"strings"

	"kofi-alerts/pkg/log"
)

type IDiscord interface {
	SendEmbed(ctx context.Context, options MessageOptions) error
	SendError(ctx context.Context, title, description string, err error) error
	Close() error
}

// DefaultConfig returns the default Discord config.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		RetryCount:      DefaultRetryCount,
		RetryDelay:      DefaultRetryDelay,
		DefaultUsername: DefaultUsername,
	}
}

func New(l log.Logger, webhookURL string) (IDiscord, error) {
	return NewWithConfig(l, webhookURL, DefaultConfig())
}

func NewWithConfig(l log.Logger, webhookURL string, cfg Config) (IDiscord, error) {
	if strings.TrimSpace(webhookURL) == "" {
		return nil, errWebhookRequired
	}
	endpoint, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DefaultUsername == "" {
		cfg.DefaultUsername = DefaultUsername
	}
	return &discordImpl{
		l:        l,
		endpoint: endpoint,
		config:   cfg,
		client:   newHTTPClient(cfg.Timeout),
	}, nil
}

// parseWebhookURL checks for a .../webhooks/{id}/{token} path.
func parseWebhookURL(webhookURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(webhookURL))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", errInvalidWebhookURL
	}
	_, rest, ok := strings.Cut(u.Path, "/webhooks/")
	if !ok {
		return "", errInvalidWebhookURL
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", errInvalidWebhookURL
	}
	return u.String(), nil
}
