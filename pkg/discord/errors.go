package discord

import "errors"

var (
	errWebhookRequired   = errors.New("discord: webhook URL is required")
	errInvalidWebhookURL = errors.New("discord: webhook URL must be .../webhooks/{id}/{token}")
	ErrEmbedTooLong      = errors.New("discord: embed too long")
)
