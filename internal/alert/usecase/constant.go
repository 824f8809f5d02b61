package usecase

import "time"

const (
	DefaultLastAlertTTL = 24 * time.Hour

	channelPrefix   = "kofi:alerts:"
	announceTimeout = 30 * time.Second
	footerText      = "Ko-fi Alerts"
)

// Channel is the Redis pub/sub channel alerts for pageID are published on.
func Channel(pageID string) string {
	return channelPrefix + pageID
}

// LastAlertKey is the Redis key holding the latest envelope for pageID.
func LastAlertKey(pageID string) string {
	return channelPrefix + pageID + ":last"
}
