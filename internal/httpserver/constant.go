package httpserver

import "time"

const (
	serviceName     = "kofi-alerts"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 5 * time.Second
	readTimeout     = 10 * time.Second

	redisConnected   = "connected"
	redisDisabled    = "disabled"
	redisUnavailable = "unavailable"
)
