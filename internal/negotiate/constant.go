package negotiate

import "time"

const (
	DefaultTokenURL       = "https://ko-fi.com/api/streamalerts/negotiation-token"
	DefaultAccessTokenURL = "https://sa-functions.ko-fi.com/api/negotiate"
	DefaultTimeout        = 15 * time.Second

	userAgent = "kofi-alerts/1.0"

	// Trailing characters left readable by Redact.
	keepCredential = 4
	keepPageID     = 2
)
