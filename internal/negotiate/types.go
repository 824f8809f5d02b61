package negotiate

import (
	"net/http"
	"time"
)

// TokenResponse is the body of the token endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}

// AccessTokenResponse is the body of the access-token endpoint.
type AccessTokenResponse struct {
	URL         string `json:"url"`
	AccessToken string `json:"accessToken"`
}

// Config configures the HTTP negotiator. Zero values fall back to defaults.
type Config struct {
	TokenURL       string
	AccessTokenURL string
	Timeout        time.Duration
	HTTPClient     *http.Client
	// Now is the clock used for cache-busting and request timestamps.
	Now func() time.Time
}

type httpNegotiator struct {
	tokenURL       string
	accessTokenURL string
	client         *http.Client
	now            func() time.Time
}
