package negotiate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxBodyBytes = 1 << 20

// New creates an HTTP Negotiator. It never retries; callers own the retry policy.
func New(cfg Config) Negotiator {
	n := &httpNegotiator{
		tokenURL:       cfg.TokenURL,
		accessTokenURL: cfg.AccessTokenURL,
		client:         cfg.HTTPClient,
		now:            cfg.Now,
	}
	if n.tokenURL == "" {
		n.tokenURL = DefaultTokenURL
	}
	if n.accessTokenURL == "" {
		n.accessTokenURL = DefaultAccessTokenURL
	}
	if n.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		n.client = &http.Client{Timeout: timeout}
	}
	if n.now == nil {
		n.now = time.Now
	}
	return n
}

func (n *httpNegotiator) NegotiateToken(ctx context.Context, userKey string) (TokenResponse, error) {
	q := url.Values{}
	q.Set("userKey", userKey)
	q.Set("_", strconv.FormatInt(n.now().UnixMilli(), 10))

	var resp TokenResponse
	if err := n.do(ctx, http.MethodGet, n.tokenURL, q, &resp, userKey); err != nil {
		return TokenResponse{}, NewTokenError(userKey, err)
	}
	if resp.Token == "" {
		return TokenResponse{}, NewTokenError(userKey, ErrEmptyResponse)
	}
	return resp, nil
}

func (n *httpNegotiator) NegotiateAccessToken(ctx context.Context, negotiationToken, pageID string) (AccessTokenResponse, error) {
	q := url.Values{}
	q.Set("negotiationToken", negotiationToken)
	q.Set("pageId", pageID)
	// Upstream rejects stale timestamps, so this is regenerated per attempt.
	q.Set("timestamp", FormatTimestamp(n.now()))

	var resp AccessTokenResponse
	if err := n.do(ctx, http.MethodPost, n.accessTokenURL, q, &resp, negotiationToken, pageID); err != nil {
		return AccessTokenResponse{}, NewAccessTokenError(negotiationToken, pageID, err)
	}
	if resp.URL == "" || resp.AccessToken == "" {
		return AccessTokenResponse{}, NewAccessTokenError(negotiationToken, pageID, ErrEmptyResponse)
	}
	return resp, nil
}

// do sends the request and decodes a JSON body into out. Secrets are scrubbed from returned errors.
func (n *httpNegotiator) do(ctx context.Context, method, endpoint string, query url.Values, out any, secrets ...string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	merged := u.Query()
	for k, vs := range query {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return scrub(fmt.Errorf("create request: %w", err), secrets)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return scrub(fmt.Errorf("send request: %w", err), secrets)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// scrubbedError hides credentials that net/http embeds in its error text (the request URL).
type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }

func scrub(err error, secrets []string) error {
	msg := err.Error()
	for _, s := range secrets {
		if s == "" {
			continue
		}
		masked := Redact(s, keepCredential)
		msg = strings.ReplaceAll(msg, url.QueryEscape(s), masked)
		msg = strings.ReplaceAll(msg, s, masked)
	}
	// *url.Error keeps the raw request URL, so the chain skips it.
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	return &scrubbedError{msg: msg, err: cause}
}
