package signalr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/friendsofgo/errors"
)

// endpoint is a resolved hub endpoint ready to be dialed.
type endpoint struct {
	socketURL   string
	accessToken string
}

// negotiate resolves the websocket endpoint, following service redirects.
func (c *Conn) negotiate(ctx context.Context) (endpoint, error) {
	baseURL := c.url
	token := c.opts.AccessToken

	for hop := 0; hop <= maxRedirects; hop++ {
		resp, err := c.negotiateOnce(ctx, baseURL, token)
		if err != nil {
			return endpoint{}, err
		}
		if resp.Error != "" {
			return endpoint{}, errors.Errorf("signalr: negotiate: %s", resp.Error)
		}
		if resp.URL != "" {
			baseURL = resp.URL
			if resp.AccessToken != "" {
				token = resp.AccessToken
			}
			c.l.Debugf(ctx, "signalr.negotiate: redirected (hop %d)", hop+1)
			continue
		}
		if !offersTextWebSockets(resp.AvailableTransports) {
			return endpoint{}, ErrNoWebSockets
		}

		id := resp.ConnectionToken
		if resp.NegotiateVersion == 0 || id == "" {
			id = resp.ConnectionID
		}
		socketURL, err := toSocketURL(baseURL, id)
		if err != nil {
			return endpoint{}, err
		}
		return endpoint{socketURL: socketURL, accessToken: token}, nil
	}
	return endpoint{}, ErrTooManyRedirects
}

func (c *Conn) negotiateOnce(ctx context.Context, baseURL, token string) (negotiateResponse, error) {
	negotiateURL, err := toNegotiateURL(baseURL)
	if err != nil {
		return negotiateResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, negotiateURL, nil)
	if err != nil {
		return negotiateResponse{}, errors.Wrap(err, "signalr: create negotiate request")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		// net/http errors carry the request URL only, never the bearer token.
		return negotiateResponse{}, errors.Wrap(err, "signalr: negotiate")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxMessageSize))
		return negotiateResponse{}, errors.Errorf("signalr: negotiate: unexpected status %d", resp.StatusCode)
	}

	var out negotiateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMessageSize)).Decode(&out); err != nil {
		return negotiateResponse{}, errors.Wrap(err, "signalr: decode negotiate response")
	}
	return out, nil
}

func offersTextWebSockets(transports []availableTransport) bool {
	// Redirect-free responses from older servers omit the list.
	if len(transports) == 0 {
		return true
	}
	for _, t := range transports {
		if !strings.EqualFold(t.Transport, transportWebSockets) {
			continue
		}
		for _, f := range t.TransferFormats {
			if strings.EqualFold(f, formatText) {
				return true
			}
		}
	}
	return false
}

// toNegotiateURL appends /negotiate to the path and keeps the hub query.
func toNegotiateURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "signalr: parse hub url")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.Path += "negotiate"
	q := u.Query()
	q.Set("negotiateVersion", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func toSocketURL(baseURL, id string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "signalr: parse hub url")
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.Errorf("signalr: unsupported url scheme %q", u.Scheme)
	}
	if id != "" {
		q := u.Query()
		q.Set("id", id)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
