package signalr

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"kofi-alerts/pkg/log"

	"github.com/gorilla/websocket"
)

// Handler receives the raw arguments of a server invocation.
type Handler func(args []json.RawMessage)

// Options configures a Conn. Zero values fall back to defaults.
type Options struct {
	AccessToken       string
	HTTPClient        *http.Client
	Dialer            *websocket.Dialer
	KeepAliveInterval time.Duration
	ServerTimeout     time.Duration
	HandshakeTimeout  time.Duration
	// ReconnectDelays is the wait before each reconnect attempt. Empty disables reconnecting.
	ReconnectDelays []time.Duration
	Logger          log.Logger
}

// Conn is a client connection to a SignalR hub using the JSON hub protocol over WebSockets.
type Conn struct {
	url  string
	opts Options
	l    log.Logger

	mu             sync.Mutex
	state          State
	handlers       map[string]Handler
	onClose        func(error)
	onReconnecting func(error)
	onReconnected  func()
	ws             *websocket.Conn
	life           context.Context
	cancel         context.CancelFunc
	done           chan struct{}

	writeMu sync.Mutex
}

type availableTransport struct {
	Transport       string   `json:"transport"`
	TransferFormats []string `json:"transferFormats"`
}

type negotiateResponse struct {
	ConnectionID        string               `json:"connectionId"`
	ConnectionToken     string               `json:"connectionToken"`
	NegotiateVersion    int                  `json:"negotiateVersion"`
	AvailableTransports []availableTransport `json:"availableTransports"`
	URL                 string               `json:"url"`
	AccessToken         string               `json:"accessToken"`
	Error               string               `json:"error"`
}

type handshakeRequest struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

type handshakeResponse struct {
	Error string `json:"error"`
}

type hubMessage struct {
	Type           int               `json:"type"`
	Target         string            `json:"target,omitempty"`
	InvocationID   string            `json:"invocationId,omitempty"`
	Arguments      []json.RawMessage `json:"arguments,omitempty"`
	Error          string            `json:"error,omitempty"`
	AllowReconnect bool              `json:"allowReconnect,omitempty"`
}
