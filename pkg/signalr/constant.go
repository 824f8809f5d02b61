package signalr

import "time"

const (
	DefaultKeepAliveInterval = 15 * time.Second
	DefaultServerTimeout     = 30 * time.Second
	DefaultHandshakeTimeout  = 15 * time.Second

	// maxRedirects bounds negotiate redirects to other service endpoints.
	maxRedirects = 5

	recordSeparator = 0x1E
	writeWait       = 10 * time.Second
	maxMessageSize  = 1 << 20
)

// DefaultReconnectDelays is the automatic reconnect schedule.
var DefaultReconnectDelays = []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}

const (
	messageInvocation = 1
	messagePing       = 6
	messageClose      = 7
)

const (
	transportWebSockets = "WebSockets"
	formatText          = "Text"
)

// State is the transport-level connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
