package signalr

import "github.com/friendsofgo/errors"

var (
	ErrAlreadyStarted    = errors.New("signalr: connection already started")
	ErrStopped           = errors.New("signalr: connection stopped")
	ErrTooManyRedirects  = errors.New("signalr: too many negotiate redirects")
	ErrNoWebSockets      = errors.New("signalr: server does not offer text websockets")
	ErrHandshakeRejected = errors.New("signalr: handshake rejected")
	ErrServerClosed      = errors.New("signalr: server closed the connection")
)

// closeError is produced by a close message from the server.
type closeError struct {
	message        string
	allowReconnect bool
}

func (e *closeError) Error() string {
	if e.message == "" {
		return ErrServerClosed.Error()
	}
	return ErrServerClosed.Error() + ": " + e.message
}

func (e *closeError) Unwrap() error {
	return ErrServerClosed
}
