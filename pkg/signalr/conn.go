package signalr

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"kofi-alerts/pkg/log"

	"github.com/friendsofgo/errors"
	"github.com/gorilla/websocket"
)

// New creates a hub connection for url. Nothing is sent until Start.
// A nil ReconnectDelays uses DefaultReconnectDelays; an empty non-nil slice disables reconnecting.
func New(url string, opts Options) *Conn {
	if opts.KeepAliveInterval <= 0 {
		opts.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if opts.ServerTimeout <= 0 {
		opts.ServerTimeout = DefaultServerTimeout
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.ReconnectDelays == nil {
		opts.ReconnectDelays = DefaultReconnectDelays
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.HandshakeTimeout}
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}

	return &Conn{
		url:      url,
		opts:     opts,
		l:        opts.Logger,
		handlers: make(map[string]Handler),
	}
}

// On registers the handler for a hub method. Targets match case-insensitively.
func (c *Conn) On(target string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[strings.ToLower(target)] = h
}

// OnClose is called once when the connection ends. err is nil after Stop.
func (c *Conn) OnClose(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

func (c *Conn) OnReconnecting(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReconnecting = fn
}

func (c *Conn) OnReconnected(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReconnected = fn
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start negotiates, dials and completes the protocol handshake, then serves the
// connection in the background until Stop or an unrecoverable loss.
func (c *Conn) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateConnecting
	c.done = nil
	c.life, c.cancel = context.WithCancel(context.Background())
	life, cancelLife := c.life, c.cancel
	c.mu.Unlock()

	startCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(life, cancel)()

	ws, buf, err := c.connect(startCtx)

	c.mu.Lock()
	if err == nil && life.Err() != nil {
		_ = ws.Close()
		err = ErrStopped
	}
	if err != nil {
		c.state = StateDisconnected
		c.mu.Unlock()
		cancelLife()
		return err
	}
	c.ws = ws
	c.state = StateConnected
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	c.l.Infof(ctx, "signalr.Start: connected")
	go c.run(life, ws, buf, done)
	return nil
}

// Stop closes the connection and waits for the close callback to run.
// It is a no-op on a stopped connection. Must not be called from a Handler.
func (c *Conn) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateDisconnected || c.cancel == nil {
		c.mu.Unlock()
		return nil
	}
	ws, done, cancel := c.ws, c.done, c.cancel
	c.mu.Unlock()

	if ws != nil {
		c.writeMu.Lock()
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
	}
	cancel()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) connect(ctx context.Context) (*websocket.Conn, []byte, error) {
	ep, err := c.negotiate(ctx)
	if err != nil {
		return nil, nil, err
	}

	header := http.Header{}
	if ep.accessToken != "" {
		header.Set("Authorization", "Bearer "+ep.accessToken)
	}
	ws, _, err := c.opts.Dialer.DialContext(ctx, ep.socketURL, header)
	if err != nil {
		return nil, nil, errors.Wrap(err, "signalr: dial")
	}
	ws.SetReadLimit(maxMessageSize)

	buf, err := c.handshake(ws)
	if err != nil {
		_ = ws.Close()
		return nil, nil, err
	}
	return ws, buf, nil
}

// handshake returns any bytes the server sent after the handshake response.
func (c *Conn) handshake(ws *websocket.Conn) ([]byte, error) {
	if err := c.write(ws, handshakeFrame); err != nil {
		return nil, errors.Wrap(err, "signalr: send handshake")
	}

	_ = ws.SetReadDeadline(time.Now().Add(c.opts.HandshakeTimeout))
	var buf []byte
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return nil, errors.Wrap(err, "signalr: read handshake")
		}
		buf = append(buf, data...)

		records, rest := splitRecords(buf)
		if len(records) == 0 {
			buf = rest
			continue
		}
		if err := parseHandshake(records[0]); err != nil {
			return nil, err
		}
		var leftover []byte
		for _, r := range records[1:] {
			leftover = append(append(leftover, r...), recordSeparator)
		}
		return append(leftover, rest...), nil
	}
}

func (c *Conn) run(life context.Context, ws *websocket.Conn, buf []byte, done chan struct{}) {
	defer close(done)
	ctx := context.Background()

	for {
		err := c.serve(life, ws, buf)
		if life.Err() != nil {
			c.finish(nil)
			return
		}

		var ce *closeError
		if errors.As(err, &ce) && !ce.allowReconnect {
			if ce.message == "" {
				err = nil
			}
			c.finish(err)
			return
		}

		c.l.Warnf(ctx, "signalr.run: connection lost: %v", err)
		ws, buf, err = c.reconnect(life, err)
		if err != nil {
			if life.Err() != nil {
				err = nil
			}
			c.finish(err)
			return
		}
	}
}

// serve reads until the connection fails, the server closes it, or life ends.
func (c *Conn) serve(life context.Context, ws *websocket.Conn, buf []byte) error {
	defer ws.Close()
	defer context.AfterFunc(life, func() { _ = ws.Close() })()

	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.keepAlive(ws, stopPing)

	for {
		records, rest := splitRecords(buf)
		buf = rest
		for _, r := range records {
			if err := c.dispatch(r); err != nil {
				return err
			}
		}

		_ = ws.SetReadDeadline(time.Now().Add(c.opts.ServerTimeout))
		_, data, err := ws.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "signalr: read")
		}
		buf = append(buf, data...)
	}
}

func (c *Conn) dispatch(record []byte) error {
	ctx := context.Background()

	var msg hubMessage
	if err := json.Unmarshal(record, &msg); err != nil {
		c.l.Warnf(ctx, "signalr.dispatch: invalid message: %v", err)
		return nil
	}

	switch msg.Type {
	case messageInvocation:
		c.mu.Lock()
		h := c.handlers[strings.ToLower(msg.Target)]
		c.mu.Unlock()
		if h == nil {
			c.l.Warnf(ctx, "signalr.dispatch: no handler for target %q", msg.Target)
			return nil
		}
		if msg.InvocationID != "" {
			c.l.Debugf(ctx, "signalr.dispatch: results are not sent for invocation %s", msg.InvocationID)
		}
		c.invoke(msg.Target, h, msg.Arguments)
	case messagePing:
	case messageClose:
		return &closeError{message: msg.Error, allowReconnect: msg.AllowReconnect}
	default:
		c.l.Debugf(ctx, "signalr.dispatch: ignoring message type %d", msg.Type)
	}
	return nil
}

func (c *Conn) invoke(target string, h Handler, args []json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.l.Errorf(context.Background(), "signalr.invoke: handler %s panicked: %v", target, r)
		}
	}()
	h(args)
}

func (c *Conn) keepAlive(ws *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.opts.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.write(ws, pingFrame); err != nil {
				c.l.Debugf(context.Background(), "signalr.keepAlive: %v", err)
				return
			}
		}
	}
}

func (c *Conn) write(ws *websocket.Conn, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) reconnect(life context.Context, cause error) (*websocket.Conn, []byte, error) {
	ctx := context.Background()
	delays := c.opts.ReconnectDelays
	if len(delays) == 0 {
		return nil, nil, cause
	}

	c.mu.Lock()
	c.state = StateReconnecting
	c.ws = nil
	onReconnecting := c.onReconnecting
	c.mu.Unlock()
	if onReconnecting != nil {
		onReconnecting(cause)
	}

	lastErr := cause
	for attempt, delay := range delays {
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-life.Done():
				t.Stop()
				return nil, nil, ErrStopped
			case <-t.C:
			}
		}
		if life.Err() != nil {
			return nil, nil, ErrStopped
		}

		ws, buf, err := c.connect(life)
		if err != nil {
			lastErr = err
			c.l.Warnf(ctx, "signalr.reconnect: attempt %d/%d failed: %v", attempt+1, len(delays), err)
			continue
		}

		c.mu.Lock()
		if life.Err() != nil {
			c.mu.Unlock()
			_ = ws.Close()
			return nil, nil, ErrStopped
		}
		c.ws = ws
		c.state = StateConnected
		onReconnected := c.onReconnected
		c.mu.Unlock()

		c.l.Infof(ctx, "signalr.reconnect: reconnected after %d attempt(s)", attempt+1)
		if onReconnected != nil {
			onReconnected()
		}
		return ws, buf, nil
	}
	return nil, nil, errors.Wrapf(lastErr, "signalr: reconnect failed after %d attempts", len(delays))
}

func (c *Conn) finish(err error) {
	c.mu.Lock()
	c.state = StateDisconnected
	c.ws = nil
	cancel := c.cancel
	onClose := c.onClose
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err != nil {
		c.l.Warnf(context.Background(), "signalr.finish: closed: %v", err)
	}
	if onClose != nil {
		onClose(err)
	}
}
