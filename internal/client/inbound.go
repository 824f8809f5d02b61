package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"kofi-alerts/internal/alert"
)

var (
	errMissingArgument = errors.New("missing hub argument")
	errInvalidArgument = errors.New("hub argument is not a string or JSON document")
)

func (c *Client) register(hub HubConnection, session uint64, gate <-chan struct{}) {
	for _, method := range []string{
		alert.MethodNewStreamAlert,
		alert.MethodUpdateGoalOverlay,
		alert.MethodUpdateAlertActivity,
	} {
		hub.On(method, func(args []json.RawMessage) {
			<-gate
			c.inbound(session, hub, method, args)
		})
	}
	hub.OnReconnecting(func(err error) {
		<-gate
		c.reconnecting(session, hub, err)
	})
	hub.OnReconnected(func() {
		<-gate
		c.reconnected(session, hub)
	})
	hub.OnClose(func(err error) {
		<-gate
		c.closed(session, hub, err)
	})
}

// current reports whether hub belongs to the live session. Callers hold c.mu.
func (c *Client) current(session uint64, hub HubConnection) bool {
	return c.session == session && c.hub == hub
}

func (c *Client) inbound(session uint64, hub HubConnection, method string, args []json.RawMessage) {
	ctx := context.Background()

	c.mu.Lock()
	live := c.current(session, hub) && c.state == StateReady
	c.mu.Unlock()
	if !live {
		return
	}

	a, err := c.decode(method, args)
	if err != nil {
		c.l.Errorf(ctx, "client.inbound.%s: %v", method, err)
		c.mu.Lock()
		c.decodeErrors++
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.last = a
	c.alerts[a.Type()]++
	onAlert := c.onAlert
	c.mu.Unlock()

	c.l.Debugf(ctx, "client.inbound.%s: %s alert", method, a.Type())
	if onAlert != nil {
		onAlert(a)
	}
}

func (c *Client) decode(method string, args []json.RawMessage) (alert.Alert, error) {
	if len(args) == 0 {
		return nil, &alert.DecodeError{Channel: method, Err: errMissingArgument}
	}
	payload, err := payloadArg(args[0])
	if err != nil {
		return nil, &alert.DecodeError{Channel: method, Err: err}
	}

	switch method {
	case alert.MethodNewStreamAlert:
		var tts *string
		if len(args) > 1 {
			if err := json.Unmarshal(args[1], &tts); err != nil {
				return nil, &alert.DecodeError{Channel: method, Err: err}
			}
		}
		return alert.DecodeLegacy(payload, tts, c.userKey), nil
	case alert.MethodUpdateGoalOverlay:
		return alert.DecodeGoal(payload, c.userKey)
	case alert.MethodUpdateAlertActivity:
		return alert.DecodeActivity(payload)
	default:
		return nil, &alert.DecodeError{Channel: method, Err: errInvalidArgument}
	}
}

// payloadArg unwraps a string argument. Object arguments are passed through as JSON text.
func payloadArg(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	trimmed := strings.TrimLeft(string(raw), " \t\r\n")
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed, nil
	}
	return "", errInvalidArgument
}

func (c *Client) reconnecting(session uint64, hub HubConnection, err error) {
	c.mu.Lock()
	if !c.current(session, hub) || c.state != StateReady {
		c.mu.Unlock()
		return
	}
	c.state = StateReconnecting
	c.reconnects++
	c.mu.Unlock()

	c.l.Warnf(context.Background(), "client.reconnecting: %v", err)
}

func (c *Client) reconnected(session uint64, hub HubConnection) {
	c.mu.Lock()
	if !c.current(session, hub) || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.state = StateReady
	c.mu.Unlock()

	c.l.Infof(context.Background(), "client.reconnected")
}

// closed moves the session to Closed and fires the close callback once.
func (c *Client) closed(session uint64, hub HubConnection, err error) {
	c.mu.Lock()
	if !c.current(session, hub) || c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	onClose := c.onClose
	c.mu.Unlock()

	if err != nil {
		c.l.Warnf(context.Background(), "client.closed: %v", err)
	} else {
		c.l.Infof(context.Background(), "client.closed")
	}
	if onClose != nil {
		onClose(err)
	}
}
