package client

import (
	"context"
	"fmt"
	"time"

	"kofi-alerts/internal/alert"
	"kofi-alerts/internal/negotiate"
)

// OnReady sets the callback run once per Connect, before any alert is delivered.
func (c *Client) OnReady(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

// OnClose sets the callback run when the session ends. err is nil after Disconnect.
func (c *Client) OnClose(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

// OnAlert sets the callback that receives every decoded alert.
func (c *Client) OnAlert(fn func(alert.Alert)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAlert = fn
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastAlert returns the most recently decoded alert, or nil if none arrived yet.
func (c *Client) LastAlert() alert.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		State:        c.state,
		Alerts:       make(map[alert.Type]uint64, len(c.alerts)),
		DecodeErrors: c.decodeErrors,
		Reconnects:   c.reconnects,
	}
	for k, v := range c.alerts {
		s.Alerts[k] = v
	}
	if !c.connectedAt.IsZero() {
		t := c.connectedAt
		s.ConnectedAt = &t
	}
	if !c.tokenExpiry.IsZero() {
		t := c.tokenExpiry
		s.AccessTokenExpiresAt = &t
	}
	return s
}

// Connect negotiates credentials, starts the hub connection and fires the ready callback.
// It is valid from Idle or Closed. On failure the client returns to the state it started from.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	from := c.state
	if from != StateIdle && from != StateClosed {
		c.mu.Unlock()
		return fmt.Errorf("%w: connect from %s", ErrInvalidState, from)
	}
	c.state = StateNegotiating
	c.session++
	session := c.session
	c.mu.Unlock()

	fail := func(err error) error {
		c.mu.Lock()
		c.state = from
		c.mu.Unlock()
		return err
	}

	tok, err := c.negotiator.NegotiateToken(ctx, c.userKey)
	if err != nil {
		c.l.Errorf(ctx, "client.Connect.NegotiateToken: %v", err)
		return fail(err)
	}
	acc, err := c.negotiator.NegotiateAccessToken(ctx, tok.Token, c.pageID)
	if err != nil {
		c.l.Errorf(ctx, "client.Connect.NegotiateAccessToken: %v", err)
		return fail(err)
	}

	c.mu.Lock()
	c.state = StateConnecting
	c.mu.Unlock()

	// Hub callbacks wait on gate so the ready callback always precedes them.
	gate := make(chan struct{})
	hub := c.newHub(acc.URL, acc.AccessToken)
	c.register(hub, session, gate)

	if err := hub.Start(ctx); err != nil {
		close(gate)
		c.l.Errorf(ctx, "client.Connect.Start: %v", err)
		return fail(fmt.Errorf("client: start hub connection: %w", err))
	}

	expiry, hasExpiry := negotiate.AccessTokenExpiry(acc.AccessToken)

	c.mu.Lock()
	c.hub = hub
	c.state = StateReady
	c.connectedAt = c.now()
	c.tokenExpiry = expiry
	onReady := c.onReady
	c.mu.Unlock()

	if hasExpiry {
		c.l.Infof(ctx, "client.Connect: ready (page %s, access token valid until %s)",
			negotiate.Redact(c.pageID, 2), expiry.Format(time.RFC3339))
	} else {
		c.l.Infof(ctx, "client.Connect: ready (page %s)", negotiate.Redact(c.pageID, 2))
	}

	defer close(gate)
	if onReady != nil {
		onReady()
	}
	return nil
}

// Disconnect stops the hub connection and moves to Closed.
// It is a no-op from Idle or Closed and rejected while a Connect is in flight.
// Callbacks must not call it synchronously: it waits for the transport to finish closing.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateIdle, StateClosed:
		c.mu.Unlock()
		return nil
	case StateNegotiating, StateConnecting:
		c.mu.Unlock()
		return ErrConnectInProgress
	}
	hub, session := c.hub, c.session
	c.mu.Unlock()

	err := hub.Stop(ctx)
	if err != nil {
		c.l.Warnf(ctx, "client.Disconnect.Stop: %v", err)
	}
	c.closed(session, hub, nil)
	return err
}
