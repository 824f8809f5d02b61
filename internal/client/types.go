package client

import (
	"sync"
	"time"

	"kofi-alerts/internal/alert"
	"kofi-alerts/internal/negotiate"
	"kofi-alerts/pkg/log"
)

// Options configures a Client.
type Options struct {
	UserKey    string
	PageID     string
	Negotiator negotiate.Negotiator
	HubFactory HubFactory
	Logger     log.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Stats is a snapshot of session counters.
type Stats struct {
	State                State                 `json:"state"`
	Alerts               map[alert.Type]uint64 `json:"alerts"`
	DecodeErrors         uint64                `json:"decode_errors"`
	Reconnects           uint64                `json:"reconnects"`
	ConnectedAt          *time.Time            `json:"connected_at,omitempty"`
	AccessTokenExpiresAt *time.Time            `json:"access_token_expires_at,omitempty"`
}

// Client owns one alerts session: negotiation, the hub connection and inbound routing.
type Client struct {
	userKey    string
	pageID     string
	negotiator negotiate.Negotiator
	newHub     HubFactory
	l          log.Logger
	now        func() time.Time

	mu      sync.Mutex
	state   State
	session uint64
	hub     HubConnection
	last    alert.Alert

	onReady func()
	onClose func(error)
	onAlert func(alert.Alert)

	alerts       map[alert.Type]uint64
	decodeErrors uint64
	reconnects   uint64
	connectedAt  time.Time
	tokenExpiry  time.Time
}
