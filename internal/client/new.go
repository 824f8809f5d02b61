package client

import (
	"time"

	"kofi-alerts/internal/alert"
)

// New validates opts and returns an idle Client.
func New(opts Options) (*Client, error) {
	switch {
	case opts.UserKey == "":
		return nil, ErrMissingUserKey
	case opts.PageID == "":
		return nil, ErrMissingPageID
	case opts.Negotiator == nil:
		return nil, ErrMissingNegotiator
	case opts.HubFactory == nil:
		return nil, ErrMissingHubFactory
	case opts.Logger == nil:
		return nil, ErrMissingLogger
	}

	c := &Client{
		userKey:    opts.UserKey,
		pageID:     opts.PageID,
		negotiator: opts.Negotiator,
		newHub:     opts.HubFactory,
		l:          opts.Logger,
		now:        opts.Now,
		alerts:     make(map[alert.Type]uint64),
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}
