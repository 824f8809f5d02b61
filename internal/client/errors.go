package client

import "errors"

var (
	ErrInvalidState      = errors.New("client: operation not valid in current state")
	ErrConnectInProgress = errors.New("client: connect in progress")
	ErrMissingUserKey    = errors.New("client: user key is required")
	ErrMissingPageID     = errors.New("client: page id is required")
	ErrMissingNegotiator = errors.New("client: negotiator is required")
	ErrMissingHubFactory = errors.New("client: hub factory is required")
	ErrMissingLogger     = errors.New("client: logger is required")
)
