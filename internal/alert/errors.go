package alert

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrMissingField           = errors.New("missing required field")
)

// DecodeError is returned when a structured (goal or activity) payload cannot be decoded.
type DecodeError struct {
	Channel string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("alert: decode %s payload: %v", e.Channel, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(channel string, err error) error {
	return &DecodeError{Channel: channel, Err: err}
}
