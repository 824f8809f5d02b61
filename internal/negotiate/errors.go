package negotiate

import (
	"errors"
	"strings"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrEmptyResponse    = errors.New("response is missing required fields")
)

// TokenError reports a failed token negotiation. UserKey is redacted.
type TokenError struct {
	UserKey string
	Err     error
}

func NewTokenError(userKey string, cause error) *TokenError {
	return &TokenError{UserKey: Redact(userKey, keepCredential), Err: cause}
}

func (e *TokenError) Error() string {
	msg := "failed to receive token (userKey " + e.UserKey + ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// AccessTokenError reports a failed access-token negotiation. Token and PageID are redacted.
type AccessTokenError struct {
	Token  string
	PageID string
	Err    error
}

func NewAccessTokenError(token, pageID string, cause error) *AccessTokenError {
	return &AccessTokenError{
		Token:  Redact(token, keepCredential),
		PageID: Redact(pageID, keepPageID),
		Err:    cause,
	}
}

func (e *AccessTokenError) Error() string {
	msg := "failed to receive access token (token " + e.Token + ", pageId " + e.PageID + ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AccessTokenError) Unwrap() error {
	return e.Err
}

// Redact masks all but the last keep characters of s with '*'.
// Values no longer than keep are masked entirely.
func Redact(s string, keep int) string {
	runes := []rune(s)
	if len(runes) <= keep {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-keep) + string(runes[len(runes)-keep:])
}
