package response

import "kofi-alerts/pkg/errors"

type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

type ErrorMapping map[error]*errors.HTTPError
