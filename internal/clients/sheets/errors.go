package sheets

import (
	"encoding/json"
	"fmt"
)

// ErrorKind tells the caller which stage of a fetch gave up
type ErrorKind string

const (
	// KindMissingToken means no bearer token could be obtained
	KindMissingToken ErrorKind = "missing_token"

	// KindHTTPError means the request never produced a response
	KindHTTPError ErrorKind = "http_error"

	// KindBadRequest means a non-2xx response carried a structured error payload
	KindBadRequest ErrorKind = "bad_request"

	// KindFailure means a non-2xx response whose body could not be parsed
	KindFailure ErrorKind = "failure"
)

// ClientError is returned by Fetch once the retry policy stops retrying
type ClientError struct {
	Kind ErrorKind

	// Err is the token or transport error for KindMissingToken and KindHTTPError
	Err error

	// StatusCode and Body are set for KindBadRequest and KindFailure
	StatusCode int
	Body       string

	// ServerError is the parsed payload for KindBadRequest
	ServerError json.RawMessage

	// ServerMessage is the human readable message found in ServerError, if any
	ServerMessage string
}

func (e *ClientError) Error() string {
	switch e.Kind {
	case KindMissingToken:
		return fmt.Sprintf("sheets: missing token: %v", e.Err)
	case KindHTTPError:
		return fmt.Sprintf("sheets: request failed: %v", e.Err)
	case KindBadRequest:
		if e.ServerMessage != "" {
			return fmt.Sprintf("sheets: bad request (%d): %s", e.StatusCode, e.ServerMessage)
		}
		return fmt.Sprintf("sheets: bad request (%d): %s", e.StatusCode, string(e.ServerError))
	default:
		return fmt.Sprintf("sheets: unexpected status %d", e.StatusCode)
	}
}

func (e *ClientError) Unwrap() error {
	return e.Err
}
