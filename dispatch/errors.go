package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrPlatformUnreachable wraps transport failures: connection refused, DNS,
// timeouts.
var ErrPlatformUnreachable = errors.New("platform unreachable")

// ErrMalformedResponse means the platform answered with a body the operation's
// decoder could not parse.
var ErrMalformedResponse = errors.New("malformed platform response")

// ErrInvalidOperation means the Operation itself was unusable, before any
// request was sent.
var ErrInvalidOperation = errors.New("invalid operation")

// StatusError reports a non-success platform answer: the HTTP status plus the
// best-effort human message extracted from the response body, falling back to
// the status reason phrase.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform returned %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is a [StatusError] with the given status code.
func IsStatus(err error, statusCode int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == statusCode
}

// messageFromBody digs the conventional message field out of an error
// payload. The platform answers {"message": "..."} on most error paths and
// {"error": "..."} on a few legacy ones.
func messageFromBody(body []byte, statusCode int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return "unexpected status"
}
