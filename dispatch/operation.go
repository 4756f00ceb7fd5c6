package dispatch

import (
	"fmt"
	"net/url"
	"strings"
)

// UnauthorizedPolicy selects how a 401 platform answer is reported.
type UnauthorizedPolicy uint8

const (
	// UnauthorizedAsError surfaces a 401 as a [StatusError]. This is the
	// default and fits actions that must not silently do nothing.
	UnauthorizedAsError UnauthorizedPolicy = iota

	// UnauthorizedAsNil surfaces a 401 as absence: no error, no decoded
	// value. This fits probes such as "fetch the current user" where an
	// unauthenticated answer is an ordinary outcome.
	UnauthorizedAsNil
)

// Operation describes one platform call: method, ordered path segments,
// filter params, and an optional JSON body.
type Operation struct {
	// Method is the HTTP method. Empty means GET, as in net/http.
	Method string

	// Segments are joined in order under the base URL, each path-escaped.
	// An empty segment is a construction error, not a silent no-op.
	Segments []string

	// Params become the query string. Entries whose value is empty or the
	// literal "all" are dropped; both mean "no filter" to the platform.
	Params map[string]string

	// Body, when non-nil, is JSON-encoded and sent with
	// Content-Type: application/json. A nil Body sends no body and no
	// content type.
	Body any

	// Unauthorized picks the 401 policy for this operation.
	Unauthorized UnauthorizedPolicy
}

// omitParam reports whether a param value means "no filter".
func omitParam(value string) bool {
	return value == "" || value == "all"
}

// URL renders the operation's target under base. The result is deterministic:
// params are sorted by key, so equal operations always render equal URLs.
func (op Operation) URL(base string) (string, error) {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "", fmt.Errorf("%w: empty base URL", ErrInvalidOperation)
	}

	var b strings.Builder
	b.WriteString(base)
	for _, segment := range op.Segments {
		if segment == "" {
			return "", fmt.Errorf("%w: empty path segment", ErrInvalidOperation)
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}

	query := url.Values{}
	for key, value := range op.Params {
		if omitParam(value) {
			continue
		}
		query.Set(key, value)
	}
	if encoded := query.Encode(); encoded != "" {
		b.WriteByte('?')
		b.WriteString(encoded)
	}

	return b.String(), nil
}

func (op Operation) method() string {
	method := strings.ToUpper(strings.TrimSpace(op.Method))
	if method == "" {
		return "GET"
	}
	return method
}
