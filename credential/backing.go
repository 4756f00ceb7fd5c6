package credential

import (
	"context"
	"errors"
)

// ErrBackingUnavailable wraps every durable-backing failure so callers can
// classify storage outages with a single errors.Is check.
var ErrBackingUnavailable = errors.New("credential backing unavailable")

// DefaultStorageName is the fixed name the credential is stored under in
// every backing. Frontends that previously kept the token in browser session
// storage used the same name, which keeps migrations trivial.
const DefaultStorageName = "auth_token"

// DefaultSessionKey is the session key used when the caller did not scope the
// context to a browser session. Single-session deployments never need
// anything else.
const DefaultSessionKey = "local"

// Backing is the durable side of the credential store. Implementations keep
// exactly one token string per session key.
//
// A missing key is absence, not an error: Load reports it through the bool,
// and Delete on an absent key succeeds. Infrastructure failures are reported
// wrapped in [ErrBackingUnavailable] so callers can classify them.
type Backing interface {
	// Load returns the stored token for the session key and whether a value
	// existed.
	Load(ctx context.Context, sessionKey string) (string, bool, error)

	// Store writes the token for the session key, replacing any prior value.
	Store(ctx context.Context, sessionKey, token string) error

	// Delete removes the stored token. Deleting an absent key is not an error.
	Delete(ctx context.Context, sessionKey string) error

	// Ping reports whether the backing is reachable.
	Ping(ctx context.Context) error
}

func normalizeSessionKey(sessionKey string) string {
	if sessionKey == "" {
		return DefaultSessionKey
	}
	return sessionKey
}
