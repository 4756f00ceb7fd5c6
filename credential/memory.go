package credential

import (
	"context"
	"sync"
)

// MemoryBacking is a process-local [Backing]. Credentials do not survive a
// restart, which matches browser session-storage semantics; it is also the
// default in tests.
type MemoryBacking struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBacking creates an empty [MemoryBacking].
func NewMemoryBacking() *MemoryBacking {
	return &MemoryBacking{values: make(map[string]string)}
}

// Load retrieves the credential for the session key.
func (b *MemoryBacking) Load(_ context.Context, sessionKey string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	token, ok := b.values[normalizeSessionKey(sessionKey)]
	return token, ok, nil
}

// Store writes the credential for the session key.
func (b *MemoryBacking) Store(_ context.Context, sessionKey, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[normalizeSessionKey(sessionKey)] = token
	return nil
}

// Delete removes the credential for the session key.
func (b *MemoryBacking) Delete(_ context.Context, sessionKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, normalizeSessionKey(sessionKey))
	return nil
}

// Ping always succeeds.
func (b *MemoryBacking) Ping(context.Context) error {
	return nil
}
