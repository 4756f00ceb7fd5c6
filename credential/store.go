package credential

import (
	"context"
	"sync"
	"time"
)

// Store is the authoritative in-process holder of the bearer credential for
// each browser session, backed by a durable [Backing].
//
// Reads are the hot path: after the first Get for a session key the token is
// served from memory without touching the backing. Writes are write-through
// and keep the cache coherent with the durable copy.
type Store struct {
	backing Backing

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// cacheEntry distinguishes "never hydrated" (no map entry) from "hydrated and
// known absent" (entry with empty token).
type cacheEntry struct {
	token    string
	hydrated bool
}

// NewStore returns a [Store] over the given backing. A nil backing falls back
// to an in-memory one, which is only useful in tests.
func NewStore(backing Backing) *Store {
	if backing == nil {
		backing = NewMemoryBacking()
	}
	return &Store{
		backing: backing,
		cache:   make(map[string]cacheEntry),
	}
}

// Get returns the credential for the session key, or the empty string when no
// credential is stored. The first call per session key hydrates the cache
// from the backing; later calls are pure memory reads, including after the
// backing answered "absent".
//
//
//	Performance: 1 map read after hydration; 1 backing Load before.
func (s *Store) Get(ctx context.Context, sessionKey string) (string, error) {
	sessionKey = normalizeSessionKey(sessionKey)

	s.mu.RLock()
	e, ok := s.cache[sessionKey]
	s.mu.RUnlock()
	if ok && e.hydrated {
		return e.token, nil
	}

	token, found, err := s.backing.Load(ctx, sessionKey)
	if err != nil {
		return "", err
	}
	if !found {
		token = ""
	}

	s.mu.Lock()
	// A Set or Clear that raced the hydration already holds newer state than
	// the backing snapshot we just read; keep it.
	if cur, ok := s.cache[sessionKey]; ok && cur.hydrated {
		token = cur.token
	} else {
		s.cache[sessionKey] = cacheEntry{token: token, hydrated: true}
	}
	s.mu.Unlock()

	return token, nil
}

// Set stores the credential for the session key, durable copy first. Setting
// the empty string is equivalent to [Store.Clear].
func (s *Store) Set(ctx context.Context, sessionKey, token string) error {
	if token == "" {
		return s.Clear(ctx, sessionKey)
	}
	sessionKey = normalizeSessionKey(sessionKey)

	if err := s.backing.Store(ctx, sessionKey, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[sessionKey] = cacheEntry{token: token, hydrated: true}
	s.mu.Unlock()

	return nil
}

// Clear removes the credential for the session key from the backing and
// remembers the absence, so a later Get does not resurrect a stale durable
// copy. Clearing an absent credential succeeds.
func (s *Store) Clear(ctx context.Context, sessionKey string) error {
	sessionKey = normalizeSessionKey(sessionKey)

	if err := s.backing.Delete(ctx, sessionKey); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[sessionKey] = cacheEntry{hydrated: true}
	s.mu.Unlock()

	return nil
}

// Ping returns a point-in-time backing availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.backing.Ping(ctx); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}
