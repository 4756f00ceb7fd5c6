package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/guard"
	"github.com/MrEthical07/goSession/internal/flows"
)

/*
====================================
SESSION RESOLUTION CACHE
====================================
*/

func (e *Engine) cachedUser(ctx context.Context) (flows.SessionUser, bool, bool) {
	sessionKey := sessionKeyFromContext(ctx)

	e.mu.Lock()
	entry, resolved := e.sessions[sessionKey]
	if resolved {
		e.touchSessionLocked(sessionKey)
	}
	e.mu.Unlock()

	return entry.user, entry.present, resolved
}

func (e *Engine) cacheResolution(ctx context.Context, user flows.SessionUser, present bool) {
	sessionKey := sessionKeyFromContext(ctx)

	e.mu.Lock()
	e.sessions[sessionKey] = sessionCacheEntry{user: user, present: present}
	e.touchSessionLocked(sessionKey)
	e.sweepIdleSessionsLocked()
	e.mu.Unlock()
}

// cacheAbsent records "resolved, no session". Guards redirect to login off
// this state instead of flashing Pending after a logout or a rejected
// credential.
func (e *Engine) cacheAbsent(ctx context.Context) {
	e.cacheResolution(ctx, flows.SessionUser{}, false)
}

// invalidateSession forgets the memoized resolution entirely, forcing the
// next read to refetch from the platform. Used when the identity behind the
// credential changed (login, verification success).
func (e *Engine) invalidateSession(ctx context.Context) {
	sessionKey := sessionKeyFromContext(ctx)

	e.mu.Lock()
	delete(e.sessions, sessionKey)
	e.mu.Unlock()
}

/*
====================================
PUBLIC SESSION SURFACE
====================================
*/

func toUser(u flows.SessionUser) *User {
	return &User{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     Role(u.Role),
		Verified: u.Verified,
	}
}

// CurrentUser answers "who is signed in" for the session scoped by ctx. The
// first call asks the platform under the 401-as-absence policy; afterwards
// the memoized resolution is served until login, logout, verification, or a
// rejected credential invalidates it. A nil user with a nil error is the
// ordinary "not signed in" answer, never a failure.
func (e *Engine) CurrentUser(ctx context.Context) (*User, error) {
	return e.resolveUser(ctx, false)
}

// RefreshSession bypasses the memoized resolution and refetches the current
// user from the platform, overwriting the cache with the authoritative
// answer.
func (e *Engine) RefreshSession(ctx context.Context) (*User, error) {
	return e.resolveUser(ctx, true)
}

func (e *Engine) resolveUser(ctx context.Context, force bool) (*User, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.ResolveSession(ctx, force)
	if err != nil {
		return nil, err
	}
	if !result.Present {
		return nil, nil
	}
	return toUser(result.User), nil
}

// SessionState reports the memoized resolution without touching the
// platform: the authenticated subject (nil when absent) and whether
// resolution has completed at all. Guard decisions are computed from exactly
// this pair.
func (e *Engine) SessionState(ctx context.Context) (*guard.Subject, bool) {
	if e == nil {
		return nil, false
	}

	user, present, resolved := e.cachedUser(ctx)
	if !resolved || !present {
		return nil, resolved
	}
	return &guard.Subject{UserID: user.ID, Role: guard.Role(user.Role)}, true
}
