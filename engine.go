package goSession

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/credential"
	"github.com/MrEthical07/goSession/dispatch"
	"github.com/MrEthical07/goSession/guard"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/internal/stores"
	"github.com/MrEthical07/goSession/verification"
)

// Engine is the session core: it holds the per-session credential store, the
// platform dispatcher, the verification machines, and the route guard policy.
// One Engine serves many browser sessions, multiplexed by the session key in
// each call's context (see [WithSessionKey]). All methods are safe for
// concurrent use and tolerate a nil receiver.
type Engine struct {
	config      Config
	policy      guard.Policy
	credentials *credential.Store
	pending     *stores.PendingVerificationStore
	dispatcher  *dispatch.Dispatcher
	flows       flows.Service
	audit       *internalaudit.Dispatcher
	metrics     *Metrics

	// Per-session-key mutable state. The credential store keeps its own
	// cache; everything else scoped to a browser session lives here. Entries
	// idle past sessionIdleTTL are swept out; see sweepIdleSessionsLocked.
	mu         sync.Mutex
	machines   map[string]*verification.Machine
	sessions   map[string]sessionCacheEntry
	pendingMem map[string]pendingChallenge
	touched    map[string]time.Time
	lastSweep  time.Time

	now func() time.Time
}

// sessionCacheEntry is a memoized "who am I" answer. Map presence means the
// resolution completed; present distinguishes a live session from a resolved
// absence.
type sessionCacheEntry struct {
	user    flows.SessionUser
	present bool
}

const (
	// sessionIdleTTL is how long a session key may go untouched before its
	// in-process state is evicted. Anonymous visitors mint a fresh key per
	// cookie, so without eviction the maps grow with every visitor.
	sessionIdleTTL = 30 * time.Minute

	// sessionSweepInterval caps how often the sweep walks the maps.
	sessionSweepInterval = time.Minute
)

// touchSessionLocked stamps the session key's last activity. Caller holds
// e.mu.
func (e *Engine) touchSessionLocked(sessionKey string) {
	e.touched[sessionKey] = e.now()
}

// sweepIdleSessionsLocked evicts in-process state for session keys idle past
// sessionIdleTTL. Runs at most once per sessionSweepInterval; caller holds
// e.mu. Durable state (credential backing, persisted pending) is untouched, so
// a swept session resumes from its stores on the next request.
func (e *Engine) sweepIdleSessionsLocked() {
	now := e.now()
	if now.Sub(e.lastSweep) < sessionSweepInterval {
		return
	}
	e.lastSweep = now

	for sessionKey, at := range e.touched {
		if now.Sub(at) <= sessionIdleTTL {
			continue
		}
		delete(e.touched, sessionKey)
		delete(e.sessions, sessionKey)
		delete(e.machines, sessionKey)
		delete(e.pendingMem, sessionKey)
	}
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine's counters and histograms. Disabled
// metrics yield empty maps, never nil.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Config returns a copy of the engine's effective configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// RoutePolicy returns the path table the engine decides navigation against.
func (e *Engine) RoutePolicy() RoutePolicy {
	if e == nil {
		return guard.DefaultPolicy()
	}
	return e.policy
}

// GoogleLoginURL returns the platform's federated-login entry URL. The caller
// issues a full-page redirect to it; no token or code handling happens on
// this side.
func (e *Engine) GoogleLoginURL() string {
	if e == nil || e.config.Platform.GoogleLoginPath == "" {
		return ""
	}
	return e.config.Platform.BaseURL + e.config.Platform.GoogleLoginPath
}

/*
====================================
CREDENTIAL SURFACE
====================================
*/

// Credential returns the bearer credential for the session scoped by ctx, or
// the empty string when none is stored. The first read per session hydrates
// from the durable backing; later reads are memory only.
func (e *Engine) Credential(ctx context.Context) (string, error) {
	if e == nil || e.credentials == nil {
		return "", ErrEngineNotReady
	}
	return e.credentials.Get(ctx, sessionKeyFromContext(ctx))
}

// SetCredential installs (non-empty) or clears (empty) the bearer credential
// for the session scoped by ctx. This is the single write path to durable
// credential state; installing also drops the memoized session resolution so
// the next read refetches under the new identity.
func (e *Engine) SetCredential(ctx context.Context, token string) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}
	if err := e.credentials.Set(ctx, sessionKeyFromContext(ctx), token); err != nil {
		return err
	}
	e.invalidateSession(ctx)
	return nil
}

// ClearCredential removes the credential for the session scoped by ctx and
// marks the session resolution as "resolved, absent".
func (e *Engine) ClearCredential(ctx context.Context) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}
	if err := e.credentials.Clear(ctx, sessionKeyFromContext(ctx)); err != nil {
		return err
	}
	e.cacheAbsent(ctx)
	return nil
}

// onAuthFailed runs when a request that carried a credential came back 401.
// Under the default security posture the rejected credential is dropped so
// the next guard decision redirects to login instead of looping on a dead
// token.
func (e *Engine) onAuthFailed(ctx context.Context) {
	e.metricInc(MetricUnauthorizedResponse)

	if !e.config.Security.ClearCredentialOnUnauthorized {
		return
	}

	sessionKey := sessionKeyFromContext(ctx)
	if err := e.credentials.Clear(ctx, sessionKey); err != nil {
		log.Print("goSession: clear rejected credential: ", err)
		return
	}
	e.cacheAbsent(ctx)

	e.metricInc(MetricCredentialCleared)
	e.emitAudit(ctx, auditEventUnauthorized, false, "", ErrAuthRequired, nil)
}
