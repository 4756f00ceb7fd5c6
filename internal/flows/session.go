package flows

import "context"

// SessionMetrics carries metric IDs needed by the resolve flow.
type SessionMetrics struct {
	ResolveHit     int
	ResolveMiss    int
	ResolveAbsent  int
	ResolveFailure int
}

// SessionEvents carries audit event names used by the resolve flow.
type SessionEvents struct {
	Resolve string
}

// SessionErrors carries host-level sentinel errors used by the resolve flow.
type SessionErrors struct {
	EngineNotReady error
}

// SessionDeps captures session resolution dependencies.
type SessionDeps struct {
	// CachedUser returns the memoized resolution for this session, if one
	// exists: (user, present, resolved).
	CachedUser func(ctx context.Context) (SessionUser, bool, bool)

	// FetchUser asks the platform who the credential belongs to. Present
	// false with a nil error is the ordinary "not signed in" answer.
	FetchUser func(ctx context.Context) (SessionUser, bool, error)

	// CacheResolution memoizes the answer, present or absent.
	CacheResolution func(ctx context.Context, user SessionUser, present bool)

	MapPlatformError func(error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, meta func() map[string]string)

	Metrics SessionMetrics
	Events  SessionEvents
	Errors  SessionErrors
}

func normalizeSessionDeps(deps *SessionDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.MapPlatformError == nil {
		deps.MapPlatformError = func(err error) error { return err }
	}
	if deps.CachedUser == nil {
		deps.CachedUser = func(context.Context) (SessionUser, bool, bool) { return SessionUser{}, false, false }
	}
	if deps.CacheResolution == nil {
		deps.CacheResolution = func(context.Context, SessionUser, bool) {}
	}
}

// RunResolveSession answers "who is signed in right now". The first call per
// session asks the platform; afterwards the memoized resolution is served
// until something invalidates it (login, logout, verification, a rejected
// credential). force bypasses the memo without clearing it first.
//
// An unauthenticated answer is a resolution, not an error: guards need
// "resolved, absent" to redirect instead of waiting forever.
func RunResolveSession(ctx context.Context, force bool, deps SessionDeps) (*SessionResult, error) {
	normalizeSessionDeps(&deps)
	if deps.FetchUser == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if !force {
		if user, present, resolved := deps.CachedUser(ctx); resolved {
			deps.MetricInc(deps.Metrics.ResolveHit)
			return &SessionResult{User: user, Present: present}, nil
		}
	}
	deps.MetricInc(deps.Metrics.ResolveMiss)

	user, present, err := deps.FetchUser(ctx)
	if err != nil {
		mapped := deps.MapPlatformError(err)
		deps.MetricInc(deps.Metrics.ResolveFailure)
		deps.EmitAudit(ctx, deps.Events.Resolve, false, "", mapped, nil)
		return nil, mapped
	}

	deps.CacheResolution(ctx, user, present)
	if !present {
		deps.MetricInc(deps.Metrics.ResolveAbsent)
		return &SessionResult{}, nil
	}

	return &SessionResult{User: user, Present: true}, nil
}
