package flows

import (
	"context"
	"log"
)

// LogoutMetrics carries metric IDs needed by the logout flow.
type LogoutMetrics struct {
	LogoutSuccess int
	LogoutFailure int
}

// LogoutEvents carries audit event names used by the logout flow.
type LogoutEvents struct {
	Logout string
}

// LogoutErrors carries host-level sentinel errors used by the logout flow.
type LogoutErrors struct {
	EngineNotReady error
}

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	// PlatformLogout tells the platform to drop its side of the session.
	// Best effort: the local session ends either way.
	PlatformLogout func(ctx context.Context) error

	ClearCredential func(ctx context.Context) error
	DropPending     func(ctx context.Context) error
	CacheAbsent     func(ctx context.Context)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, meta func() map[string]string)

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  LogoutErrors
}

func normalizeLogoutDeps(deps *LogoutDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.DropPending == nil {
		deps.DropPending = func(context.Context) error { return nil }
	}
	if deps.CacheAbsent == nil {
		deps.CacheAbsent = func(context.Context) {}
	}
}

// RunLogout ends the local session: the credential is removed, any pending
// verification is dropped, and the cached resolution becomes "resolved,
// absent" so guards redirect instead of hanging on Pending.
//
// The platform call is advisory. A dead platform must never trap the user in
// a session they asked to leave.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	normalizeLogoutDeps(&deps)
	if deps.ClearCredential == nil {
		return deps.Errors.EngineNotReady
	}

	if deps.PlatformLogout != nil {
		if err := deps.PlatformLogout(ctx); err != nil {
			log.Print("goSession: platform logout: ", err)
		}
	}

	if err := deps.ClearCredential(ctx); err != nil {
		// Local state still winds down; the durable credential may outlive
		// this session until the backing recovers.
		deps.CacheAbsent(ctx)
		deps.MetricInc(deps.Metrics.LogoutFailure)
		deps.EmitAudit(ctx, deps.Events.Logout, false, "", err, nil)
		return err
	}

	if err := deps.DropPending(ctx); err != nil {
		log.Print("goSession: drop pending verification: ", err)
	}
	deps.CacheAbsent(ctx)

	deps.MetricInc(deps.Metrics.LogoutSuccess)
	deps.EmitAudit(ctx, deps.Events.Logout, true, "", nil, nil)
	return nil
}
