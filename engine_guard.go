package goSession

import "context"

// Decide computes the route decision for the session scoped by ctx against a
// required-role set, from the memoized resolution only: no platform call, no
// timer. An unresolved session yields Pending — callers render a neutral
// loading state and must not redirect yet.
func (e *Engine) Decide(ctx context.Context, required RoleSet) Decision {
	if e == nil {
		return Decision{Kind: DecisionPending}
	}

	subject, resolved := e.SessionState(ctx)
	decision := e.policy.Decide(subject, resolved, required)
	e.countDecision(decision)
	return decision
}

// DecideResolved is [Engine.Decide] after forcing session resolution to
// complete, so it never answers Pending. Server-side callers (middleware,
// handlers) use it; the error is a platform failure during resolution.
func (e *Engine) DecideResolved(ctx context.Context, required RoleSet) (Decision, error) {
	if e == nil || !e.flows.Initialized() {
		return Decision{Kind: DecisionPending}, ErrEngineNotReady
	}

	if _, err := e.CurrentUser(ctx); err != nil {
		return Decision{Kind: DecisionPending}, err
	}

	subject, resolved := e.SessionState(ctx)
	decision := e.policy.Decide(subject, resolved, required)
	e.countDecision(decision)
	return decision, nil
}

func (e *Engine) countDecision(decision Decision) {
	switch decision.Kind {
	case DecisionRender:
		e.metricInc(MetricGuardRender)
	case DecisionRedirect:
		e.metricInc(MetricGuardRedirect)
	case DecisionPending:
		e.metricInc(MetricGuardPending)
	}
}

// CanonicalHome returns the configured home path for a role, falling back to
// the configured fallback for unknown roles.
func (e *Engine) CanonicalHome(role Role) string {
	if e == nil {
		return "/"
	}
	return e.policy.CanonicalHome(role)
}
