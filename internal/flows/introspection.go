package flows

import (
	"context"
	"time"
)

// IntrospectionMetrics carries metric IDs needed by the introspection flow.
type IntrospectionMetrics struct {
	IntrospectSuccess int
	IntrospectFailure int
}

// IntrospectionErrors carries host-level sentinel errors used by the
// introspection flow.
type IntrospectionErrors struct {
	EngineNotReady error
	NoCredential   error
	MalformedToken error
}

// IntrospectionDeps captures introspection dependencies.
type IntrospectionDeps struct {
	ReadCredential func(ctx context.Context) (string, error)

	// ParseClaims decodes the credential payload WITHOUT verifying its
	// signature. The platform is the only authority on validity; these
	// claims exist for diagnostics and expiry hints only.
	ParseClaims func(token string) (Claims, error)

	Now func() time.Time

	MetricInc func(int)

	Metrics IntrospectionMetrics
	Errors  IntrospectionErrors
}

func normalizeIntrospectionDeps(deps *IntrospectionDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}

// RunIntrospect reports what the stored credential claims about itself.
// Advisory only: callers must not authorize anything based on the result.
func RunIntrospect(ctx context.Context, deps IntrospectionDeps) (*Introspection, error) {
	normalizeIntrospectionDeps(&deps)
	if deps.ReadCredential == nil || deps.ParseClaims == nil {
		return nil, deps.Errors.EngineNotReady
	}

	token, err := deps.ReadCredential(ctx)
	if err != nil {
		deps.MetricInc(deps.Metrics.IntrospectFailure)
		return nil, err
	}
	if token == "" {
		return nil, deps.Errors.NoCredential
	}

	claims, err := deps.ParseClaims(token)
	if err != nil {
		deps.MetricInc(deps.Metrics.IntrospectFailure)
		return nil, deps.Errors.MalformedToken
	}

	deps.MetricInc(deps.Metrics.IntrospectSuccess)
	return &Introspection{
		Claims:  claims,
		Expired: claims.ExpiresAt > 0 && deps.Now().Unix() > claims.ExpiresAt,
	}, nil
}
