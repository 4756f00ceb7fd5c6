package flows

import (
	"context"
	"strings"
)

// VerificationMetrics carries metric IDs needed by the verification flows.
type VerificationMetrics struct {
	SubmitSuccess int
	SubmitFailure int
	ResendSuccess int
	ResendFailure int
}

// VerificationEvents carries audit event names used by the verification flows.
type VerificationEvents struct {
	Submit string
	Resend string
}

// VerificationErrors carries host-level sentinel errors used by the
// verification flows.
type VerificationErrors struct {
	EngineNotReady error
	InvalidCode    error
	NoPending      error
}

// VerificationDeps captures the platform side of the verification challenge.
// The state machine sequences attempts; these flows perform them.
type VerificationDeps struct {
	// SubmitCode asks the platform to check the code; the engine maps the
	// platform's invalid-code and rate-limit answers before they reach the
	// caller.
	SubmitCode func(ctx context.Context, email, code string) (VerifyAnswer, error)

	// ResendCode asks the platform to mail a fresh code.
	ResendCode func(ctx context.Context, email string) error

	MapPlatformError func(error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, meta func() map[string]string)

	Metrics VerificationMetrics
	Events  VerificationEvents
	Errors  VerificationErrors
}

func normalizeVerificationDeps(deps *VerificationDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.MapPlatformError == nil {
		deps.MapPlatformError = func(err error) error { return err }
	}
}

// RunSubmitCode executes one code check against the platform.
func RunSubmitCode(ctx context.Context, email, code string, deps VerificationDeps) (*VerifyResult, error) {
	normalizeVerificationDeps(&deps)
	if deps.SubmitCode == nil {
		return nil, deps.Errors.EngineNotReady
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, deps.Errors.NoPending
	}
	if code == "" {
		deps.MetricInc(deps.Metrics.SubmitFailure)
		return nil, deps.Errors.InvalidCode
	}

	answer, err := deps.SubmitCode(ctx, email, code)
	if err != nil {
		mapped := deps.MapPlatformError(err)
		deps.MetricInc(deps.Metrics.SubmitFailure)
		deps.EmitAudit(ctx, deps.Events.Submit, false, "", mapped, func() map[string]string {
			return map[string]string{
				"identifier": email,
			}
		})
		return nil, mapped
	}

	deps.MetricInc(deps.Metrics.SubmitSuccess)
	deps.EmitAudit(ctx, deps.Events.Submit, true, answer.User.ID, nil, func() map[string]string {
		return map[string]string{
			"identifier": email,
			"role":       answer.User.Role,
		}
	})
	return &VerifyResult{Token: answer.Token, User: answer.User}, nil
}

// RunResendCode asks the platform to mail a fresh code for the pending email.
// Cooldown gating lives in the state machine, not here.
func RunResendCode(ctx context.Context, email string, deps VerificationDeps) error {
	normalizeVerificationDeps(&deps)
	if deps.ResendCode == nil {
		return deps.Errors.EngineNotReady
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return deps.Errors.NoPending
	}

	if err := deps.ResendCode(ctx, email); err != nil {
		mapped := deps.MapPlatformError(err)
		deps.MetricInc(deps.Metrics.ResendFailure)
		deps.EmitAudit(ctx, deps.Events.Resend, false, "", mapped, func() map[string]string {
			return map[string]string{
				"identifier": email,
			}
		})
		return mapped
	}

	deps.MetricInc(deps.Metrics.ResendSuccess)
	deps.EmitAudit(ctx, deps.Events.Resend, true, "", nil, func() map[string]string {
		return map[string]string{
			"identifier": email,
		}
	})
	return nil
}
