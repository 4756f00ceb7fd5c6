package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/guard"
	"github.com/MrEthical07/goSession/internal/flows"
)

func flowRegisterRequest(req RegistrationRequest) flows.RegisterRequest {
	return flows.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     string(req.Role),
	}
}

// Login authenticates against the platform. Three outcomes:
//
//   - Success: the credential is installed, the user is memoized, and
//     Navigation points at the role's home.
//   - Verification required: no credential is installed; the email becomes
//     the session's pending verification and Navigation points at the
//     verification surface.
//   - Failure: a classified error ([ErrInvalidCredentials], [ErrRateLimited],
//     [ErrPlatformUnavailable]) carrying the platform's message.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if result.VerificationRequired {
		return &LoginOutcome{
			VerificationRequired: true,
			PendingEmail:         result.PendingEmail,
			Navigation:           e.config.Routes.VerifyEmail,
		}, nil
	}

	return &LoginOutcome{
		User:       toUser(result.User),
		Navigation: e.policy.Landing(guard.Role(result.User.Role)),
	}, nil
}

// Register creates an account on the platform. The platform mails the first
// verification code itself; the new email becomes the session's pending
// verification and Navigation points at the verification surface. No
// credential exists until the challenge succeeds.
func (e *Engine) Register(ctx context.Context, req RegistrationRequest) (*RegistrationOutcome, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.Register(ctx, flowRegisterRequest(req))
	if err != nil {
		return nil, err
	}

	return &RegistrationOutcome{
		PendingEmail: result.PendingEmail,
		Navigation:   e.config.Routes.VerifyEmail,
	}, nil
}

// Logout ends the session scoped by ctx: credential cleared, pending
// verification dropped, session resolution set to "resolved, absent", and
// the verification machine reset. Local destruction never depends on the
// platform answering.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}

	e.resetMachine(ctx)
	return e.flows.Logout(ctx)
}
