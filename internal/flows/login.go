package flows

import (
	"context"
	"log"
	"strings"
)

// LoginMetrics carries metric IDs needed by the login and register flows.
type LoginMetrics struct {
	LoginSuccess       int
	LoginFailure       int
	LoginPendingVerify int
	RegisterSuccess    int
	RegisterFailure    int
}

// LoginEvents carries audit event names used by the login and register flows.
type LoginEvents struct {
	Login    string
	Register string
}

// LoginErrors carries host-level sentinel errors used by the login and
// register flows.
type LoginErrors struct {
	EngineNotReady      error
	InvalidCredentials  error
	PlatformUnavailable error
}

// LoginDeps captures login and register dependencies.
type LoginDeps struct {
	// Login performs the platform login call; the engine translates the
	// "verify your email first" answer into LoginAnswer.VerificationRequired
	// before it reaches the flow.
	Login func(ctx context.Context, email, password string) (LoginAnswer, error)

	// Register performs the platform registration call. Registration always
	// leaves the account pending verification.
	Register func(ctx context.Context, req RegisterRequest) (string, error)

	InstallCredential func(ctx context.Context, token string) error
	SavePending       func(ctx context.Context, email string) error
	CacheUser         func(ctx context.Context, user SessionUser)
	MapPlatformError  func(error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, meta func() map[string]string)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

func normalizeLoginDeps(deps *LoginDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.MapPlatformError == nil {
		deps.MapPlatformError = func(err error) error { return err }
	}
	if deps.CacheUser == nil {
		deps.CacheUser = func(context.Context, SessionUser) {}
	}
	if deps.SavePending == nil {
		deps.SavePending = func(context.Context, string) error { return nil }
	}
}

// RunLogin executes the login flow: one platform call, then either a stored
// credential with a cached user, or the pending-verification handoff.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (*LoginResult, error) {
	normalizeLoginDeps(&deps)
	if deps.Login == nil || deps.InstallCredential == nil {
		return nil, deps.Errors.EngineNotReady
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.Login, false, "", deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"reason":     "missing_input",
			}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	answer, err := deps.Login(ctx, email, password)
	if err != nil {
		mapped := deps.MapPlatformError(err)
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.Login, false, "", mapped, func() map[string]string {
			return map[string]string{
				"identifier": email,
			}
		})
		return nil, mapped
	}

	if answer.VerificationRequired {
		pending := answer.PendingEmail
		if pending == "" {
			pending = email
		}
		if err := deps.SavePending(ctx, pending); err != nil {
			log.Print("goSession: save pending verification: ", err)
		}
		deps.MetricInc(deps.Metrics.LoginPendingVerify)
		deps.EmitAudit(ctx, deps.Events.Login, false, "", nil, func() map[string]string {
			return map[string]string{
				"identifier": pending,
				"reason":     "verification_required",
			}
		})
		return &LoginResult{VerificationRequired: true, PendingEmail: pending}, nil
	}

	if err := deps.InstallCredential(ctx, answer.Token); err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.Login, false, answer.User.ID, err, nil)
		return nil, err
	}
	deps.CacheUser(ctx, answer.User)

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.Login, true, answer.User.ID, nil, func() map[string]string {
		return map[string]string{
			"role": answer.User.Role,
		}
	})
	return &LoginResult{User: answer.User}, nil
}

// RunRegister executes the registration flow. The platform mails the first
// verification code itself; the flow records which email is pending so a
// reload can resume the challenge.
func RunRegister(ctx context.Context, req RegisterRequest, deps LoginDeps) (*RegisterResult, error) {
	normalizeLoginDeps(&deps)
	if deps.Register == nil {
		return nil, deps.Errors.EngineNotReady
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.EmitAudit(ctx, deps.Events.Register, false, "", deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": req.Email,
				"reason":     "missing_input",
			}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	pending, err := deps.Register(ctx, req)
	if err != nil {
		mapped := deps.MapPlatformError(err)
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.EmitAudit(ctx, deps.Events.Register, false, "", mapped, func() map[string]string {
			return map[string]string{
				"identifier": req.Email,
			}
		})
		return nil, mapped
	}
	if pending == "" {
		pending = req.Email
	}

	if err := deps.SavePending(ctx, pending); err != nil {
		log.Print("goSession: save pending verification: ", err)
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.EmitAudit(ctx, deps.Events.Register, true, "", nil, func() map[string]string {
		return map[string]string{
			"identifier": pending,
			"role":       req.Role,
		}
	})
	return &RegisterResult{PendingEmail: pending}, nil
}
