package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Session.FetchUser != nil
}

func (s Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	return RunRegister(ctx, req, s.deps.Login)
}

func (s Service) Logout(ctx context.Context) error {
	return RunLogout(ctx, s.deps.Logout)
}

func (s Service) ResolveSession(ctx context.Context, force bool) (*SessionResult, error) {
	return RunResolveSession(ctx, force, s.deps.Session)
}

func (s Service) SubmitCode(ctx context.Context, email, code string) (*VerifyResult, error) {
	return RunSubmitCode(ctx, email, code, s.deps.Verification)
}

func (s Service) ResendCode(ctx context.Context, email string) error {
	return RunResendCode(ctx, email, s.deps.Verification)
}

func (s Service) Introspect(ctx context.Context) (*Introspection, error) {
	return RunIntrospect(ctx, s.deps.Introspection)
}
