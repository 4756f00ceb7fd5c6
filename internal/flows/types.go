package flows

// SessionUser is the flow-local shape of the platform's current-user answer.
type SessionUser struct {
	ID       string
	Email    string
	Name     string
	Role     string
	Verified bool
}

// LoginAnswer is what the platform login call hands back after the engine
// translated transport results: either a credential with its user, or the
// signal that the account still needs email verification.
type LoginAnswer struct {
	Token                string
	User                 SessionUser
	VerificationRequired bool
	PendingEmail         string
}

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	User                 SessionUser
	VerificationRequired bool
	PendingEmail         string
}

// RegisterRequest is the flow-local registration payload.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// RegisterResult reports where the just-registered account must go next.
type RegisterResult struct {
	PendingEmail string
}

// SessionResult is the flow-local shape of a session resolution: Present
// false with a nil error means "resolved, no session".
type SessionResult struct {
	User    SessionUser
	Present bool
}

// VerifyAnswer is what the platform's code check hands back on success.
type VerifyAnswer struct {
	Token string
	User  SessionUser
}

// VerifyResult is the flow-local shape of a successful code check.
type VerifyResult struct {
	Token string
	User  SessionUser
}

// Claims is the advisory view of an unverified credential payload.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  int64
	ExpiresAt int64
}

// Introspection reports what a credential claims about itself. Advisory only:
// nothing here is signature-checked and no behavior may key off it.
type Introspection struct {
	Claims  Claims
	Expired bool
}
