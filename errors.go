package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/credential"
	"github.com/MrEthical07/goSession/verification"
)

// Sentinel errors returned by Engine operations. Classify with [errors.Is];
// wrapped messages carry the platform's own wording where one was given.
var (
	// ErrEngineNotReady means the engine was not built, or was closed.
	ErrEngineNotReady = errors.New("engine not ready")

	// ErrAuthRequired means the operation needs a signed-in session and the
	// current session key has none.
	ErrAuthRequired = errors.New("authentication required")

	// ErrInvalidCredentials covers rejected logins and duplicate registrations.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrVerificationRequired means the account exists but its email is not
	// verified yet; the caller should route to the verification surface.
	ErrVerificationRequired = errors.New("email verification required")

	// ErrNoPendingVerification means a verification operation was attempted
	// with no challenge in progress for this session.
	ErrNoPendingVerification = errors.New("no pending verification")

	// ErrInvalidCode means the platform rejected the submitted one-time code.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrRateLimited maps the platform's 429 responses.
	ErrRateLimited = errors.New("rate limited by platform")

	// ErrPlatformUnavailable covers transport failures and 5xx responses from
	// the platform API.
	ErrPlatformUnavailable = errors.New("platform unavailable")

	// ErrMalformedCredential means the stored credential could not be parsed
	// for introspection.
	ErrMalformedCredential = errors.New("credential payload malformed")

	// ErrStoreUnavailable is the credential backing failure, re-exported so
	// callers can classify without importing the credential package.
	ErrStoreUnavailable = credential.ErrBackingUnavailable

	// ErrResendCooldown and ErrSubmitInFlight are the verification machine's
	// gating errors, re-exported for the same reason.
	ErrResendCooldown = verification.ErrResendCooldown
	ErrSubmitInFlight = verification.ErrSubmitInFlight
)
