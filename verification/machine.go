package verification

import (
	"context"
	"errors"
	"log"
	"sync"
)

const (
	defaultCodeLength     = 6
	defaultResendCooldown = 60
	maxConfigurableCode   = 10
	minConfigurableCode   = 4
)

var (
	// ErrNoPending means Begin was never called, or Reset cleared the
	// challenge.
	ErrNoPending = errors.New("no pending verification")

	// ErrNotAwaitingCode means the machine is idle, mid-check, or already
	// verified.
	ErrNotAwaitingCode = errors.New("not awaiting a verification code")

	// ErrCodeIncomplete means Submit was called with fewer digits typed than
	// the code length.
	ErrCodeIncomplete = errors.New("verification code incomplete")

	// ErrSubmitInFlight means a check is already running for this code.
	ErrSubmitInFlight = errors.New("verification check already in flight")

	// ErrResendCooldown means the resend timer has not reached zero.
	ErrResendCooldown = errors.New("resend cooldown active")
)

// Phase is the challenge machine's lifecycle position.
type Phase uint8

const (
	// PhaseIdle means no challenge has been entered.
	PhaseIdle Phase = iota
	// PhaseAwaitingCode means the user is typing the mailed code.
	PhaseAwaitingCode
	// PhaseVerifying means one check is in flight against the platform.
	PhaseVerifying
	// PhaseVerified means the challenge succeeded and a landing path is set.
	PhaseVerified
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingCode:
		return "awaiting_code"
	case PhaseVerifying:
		return "verifying"
	case PhaseVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// Outcome is what a successful platform check hands back.
type Outcome struct {
	Token string
	Role  string
}

// Deps wires the machine's external effects. Submit and Resend are required;
// the rest default to no-ops.
type Deps struct {
	// Submit asks the platform to check the code for the pending email.
	Submit func(ctx context.Context, email, code string) (Outcome, error)

	// Resend asks the platform to mail a fresh code.
	Resend func(ctx context.Context, email string) error

	// Install stores the issued credential. Failure counts as a failed
	// check: the machine stays in AwaitingCode and surfaces the error.
	Install func(ctx context.Context, token string) error

	// ClearPending removes the durable pending-verification marker.
	// Best effort: failure is logged and does not block verification.
	ClearPending func(ctx context.Context) error

	// InvalidateUser drops any cached "current user" so the next resolve
	// refetches with the new credential.
	InvalidateUser func(ctx context.Context)

	// Landing maps the verified role to the path the user should land on.
	Landing func(role string) string
}

func normalizeDeps(deps *Deps) {
	if deps.Install == nil {
		deps.Install = func(context.Context, string) error { return nil }
	}
	if deps.ClearPending == nil {
		deps.ClearPending = func(context.Context) error { return nil }
	}
	if deps.InvalidateUser == nil {
		deps.InvalidateUser = func(context.Context) {}
	}
	if deps.Landing == nil {
		deps.Landing = func(string) string { return "/dashboard" }
	}
}

// Config tunes a [Machine].
type Config struct {
	// CodeLength is how many digits the mailed code has. Default 6.
	CodeLength int

	// ResendCooldownSeconds is the cooldown armed on entry and after every
	// successful resend. Default 60.
	ResendCooldownSeconds int
}

func (c *Config) normalize() {
	if c.CodeLength < minConfigurableCode || c.CodeLength > maxConfigurableCode {
		c.CodeLength = defaultCodeLength
	}
	if c.ResendCooldownSeconds <= 0 {
		c.ResendCooldownSeconds = defaultResendCooldown
	}
}

// Machine sequences one verification challenge. Safe for concurrent use; the
// UI goroutine, the ticker, and completion callbacks may all touch it.
type Machine struct {
	deps       Deps
	codeLength int
	cooldownAt int

	mu         sync.Mutex
	phase      Phase
	email      string
	code       string
	cooldown   int
	generation uint64
	inFlight   bool
	resending  bool
	landing    string
	lastErr    error
}

// NewMachine creates a [Machine].
func NewMachine(cfg Config, deps Deps) (*Machine, error) {
	if deps.Submit == nil {
		return nil, errors.New("verification: Submit dependency required")
	}
	if deps.Resend == nil {
		return nil, errors.New("verification: Resend dependency required")
	}
	normalizeDeps(&deps)
	cfg.normalize()

	return &Machine{
		deps:       deps,
		codeLength: cfg.CodeLength,
		cooldownAt: cfg.ResendCooldownSeconds,
	}, nil
}

// Begin enters the challenge for email. An empty email means nothing is
// pending and the caller should send the user to registration instead.
//
// Re-entering resets the typed code, arms the cooldown, and orphans any check
// still in flight from the previous entry.
func (m *Machine) Begin(email string) error {
	return m.begin(email, m.cooldownAt)
}

// BeginWithCooldown is [Machine.Begin] with an explicit starting cooldown, in
// seconds. A reload mid-challenge resumes with the remaining cooldown instead
// of re-arming the full window; negative values clamp to zero.
func (m *Machine) BeginWithCooldown(email string, cooldownSeconds int) error {
	if cooldownSeconds < 0 {
		cooldownSeconds = 0
	}
	if cooldownSeconds > m.cooldownAt {
		cooldownSeconds = m.cooldownAt
	}
	return m.begin(email, cooldownSeconds)
}

func (m *Machine) begin(email string, cooldown int) error {
	if email == "" {
		return ErrNoPending
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.phase = PhaseAwaitingCode
	m.email = email
	m.code = ""
	m.cooldown = cooldown
	m.inFlight = false
	m.resending = false
	m.landing = ""
	m.lastErr = nil
	return nil
}

// Reset abandons the challenge. Any in-flight check loses ownership of the
// phase and its result is dropped.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.phase = PhaseIdle
	m.email = ""
	m.code = ""
	m.cooldown = 0
	m.inFlight = false
	m.resending = false
	m.landing = ""
	m.lastErr = nil
}

// SetCode replaces the typed code with input filtered to digits and capped at
// the configured length. Typing the final digit submits; see the package doc
// for the exact re-arm rule. Input while a check is in flight is dropped.
func (m *Machine) SetCode(ctx context.Context, input string) error {
	m.mu.Lock()
	if m.phase == PhaseVerifying {
		m.mu.Unlock()
		return nil
	}
	if m.phase != PhaseAwaitingCode {
		m.mu.Unlock()
		return ErrNotAwaitingCode
	}

	next := capDigits(input, m.codeLength)
	prev := m.code
	m.code = next
	trigger := len(next) == m.codeLength && len(prev) < m.codeLength
	m.mu.Unlock()

	if !trigger {
		return nil
	}
	return m.Submit(ctx)
}

// Code returns the currently typed code.
func (m *Machine) Code() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.code
}

// Submit runs one check against the platform. Exactly one check is in flight
// at a time; a second call while one runs returns [ErrSubmitInFlight] and
// does nothing. Success moves to Verified and applies the install effects;
// failure returns to AwaitingCode with the code kept for correction.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	if m.phase != PhaseAwaitingCode {
		m.mu.Unlock()
		return ErrNotAwaitingCode
	}
	if len(m.code) != m.codeLength {
		m.mu.Unlock()
		return ErrCodeIncomplete
	}

	m.inFlight = true
	m.phase = PhaseVerifying
	m.lastErr = nil
	gen := m.generation
	email, code := m.email, m.code
	m.mu.Unlock()

	outcome, err := m.deps.Submit(ctx, email, code)

	m.mu.Lock()
	defer m.mu.Unlock()

	// A Reset or re-entry during the check bumped the generation; the result
	// belongs to a challenge that no longer exists and applies nothing.
	if m.generation != gen || m.phase != PhaseVerifying {
		return nil
	}
	m.inFlight = false

	var landing string
	if err == nil {
		// Effects run under the lock so a reset cannot interleave between
		// the ownership check and the install.
		if installErr := m.deps.Install(ctx, outcome.Token); installErr != nil {
			err = installErr
		} else {
			if clearErr := m.deps.ClearPending(ctx); clearErr != nil {
				log.Print("goSession: clear pending verification: ", clearErr)
			}
			m.deps.InvalidateUser(ctx)
			landing = m.deps.Landing(outcome.Role)
		}
	}

	if err != nil {
		m.phase = PhaseAwaitingCode
		m.lastErr = err
		return err
	}

	m.phase = PhaseVerified
	m.landing = landing
	return nil
}

// Resend asks the platform to mail a fresh code. Gated on the cooldown having
// reached zero and nothing being in flight; a successful resend re-arms the
// cooldown, a failed one leaves it at zero so the user can try again.
func (m *Machine) Resend(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseAwaitingCode {
		m.mu.Unlock()
		return ErrNotAwaitingCode
	}
	if m.inFlight || m.resending {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	if m.cooldown > 0 {
		m.mu.Unlock()
		return ErrResendCooldown
	}
	m.resending = true
	gen := m.generation
	email := m.email
	m.mu.Unlock()

	err := m.deps.Resend(ctx, email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		return nil
	}
	m.resending = false

	if err != nil {
		m.lastErr = err
		return err
	}
	m.cooldown = m.cooldownAt
	return nil
}

// Tick advances the cooldown clock by one second. It stops exactly at zero
// and never goes negative; call it from a once-per-second ticker while the
// challenge page is visible.
func (m *Machine) Tick() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cooldown > 0 {
		m.cooldown--
	}
	return m.cooldown
}

// State is a point-in-time snapshot for rendering.
type State struct {
	Phase    Phase
	Email    string
	Code     string
	Cooldown int

	// CanSubmit reports a full code with no check in flight.
	CanSubmit bool
	// CanResend reports an expired cooldown with nothing in flight.
	CanResend bool

	// Landing is the post-verification path, set once Verified.
	Landing string

	// Err is the most recent failure, cleared by the next attempt.
	Err error
}

// Snapshot returns the current [State].
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		Phase:     m.phase,
		Email:     m.email,
		Code:      m.code,
		Cooldown:  m.cooldown,
		CanSubmit: m.phase == PhaseAwaitingCode && !m.inFlight && len(m.code) == m.codeLength,
		CanResend: m.phase == PhaseAwaitingCode && !m.inFlight && !m.resending && m.cooldown == 0,
		Landing:   m.landing,
		Err:       m.lastErr,
	}
}

// capDigits keeps only ASCII digits from input, truncated to limit.
func capDigits(input string, limit int) string {
	out := make([]byte, 0, limit)
	for i := 0; i < len(input) && len(out) < limit; i++ {
		if input[i] >= '0' && input[i] <= '9' {
			out = append(out, input[i])
		}
	}
	return string(out)
}
