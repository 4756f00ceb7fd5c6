package goSession

import (
	"io"
	"time"

	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"

	"github.com/MrEthical07/goSession/guard"
	"github.com/MrEthical07/goSession/verification"
)

// Role identifies what kind of account a user has on the platform.
type Role = guard.Role

const (
	RoleJobSeeker = guard.RoleJobSeeker
	RoleEmployer  = guard.RoleEmployer
	RoleAdmin     = guard.RoleAdmin
)

// RoleSet is a small set of roles used to express route requirements.
type RoleSet = guard.RoleSet

// Roles builds a [RoleSet] from the given roles.
func Roles(roles ...Role) RoleSet {
	return guard.Roles(roles...)
}

// Decision is the route guard's answer for one navigation attempt.
type Decision = guard.Decision

// DecisionKind discriminates the three outcomes a [Decision] can carry.
type DecisionKind = guard.DecisionKind

const (
	DecisionPending  = guard.DecisionPending
	DecisionRender   = guard.DecisionRender
	DecisionRedirect = guard.DecisionRedirect
)

// RoutePolicy holds the path table the guard decides against.
type RoutePolicy = guard.Policy

// VerificationPhase is the challenge machine's phase.
type VerificationPhase = verification.Phase

const (
	VerificationIdle         = verification.PhaseIdle
	VerificationAwaitingCode = verification.PhaseAwaitingCode
	VerificationVerifying    = verification.PhaseVerifying
	VerificationVerified     = verification.PhaseVerified
)

// VerificationState is a point-in-time snapshot of the challenge machine.
type VerificationState = verification.State

// User is the platform's view of the signed-in account. The engine treats it
// as immutable once resolved.
type User struct {
	ID       string
	Email    string
	Name     string
	Role     Role
	Verified bool
}

// LoginOutcome reports where a login attempt landed: a live session, or the
// handoff to the verification challenge. Navigation is the path the caller
// should send the browser to next: the role's home on success, the
// verification surface when a code is still required.
type LoginOutcome struct {
	User                 *User
	VerificationRequired bool
	PendingEmail         string
	Navigation           string
}

// RegistrationRequest is the payload for [Engine.Register].
type RegistrationRequest struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// RegistrationOutcome reports the email now pending verification and the
// verification surface the caller should navigate to.
type RegistrationOutcome struct {
	PendingEmail string
	Navigation   string
}

// Claims is the advisory view of an unverified credential payload.
type Claims = flows.Claims

// Introspection reports what a credential claims about itself. Advisory only:
// nothing here is signature-checked and no behavior may key off it.
type Introspection = flows.Introspection

// Health is a point-in-time availability report for the engine's
// dependencies.
type Health struct {
	CredentialBackingOK      bool
	CredentialBackingLatency time.Duration
	CredentialBackingError   string `json:",omitempty"`

	AuditEventsDropped uint64
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
