package goSession

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MrEthical07/goSession/guard"
	"github.com/MrEthical07/goSession/internal/stores"
	"github.com/MrEthical07/goSession/verification"
)

/*
====================================
PENDING VERIFICATION BOOKKEEPING
====================================
*/

// pendingChallenge is the in-process pending-verification record: the email
// mid-verification and the wall-clock deadline the resend cooldown runs to.
type pendingChallenge struct {
	email          string
	resendDeadline time.Time
}

// savePending records which email is mid-verification for the session. A new
// pending overwrites the previous one; there is never more than one per
// session key. The record carries the resend deadline so a later challenge
// entry resumes with the remaining cooldown; with persistence enabled it also
// survives a process restart.
func (e *Engine) savePending(ctx context.Context, email string) error {
	sessionKey := sessionKeyFromContext(ctx)
	deadline := e.now().Add(e.config.Verification.ResendCooldown)

	e.mu.Lock()
	e.pendingMem[sessionKey] = pendingChallenge{email: email, resendDeadline: deadline}
	e.touchSessionLocked(sessionKey)
	e.sweepIdleSessionsLocked()
	e.mu.Unlock()

	if e.pending == nil {
		return nil
	}
	return e.pending.Save(ctx, sessionKey, &stores.PendingVerificationRecord{
		Email:          email,
		ResendDeadline: deadline.Unix(),
	}, e.config.Verification.PendingTTL)
}

// loadPending returns the pending email and the remaining resend cooldown in
// seconds, or ok=false when nothing is pending for the session.
func (e *Engine) loadPending(ctx context.Context) (email string, cooldown int, ok bool) {
	sessionKey := sessionKeyFromContext(ctx)

	e.mu.Lock()
	entry, hit := e.pendingMem[sessionKey]
	if hit {
		e.touchSessionLocked(sessionKey)
	}
	e.mu.Unlock()
	if hit {
		remaining := entry.resendDeadline.Sub(e.now())
		if remaining < 0 {
			remaining = 0
		}
		return entry.email, int(remaining / time.Second), true
	}

	if e.pending == nil {
		return "", 0, false
	}

	record, err := e.pending.Get(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, stores.ErrPendingNotFound) {
			log.Print("goSession: load pending verification: ", err)
		}
		return "", 0, false
	}

	remaining := record.ResendDeadline - e.now().Unix()
	if remaining < 0 {
		remaining = 0
	}
	return record.Email, int(remaining), true
}

func (e *Engine) dropPending(ctx context.Context) error {
	sessionKey := sessionKeyFromContext(ctx)

	e.mu.Lock()
	delete(e.pendingMem, sessionKey)
	e.mu.Unlock()

	if e.pending == nil {
		return nil
	}
	return e.pending.Delete(ctx, sessionKey)
}

// touchResendDeadline moves the pending record's resend deadline forward
// after a successful resend, in memory and in the durable store. Best effort:
// the live machine already holds the authoritative countdown.
func (e *Engine) touchResendDeadline(ctx context.Context) {
	sessionKey := sessionKeyFromContext(ctx)
	deadline := e.now().Add(e.config.Verification.ResendCooldown)

	e.mu.Lock()
	if entry, ok := e.pendingMem[sessionKey]; ok {
		entry.resendDeadline = deadline
		e.pendingMem[sessionKey] = entry
	}
	e.mu.Unlock()

	if e.pending == nil {
		return
	}
	if err := e.pending.TouchResendDeadline(ctx, sessionKey, deadline.Unix()); err != nil {
		log.Print("goSession: touch resend deadline: ", err)
	}
}

/*
====================================
MACHINE LIFECYCLE
====================================
*/

// machine returns the session's verification machine, creating it on first
// use. All machines share one deps wiring; per-session state lives inside
// each machine and in the stores keyed by the ctx session key.
func (e *Engine) machine(ctx context.Context) *verification.Machine {
	sessionKey := sessionKeyFromContext(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.touchSessionLocked(sessionKey)
	if m, ok := e.machines[sessionKey]; ok {
		return m
	}
	e.sweepIdleSessionsLocked()

	m, err := verification.NewMachine(verification.Config{
		CodeLength:            e.config.Verification.CodeLength,
		ResendCooldownSeconds: int(e.config.Verification.ResendCooldown / time.Second),
	}, e.machineDeps())
	if err != nil {
		// Deps are wired by Build; a constructor failure here means the
		// engine itself was assembled without them.
		panic("goSession: verification machine deps not wired: " + err.Error())
	}

	e.machines[sessionKey] = m
	return m
}

func (e *Engine) machineDeps() verification.Deps {
	return verification.Deps{
		Submit: func(ctx context.Context, email, code string) (verification.Outcome, error) {
			result, err := e.flows.SubmitCode(ctx, email, code)
			if err != nil {
				return verification.Outcome{}, err
			}
			return verification.Outcome{Token: result.Token, Role: result.User.Role}, nil
		},
		Resend: func(ctx context.Context, email string) error {
			if err := e.flows.ResendCode(ctx, email); err != nil {
				return err
			}
			e.touchResendDeadline(ctx)
			return nil
		},
		Install: func(ctx context.Context, token string) error {
			return e.credentials.Set(ctx, sessionKeyFromContext(ctx), token)
		},
		ClearPending: func(ctx context.Context) error {
			return e.dropPending(ctx)
		},
		InvalidateUser: func(ctx context.Context) {
			e.invalidateSession(ctx)
		},
		Landing: func(role string) string {
			return e.policy.Landing(guard.Role(role))
		},
	}
}

func (e *Engine) resetMachine(ctx context.Context) {
	sessionKey := sessionKeyFromContext(ctx)

	e.mu.Lock()
	m := e.machines[sessionKey]
	delete(e.machines, sessionKey)
	e.mu.Unlock()

	if m != nil {
		m.Reset()
	}
}

/*
====================================
PUBLIC VERIFICATION SURFACE
====================================
*/

// EnterVerification enters the challenge surface for the session. A pending
// verification must already exist from a login or registration step;
// [ErrNoPendingVerification] tells the caller to redirect to registration
// instead — the challenge never asks for an email itself. Re-entering with a
// live challenge resumes it; a persisted pending resumes with its remaining
// cooldown after a reload.
func (e *Engine) EnterVerification(ctx context.Context) (VerificationState, error) {
	if e == nil || !e.flows.Initialized() {
		return VerificationState{}, ErrEngineNotReady
	}

	m := e.machine(ctx)
	if state := m.Snapshot(); state.Phase != verification.PhaseIdle {
		return state, nil
	}

	email, cooldown, ok := e.loadPending(ctx)
	if !ok {
		return VerificationState{}, ErrNoPendingVerification
	}

	if err := m.BeginWithCooldown(email, cooldown); err != nil {
		return VerificationState{}, err
	}
	return m.Snapshot(), nil
}

// SetVerificationCode feeds typed input into the challenge. Non-digits are
// dropped, the code is capped at the configured length, and typing the final
// digit submits automatically.
func (e *Engine) SetVerificationCode(ctx context.Context, input string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.machine(ctx).SetCode(ctx, input)
}

// SubmitVerification runs one code check explicitly. Auto-submit normally
// does this; the explicit form exists for callers whose input surface
// delivers the whole code at once.
func (e *Engine) SubmitVerification(ctx context.Context) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.machine(ctx).Submit(ctx)
}

// ResendVerification asks the platform to mail a fresh code, gated on the
// cooldown having expired. A gated call is a complete no-op: no platform
// call, cooldown unchanged, [ErrResendCooldown] returned.
func (e *Engine) ResendVerification(ctx context.Context) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.machine(ctx).Resend(ctx)
}

// VerificationTick advances the session's resend countdown by one second and
// returns the seconds remaining. Call it from the once-per-second timer of
// whatever renders the challenge.
func (e *Engine) VerificationTick(ctx context.Context) int {
	if e == nil {
		return 0
	}
	return e.machine(ctx).Tick()
}

// VerificationSnapshot returns the challenge state for rendering: phase,
// typed code, cooldown, submit/resend availability, landing path once
// verified, and the last failure.
func (e *Engine) VerificationSnapshot(ctx context.Context) VerificationState {
	if e == nil {
		return VerificationState{}
	}
	return e.machine(ctx).Snapshot()
}
