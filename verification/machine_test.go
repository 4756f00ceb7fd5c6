package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type challengeStub struct {
	mu          sync.Mutex
	submits     []string
	resends     int
	installs    []string
	cleared     int
	invalidated int

	outcome    Outcome
	submitErr  error
	resendErr  error
	installErr error

	started chan struct{}
	block   chan struct{}
}

func (s *challengeStub) submit(_ context.Context, _, code string) (Outcome, error) {
	s.mu.Lock()
	s.submits = append(s.submits, code)
	started, block := s.started, s.block
	out, err := s.outcome, s.submitErr
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return out, err
}

func (s *challengeStub) resend(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resends++
	return s.resendErr
}

func (s *challengeStub) install(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installErr != nil {
		return s.installErr
	}
	s.installs = append(s.installs, token)
	return nil
}

func (s *challengeStub) clearPending(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}

func (s *challengeStub) invalidate(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
}

func (s *challengeStub) submitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submits)
}

func newTestMachine(t *testing.T, stub *challengeStub, cfg Config) *Machine {
	t.Helper()

	m, err := NewMachine(cfg, Deps{
		Submit:         stub.submit,
		Resend:         stub.resend,
		Install:        stub.install,
		ClearPending:   stub.clearPending,
		InvalidateUser: stub.invalidate,
		Landing: func(role string) string {
			if role == "employer" {
				return "/employer/dashboard"
			}
			return "/dashboard"
		},
	})
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	return m
}

func TestBeginRequiresPendingEmail(t *testing.T) {
	m := newTestMachine(t, &challengeStub{}, Config{})

	if err := m.Begin(""); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}
	if got := m.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("expected PhaseIdle, got %v", got)
	}
}

func TestBeginArmsCooldown(t *testing.T) {
	m := newTestMachine(t, &challengeStub{}, Config{ResendCooldownSeconds: 60})

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	state := m.Snapshot()
	if state.Phase != PhaseAwaitingCode {
		t.Fatalf("expected AwaitingCode, got %v", state.Phase)
	}
	if state.Cooldown != 60 {
		t.Fatalf("expected cooldown 60, got %d", state.Cooldown)
	}
	if state.CanResend {
		t.Fatal("resend must be gated right after entry")
	}
}

func TestSetCodeFiltersAndCaps(t *testing.T) {
	m := newTestMachine(t, &challengeStub{}, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := m.SetCode(ctx, "12a-3 4"); err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	if got := m.Code(); got != "1234" {
		t.Fatalf("expected filtered 1234, got %q", got)
	}

	stub := &challengeStub{outcome: Outcome{Token: "tok"}}
	m = newTestMachine(t, stub, Config{})
	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := m.SetCode(ctx, "123456789"); err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	stub.mu.Lock()
	submitted := stub.submits
	stub.mu.Unlock()
	if len(submitted) != 1 || submitted[0] != "123456" {
		t.Fatalf("expected capped code 123456 submitted once, got %v", submitted)
	}
}

func TestAutoSubmitFiresOnceOnFullLength(t *testing.T) {
	stub := &challengeStub{submitErr: errors.New("wrong code")}
	m := newTestMachine(t, stub, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if err := m.SetCode(ctx, "12345"); err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	if got := stub.submitCount(); got != 0 {
		t.Fatalf("partial code must not submit, got %d", got)
	}

	// Reaching full length fires exactly one check.
	if err := m.SetCode(ctx, "123456"); err == nil {
		t.Fatal("expected wrong-code error surfaced through auto-submit")
	}
	if got := stub.submitCount(); got != 1 {
		t.Fatalf("expected 1 submit, got %d", got)
	}

	// Holding full length does not re-trigger.
	if err := m.SetCode(ctx, "123456"); err != nil {
		t.Fatalf("SetCode at full length failed: %v", err)
	}
	if got := stub.submitCount(); got != 1 {
		t.Fatalf("full-length hold must not re-submit, got %d", got)
	}

	// Dropping below and refilling re-arms.
	if err := m.SetCode(ctx, "12345"); err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	if err := m.SetCode(ctx, "123457"); err == nil {
		t.Fatal("expected wrong-code error on refill submit")
	}
	if got := stub.submitCount(); got != 2 {
		t.Fatalf("expected 2 submits after re-arm, got %d", got)
	}
}

func TestSubmitSuccessAppliesEffectsAndLanding(t *testing.T) {
	stub := &challengeStub{outcome: Outcome{Token: "tok-new", Role: "employer"}}
	m := newTestMachine(t, stub, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := m.SetCode(ctx, "123456"); err != nil {
		t.Fatalf("auto-submit failed: %v", err)
	}

	state := m.Snapshot()
	if state.Phase != PhaseVerified {
		t.Fatalf("expected Verified, got %v", state.Phase)
	}
	if state.Landing != "/employer/dashboard" {
		t.Fatalf("expected employer landing, got %q", state.Landing)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.installs) != 1 || stub.installs[0] != "tok-new" {
		t.Fatalf("expected credential installed once, got %v", stub.installs)
	}
	if stub.cleared != 1 {
		t.Fatalf("expected pending cleared once, got %d", stub.cleared)
	}
	if stub.invalidated != 1 {
		t.Fatalf("expected cached user invalidated once, got %d", stub.invalidated)
	}
}

func TestSubmitFailureKeepsCode(t *testing.T) {
	stub := &challengeStub{submitErr: errors.New("invalid code")}
	m := newTestMachine(t, stub, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := m.SetCode(ctx, "123456"); err == nil {
		t.Fatal("expected submit failure")
	}

	state := m.Snapshot()
	if state.Phase != PhaseAwaitingCode {
		t.Fatalf("expected AwaitingCode after failure, got %v", state.Phase)
	}
	if state.Code != "123456" {
		t.Fatalf("failure must keep the typed code, got %q", state.Code)
	}
	if state.Err == nil {
		t.Fatal("expected failure recorded in snapshot")
	}
}

func TestSubmitInstallFailureIsFailure(t *testing.T) {
	stub := &challengeStub{
		outcome:    Outcome{Token: "tok-new"},
		installErr: errors.New("backing down"),
	}
	m := newTestMachine(t, stub, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := m.SetCode(ctx, "123456"); err == nil {
		t.Fatal("expected install failure to surface")
	}
	if got := m.Snapshot().Phase; got != PhaseAwaitingCode {
		t.Fatalf("expected AwaitingCode after install failure, got %v", got)
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	stub := &challengeStub{
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	m := newTestMachine(t, stub, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.SetCode(ctx, "123456")
	}()
	<-stub.started

	if err := m.Submit(ctx); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	if err := m.SetCode(ctx, "999999"); err != nil {
		t.Fatalf("SetCode during flight failed: %v", err)
	}
	if got := m.Code(); got != "123456" {
		t.Fatalf("input during flight must be dropped, code is %q", got)
	}

	close(stub.block)
	if err := <-done; err != nil {
		t.Fatalf("blocked submit failed: %v", err)
	}
	if got := stub.submitCount(); got != 1 {
		t.Fatalf("expected exactly 1 check, got %d", got)
	}
}

func TestLateCompletionLosesOwnership(t *testing.T) {
	stub := &challengeStub{
		outcome: Outcome{Token: "tok-late"},
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	m := newTestMachine(t, stub, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.SetCode(ctx, "123456")
	}()
	<-stub.started

	m.Reset()
	close(stub.block)
	if err := <-done; err != nil {
		t.Fatalf("late completion must be silent, got %v", err)
	}

	if got := m.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("late completion must not move the phase, got %v", got)
	}

	// The disowned result must be fully inert: no credential installed, no
	// pending record cleared, no cached user invalidated.
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.installs) != 0 {
		t.Fatalf("late completion installed a credential %d time(s); want 0", len(stub.installs))
	}
	if stub.cleared != 0 {
		t.Fatalf("late completion cleared pending %d time(s); want 0", stub.cleared)
	}
	if stub.invalidated != 0 {
		t.Fatalf("late completion invalidated the user %d time(s); want 0", stub.invalidated)
	}
}

func TestResendGatedByCooldown(t *testing.T) {
	stub := &challengeStub{}
	m := newTestMachine(t, stub, Config{ResendCooldownSeconds: 3})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := m.Resend(ctx); !errors.Is(err, ErrResendCooldown) {
		t.Fatalf("expected ErrResendCooldown, got %v", err)
	}

	for i := 0; i < 3; i++ {
		m.Tick()
	}
	if got := m.Snapshot().Cooldown; got != 0 {
		t.Fatalf("expected cooldown 0, got %d", got)
	}
	if !m.Snapshot().CanResend {
		t.Fatal("expected resend available at zero")
	}

	if err := m.Resend(ctx); err != nil {
		t.Fatalf("Resend failed: %v", err)
	}
	if stub.resends != 1 {
		t.Fatalf("expected 1 resend, got %d", stub.resends)
	}
	if got := m.Snapshot().Cooldown; got != 3 {
		t.Fatalf("successful resend must re-arm cooldown, got %d", got)
	}
}

func TestResendFailureLeavesCooldownExpired(t *testing.T) {
	stub := &challengeStub{resendErr: errors.New("mailer down")}
	m := newTestMachine(t, stub, Config{ResendCooldownSeconds: 1})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	m.Tick()

	if err := m.Resend(ctx); err == nil {
		t.Fatal("expected resend failure")
	}
	if got := m.Snapshot().Cooldown; got != 0 {
		t.Fatalf("failed resend must not re-arm cooldown, got %d", got)
	}

	stub.mu.Lock()
	stub.resendErr = nil
	stub.mu.Unlock()
	if err := m.Resend(ctx); err != nil {
		t.Fatalf("retry after failure should be allowed: %v", err)
	}
}

func TestTickStopsAtZero(t *testing.T) {
	m := newTestMachine(t, &challengeStub{}, Config{ResendCooldownSeconds: 2})

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if got := m.Tick(); got < 0 {
			t.Fatalf("cooldown went negative: %d", got)
		}
	}
	if got := m.Snapshot().Cooldown; got != 0 {
		t.Fatalf("expected cooldown parked at 0, got %d", got)
	}
}

func TestSubmitRequiresFullCode(t *testing.T) {
	m := newTestMachine(t, &challengeStub{}, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := m.SetCode(ctx, "123"); err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	if err := m.Submit(ctx); !errors.Is(err, ErrCodeIncomplete) {
		t.Fatalf("expected ErrCodeIncomplete, got %v", err)
	}
}

func TestReEntryOrphansInFlightCheck(t *testing.T) {
	stub := &challengeStub{
		outcome: Outcome{Token: "tok-old"},
		started: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	m := newTestMachine(t, stub, Config{})
	ctx := context.Background()

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.SetCode(ctx, "123456")
	}()
	<-stub.started

	if err := m.Begin("a@b.c"); err != nil {
		t.Fatalf("re-entry failed: %v", err)
	}
	close(stub.block)
	if err := <-done; err != nil {
		t.Fatalf("orphaned completion must be silent, got %v", err)
	}

	state := m.Snapshot()
	if state.Phase != PhaseAwaitingCode {
		t.Fatalf("re-entry owns the phase, got %v", state.Phase)
	}
	if state.Code != "" {
		t.Fatalf("re-entry must clear the typed code, got %q", state.Code)
	}
}
