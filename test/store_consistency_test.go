//go:build integration
// +build integration

package test

import (
	"net/http/httptest"
	"testing"

	goSession "github.com/MrEthical07/goSession"
)

func TestStoreConsistencyCredentialSurvivesRebuild(t *testing.T) {
	engine, platform, rdb, cleanup := newIntegrationEngine(t, nil)
	defer cleanup()

	platform.seed("erin@example.com", "pw", "job_seeker", true)
	ctx := sessionCtx("browser-rebuild")

	if _, err := engine.Login(ctx, "erin@example.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token, err := engine.Credential(ctx)
	if err != nil || token == "" {
		t.Fatalf("expected installed credential, err=%v", err)
	}

	// A second engine over the same Redis simulates a process restart: the
	// first read per session hydrates from the durable backing.
	server := httptest.NewServer(platform.handler())
	defer server.Close()

	cfg := goSession.DefaultConfig()
	cfg.Platform.BaseURL = server.URL

	rebuilt, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	defer rebuilt.Close()

	got, err := rebuilt.Credential(ctx)
	if err != nil {
		t.Fatalf("Credential after rebuild failed: %v", err)
	}
	if got != token {
		t.Fatalf("expected rehydrated credential %q, got %q", token, got)
	}

	user, err := rebuilt.CurrentUser(ctx)
	if err != nil || user == nil || user.Email != "erin@example.com" {
		t.Fatalf("expected resolved user after rebuild, got %+v err=%v", user, err)
	}
}

func TestStoreConsistencyRejectedCredentialCleared(t *testing.T) {
	engine, platform, _, cleanup := newIntegrationEngine(t, nil)
	defer cleanup()

	platform.seed("frank@example.com", "pw", "employer", true)
	ctx := sessionCtx("browser-revoked")

	if _, err := engine.Login(ctx, "frank@example.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// The platform revokes every token; the next probe carries the stored
	// credential and comes back 401, which drops it under the default posture.
	platform.revokeTokens()

	user, err := engine.RefreshSession(ctx)
	if err != nil {
		t.Fatalf("RefreshSession failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected absent session after revocation, got %+v", user)
	}

	if token, err := engine.Credential(ctx); err != nil || token != "" {
		t.Fatalf("expected cleared credential, got %q err=%v", token, err)
	}

	decision, err := engine.DecideResolved(ctx, 0)
	if err != nil {
		t.Fatalf("DecideResolved failed: %v", err)
	}
	if decision.Kind != goSession.DecisionRedirect || decision.Target != "/login" {
		t.Fatalf("expected redirect to login, got %+v", decision)
	}
}

func TestStoreConsistencyPendingSurvivesRebuild(t *testing.T) {
	persist := func(cfg *goSession.Config) {
		cfg.Verification.PersistPending = true
	}
	engine, platform, rdb, cleanup := newIntegrationEngine(t, persist)
	defer cleanup()

	ctx := sessionCtx("browser-pending")

	if _, err := engine.Register(ctx, goSession.RegistrationRequest{
		Name:     "Grace",
		Email:    "grace@example.com",
		Password: "pw",
		Role:     goSession.RoleJobSeeker,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	server := httptest.NewServer(platform.handler())
	defer server.Close()

	cfg := goSession.DefaultConfig()
	cfg.Platform.BaseURL = server.URL
	cfg.Verification.PersistPending = true

	rebuilt, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	defer rebuilt.Close()

	state, err := rebuilt.EnterVerification(ctx)
	if err != nil {
		t.Fatalf("EnterVerification after rebuild failed: %v", err)
	}
	if state.Email != "grace@example.com" {
		t.Fatalf("expected pending email restored, got %q", state.Email)
	}
	if state.Cooldown <= 0 || state.Cooldown > 60 {
		t.Fatalf("expected remaining cooldown in (0,60], got %d", state.Cooldown)
	}

	if err := rebuilt.SetVerificationCode(ctx, platform.otp("grace@example.com")); err != nil {
		t.Fatalf("verification after rebuild failed: %v", err)
	}
	if state := rebuilt.VerificationSnapshot(ctx); state.Phase != goSession.VerificationVerified {
		t.Fatalf("expected verified after rebuild, got %v", state.Phase)
	}
}
