package goSession

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestIntrospectReportsClaims(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := testCtx("s1")

	now := time.Now()
	token := signedTestToken(t, jwt.MapClaims{
		"sub":   "u-42",
		"email": "alice@example.com",
		"role":  "employer",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	if err := engine.SetCredential(ctx, token); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}

	report, err := engine.Introspect(ctx)
	if err != nil {
		t.Fatalf("Introspect failed: %v", err)
	}
	if report.Claims.Subject != "u-42" || report.Claims.Email != "alice@example.com" || report.Claims.Role != "employer" {
		t.Fatalf("unexpected claims %+v", report.Claims)
	}
	if report.Expired {
		t.Fatal("did not expect expired report for future exp")
	}
}

func TestIntrospectExpiredToken(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := testCtx("s1")

	token := signedTestToken(t, jwt.MapClaims{
		"sub": "u-7",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if err := engine.SetCredential(ctx, token); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}

	report, err := engine.Introspect(ctx)
	if err != nil {
		t.Fatalf("Introspect failed: %v", err)
	}
	if !report.Expired {
		t.Fatal("expected expired report")
	}
}

func TestIntrospectWithoutCredential(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	if _, err := engine.Introspect(testCtx("empty")); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestIntrospectOpaqueToken(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := testCtx("s1")

	if err := engine.SetCredential(ctx, "not-a-jwt"); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}
	if _, err := engine.Introspect(ctx); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected ErrMalformedCredential, got %v", err)
	}
}

func TestHealthReportsBacking(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	health := engine.Health(testCtx("s1"))
	if !health.CredentialBackingOK {
		t.Fatalf("expected healthy backing, got %+v", health)
	}
	if health.CredentialBackingError != "" {
		t.Fatalf("unexpected backing error %q", health.CredentialBackingError)
	}
}
