//go:build integration
// +build integration

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
)

// stubAccount is one seeded platform account. OTP holds the code the stub
// "mailed" last; tests read it back instead of an inbox.
type stubAccount struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
	Verified bool
	OTP      string
}

// stubPlatform imitates the platform API surface the engine talks to. State
// is mutable under mu so tests can seed accounts, read issued OTPs, and
// revoke tokens mid-test.
type stubPlatform struct {
	mu       sync.Mutex
	accounts map[string]*stubAccount
	tokens   map[string]string
	nextID   int
	nextOTP  int
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{
		accounts: make(map[string]*stubAccount),
		tokens:   make(map[string]string),
	}
}

func (p *stubPlatform) seed(email, password, role string, verified bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	p.accounts[email] = &stubAccount{
		ID:       fmt.Sprintf("u-%d", p.nextID),
		Name:     "Test User",
		Email:    email,
		Password: password,
		Role:     role,
		Verified: verified,
	}
}

func (p *stubPlatform) otp(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if account, ok := p.accounts[email]; ok {
		return account.OTP
	}
	return ""
}

// revokeTokens invalidates every issued token so the next current-user probe
// answers 401.
func (p *stubPlatform) revokeTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = make(map[string]string)
}

func (p *stubPlatform) issueOTP(account *stubAccount) {
	p.nextOTP++
	account.OTP = fmt.Sprintf("%06d", p.nextOTP)
}

func (p *stubPlatform) issueToken(account *stubAccount) string {
	token := fmt.Sprintf("tok-%s-%d", account.ID, len(p.tokens))
	p.tokens[token] = account.Email
	return token
}

func (p *stubPlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			stubJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request"})
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		if _, exists := p.accounts[req.Email]; exists {
			stubJSON(w, http.StatusConflict, map[string]string{"message": "email already registered"})
			return
		}
		p.nextID++
		account := &stubAccount{
			ID:       fmt.Sprintf("u-%d", p.nextID),
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
		}
		p.issueOTP(account)
		p.accounts[req.Email] = account
		stubJSON(w, http.StatusCreated, map[string]any{"user": stubUserJSON(account)})
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		p.mu.Lock()
		defer p.mu.Unlock()

		account, ok := p.accounts[req.Email]
		if !ok || account.Password != req.Password {
			stubJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid email or password"})
			return
		}
		if !account.Verified {
			p.issueOTP(account)
			stubJSON(w, http.StatusForbidden, map[string]string{"message": "Please verify your email to continue"})
			return
		}
		stubJSON(w, http.StatusOK, map[string]any{
			"token": p.issueToken(account),
			"user":  stubUserJSON(account),
		})
	})

	mux.HandleFunc("POST /auth/verify-email", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		p.mu.Lock()
		defer p.mu.Unlock()

		account, ok := p.accounts[req.Email]
		if !ok || account.OTP == "" || account.OTP != req.OTP {
			stubJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid or expired code"})
			return
		}
		account.Verified = true
		account.OTP = ""
		stubJSON(w, http.StatusOK, map[string]any{
			"token": p.issueToken(account),
			"user":  stubUserJSON(account),
		})
	})

	mux.HandleFunc("POST /auth/resend-verification", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		p.mu.Lock()
		defer p.mu.Unlock()

		account, ok := p.accounts[req.Email]
		if !ok || account.Verified {
			stubJSON(w, http.StatusBadRequest, map[string]string{"message": "no pending verification"})
			return
		}
		p.issueOTP(account)
		stubJSON(w, http.StatusOK, map[string]string{"message": "verification email sent"})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		const bearer = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, bearer) {
			stubJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		email, ok := p.tokens[auth[len(bearer):]]
		if !ok {
			stubJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		stubJSON(w, http.StatusOK, map[string]any{"user": stubUserJSON(p.accounts[email])})
	})

	return mux
}

func stubUserJSON(account *stubAccount) map[string]any {
	return map[string]any{
		"id":         account.ID,
		"name":       account.Name,
		"email":      account.Email,
		"role":       account.Role,
		"isVerified": account.Verified,
	}
}

func stubJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newIntegrationEngine builds an engine over miniredis and a stub platform.
// mutate may adjust the config before Build; pass nil for defaults.
func newIntegrationEngine(t *testing.T, mutate func(cfg *goSession.Config)) (*goSession.Engine, *stubPlatform, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	platform := newStubPlatform()
	server := httptest.NewServer(platform.handler())

	cfg := goSession.DefaultConfig()
	cfg.Platform.BaseURL = server.URL
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, platform, rdb, func() {
		engine.Close()
		server.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func sessionCtx(key string) context.Context {
	return goSession.WithSessionKey(context.Background(), key)
}
