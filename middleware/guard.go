package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// DenyMode selects how guard middleware answers a request it will not let
// through to the wrapped handler.
type DenyMode uint8

const (
	// DenyRedirect issues a 302 to the decision target. Suits
	// browser-facing routes.
	DenyRedirect DenyMode = iota
	// DenyJSON answers 401/403 with a JSON message body. Suits API routes
	// consumed by fetch/XHR clients.
	DenyJSON
)

type userContextKey struct{}

// UserFromContext returns the authenticated user injected by
// [RequireSession] or [RequireRoles], when the request passed a guard.
func UserFromContext(ctx context.Context) (*goSession.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*goSession.User)
	return user, ok
}

// RequireSession returns middleware that only admits requests whose browser
// session resolves to an authenticated user, regardless of role. Denied
// requests are answered per mode without reaching the wrapped handler.
func RequireSession(engine *goSession.Engine, mode DenyMode) func(http.Handler) http.Handler {
	return RequireRoles(engine, 0, mode)
}

// RequireRoles returns middleware that admits requests whose session user
// holds one of the required roles. An empty role set admits any
// authenticated user. The guard forces session resolution, so it never
// leaves a request pending: the outcome is always admit, redirect, or a
// JSON denial.
func RequireRoles(engine *goSession.Engine, required goSession.RoleSet, mode DenyMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				deny(w, r, mode, http.StatusUnauthorized, "unauthorized", "/login")
				return
			}

			decision, err := engine.DecideResolved(r.Context(), required)
			if err != nil {
				if errors.Is(err, goSession.ErrPlatformUnavailable) || errors.Is(err, goSession.ErrStoreUnavailable) {
					deny(w, r, mode, http.StatusBadGateway, "upstream unavailable", "")
					return
				}
				deny(w, r, mode, http.StatusUnauthorized, "unauthorized", engine.RoutePolicy().LoginPath)
				return
			}

			if decision.Kind != goSession.DecisionRender {
				status := http.StatusUnauthorized
				message := "unauthorized"
				if subject, resolved := engine.SessionState(r.Context()); resolved && subject != nil {
					status = http.StatusForbidden
					message = "forbidden"
				}
				deny(w, r, mode, status, message, decision.Target)
				return
			}

			ctx := r.Context()
			if user, err := engine.CurrentUser(ctx); err == nil && user != nil {
				ctx = context.WithValue(ctx, userContextKey{}, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, mode DenyMode, status int, message, target string) {
	if mode == DenyRedirect && target != "" {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
