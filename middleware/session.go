package middleware

import (
	"net"
	"net/http"

	"github.com/google/uuid"

	goSession "github.com/MrEthical07/goSession"
)

// CookieConfig controls how the browser-session cookie middleware issues and
// reads the session-key cookie.
type CookieConfig struct {
	// Name is the cookie name carrying the session key. Defaults to
	// "gs_session" when empty.
	Name string

	// Secure marks the cookie as HTTPS-only. Enable in production.
	Secure bool

	// MaxAge is the cookie lifetime in seconds. Zero means a browser-session
	// cookie that expires when the browser closes.
	MaxAge int
}

// SessionCookie returns middleware that scopes every request to a browser
// session. It reads the session-key cookie, issues a fresh random key when
// the cookie is missing, and stamps the key plus client IP and a request ID
// into the request context so goSession APIs downstream operate on the right
// per-session state.
func SessionCookie(cfg CookieConfig) func(http.Handler) http.Handler {
	name := cfg.Name
	if name == "" {
		name = "gs_session"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
				key = cookie.Value
			}
			if key == "" {
				key = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    key,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   cfg.MaxAge,
				})
			}

			ctx := goSession.WithSessionKey(r.Context(), key)
			ctx = goSession.WithClientIP(ctx, clientIP(r))
			ctx = goSession.WithRequestID(ctx, uuid.NewString())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
