package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/golang-jwt/jwt/v5"
)

// Introspect reports what the stored credential claims about itself, without
// verifying anything: the token is parsed unverified and the platform remains
// the only authority on validity. Advisory means advisory — no goSession
// behavior keys off the result, and expiry stays observed reactively through
// 401 answers, never predicted from these claims.
func (e *Engine) Introspect(ctx context.Context) (*Introspection, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}
	return e.flows.Introspect(ctx)
}

// parseClaims decodes a JWT payload without signature verification. Tokens
// that are opaque to the JWT parser report [ErrMalformedCredential] upstream.
func parseClaims(token string) (flows.Claims, error) {
	parser := jwt.NewParser()

	var claims jwt.MapClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return flows.Claims{}, err
	}

	out := flows.Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Unix()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Unix()
	}

	return out, nil
}

// Health reports point-in-time availability of the engine's dependencies:
// the credential backing (with ping latency) and the audit drop counter.
func (e *Engine) Health(ctx context.Context) Health {
	if e == nil || e.credentials == nil {
		return Health{}
	}

	h := Health{AuditEventsDropped: e.AuditDropped()}

	latency, err := e.credentials.Ping(ctx)
	h.CredentialBackingLatency = latency
	if err != nil {
		h.CredentialBackingError = err.Error()
	} else {
		h.CredentialBackingOK = true
	}

	return h
}
