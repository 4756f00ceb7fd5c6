package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/credential"
)

type sessionKeyContextKey struct{}
type clientIPContextKey struct{}
type requestIDContextKey struct{}

// WithSessionKey attaches a browser-session identifier to ctx. Every Engine
// operation is scoped by it: credentials, the resolved-user cache, pending
// verification, and the challenge machine are all per session key.
//
// Single-session callers can skip this entirely; the default key
// [credential.DefaultSessionKey] is used.
func WithSessionKey(ctx context.Context, sessionKey string) context.Context {
	return context.WithValue(ctx, sessionKeyContextKey{}, sessionKey)
}

// WithClientIP attaches the caller's IP address to ctx for audit logging.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestID attaches a request correlation ID to ctx. The dispatcher
// forwards it to the platform as X-Request-Id and audit events carry it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func sessionKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return credential.DefaultSessionKey
	}

	sessionKey, _ := ctx.Value(sessionKeyContextKey{}).(string)
	if sessionKey == "" {
		return credential.DefaultSessionKey
	}

	return sessionKey
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
