// Package middleware exposes HTTP middleware adapters for browser-session
// scoping and role-based route guarding built on top of goSession.Engine.
//
// # Middleware
//
//   - [SessionCookie] — issues/reads the session-key cookie and scopes the
//     request context to that browser session.
//   - [RequireSession] — admits any authenticated session.
//   - [RequireRoles] — admits sessions whose user holds a required role.
//
// Guards call Engine.DecideResolved and translate the decision into either a
// 302 redirect (browser routes) or a JSON 401/403 (API routes), then inject
// the resolved user into the request context for the wrapped handler.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication or authorization logic itself — all decisions are
// delegated to Engine.DecideResolved and the configured route policy.
//
// # What this package must NOT do
//
//   - Talk to the platform API directly (Engine handles I/O).
//   - Read or write the credential store (Engine handles persistence).
//   - Make authorization decisions beyond rendering what Engine decided.
package middleware
