// Package goSession provides the session-authorization core that a browser-facing
// web tier embeds to talk to the platform API: a durable bearer-credential store,
// an authenticated request dispatcher with typed failure classification, an email
// one-time-code verification state machine, and a role-based route guard.
//
// The package is designed for concurrent web-tier workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
// Per-browser-session state is addressed by the session key carried in the request
// context ([WithSessionKey]); the zero-ceremony default key supports single-session
// embedding in tools and tests.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (User, Decision, MetricsSnapshot, etc.). All internal coordination —
// flow orchestration, pending-record encoding, audit dispatch — lives under
// internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Issue, sign, or verify platform tokens. The credential is opaque here;
//     renewal happens only through a fresh login or verification success.
//   - Expose Redis clients, backing stores, or encoding details in its public API.
//   - Retry failed platform calls. Every failure surfaces once, classified.
//
// # Performance contract
//
// Credential reads are the hot path. [Engine.Credential] must not touch the durable
// backing after the first hydration for a session key, and [guard.Decide] performs
// no I/O at all. Dispatch, login, and verification operations are allowed one
// platform round-trip plus one backing write per call.
package goSession
