// Package credential owns the bearer credential for each browser session: an
// in-process cache in front of a durable, session-scoped [Backing].
//
// # Write-through discipline
//
// The [Store] is the single writer of the credential. Every mutation goes to
// the durable backing first and touches the cache only after the backing
// accepted the write, so a crash between the two steps leaves the durable
// copy authoritative. Reads hydrate the cache from the backing at most once
// per session key and are side-effect free after that.
//
// # Architecture boundaries
//
// This package stores and returns opaque token strings. It does NOT inspect,
// validate, or refresh tokens, and it has no notion of expiry beyond the TTL
// the backing applies — deciding what a token means belongs to the Engine.
//
// # What this package must NOT do
//
//   - Import goSession, dispatch, or verification (no upward imports).
//   - Interpret token contents or make authorization decisions.
//   - Log or otherwise expose raw token values.
package credential
