// Package stores provides the Redis-backed record store for pending email
// verification challenges.
//
// # Design
//
// The store persists one versioned, binary-encoded record per browser session
// key with a TTL. The record remembers which email is mid-verification and
// when the resend cooldown expires, so a page reload resumes the challenge
// instead of restarting it. Deadline updates use WATCH/MULTI optimistic
// transactions with automatic retry on contention.
//
// # Architecture boundaries
//
// This package owns persistence for transient challenge records. It does NOT
// run the challenge state machine, enforce cooldowns, or talk to the platform.
// Those responsibilities belong to the verification package and the engine.
//
// # What this package must NOT do
//
//   - Import any other goSession package.
//   - Store credentials or verification codes.
//   - Interpret record contents beyond codec framing.
package stores
