// Package internal contains helper utilities that are intentionally private to
// goSession, including numeric one-time-code generation for stub platforms and
// test fixtures.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function flow orchestrators for every Engine operation
//   - stores — Redis-backed pending-verification records
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
