// Package guard resolves role-based route decisions for protected surfaces.
//
// # Decisions
//
//   - [Decision] — Render, Redirect (with a Target path), or Pending.
//   - [Policy.Decide] — pure decision function over (subject, resolution state, required roles).
//   - [CanonicalHome] — per-role home route used for cross-role redirects.
//   - [Landing] — per-role landing route used after login/verification success.
//
// Decide is total and side-effect-free: identical inputs always yield identical
// decisions, with no network, timer, or store dependency. Callers showing a UI
// must treat [DecisionPending] as "hold rendering, take no redirect yet" so an
// in-flight session resolution never causes a redirect flash.
//
// # Architecture boundaries
//
// This package owns the role vocabulary and nothing else. It never resolves
// sessions itself — resolution state arrives as an input — and it performs no
// I/O of any kind.
package guard
