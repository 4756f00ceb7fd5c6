// Package verification drives the email verification challenge: a small
// state machine around "enter the code we mailed you".
//
// # Phases
//
// A [Machine] moves Idle → AwaitingCode → Verifying → Verified. A failed
// check drops back to AwaitingCode with the typed code kept, so the user can
// correct one digit instead of retyping. A resend cooldown counts down in
// parallel, driven by [Machine.Tick] once per second; it gates resending
// only, never code entry.
//
// # Auto-submit
//
// Typing the final digit submits. The trigger fires exactly on the transition
// into full length and will not fire again until the code drops below full
// length first, so backspacing the last digit and retyping it re-arms it but
// holding a full code does not double-submit.
//
// # Late completions
//
// One check is in flight at a time. A check that completes after the machine
// was reset or re-entered no longer owns the challenge: its result is dropped
// entirely, external effects included. No credential is installed and no
// pending state is cleared for a challenge that no longer exists.
//
// # What this package must NOT do
//
//   - Import goSession, credential, or dispatch (no upward imports). All
//     effects arrive as [Deps] functions wired by the engine.
//   - Decide whether a code is correct. The platform does; the machine only
//     sequences the attempt.
package verification
