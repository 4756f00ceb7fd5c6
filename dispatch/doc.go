// Package dispatch builds and performs authenticated JSON requests against
// the platform API.
//
// An [Operation] is a pure value: method, ordered path segments, filter
// params, and an optional JSON body. [Dispatcher.NewRequest] turns it into an
// *http.Request deterministically; the only live input is the bearer
// credential read at send time. Everything else about the request is
// computable without I/O, which keeps request construction trivially
// testable.
//
// # Unauthorized handling
//
// A 401 from the platform is not one thing. Probes ("who am I?") want
// absence; actions ("post this job") want an error the caller must handle.
// The [Operation.Unauthorized] policy picks per call, and the dispatcher
// reports a credential rejection through the AuthFailed hook either way.
//
// # What this package must NOT do
//
//   - Import goSession, credential, or verification (no upward imports).
//   - Retry. One operation is one request; retry policy belongs to callers.
//   - Manage cookies. Cookies live on the caller-supplied http.Client jar and
//     ride along untouched; the dispatcher only sets Authorization, Accept,
//     and Content-Type.
package dispatch
