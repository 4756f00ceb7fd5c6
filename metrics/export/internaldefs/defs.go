package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef binds one engine counter to the name and help text exporters
// publish it under.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef is the histogram counterpart of [CounterDef].
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs maps every engine counter to its exported series. Exporters
// iterate this table so the two stay in lockstep.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful login attempts."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed login attempts."},
	{ID: goSession.MetricLoginPendingVerification, Name: "gosession_login_pending_verification_total", Help: "Logins answered with the email-verification handoff."},
	{ID: goSession.MetricRegisterSuccess, Name: "gosession_register_success_total", Help: "Successful registrations."},
	{ID: goSession.MetricRegisterFailure, Name: "gosession_register_failure_total", Help: "Failed registrations."},
	{ID: goSession.MetricLogoutSuccess, Name: "gosession_logout_success_total", Help: "Completed logouts."},
	{ID: goSession.MetricLogoutFailure, Name: "gosession_logout_failure_total", Help: "Logouts that failed to clear the durable credential."},
	{ID: goSession.MetricResolveHit, Name: "gosession_resolve_hit_total", Help: "Session resolutions served from the memoized answer."},
	{ID: goSession.MetricResolveMiss, Name: "gosession_resolve_miss_total", Help: "Session resolutions that asked the platform."},
	{ID: goSession.MetricResolveAbsent, Name: "gosession_resolve_absent_total", Help: "Session resolutions answered unauthenticated."},
	{ID: goSession.MetricResolveFailure, Name: "gosession_resolve_failure_total", Help: "Session resolutions that failed against the platform."},
	{ID: goSession.MetricVerifySubmitSuccess, Name: "gosession_verify_submit_success_total", Help: "Successful verification code checks."},
	{ID: goSession.MetricVerifySubmitFailure, Name: "gosession_verify_submit_failure_total", Help: "Failed verification code checks."},
	{ID: goSession.MetricVerifyResendSuccess, Name: "gosession_verify_resend_success_total", Help: "Successful verification code resends."},
	{ID: goSession.MetricVerifyResendFailure, Name: "gosession_verify_resend_failure_total", Help: "Failed verification code resends."},
	{ID: goSession.MetricIntrospectSuccess, Name: "gosession_introspect_success_total", Help: "Successful credential introspections."},
	{ID: goSession.MetricIntrospectFailure, Name: "gosession_introspect_failure_total", Help: "Failed credential introspections."},
	{ID: goSession.MetricUnauthorizedResponse, Name: "gosession_unauthorized_response_total", Help: "Platform answers rejecting a carried credential."},
	{ID: goSession.MetricCredentialCleared, Name: "gosession_credential_cleared_total", Help: "Credentials cleared after a platform rejection."},
	{ID: goSession.MetricGuardRender, Name: "gosession_guard_render_total", Help: "Route guard decisions to render."},
	{ID: goSession.MetricGuardRedirect, Name: "gosession_guard_redirect_total", Help: "Route guard decisions to redirect."},
	{ID: goSession.MetricGuardPending, Name: "gosession_guard_pending_total", Help: "Route guard decisions before session resolution completed."},
}

// HistogramDefs lists the engine's histograms.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricDispatchLatency, Name: "gosession_dispatch_latency_seconds", Help: "Platform dispatch latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, matching the
// engine's millisecond boundaries.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// attribute and series names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a snapshot's bucket slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
