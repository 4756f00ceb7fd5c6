package goSession

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLogin             = "login"
	auditEventRegister          = "register"
	auditEventLogout            = "logout"
	auditEventSessionResolve    = "session_resolve"
	auditEventVerifySubmit      = "verification_submit"
	auditEventVerifyResend      = "verification_resend"
	auditEventCredentialCleared = "credential_cleared"
	auditEventUnauthorized      = "credential_rejected"
)

// AuditErrorCode is the stable machine-readable failure classification
// stamped on audit events. Codes never carry user input.
type AuditErrorCode string

const (
	auditErrAuthRequired         AuditErrorCode = "auth_required"
	auditErrInvalidCredentials   AuditErrorCode = "invalid_credentials"
	auditErrVerificationRequired AuditErrorCode = "verification_required"
	auditErrNoPending            AuditErrorCode = "no_pending_verification"
	auditErrInvalidCode          AuditErrorCode = "invalid_code"
	auditErrRateLimited          AuditErrorCode = "rate_limited"
	auditErrResendCooldown       AuditErrorCode = "resend_cooldown"
	auditErrSubmitInFlight       AuditErrorCode = "submit_in_flight"
	auditErrPlatformUnavailable  AuditErrorCode = "platform_unavailable"
	auditErrStoreUnavailable     AuditErrorCode = "store_unavailable"
	auditErrMalformedCredential  AuditErrorCode = "malformed_credential"
	auditErrEngineNotReady       AuditErrorCode = "engine_not_ready"
	auditErrInternal             AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		UserID:     userID,
		SessionKey: sessionKeyFromContext(ctx),
		RequestID:  requestIDFromContext(ctx),
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAuthRequired):
		return auditErrAuthRequired
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrVerificationRequired):
		return auditErrVerificationRequired
	case errors.Is(err, ErrNoPendingVerification):
		return auditErrNoPending
	case errors.Is(err, ErrInvalidCode):
		return auditErrInvalidCode
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrResendCooldown):
		return auditErrResendCooldown
	case errors.Is(err, ErrSubmitInFlight):
		return auditErrSubmitInFlight
	case errors.Is(err, ErrPlatformUnavailable):
		return auditErrPlatformUnavailable
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrStoreUnavailable
	case errors.Is(err, ErrMalformedCredential):
		return auditErrMalformedCredential
	case errors.Is(err, ErrEngineNotReady):
		return auditErrEngineNotReady
	default:
		return auditErrInternal
	}
}
