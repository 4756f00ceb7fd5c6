package goSession

import "time"

// SecurityReport summarizes the engine's effective security posture for
// operators and startup logging. Values mirror configuration; nothing here is
// measured at runtime.
type SecurityReport struct {
	ProductionMode                bool
	ClearCredentialOnUnauthorized bool
	CredentialTTL                 time.Duration
	SlidingExpiration             bool
	VerificationCodeLength        int
	ResendCooldown                time.Duration
	PendingPersistenceActive      bool
	PendingTTL                    time.Duration
	AuditActive                   bool
	MetricsActive                 bool
}

// SecurityReport snapshots the engine's effective security posture.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		ProductionMode:                e.config.Security.ProductionMode,
		ClearCredentialOnUnauthorized: e.config.Security.ClearCredentialOnUnauthorized,
		CredentialTTL:                 e.config.Credential.TTL,
		SlidingExpiration:             e.config.Credential.SlidingExpiration,
		VerificationCodeLength:        e.config.Verification.CodeLength,
		ResendCooldown:                e.config.Verification.ResendCooldown,
		PendingPersistenceActive:      e.config.Verification.PersistPending,
		PendingTTL:                    e.config.Verification.PendingTTL,
		AuditActive:                   e.config.Audit.Enabled,
		MetricsActive:                 e.config.Metrics.Enabled,
	}
}
