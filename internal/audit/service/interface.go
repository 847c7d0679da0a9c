// Package service provides audit log signing.
package service

import (
	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
)

// AuditSigner signs and verifies audit log entries.
type AuditSigner interface {
	// Sign returns the HMAC-SHA256 signature of log under a key derived from rootKey.
	Sign(rootKey []byte, log *auditDomain.AuditLog) ([]byte, error)

	// Verify returns ErrSignatureInvalid when log.Signature does not match.
	Verify(rootKey []byte, log *auditDomain.AuditLog) error
}
