package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
)

const signingInfo = "audit-log-signing-v1"

type auditSigner struct{}

// NewAuditSigner creates a new HMAC-based audit log signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the root key.
func (a *auditSigner) deriveSigningKey(rootKey []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, rootKey, nil, []byte(signingInfo))

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(r, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeLog converts an entry to its canonical byte form:
// request_id || actor_id || record flag || record_id || action || outcome || metadata || created_at.
// Variable-length fields are length prefixed so no two entries share an encoding.
func (a *auditSigner) canonicalizeLog(log *auditDomain.AuditLog) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, log.RequestID[:]...)
	buf = append(buf, log.ActorID[:]...)

	if log.RecordID != nil {
		buf = append(buf, 1)
		buf = append(buf, log.RecordID[:]...)
	} else {
		buf = append(buf, 0)
	}

	buf = appendLengthPrefixed(buf, []byte(log.Action))
	buf = appendLengthPrefixed(buf, []byte(log.Outcome))

	if log.Metadata != nil {
		// encoding/json sorts map keys, which keeps the form deterministic.
		metadataBytes, err := json.Marshal(log.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(log.CreatedAt.UnixMicro()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates the HMAC-SHA256 signature for the audit log.
func (a *auditSigner) Sign(rootKey []byte, log *auditDomain.AuditLog) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := a.canonicalizeLog(log)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize log: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks the audit log signature in constant time.
func (a *auditSigner) Verify(rootKey []byte, log *auditDomain.AuditLog) error {
	expectedSig, err := a.Sign(rootKey, log)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(log.Signature, expectedSig) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}
