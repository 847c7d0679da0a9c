package service

import (
	"crypto/rand"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
)

func newRootKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func newSignedLog(t *testing.T, signer AuditSigner, key []byte) *auditDomain.AuditLog {
	t.Helper()
	recordID := uuid.Must(uuid.NewV7())
	log := &auditDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: uuid.Must(uuid.NewV7()),
		ActorID:   uuid.Must(uuid.NewV7()),
		Action:    auditDomain.ActionRevealRequest,
		RecordID:  &recordID,
		Outcome:   auditDomain.OutcomeSuccess,
		Metadata:  map[string]any{"mode": "server", "attempt": 1},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	sig, err := signer.Sign(key, log)
	require.NoError(t, err)
	log.Signature = sig
	return log
}

func TestAuditSigner_SignAndVerify(t *testing.T) {
	signer := NewAuditSigner()
	key := newRootKey(t)

	log := newSignedLog(t, signer, key)
	assert.Len(t, log.Signature, 32, "HMAC-SHA256 should produce 32-byte signature")
	assert.NoError(t, signer.Verify(key, log))
}

func TestAuditSigner_VerifyDetectsTampering(t *testing.T) {
	signer := NewAuditSigner()
	key := newRootKey(t)

	tests := []struct {
		name   string
		mutate func(l *auditDomain.AuditLog)
	}{
		{name: "outcome", mutate: func(l *auditDomain.AuditLog) { l.Outcome = auditDomain.OutcomeFailed }},
		{name: "action", mutate: func(l *auditDomain.AuditLog) { l.Action = auditDomain.ActionRevealRedeem }},
		{name: "actor", mutate: func(l *auditDomain.AuditLog) { l.ActorID = uuid.Must(uuid.NewV7()) }},
		{name: "record removed", mutate: func(l *auditDomain.AuditLog) { l.RecordID = nil }},
		{name: "metadata", mutate: func(l *auditDomain.AuditLog) { l.Metadata["mode"] = "client" }},
		{name: "timestamp", mutate: func(l *auditDomain.AuditLog) { l.CreatedAt = l.CreatedAt.Add(time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newSignedLog(t, signer, key)
			tt.mutate(log)
			assert.ErrorIs(t, signer.Verify(key, log), auditDomain.ErrSignatureInvalid)
		})
	}
}

func TestAuditSigner_WrongKey(t *testing.T) {
	signer := NewAuditSigner()
	log := newSignedLog(t, signer, newRootKey(t))
	assert.ErrorIs(t, signer.Verify(newRootKey(t), log), auditDomain.ErrSignatureInvalid)
}

func TestAuditSigner_MetadataSurvivesStorageRoundTrip(t *testing.T) {
	signer := NewAuditSigner()
	key := newRootKey(t)
	log := newSignedLog(t, signer, key)

	// Metadata comes back from the database as decoded JSON, so integers become float64.
	raw, err := json.Marshal(log.Metadata)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	log.Metadata = decoded

	assert.NoError(t, signer.Verify(key, log))
}
