// Package domain defines the audit trail model: append-only entries describing every record write,
// reveal attempt and token redemption, plus the filters and aggregates used to query them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of an audited operation.
type Outcome string

const (
	// OutcomeSuccess marks an operation that completed.
	OutcomeSuccess Outcome = "SUCCESS"
	// OutcomeFailed marks an operation that was rejected.
	OutcomeFailed Outcome = "FAILED"
	// OutcomeSuspicious marks a rejection that indicates possible tampering.
	OutcomeSuspicious Outcome = "SUSPICIOUS"
)

// Action names the audited operation.
type Action string

const (
	ActionRecordCreate  Action = "record.create"
	ActionRecordDelete  Action = "record.delete"
	ActionRecordRestore Action = "record.restore"
	ActionRecordPurge   Action = "record.purge"
	ActionRevealRequest Action = "reveal.request"
	ActionRevealRedeem  Action = "reveal.redeem"
	ActionTokenIssue    Action = "auth.token_issue"
)

// AuditLog is a single immutable audit entry. Once stored it is never updated; the only removal
// path is the retention purge.
type AuditLog struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	ActorID   uuid.UUID
	Action    Action
	RecordID  *uuid.UUID
	Outcome   Outcome
	Metadata  map[string]any
	Signature []byte
	KeyID     *string
	IsSigned  bool
	CreatedAt time.Time
}

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailed, OutcomeSuspicious:
		return true
	}
	return false
}

// Event is the input for appending an audit entry. ID, timestamp and signature are assigned on append.
type Event struct {
	RequestID uuid.UUID
	ActorID   uuid.UUID
	Action    Action
	RecordID  *uuid.UUID
	Outcome   Outcome
	Metadata  map[string]any
}

// Actor identifies the authenticated subject performing an operation and the request it belongs to.
type Actor struct {
	ID        uuid.UUID
	RequestID uuid.UUID
}

// NewEvent builds an event for actor.
func (a Actor) NewEvent(action Action, recordID *uuid.UUID, outcome Outcome, metadata map[string]any) *Event {
	return &Event{
		RequestID: a.RequestID,
		ActorID:   a.ID,
		Action:    action,
		RecordID:  recordID,
		Outcome:   outcome,
		Metadata:  metadata,
	}
}
