package domain

import (
	"time"

	"github.com/google/uuid"
)

// Filter restricts audit queries. Nil fields are not applied. Time bounds are inclusive.
type Filter struct {
	ActorID       *uuid.UUID
	RecordID      *uuid.UUID
	Action        *Action
	Outcome       *Outcome
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
}

// SortField is a column audit queries can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByAction    SortField = "action"
	SortByOutcome   SortField = "outcome"
)

// Sort orders audit query results. The zero value sorts newest first.
type Sort struct {
	Field      SortField
	Descending bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Field: SortByCreatedAt, Descending: true}

// Normalize returns s with unknown fields replaced by created_at.
func (s Sort) Normalize() Sort {
	switch s.Field {
	case SortByCreatedAt, SortByAction, SortByOutcome:
		return s
	case "":
		return DefaultSort
	default:
		return Sort{Field: SortByCreatedAt, Descending: s.Descending}
	}
}

// Statistics aggregates the entries matching a filter. It never contains entry content.
type Statistics struct {
	TotalEvents    int64            `json:"total_events"`
	EventsByType   map[string]int64 `json:"events_by_type"`
	EventsByStatus map[string]int64 `json:"events_by_status"`
	UniqueActors   int64            `json:"unique_actors"`
	UniqueRecords  int64            `json:"unique_records"`
}

// VerificationReport summarizes a signature verification run.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidLogs   []uuid.UUID
}
