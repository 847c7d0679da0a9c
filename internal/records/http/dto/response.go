package dto

import (
	"time"

	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

// RecordResponse is the metadata view of a record. It never carries ciphertext or key material.
type RecordResponse struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	MaskSurrogate  string     `json:"mask_surrogate"`
	RecordType     string     `json:"record_type,omitempty"`
	Tags           []string   `json:"tags"`
	Algorithm      string     `json:"algorithm"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	RevealCount    int64      `json:"reveal_count"`
	LastRevealedAt *time.Time `json:"last_revealed_at,omitempty"`
}

// MapRecordToResponse converts a domain record to its metadata view.
func MapRecordToResponse(record *recordsDomain.Record) RecordResponse {
	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	return RecordResponse{
		ID:             record.ID.String(),
		OwnerID:        record.OwnerID.String(),
		MaskSurrogate:  record.MaskSurrogate,
		RecordType:     record.RecordType,
		Tags:           tags,
		Algorithm:      string(record.Algorithm),
		CreatedAt:      record.CreatedAt,
		ExpiresAt:      record.ExpiresAt,
		IsDeleted:      record.IsDeleted,
		DeletedAt:      record.DeletedAt,
		RevealCount:    record.RevealCount,
		LastRevealedAt: record.LastRevealedAt,
	}
}

// ListRecordsResponse represents a page of records.
type ListRecordsResponse struct {
	Data []RecordResponse `json:"data"`
}

// MapRecordsToListResponse converts domain records to a list API response.
func MapRecordsToListResponse(records []*recordsDomain.Record) ListRecordsResponse {
	responses := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, MapRecordToResponse(record))
	}
	return ListRecordsResponse{Data: responses}
}
