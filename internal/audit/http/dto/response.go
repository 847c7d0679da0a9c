// Package dto provides data transfer objects for audit trail HTTP responses.
package dto

import (
	"time"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
)

// AuditLogResponse represents an audit entry in API responses.
type AuditLogResponse struct {
	ID        string         `json:"id"`
	RequestID string         `json:"request_id"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	RecordID  *string        `json:"record_id,omitempty"`
	Outcome   string         `json:"outcome"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsSigned  bool           `json:"is_signed"`
	CreatedAt time.Time      `json:"created_at"`
}

// MapAuditLogToResponse converts a domain audit log to an API response.
func MapAuditLogToResponse(auditLog *auditDomain.AuditLog) AuditLogResponse {
	response := AuditLogResponse{
		ID:        auditLog.ID.String(),
		RequestID: auditLog.RequestID.String(),
		ActorID:   auditLog.ActorID.String(),
		Action:    string(auditLog.Action),
		Outcome:   string(auditLog.Outcome),
		Metadata:  auditLog.Metadata,
		IsSigned:  auditLog.IsSigned,
		CreatedAt: auditLog.CreatedAt,
	}
	if auditLog.RecordID != nil {
		recordID := auditLog.RecordID.String()
		response.RecordID = &recordID
	}
	return response
}

// ListAuditLogsResponse represents a page of audit entries.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts domain audit logs to a list API response.
func MapAuditLogsToListResponse(auditLogs []*auditDomain.AuditLog) ListAuditLogsResponse {
	responses := make([]AuditLogResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		responses = append(responses, MapAuditLogToResponse(auditLog))
	}
	return ListAuditLogsResponse{Data: responses}
}
