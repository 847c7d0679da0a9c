package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	auditUseCase "github.com/allisson/sealbox/internal/audit/usecase"
)

// ExportParams holds the optional filters of export-audit-logs. Empty values are ignored.
type ExportParams struct {
	StartDate string
	EndDate   string
	ActorID   string
	RecordID  string
	Action    string
	Outcome   string
}

// RunExportAuditLogs streams the matching audit entries to writer as CSV.
func RunExportAuditLogs(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	params ExportParams,
) error {
	filter, err := params.filter()
	if err != nil {
		return err
	}

	count, err := auditLogUseCase.Export(ctx, filter, writer)
	if err != nil {
		return fmt.Errorf("failed to export audit logs: %w", err)
	}

	logger.Info("audit logs exported", slog.Int64("count", count))
	return nil
}

func (p ExportParams) filter() (auditDomain.Filter, error) {
	var filter auditDomain.Filter

	if p.StartDate != "" {
		start, err := parseDate(p.StartDate)
		if err != nil {
			return filter, fmt.Errorf("invalid start date: %w", err)
		}
		filter.CreatedAtFrom = &start
	}
	if p.EndDate != "" {
		end, err := parseDate(p.EndDate)
		if err != nil {
			return filter, fmt.Errorf("invalid end date: %w", err)
		}
		filter.CreatedAtTo = &end
	}
	if filter.CreatedAtFrom != nil && filter.CreatedAtTo != nil && filter.CreatedAtFrom.After(*filter.CreatedAtTo) {
		return filter, fmt.Errorf("start date must not be after end date")
	}

	if p.ActorID != "" {
		id, err := uuid.Parse(p.ActorID)
		if err != nil {
			return filter, fmt.Errorf("invalid actor ID: %w", err)
		}
		filter.ActorID = &id
	}
	if p.RecordID != "" {
		id, err := uuid.Parse(p.RecordID)
		if err != nil {
			return filter, fmt.Errorf("invalid record ID: %w", err)
		}
		filter.RecordID = &id
	}

	if p.Action != "" {
		action := auditDomain.Action(p.Action)
		filter.Action = &action
	}
	if p.Outcome != "" {
		outcome := auditDomain.Outcome(strings.ToUpper(p.Outcome))
		if !outcome.Valid() {
			return filter, fmt.Errorf("invalid outcome: must be SUCCESS, FAILED or SUSPICIOUS")
		}
		filter.Outcome = &outcome
	}

	return filter, nil
}
