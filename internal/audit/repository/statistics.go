package repository

import (
	"context"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
)

// statistics runs the aggregate queries shared by both dialects. where and args come from a
// whereBuilder of the calling dialect.
func statistics(
	ctx context.Context,
	querier database.Querier,
	where string,
	args []any,
) (*auditDomain.Statistics, error) {
	stats := &auditDomain.Statistics{
		EventsByType:   make(map[string]int64),
		EventsByStatus: make(map[string]int64),
	}

	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COUNT(DISTINCT actor_id), COUNT(DISTINCT record_id) FROM audit_logs`+where,
		args...,
	).Scan(&stats.TotalEvents, &stats.UniqueActors, &stats.UniqueRecords)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count audit logs")
	}

	if err := groupCount(ctx, querier, "action", where, args, stats.EventsByType); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, querier, "outcome", where, args, stats.EventsByStatus); err != nil {
		return nil, err
	}

	return stats, nil
}

func groupCount(
	ctx context.Context,
	querier database.Querier,
	column, where string,
	args []any,
	into map[string]int64,
) error {
	rows, err := querier.QueryContext(
		ctx,
		`SELECT `+column+`, COUNT(*) FROM audit_logs`+where+` GROUP BY `+column,
		args...,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to group audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return apperrors.Wrap(err, "failed to scan audit log group")
		}
		into[key] = count
	}
	return rows.Err()
}
