package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
)

// MySQLAuditLogRepository implements AuditLog persistence for MySQL. UUIDs are stored as BINARY(16).
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// NewMySQLAuditLogRepository creates a new MySQL AuditLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

func (m *MySQLAuditLogRepository) where() *whereBuilder {
	return &whereBuilder{
		placeholder: func(int) string { return "?" },
		uuidArg: func(id uuid.UUID) (any, error) {
			return id.MarshalBinary()
		},
	}
}

// Create inserts a new AuditLog.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	id, err := auditLog.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}
	requestID, err := auditLog.RequestID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal request id")
	}
	actorID, err := auditLog.ActorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal actor id")
	}

	var recordID any
	if auditLog.RecordID != nil {
		b, err := auditLog.RecordID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal record id")
		}
		recordID = b
	}

	var metadataJSON any
	if auditLog.Metadata != nil {
		b, err := json.Marshal(auditLog.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log metadata")
		}
		metadataJSON = b
	}

	query := `INSERT INTO audit_logs (` + auditColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		requestID,
		actorID,
		string(auditLog.Action),
		recordID,
		string(auditLog.Outcome),
		metadataJSON,
		nullableBytes(auditLog.Signature),
		auditLog.KeyID,
		auditLog.IsSigned,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

// List returns a page of audit logs matching filter.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.Filter,
	sort auditDomain.Sort,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	w := m.where()
	if err := w.apply(filter); err != nil {
		return nil, apperrors.Wrap(err, "failed to build audit log filter")
	}
	w.args = append(w.args, limit, offset)
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.clause() + orderClause(sort) +
		" LIMIT ? OFFSET ?"

	auditLogs := make([]*auditDomain.AuditLog, 0)
	err := m.query(ctx, query, w.args, func(l *auditDomain.AuditLog) error {
		auditLogs = append(auditLogs, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return auditLogs, nil
}

// Stream calls fn for every audit log matching filter in chronological order.
func (m *MySQLAuditLogRepository) Stream(
	ctx context.Context,
	filter auditDomain.Filter,
	fn func(*auditDomain.AuditLog) error,
) error {
	w := m.where()
	if err := w.apply(filter); err != nil {
		return apperrors.Wrap(err, "failed to build audit log filter")
	}
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.clause() +
		orderClause(auditDomain.Sort{Field: auditDomain.SortByCreatedAt})
	return m.query(ctx, query, w.args, fn)
}

func (m *MySQLAuditLogRepository) query(
	ctx context.Context,
	query string,
	args []any,
	fn func(*auditDomain.AuditLog) error,
) error {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var (
			auditLog               auditDomain.AuditLog
			id, requestID, actorID []byte
			recordID               []byte
			action, outcome        string
			metadataJSON           []byte
			keyID                  sql.NullString
		)
		if err := rows.Scan(
			&id,
			&requestID,
			&actorID,
			&action,
			&recordID,
			&outcome,
			&metadataJSON,
			&auditLog.Signature,
			&keyID,
			&auditLog.IsSigned,
			&auditLog.CreatedAt,
		); err != nil {
			return apperrors.Wrap(err, "failed to scan audit log")
		}

		if err := auditLog.ID.UnmarshalBinary(id); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal audit log id")
		}
		if err := auditLog.RequestID.UnmarshalBinary(requestID); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal request id")
		}
		if err := auditLog.ActorID.UnmarshalBinary(actorID); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal actor id")
		}
		if recordID != nil {
			var rid uuid.UUID
			if err := rid.UnmarshalBinary(recordID); err != nil {
				return apperrors.Wrap(err, "failed to unmarshal record id")
			}
			auditLog.RecordID = &rid
		}

		auditLog.Action = auditDomain.Action(action)
		auditLog.Outcome = auditDomain.Outcome(outcome)
		if keyID.Valid {
			auditLog.KeyID = &keyID.String
		}
		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &auditLog.Metadata); err != nil {
				return apperrors.Wrap(err, "failed to unmarshal audit log metadata")
			}
		}

		if err := fn(&auditLog); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return apperrors.Wrap(err, "failed to iterate audit logs")
	}
	return nil
}

// Statistics aggregates counts for the entries matching filter.
func (m *MySQLAuditLogRepository) Statistics(
	ctx context.Context,
	filter auditDomain.Filter,
) (*auditDomain.Statistics, error) {
	w := m.where()
	if err := w.apply(filter); err != nil {
		return nil, apperrors.Wrap(err, "failed to build audit log filter")
	}
	return statistics(ctx, database.GetTx(ctx, m.db), w.clause(), w.args)
}

// DeleteOlderThan removes entries created before olderThan. With dryRun it only counts them.
func (m *MySQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < ?`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}
	return result.RowsAffected()
}
