package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
)

// PostgreSQLAuditLogRepository implements AuditLog persistence for PostgreSQL.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL AuditLog repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

func (p *PostgreSQLAuditLogRepository) where() *whereBuilder {
	return &whereBuilder{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		uuidArg:     func(id uuid.UUID) (any, error) { return id, nil },
	}
}

// Create inserts a new AuditLog. Nil metadata is stored as NULL.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	var metadataJSON any
	if auditLog.Metadata != nil {
		b, err := json.Marshal(auditLog.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit log metadata")
		}
		metadataJSON = b
	}

	var recordID any
	if auditLog.RecordID != nil {
		recordID = *auditLog.RecordID
	}

	query := `INSERT INTO audit_logs (` + auditColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		auditLog.ID,
		auditLog.RequestID,
		auditLog.ActorID,
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
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.Filter,
	sort auditDomain.Sort,
	offset, limit int,
) ([]*auditDomain.AuditLog, error) {
	w := p.where()
	if err := w.apply(filter); err != nil {
		return nil, apperrors.Wrap(err, "failed to build audit log filter")
	}
	w.args = append(w.args, limit, offset)
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.clause() + orderClause(sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))

	auditLogs := make([]*auditDomain.AuditLog, 0)
	err := p.query(ctx, query, w.args, func(l *auditDomain.AuditLog) error {
		auditLogs = append(auditLogs, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return auditLogs, nil
}

// Stream calls fn for every audit log matching filter in chronological order without loading the
// full result set in memory.
func (p *PostgreSQLAuditLogRepository) Stream(
	ctx context.Context,
	filter auditDomain.Filter,
	fn func(*auditDomain.AuditLog) error,
) error {
	w := p.where()
	if err := w.apply(filter); err != nil {
		return apperrors.Wrap(err, "failed to build audit log filter")
	}
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.clause() +
		orderClause(auditDomain.Sort{Field: auditDomain.SortByCreatedAt})
	return p.query(ctx, query, w.args, fn)
}

func (p *PostgreSQLAuditLogRepository) query(
	ctx context.Context,
	query string,
	args []any,
	fn func(*auditDomain.AuditLog) error,
) error {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var (
			auditLog     auditDomain.AuditLog
			action       string
			outcome      string
			recordID     uuid.NullUUID
			metadataJSON []byte
			keyID        sql.NullString
		)
		if err := rows.Scan(
			&auditLog.ID,
			&auditLog.RequestID,
			&auditLog.ActorID,
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

		auditLog.Action = auditDomain.Action(action)
		auditLog.Outcome = auditDomain.Outcome(outcome)
		if recordID.Valid {
			id := recordID.UUID
			auditLog.RecordID = &id
		}
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
func (p *PostgreSQLAuditLogRepository) Statistics(
	ctx context.Context,
	filter auditDomain.Filter,
) (*auditDomain.Statistics, error) {
	w := p.where()
	if err := w.apply(filter); err != nil {
		return nil, apperrors.Wrap(err, "failed to build audit log filter")
	}
	return statistics(ctx, database.GetTx(ctx, p.db), w.clause(), w.args)
}

// DeleteOlderThan removes entries created before olderThan. With dryRun it only counts them.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`, olderThan).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit logs")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}
	return result.RowsAffected()
}
