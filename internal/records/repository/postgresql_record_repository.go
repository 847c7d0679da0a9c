package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

// PostgreSQLRecordRepository implements Record persistence for PostgreSQL. Tags are stored as TEXT[].
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL Record repository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}

// Create inserts a new record.
func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `INSERT INTO records (` + recordColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.OwnerID,
		record.Ciphertext,
		record.IV,
		record.AuthTag,
		record.IntegrityHash,
		record.KDFSalt,
		record.KDFIterations,
		string(record.KDFHash),
		string(record.Algorithm),
		record.MaskSurrogate,
		record.RecordType,
		pq.Array(tags),
		record.CreatedAt,
		record.ExpiresAt,
		record.IsDeleted,
		record.DeletedAt,
		nullUUID(record.DeletedBy),
		record.RevealCount,
		record.LastRevealedAt,
		nullUUID(record.LastRevealedBy),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// Get returns a record by id, including soft deleted ones.
func (p *PostgreSQLRecordRepository) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	record, err := scanPostgreSQLRecord(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

// List returns a page of records matching filter, newest first.
func (p *PostgreSQLRecordRepository) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
	now time.Time,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	var ownerArg any
	if filter.OwnerID != nil {
		ownerArg = *filter.OwnerID
	}
	q := &listQuery{placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	query := q.build(filter, ownerArg, "? = ANY(tags)", now)

	rows, err := querier.QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*recordsDomain.Record, 0)
	for rows.Next() {
		record, err := scanPostgreSQLRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

// SoftDelete flags a live record as deleted.
func (p *PostgreSQLRecordRepository) SoftDelete(
	ctx context.Context,
	id, actorID uuid.UUID,
	at time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE records SET is_deleted = TRUE, deleted_at = $1, deleted_by = $2
			  WHERE id = $3 AND is_deleted = FALSE`

	result, err := querier.ExecContext(ctx, query, at, actorID, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return expectOneRow(result, recordsDomain.ErrRecordNotFound)
}

// Restore clears the deleted flags of a soft deleted record.
func (p *PostgreSQLRecordRepository) Restore(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE records SET is_deleted = FALSE, deleted_at = NULL, deleted_by = NULL
			  WHERE id = $1 AND is_deleted = TRUE`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to restore record")
	}
	return expectOneRow(result, recordsDomain.ErrRecordNotDeleted)
}

// IncrementRevealCounters bumps the reveal counter and records who revealed last.
func (p *PostgreSQLRecordRepository) IncrementRevealCounters(
	ctx context.Context,
	id, actorID uuid.UUID,
	at time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE records
			  SET reveal_count = reveal_count + 1, last_revealed_at = $1, last_revealed_by = $2
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, at, actorID, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to increment reveal counters")
	}
	return expectOneRow(result, recordsDomain.ErrRecordNotFound)
}

// PurgeExpired hard deletes records that expired before the cutoff.
func (p *PostgreSQLRecordRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM records WHERE expires_at IS NOT NULL AND expires_at < $1`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to purge expired records")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}

func scanPostgreSQLRecord(row scanner) (*recordsDomain.Record, error) {
	var (
		record         recordsDomain.Record
		kdfHash        string
		algorithm      string
		tags           []string
		deletedBy      uuid.NullUUID
		lastRevealedBy uuid.NullUUID
	)

	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.Ciphertext,
		&record.IV,
		&record.AuthTag,
		&record.IntegrityHash,
		&record.KDFSalt,
		&record.KDFIterations,
		&kdfHash,
		&algorithm,
		&record.MaskSurrogate,
		&record.RecordType,
		pq.Array(&tags),
		&record.CreatedAt,
		&record.ExpiresAt,
		&record.IsDeleted,
		&record.DeletedAt,
		&deletedBy,
		&record.RevealCount,
		&record.LastRevealedAt,
		&lastRevealedBy,
	)
	if err != nil {
		return nil, err
	}

	record.KDFHash = cryptoDomain.HashAlgorithm(kdfHash)
	record.Algorithm = cryptoDomain.Algorithm(algorithm)
	record.Tags = tags
	if deletedBy.Valid {
		record.DeletedBy = &deletedBy.UUID
	}
	if lastRevealedBy.Valid {
		record.LastRevealedBy = &lastRevealedBy.UUID
	}
	return &record, nil
}
