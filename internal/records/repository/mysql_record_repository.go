package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
)

// MySQLRecordRepository implements Record persistence for MySQL. UUIDs are stored as BINARY(16) and
// tags as a JSON array.
type MySQLRecordRepository struct {
	db *sql.DB
}

// NewMySQLRecordRepository creates a new MySQL Record repository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}

// Create inserts a new record.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	ownerID, err := record.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}
	deletedBy, err := nullBinaryUUID(record.DeletedBy)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal deleted_by")
	}
	lastRevealedBy, err := nullBinaryUUID(record.LastRevealedBy)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal last_revealed_by")
	}

	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal tags")
	}

	query := `INSERT INTO records (` + recordColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		ownerID,
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
		tagsJSON,
		record.CreatedAt,
		record.ExpiresAt,
		record.IsDeleted,
		record.DeletedAt,
		deletedBy,
		record.RevealCount,
		record.LastRevealedAt,
		lastRevealedBy,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// Get returns a record by id, including soft deleted ones.
func (m *MySQLRecordRepository) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ?`

	record, err := scanMySQLRecord(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

// List returns a page of records matching filter, newest first.
func (m *MySQLRecordRepository) List(
	ctx context.Context,
	filter recordsDomain.ListFilter,
	now time.Time,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	var ownerArg any
	if filter.OwnerID != nil {
		b, err := filter.OwnerID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal owner id")
		}
		ownerArg = b
	}
	q := &listQuery{placeholder: func(int) string { return "?" }}
	query := q.build(filter, ownerArg, "JSON_CONTAINS(tags, JSON_QUOTE(?))", now)

	rows, err := querier.QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*recordsDomain.Record, 0)
	for rows.Next() {
		record, err := scanMySQLRecord(rows)
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
func (m *MySQLRecordRepository) SoftDelete(
	ctx context.Context,
	id, actorID uuid.UUID,
	at time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	actorBytes, err := actorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal actor id")
	}

	query := `UPDATE records SET is_deleted = TRUE, deleted_at = ?, deleted_by = ?
			  WHERE id = ? AND is_deleted = FALSE`

	result, err := querier.ExecContext(ctx, query, at, actorBytes, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return expectOneRow(result, recordsDomain.ErrRecordNotFound)
}

// Restore clears the deleted flags of a soft deleted record.
func (m *MySQLRecordRepository) Restore(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `UPDATE records SET is_deleted = FALSE, deleted_at = NULL, deleted_by = NULL
			  WHERE id = ? AND is_deleted = TRUE`

	result, err := querier.ExecContext(ctx, query, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to restore record")
	}
	return expectOneRow(result, recordsDomain.ErrRecordNotDeleted)
}

// IncrementRevealCounters bumps the reveal counter and records who revealed last.
func (m *MySQLRecordRepository) IncrementRevealCounters(
	ctx context.Context,
	id, actorID uuid.UUID,
	at time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	actorBytes, err := actorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal actor id")
	}

	query := `UPDATE records
			  SET reveal_count = reveal_count + 1, last_revealed_at = ?, last_revealed_by = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, at, actorBytes, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to increment reveal counters")
	}
	return expectOneRow(result, recordsDomain.ErrRecordNotFound)
}

// PurgeExpired hard deletes records that expired before the cutoff.
func (m *MySQLRecordRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM records WHERE expires_at IS NOT NULL AND expires_at < ?`

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

func scanMySQLRecord(row scanner) (*recordsDomain.Record, error) {
	var (
		record         recordsDomain.Record
		id             []byte
		ownerID        []byte
		kdfHash        string
		algorithm      string
		tagsJSON       []byte
		deletedBy      []byte
		lastRevealedBy []byte
	)

	err := row.Scan(
		&id,
		&ownerID,
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
		&tagsJSON,
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

	if err := record.ID.UnmarshalBinary(id); err != nil {
		return nil, err
	}
	if err := record.OwnerID.UnmarshalBinary(ownerID); err != nil {
		return nil, err
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &record.Tags); err != nil {
			return nil, err
		}
	}
	if record.DeletedBy, err = binaryUUIDPtr(deletedBy); err != nil {
		return nil, err
	}
	if record.LastRevealedBy, err = binaryUUIDPtr(lastRevealedBy); err != nil {
		return nil, err
	}
	record.KDFHash = cryptoDomain.HashAlgorithm(kdfHash)
	record.Algorithm = cryptoDomain.Algorithm(algorithm)
	return &record, nil
}
