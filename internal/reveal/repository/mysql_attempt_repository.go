package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

var mysqlAttemptStatements = attemptStatements{
	ensure: `INSERT INTO reveal_attempts (subject_id, record_id) VALUES (?, ?)
			 ON DUPLICATE KEY UPDATE subject_id = subject_id`,
	lock: `SELECT failed_count, last_failed_at, locked_until, in_flight, reserved_at FROM reveal_attempts
		   WHERE subject_id = ? AND record_id = ? FOR UPDATE`,
	store: `UPDATE reveal_attempts SET failed_count = ?, last_failed_at = ?, locked_until = ?,
			in_flight = ?, reserved_at = ?
			WHERE subject_id = ? AND record_id = ?`,
}

// MySQLAttemptRepository implements reveal failure counters for MySQL.
type MySQLAttemptRepository struct {
	db *sql.DB
}

func marshalPair(subjectID, recordID uuid.UUID) ([]byte, []byte, error) {
	subject, err := subjectID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal subject id")
	}
	record, err := recordID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal record id")
	}
	return subject, record, nil
}

// Update applies fn to the counter of the pair while holding its row lock.
func (m *MySQLAttemptRepository) Update(
	ctx context.Context,
	subjectID, recordID uuid.UUID,
	fn func(counter *revealDomain.AttemptCounter),
) (*revealDomain.AttemptCounter, error) {
	querier := database.GetTx(ctx, m.db)

	subject, record, err := marshalPair(subjectID, recordID)
	if err != nil {
		return nil, err
	}

	counter := &revealDomain.AttemptCounter{SubjectID: subjectID, RecordID: recordID}
	return updateAttempts(ctx, querier, mysqlAttemptStatements, subject, record, counter, fn)
}

// NewMySQLAttemptRepository creates a new MySQL reveal attempt repository.
func NewMySQLAttemptRepository(db *sql.DB) *MySQLAttemptRepository {
	return &MySQLAttemptRepository{db: db}
}
