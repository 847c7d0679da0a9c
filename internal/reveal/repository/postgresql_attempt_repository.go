package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/sealbox/internal/database"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

var postgresAttemptStatements = attemptStatements{
	ensure: `INSERT INTO reveal_attempts (subject_id, record_id) VALUES ($1, $2)
			 ON CONFLICT (subject_id, record_id) DO NOTHING`,
	lock: `SELECT failed_count, last_failed_at, locked_until, in_flight, reserved_at FROM reveal_attempts
		   WHERE subject_id = $1 AND record_id = $2 FOR UPDATE`,
	store: `UPDATE reveal_attempts SET failed_count = $1, last_failed_at = $2, locked_until = $3,
			in_flight = $4, reserved_at = $5
			WHERE subject_id = $6 AND record_id = $7`,
}

// PostgreSQLAttemptRepository implements reveal failure counters for PostgreSQL.
type PostgreSQLAttemptRepository struct {
	db *sql.DB
}

// Update applies fn to the counter of the pair while holding its row lock.
func (p *PostgreSQLAttemptRepository) Update(
	ctx context.Context,
	subjectID, recordID uuid.UUID,
	fn func(counter *revealDomain.AttemptCounter),
) (*revealDomain.AttemptCounter, error) {
	querier := database.GetTx(ctx, p.db)
	counter := &revealDomain.AttemptCounter{SubjectID: subjectID, RecordID: recordID}
	return updateAttempts(ctx, querier, postgresAttemptStatements, subjectID, recordID, counter, fn)
}

// NewPostgreSQLAttemptRepository creates a new PostgreSQL reveal attempt repository.
func NewPostgreSQLAttemptRepository(db *sql.DB) *PostgreSQLAttemptRepository {
	return &PostgreSQLAttemptRepository{db: db}
}
