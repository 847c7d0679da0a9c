// Package repository persists reveal tokens and reveal failure counters for PostgreSQL and MySQL.
// Redemption and failure counting are single conditional statements so concurrent requests never
// race on a read-modify-write.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
)

const tokenColumns = "id, token_hash, record_id, subject_id, mode, issued_at, expires_at, consumed_at"

// PostgreSQLTokenRepository implements reveal token persistence for PostgreSQL.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new reveal token.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *revealDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO reveal_tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.RecordID,
		token.SubjectID,
		string(token.Mode),
		token.IssuedAt,
		token.ExpiresAt,
		token.ConsumedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create reveal token")
	}
	return nil
}

// GetByTokenHash retrieves a reveal token by the hash of its plain value.
func (p *PostgreSQLTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*revealDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM reveal_tokens WHERE token_hash = $1`

	var token revealDomain.Token
	var mode string
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.RecordID,
		&token.SubjectID,
		&mode,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, revealDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get reveal token")
	}
	token.Mode = revealDomain.Mode(mode)

	return &token, nil
}

// Consume marks the token as redeemed. It reports true only for the single caller whose update
// matched an unconsumed, unexpired token owned by subjectID.
func (p *PostgreSQLTokenRepository) Consume(
	ctx context.Context,
	tokenHash string,
	subjectID uuid.UUID,
	now time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE reveal_tokens SET consumed_at = $1
			  WHERE token_hash = $2 AND subject_id = $3 AND consumed_at IS NULL AND expires_at > $4`

	result, err := querier.ExecContext(ctx, query, now, tokenHash, subjectID, now)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to consume reveal token")
	}
	return consumed(result)
}

// DeleteExpired removes reveal tokens that expired before the given time.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM reveal_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired reveal tokens")
	}
	return rowsAffected(result)
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL reveal token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
