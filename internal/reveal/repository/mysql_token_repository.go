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

// MySQLTokenRepository implements reveal token persistence for MySQL. UUIDs are stored as BINARY(16).
type MySQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new reveal token.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *revealDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal reveal token id")
	}
	recordID, err := token.RecordID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	subjectID, err := token.SubjectID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal subject id")
	}

	query := `INSERT INTO reveal_tokens (` + tokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.TokenHash,
		recordID,
		subjectID,
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
func (m *MySQLTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*revealDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM reveal_tokens WHERE token_hash = ?`

	var token revealDomain.Token
	var id, recordID, subjectID []byte
	var mode string
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&id,
		&token.TokenHash,
		&recordID,
		&subjectID,
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

	if err := token.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal reveal token id")
	}
	if err := token.RecordID.UnmarshalBinary(recordID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal record id")
	}
	if err := token.SubjectID.UnmarshalBinary(subjectID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal subject id")
	}
	token.Mode = revealDomain.Mode(mode)

	return &token, nil
}

// Consume marks the token as redeemed. It reports true only for the single caller whose update
// matched an unconsumed, unexpired token owned by subjectID.
func (m *MySQLTokenRepository) Consume(
	ctx context.Context,
	tokenHash string,
	subjectID uuid.UUID,
	now time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	subject, err := subjectID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal subject id")
	}

	query := `UPDATE reveal_tokens SET consumed_at = ?
			  WHERE token_hash = ? AND subject_id = ? AND consumed_at IS NULL AND expires_at > ?`

	result, err := querier.ExecContext(ctx, query, now, tokenHash, subject, now)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to consume reveal token")
	}
	return consumed(result)
}

// DeleteExpired removes reveal tokens that expired before the given time.
func (m *MySQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM reveal_tokens WHERE expires_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired reveal tokens")
	}
	return rowsAffected(result)
}

// NewMySQLTokenRepository creates a new MySQL reveal token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}
