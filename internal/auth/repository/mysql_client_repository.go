package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
)

// MySQLClientRepository implements client persistence for MySQL.
type MySQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new client.
func (m *MySQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	policiesJSON, err := marshalPolicies(client.Policies)
	if err != nil {
		return err
	}

	id, err := client.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `INSERT INTO clients (` + clientColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		client.Secret,
		client.Name,
		client.IsActive,
		policiesJSON,
		client.FailedAttempts,
		client.LockedUntil,
		client.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// Get retrieves a client by ID.
func (m *MySQLClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	var client authDomain.Client
	var rawID []byte
	var policiesJSON []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&rawID,
		&client.Secret,
		&client.Name,
		&client.IsActive,
		&policiesJSON,
		&client.FailedAttempts,
		&client.LockedUntil,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client")
	}

	if err := client.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client id")
	}
	if client.Policies, err = unmarshalPolicies(policiesJSON); err != nil {
		return nil, err
	}

	return &client, nil
}

// UpdateLockState sets the failed attempt counter and lockout deadline.
func (m *MySQLClientRepository) UpdateLockState(
	ctx context.Context,
	clientID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := clientID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `UPDATE clients SET failed_attempts = ?, locked_until = ? WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, failedAttempts, lockedUntil, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update client lock state")
	}
	return nil
}

// NewMySQLClientRepository creates a new MySQL client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}
