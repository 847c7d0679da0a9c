// Package repository persists clients and bearer tokens. PostgreSQL stores UUIDs natively and policies
// as JSONB; MySQL stores UUIDs as BINARY(16) and policies as JSON.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	"github.com/allisson/sealbox/internal/database"
	apperrors "github.com/allisson/sealbox/internal/errors"
)

const clientColumns = "id, secret, name, is_active, policies, failed_attempts, locked_until, created_at"

// PostgreSQLClientRepository implements client persistence for PostgreSQL.
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new client.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	policiesJSON, err := marshalPolicies(client.Policies)
	if err != nil {
		return err
	}

	query := `INSERT INTO clients (` + clientColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		client.ID,
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
func (p *PostgreSQLClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	var client authDomain.Client
	var policiesJSON []byte

	err := querier.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
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

	if client.Policies, err = unmarshalPolicies(policiesJSON); err != nil {
		return nil, err
	}

	return &client, nil
}

// UpdateLockState sets the failed attempt counter and lockout deadline.
func (p *PostgreSQLClientRepository) UpdateLockState(
	ctx context.Context,
	clientID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients SET failed_attempts = $1, locked_until = $2 WHERE id = $3`

	_, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, clientID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update client lock state")
	}
	return nil
}

// NewPostgreSQLClientRepository creates a new PostgreSQL client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}

func marshalPolicies(policies []authDomain.PolicyDocument) ([]byte, error) {
	if policies == nil {
		policies = []authDomain.PolicyDocument{}
	}
	policiesJSON, err := json.Marshal(policies)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal client policies")
	}
	return policiesJSON, nil
}

func unmarshalPolicies(policiesJSON []byte) ([]authDomain.PolicyDocument, error) {
	var policies []authDomain.PolicyDocument
	if len(policiesJSON) == 0 {
		return policies, nil
	}
	if err := json.Unmarshal(policiesJSON, &policies); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client policies")
	}
	return policies, nil
}
