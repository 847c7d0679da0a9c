package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	"github.com/allisson/sealbox/internal/testutil"
)

var clientColumnNames = []string{
	"id", "secret", "name", "is_active", "policies", "failed_attempts", "locked_until", "created_at",
}

const policiesJSON = `[{"path":"/v1/records/*","capabilities":["read","reveal"]}]`

func newClient() *authDomain.Client {
	return &authDomain.Client{
		ID:       uuid.Must(uuid.NewV7()),
		Secret:   "$argon2id$hash",
		Name:     "billing-service",
		IsActive: true,
		Policies: []authDomain.PolicyDocument{
			{
				Path:         "/v1/records/*",
				Capabilities: []authDomain.Capability{authDomain.ReadCapability, authDomain.RevealCapability},
			},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostgreSQLClientRepository_Create(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLClientRepository(db)
	client := newClient()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clients (" + clientColumns + ")")).
		WithArgs(
			client.ID, client.Secret, client.Name, true, []byte(policiesJSON), 0, nil, client.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), client))
}

func TestPostgreSQLClientRepository_Create_NilPolicies(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLClientRepository(db)
	client := newClient()
	client.Policies = nil

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clients")).
		WithArgs(
			client.ID, client.Secret, client.Name, true, []byte(`[]`), 0, nil, client.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), client))
}

func TestPostgreSQLClientRepository_Get(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLClientRepository(db)
	client := newClient()
	lockedUntil := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + clientColumns + " FROM clients WHERE id = $1")).
		WithArgs(client.ID).
		WillReturnRows(sqlmock.NewRows(clientColumnNames).AddRow(
			client.ID.String(), client.Secret, client.Name, true, []byte(policiesJSON), 4, lockedUntil,
			client.CreatedAt,
		))

	got, err := repo.Get(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ID)
	assert.Equal(t, client.Policies, got.Policies)
	assert.Equal(t, 4, got.FailedAttempts)
	require.NotNil(t, got.LockedUntil)
	assert.True(t, lockedUntil.Equal(*got.LockedUntil))
}

func TestPostgreSQLClientRepository_Get_NotFound(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLClientRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery("SELECT").WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
}

func TestPostgreSQLClientRepository_Get_BadPolicies(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLClientRepository(db)
	client := newClient()

	mock.ExpectQuery("SELECT").WithArgs(client.ID).
		WillReturnRows(sqlmock.NewRows(clientColumnNames).AddRow(
			client.ID.String(), client.Secret, client.Name, true, []byte(`{`), 0, nil, client.CreatedAt,
		))

	_, err := repo.Get(context.Background(), client.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal client policies")
}

func TestPostgreSQLClientRepository_UpdateLockState(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLClientRepository(db)
	id := uuid.Must(uuid.NewV7())
	lockedUntil := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE clients SET failed_attempts = $1, locked_until = $2 WHERE id = $3")).
		WithArgs(10, lockedUntil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLockState(context.Background(), id, 10, &lockedUntil))
}

func TestPostgreSQLClientRepository_UpdateLockState_Error(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLClientRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec("UPDATE clients").WithArgs(0, nil, id).WillReturnError(errors.New("connection reset"))

	err := repo.UpdateLockState(context.Background(), id, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update client lock state")
}

func TestMySQLClientRepository_Create(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLClientRepository(db)
	client := newClient()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clients (" + clientColumns + ")")).
		WithArgs(
			testutil.BinaryUUID(t, client.ID), client.Secret, client.Name, true, []byte(policiesJSON), 0, nil,
			client.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), client))
}

func TestMySQLClientRepository_Get(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLClientRepository(db)
	client := newClient()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + clientColumns + " FROM clients WHERE id = ?")).
		WithArgs(testutil.BinaryUUID(t, client.ID)).
		WillReturnRows(sqlmock.NewRows(clientColumnNames).AddRow(
			testutil.BinaryUUID(t, client.ID), client.Secret, client.Name, false, []byte(policiesJSON), 0, nil,
			client.CreatedAt,
		))

	got, err := repo.Get(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ID)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.LockedUntil)
	assert.Equal(t, client.Policies, got.Policies)
}

func TestMySQLClientRepository_Get_NotFound(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLClientRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery("SELECT").WithArgs(testutil.BinaryUUID(t, id)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
}

func TestMySQLClientRepository_UpdateLockState(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLClientRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE clients SET failed_attempts = ?, locked_until = ? WHERE id = ?")).
		WithArgs(0, nil, testutil.BinaryUUID(t, id)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateLockState(context.Background(), id, 0, nil))
}
