// Package testutil provides testing utilities shared by repository and use case tests.
//
// Repository tests run against go-sqlmock so they exercise the exact SQL each dialect issues:
//
//	db, mock := testutil.NewMockDB(t)
//	mock.ExpectExec("UPDATE records").WillReturnResult(sqlmock.NewResult(0, 1))
//
// Expectations are verified automatically when the test finishes.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewMockDB returns a sqlmock-backed *sql.DB. Queries are matched as regular expressions.
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unmet sql expectations")
		_ = db.Close()
	})

	return db, mock
}

// BinaryUUID returns the MySQL BINARY(16) encoding of id.
func BinaryUUID(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

// MigrationsPath walks up from the working directory until migrations/{dbType} is found.
func MigrationsPath(dbType string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		migrationsPath := filepath.Join(dir, "migrations", dbType)
		if _, err := os.Stat(migrationsPath); err == nil {
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found for %s (started from %s)", dbType, dir)
		}
		dir = parent
	}
}
