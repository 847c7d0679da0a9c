package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
	"github.com/allisson/sealbox/internal/testutil"
)

var recordColumnNames = strings.Split(strings.ReplaceAll(recordColumns, " ", ""), ",")

func newRecord() *recordsDomain.Record {
	expiresAt := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	return &recordsDomain.Record{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       uuid.Must(uuid.NewV7()),
		Ciphertext:    []byte("ciphertext"),
		IV:            make([]byte, cryptoDomain.IVSize),
		AuthTag:       make([]byte, cryptoDomain.TagSize),
		IntegrityHash: strings.Repeat("a", 64),
		KDFSalt:       make([]byte, cryptoDomain.MinSaltSize),
		KDFIterations: 100000,
		KDFHash:       cryptoDomain.SHA256,
		Algorithm:     cryptoDomain.AESGCM,
		MaskSurrogate: "***-**-6789",
		RecordType:    "ssn",
		Tags:          []string{"pii", "hr"},
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ExpiresAt:     &expiresAt,
	}
}

func postgresRow(r *recordsDomain.Record) []driver.Value {
	return []driver.Value{
		r.ID.String(), r.OwnerID.String(), r.Ciphertext, r.IV, r.AuthTag, r.IntegrityHash, r.KDFSalt,
		int64(r.KDFIterations), string(r.KDFHash), string(r.Algorithm), r.MaskSurrogate, r.RecordType,
		[]byte(`{pii,hr}`), r.CreatedAt, *r.ExpiresAt, false, nil, nil, int64(0), nil, nil,
	}
}

func TestPostgreSQLRecordRepository_Create(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLRecordRepository(db)
	r := newRecord()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records (" + recordColumns + ")")).
		WithArgs(
			r.ID, r.OwnerID, r.Ciphertext, r.IV, r.AuthTag, r.IntegrityHash, r.KDFSalt, 100000,
			"sha256", "aes-gcm", "***-**-6789", "ssn", pq.Array([]string{"pii", "hr"}), r.CreatedAt,
			r.ExpiresAt, false, nil, nil, int64(0), nil, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), r))
}

func TestPostgreSQLRecordRepository_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRecordRepository(db)
		r := newRecord()
		revealer := uuid.Must(uuid.NewV7())
		revealedAt := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

		row := postgresRow(r)
		row[18] = int64(2)
		row[19] = revealedAt
		row[20] = revealer.String()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT " + recordColumns + " FROM records WHERE id = $1")).
			WithArgs(r.ID).
			WillReturnRows(sqlmock.NewRows(recordColumnNames).AddRow(row...))

		got, err := repo.Get(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		assert.Equal(t, r.OwnerID, got.OwnerID)
		assert.Equal(t, []string{"pii", "hr"}, got.Tags)
		assert.Equal(t, cryptoDomain.SHA256, got.KDFHash)
		assert.Equal(t, cryptoDomain.AESGCM, got.Algorithm)
		assert.Equal(t, int64(2), got.RevealCount)
		assert.Equal(t, revealer, *got.LastRevealedBy)
		assert.Nil(t, got.DeletedBy)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRecordRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT .* FROM records WHERE id").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(recordColumnNames))

		_, err := repo.Get(context.Background(), id)
		assert.ErrorIs(t, err, recordsDomain.ErrRecordNotFound)
	})
}

func TestPostgreSQLRecordRepository_List(t *testing.T) {
	t.Run("DefaultFilterExcludesDeletedAndExpired", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRecordRepository(db)
		now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		r := newRecord()

		mock.ExpectQuery(regexp.QuoteMeta(
			"FROM records WHERE is_deleted = FALSE AND (expires_at IS NULL OR expires_at > $1) " +
				"ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		)).
			WithArgs(now, 50, 0).
			WillReturnRows(sqlmock.NewRows(recordColumnNames).AddRow(postgresRow(r)...))

		records, err := repo.List(context.Background(), recordsDomain.ListFilter{Limit: 50}, now)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, r.ID, records[0].ID)
	})

	t.Run("AllFilters", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRecordRepository(db)
		owner := uuid.Must(uuid.NewV7())
		filter := recordsDomain.ListFilter{
			OwnerID:        &owner,
			RecordType:     "card",
			Tag:            "pci",
			IncludeDeleted: true,
			IncludeExpired: true,
			Offset:         20,
			Limit:          10,
		}

		mock.ExpectQuery(regexp.QuoteMeta(
			"FROM records WHERE owner_id = $1 AND record_type = $2 AND $3 = ANY(tags) " +
				"ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5",
		)).
			WithArgs(owner, "card", "pci", 10, 20).
			WillReturnRows(sqlmock.NewRows(recordColumnNames))

		records, err := repo.List(context.Background(), filter, time.Now())
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestPostgreSQLRecordRepository_SoftDeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	actor := uuid.Must(uuid.NewV7())
	at := time.Now().UTC()

	t.Run("SoftDelete", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRecordRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET is_deleted = TRUE")).
			WithArgs(at, actor, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SoftDelete(ctx, id, actor, at))
	})

	t.Run("SoftDeleteAlreadyDeleted", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRecordRepository(db)

		mock.ExpectExec("UPDATE records SET is_deleted = TRUE").
			WithArgs(at, actor, id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SoftDelete(ctx, id, actor, at), recordsDomain.ErrRecordNotFound)
	})

	t.Run("RestoreLiveRecord", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRecordRepository(db)

		mock.ExpectExec("UPDATE records SET is_deleted = FALSE").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Restore(ctx, id), recordsDomain.ErrRecordNotDeleted)
	})
}

func TestPostgreSQLRecordRepository_IncrementRevealCounters(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLRecordRepository(db)
	id := uuid.Must(uuid.NewV7())
	actor := uuid.Must(uuid.NewV7())
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("SET reveal_count = reveal_count + 1")).
		WithArgs(at, actor, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementRevealCounters(context.Background(), id, actor, at))
}

func TestPostgreSQLRecordRepository_PurgeExpired(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLRecordRepository(db)
	before := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE expires_at IS NOT NULL AND expires_at < $1")).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.PurgeExpired(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestMySQLRecordRepository_Create(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLRecordRepository(db)
	r := newRecord()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records (" + recordColumns + ")")).
		WithArgs(
			testutil.BinaryUUID(t, r.ID), testutil.BinaryUUID(t, r.OwnerID), r.Ciphertext, r.IV, r.AuthTag,
			r.IntegrityHash, r.KDFSalt, 100000, "sha256", "aes-gcm", "***-**-6789", "ssn",
			[]byte(`["pii","hr"]`), r.CreatedAt, r.ExpiresAt, false, nil, nil, int64(0), nil, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), r))
}

func TestMySQLRecordRepository_Get(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLRecordRepository(db)
	r := newRecord()
	deletedBy := uuid.Must(uuid.NewV7())
	deletedAt := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + recordColumns + " FROM records WHERE id = ?")).
		WithArgs(testutil.BinaryUUID(t, r.ID)).
		WillReturnRows(sqlmock.NewRows(recordColumnNames).AddRow(
			testutil.BinaryUUID(t, r.ID), testutil.BinaryUUID(t, r.OwnerID), r.Ciphertext, r.IV, r.AuthTag,
			r.IntegrityHash, r.KDFSalt, int64(100000), "sha512", "chacha20-poly1305", r.MaskSurrogate,
			r.RecordType, []byte(`["pii"]`), r.CreatedAt, nil, true, deletedAt,
			testutil.BinaryUUID(t, deletedBy), int64(0), nil, nil,
		))

	got, err := repo.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.OwnerID, got.OwnerID)
	assert.Equal(t, []string{"pii"}, got.Tags)
	assert.Equal(t, cryptoDomain.SHA512, got.KDFHash)
	assert.Equal(t, cryptoDomain.ChaCha20, got.Algorithm)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, deletedBy, *got.DeletedBy)
	assert.Nil(t, got.ExpiresAt)
	assert.Nil(t, got.LastRevealedBy)
}

func TestMySQLRecordRepository_ListByTag(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLRecordRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM records WHERE JSON_CONTAINS(tags, JSON_QUOTE(?)) AND is_deleted = FALSE AND " +
			"(expires_at IS NULL OR expires_at > ?) ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
	)).
		WithArgs("pii", now, 50, 0).
		WillReturnRows(sqlmock.NewRows(recordColumnNames))

	records, err := repo.List(context.Background(), recordsDomain.ListFilter{Tag: "pii", Limit: 50}, now)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMySQLRecordRepository_IncrementRevealCountersMissing(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLRecordRepository(db)
	id := uuid.Must(uuid.NewV7())
	actor := uuid.Must(uuid.NewV7())
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("SET reveal_count = reveal_count + 1")).
		WithArgs(at, testutil.BinaryUUID(t, actor), testutil.BinaryUUID(t, id)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementRevealCounters(context.Background(), id, actor, at)
	assert.ErrorIs(t, err, recordsDomain.ErrRecordNotFound)
}
