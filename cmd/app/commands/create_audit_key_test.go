package commands

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	cryptoService "github.com/allisson/sealbox/internal/crypto/service"
)

const localKeyURI = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, uri string) (cryptoDomain.KMSKeeper, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoDomain.KMSKeeper), args.Error(1)
}

type MockKMSKeeper struct {
	mock.Mock
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}

var signingKeyLine = regexp.MustCompile(`AUDIT_SIGNING_KEY="([^"]+)"`)

func TestRunCreateAuditKey(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips-through-local-kms", func(t *testing.T) {
		kmsService := cryptoService.NewKMSService()

		var out bytes.Buffer
		err := RunCreateAuditKey(ctx, kmsService, discardLogger(), &out, "audit-2026", localKeyURI)
		require.NoError(t, err)
		require.Contains(t, out.String(), `AUDIT_KMS_KEY_URI="`+localKeyURI+`"`)

		match := signingKeyLine.FindStringSubmatch(out.String())
		require.Len(t, match, 2)

		keeper, err := kmsService.OpenKeeper(ctx, localKeyURI)
		require.NoError(t, err)
		defer func() { _ = keeper.Close() }()

		signingKey, err := cryptoService.UnwrapSigningKey(ctx, keeper, match[1])
		require.NoError(t, err)
		defer signingKey.Close()
		require.Equal(t, "audit-2026", signingKey.ID)
		require.Len(t, signingKey.Key, cryptoDomain.KeySize)
	})

	t.Run("default-key-id", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateAuditKey(ctx, cryptoService.NewKMSService(), discardLogger(), &out, "", localKeyURI)

		require.NoError(t, err)
		require.Regexp(t, `AUDIT_SIGNING_KEY="audit-key-\d{4}-\d{2}-\d{2}:`, out.String())
	})

	t.Run("missing-uri", func(t *testing.T) {
		err := RunCreateAuditKey(ctx, &MockKMSService{}, discardLogger(), &bytes.Buffer{}, "k", "")

		require.Error(t, err)
		require.Contains(t, err.Error(), "--kms-key-uri is required")
	})

	t.Run("open-keeper-error", func(t *testing.T) {
		kmsService := &MockKMSService{}
		kmsService.On("OpenKeeper", ctx, "awskms:///alias/audit").Return(nil, errors.New("no credentials"))

		err := RunCreateAuditKey(ctx, kmsService, discardLogger(), &bytes.Buffer{}, "k", "awskms:///alias/audit")

		require.EqualError(t, err, "no credentials")
		kmsService.AssertExpectations(t)
	})

	t.Run("encrypt-error-closes-keeper", func(t *testing.T) {
		kmsService := &MockKMSService{}
		keeper := &MockKMSKeeper{}
		kmsService.On("OpenKeeper", ctx, "awskms:///alias/audit").Return(keeper, nil)
		keeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return(nil, errors.New("access denied"))
		keeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateAuditKey(ctx, kmsService, discardLogger(), &out, "k", "awskms:///alias/audit")

		require.Error(t, err)
		require.Contains(t, err.Error(), "access denied")
		require.Empty(t, out.String())
		kmsService.AssertExpectations(t)
		keeper.AssertExpectations(t)
	})
}
