package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	authMocks "github.com/allisson/sealbox/internal/auth/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCreateClient(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	clientID := uuid.Must(uuid.NewV7())
	plainSecret := "test-secret"

	t.Run("non-interactive-text", func(t *testing.T) {
		mockUseCase := authMocks.NewMockClientUseCase(t)
		input := &authDomain.CreateClientInput{
			Name:     "test-client",
			IsActive: true,
			Policies: []authDomain.PolicyDocument{
				{Path: "/v1/records/*", Capabilities: []authDomain.Capability{authDomain.ReadCapability}},
			},
		}
		mockUseCase.On("Create", ctx, input).
			Return(&authDomain.CreateClientOutput{ID: clientID, PlainSecret: plainSecret}, nil)

		var out bytes.Buffer
		err := RunCreateClient(
			ctx,
			mockUseCase,
			logger,
			"test-client",
			true,
			`[{"path":"/v1/records/*","capabilities":["read"]}]`,
			"text",
			IOTuple{Writer: &out},
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), clientID.String())
		require.Contains(t, out.String(), plainSecret)
		require.Contains(t, out.String(), "shown only once")
	})

	t.Run("interactive-json", func(t *testing.T) {
		mockUseCase := authMocks.NewMockClientUseCase(t)
		input := &authDomain.CreateClientInput{
			Name:     "test-client",
			IsActive: true,
			Policies: []authDomain.PolicyDocument{
				{
					Path: "/v1/records/*",
					Capabilities: []authDomain.Capability{
						authDomain.ReadCapability,
						authDomain.RevealCapability,
					},
				},
				{Path: "/v1/audit-logs*", Capabilities: []authDomain.Capability{authDomain.AuditCapability}},
			},
		}
		mockUseCase.On("Create", ctx, input).
			Return(&authDomain.CreateClientOutput{ID: clientID, PlainSecret: plainSecret}, nil)

		userInput := "/v1/records/*\nread, Reveal\ny\n/v1/audit-logs*\naudit\nn\n"
		var out bytes.Buffer

		err := RunCreateClient(ctx, mockUseCase, logger, "test-client", true, "", "json", IOTuple{
			Reader: bytes.NewBufferString(userInput),
			Writer: &out,
		})
		require.NoError(t, err)

		jsonStart := bytes.IndexByte(out.Bytes(), '{')
		require.GreaterOrEqual(t, jsonStart, 0)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes()[jsonStart:], &result))
		require.Equal(t, clientID.String(), result["client_id"])
		require.Equal(t, plainSecret, result["secret"])
	})

	t.Run("invalid-policies-json", func(t *testing.T) {
		mockUseCase := authMocks.NewMockClientUseCase(t)

		err := RunCreateClient(ctx, mockUseCase, logger, "test-client", true, `invalid-json`, "text",
			IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse policies JSON")
	})

	t.Run("unknown-capability", func(t *testing.T) {
		mockUseCase := authMocks.NewMockClientUseCase(t)

		err := RunCreateClient(ctx, mockUseCase, logger, "test-client", true,
			`[{"path":"*","capabilities":["encrypt"]}]`, "text", IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.ErrorIs(t, err, authDomain.ErrInvalidPolicy)
	})

	t.Run("empty-policies", func(t *testing.T) {
		mockUseCase := authMocks.NewMockClientUseCase(t)

		err := RunCreateClient(ctx, mockUseCase, logger, "test-client", true, `[]`, "text",
			IOTuple{Writer: &bytes.Buffer{}})

		require.EqualError(t, err, "at least one policy is required")
	})

	t.Run("interactive-empty-path", func(t *testing.T) {
		mockUseCase := authMocks.NewMockClientUseCase(t)

		err := RunCreateClient(ctx, mockUseCase, logger, "test-client", true, "", "text", IOTuple{
			Reader: bytes.NewBufferString("\n"),
			Writer: &bytes.Buffer{},
		})

		require.Error(t, err)
		require.Contains(t, err.Error(), "path cannot be empty")
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := authMocks.NewMockClientUseCase(t)
		mockUseCase.On("Create", ctx, &authDomain.CreateClientInput{
			Name: "test-client",
			Policies: []authDomain.PolicyDocument{
				{Path: "*", Capabilities: []authDomain.Capability{authDomain.WriteCapability}},
			},
		}).Return(nil, errors.New("db down"))

		err := RunCreateClient(ctx, mockUseCase, logger, "test-client", false,
			`[{"path":"*","capabilities":["write"]}]`, "text", IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create client")
	})
}

func TestParseCapabilities(t *testing.T) {
	caps, err := parseCapabilities("read, ,DELETE")
	require.NoError(t, err)
	require.Equal(t, []authDomain.Capability{authDomain.ReadCapability, authDomain.DeleteCapability}, caps)

	_, err = parseCapabilities(" , ")
	require.EqualError(t, err, "at least one capability is required")

	_, err = parseCapabilities("read,rotate")
	require.EqualError(t, err, "unknown capability: rotate")
}
