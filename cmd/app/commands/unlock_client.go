package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authUseCase "github.com/allisson/sealbox/internal/auth/usecase"
)

// RunUnlockClient clears the failed credential counter and any active lockout of a client.
func RunUnlockClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	writer io.Writer,
	clientIDStr string,
) error {
	clientID, err := uuid.Parse(clientIDStr)
	if err != nil {
		return fmt.Errorf("invalid client ID format: %w", err)
	}

	if err := clientUseCase.Unlock(ctx, clientID); err != nil {
		return fmt.Errorf("failed to unlock client: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Client %s unlocked\n", clientID)
	logger.Info("client unlocked", slog.String("client_id", clientID.String()))
	return nil
}
