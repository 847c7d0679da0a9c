package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	authService "github.com/allisson/sealbox/internal/auth/service"
	apperrors "github.com/allisson/sealbox/internal/errors"
)

type clientUseCase struct {
	clientRepo    ClientRepository
	secretService authService.SecretService
}

func (c *clientUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client name is required")
	}
	if err := authDomain.ValidatePolicies(input.Policies); err != nil {
		return nil, err
	}

	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	client := &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Secret:    hashedSecret,
		Name:      input.Name,
		IsActive:  input.IsActive,
		Policies:  input.Policies,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{ID: client.ID, PlainSecret: plainSecret}, nil
}

func (c *clientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	return c.clientRepo.Get(ctx, clientID)
}

func (c *clientUseCase) Unlock(ctx context.Context, clientID uuid.UUID) error {
	if _, err := c.clientRepo.Get(ctx, clientID); err != nil {
		return err
	}
	return c.clientRepo.UpdateLockState(ctx, clientID, 0, nil)
}

// NewClientUseCase creates a ClientUseCase.
func NewClientUseCase(clientRepo ClientRepository, secretService authService.SecretService) ClientUseCase {
	return &clientUseCase{clientRepo: clientRepo, secretService: secretService}
}
