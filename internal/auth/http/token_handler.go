package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	"github.com/allisson/sealbox/internal/auth/http/dto"
	authUseCase "github.com/allisson/sealbox/internal/auth/usecase"
	"github.com/allisson/sealbox/internal/httputil"
	customValidation "github.com/allisson/sealbox/internal/validation"
)

// TokenHandler serves the token issuance endpoint.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{tokenUseCase: tokenUseCase, logger: logger}
}

// IssueTokenHandler exchanges client credentials for a bearer token.
// POST /v1/token - no authentication required. Returns 201 Created.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			errors.New("invalid client_id format: must be a valid UUID"),
			h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), RequestID(c), &authDomain.IssueTokenInput{
		ClientID:     clientID,
		ClientSecret: req.ClientSecret,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.IssueTokenResponse{
		Token:     output.PlainToken,
		ExpiresAt: output.ExpiresAt,
	})
}
