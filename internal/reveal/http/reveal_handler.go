// Package http provides HTTP handlers for revealing records: requesting a reveal token with the
// record credential and redeeming it for the payload.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/sealbox/internal/auth/http"
	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	"github.com/allisson/sealbox/internal/httputil"
	revealDomain "github.com/allisson/sealbox/internal/reveal/domain"
	"github.com/allisson/sealbox/internal/reveal/http/dto"
	revealUseCase "github.com/allisson/sealbox/internal/reveal/usecase"
	customValidation "github.com/allisson/sealbox/internal/validation"
)

// RevealHandler handles HTTP requests for reveal operations.
type RevealHandler struct {
	revealUseCase revealUseCase.RevealUseCase
	logger        *slog.Logger
}

// NewRevealHandler creates a new reveal handler.
func NewRevealHandler(revealUseCase revealUseCase.RevealUseCase, logger *slog.Logger) *RevealHandler {
	return &RevealHandler{revealUseCase: revealUseCase, logger: logger}
}

// RequestHandler verifies the credential and issues a reveal token. Unless the request is deferred
// the token is redeemed right away and the payload included.
// POST /v1/records/:id/reveal - Requires RevealCapability. Returns 201 Created when deferred,
// 200 OK with the payload otherwise.
func (h *RevealHandler) RequestHandler(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid record id: must be a UUID"), h.logger)
		return
	}

	var req dto.RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actor := authHTTP.GetActor(c)
	credential := []byte(req.Credential)
	defer cryptoDomain.Zero(credential)

	grant, err := h.revealUseCase.Request(c.Request.Context(), &revealDomain.RevealRequest{
		RecordID:   recordID,
		SubjectID:  actor.ID,
		Credential: credential,
		Mode:       req.RevealMode(),
		RequestID:  actor.RequestID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if req.Deferred {
		c.JSON(http.StatusCreated, dto.RevealResponse{Token: grant.Token, ExpiresAt: grant.ExpiresAt})
		return
	}

	payload, err := h.revealUseCase.Redeem(c.Request.Context(), actor, grant.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer payload.Zero()

	c.JSON(http.StatusOK, dto.RevealResponse{
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
		Payload:   dto.MapPayloadToResponse(payload),
	})
}

// RedeemHandler exchanges a reveal token for its payload. A token works once.
// POST /v1/reveals/redeem - Requires RevealCapability.
func (h *RevealHandler) RedeemHandler(c *gin.Context) {
	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	payload, err := h.revealUseCase.Redeem(c.Request.Context(), authHTTP.GetActor(c), req.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer payload.Zero()

	c.JSON(http.StatusOK, dto.MapPayloadToResponse(payload))
}
