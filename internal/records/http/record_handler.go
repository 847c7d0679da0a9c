// Package http provides HTTP handlers for the encrypted record store. Responses only ever carry
// the masked surrogate of a record, never its ciphertext or key derivation material.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/sealbox/internal/auth/http"
	"github.com/allisson/sealbox/internal/httputil"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
	"github.com/allisson/sealbox/internal/records/http/dto"
	recordsUseCase "github.com/allisson/sealbox/internal/records/usecase"
	customValidation "github.com/allisson/sealbox/internal/validation"
)

// RecordHandler handles HTTP requests for record operations.
type RecordHandler struct {
	recordUseCase recordsUseCase.RecordUseCase
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler with required dependencies.
func NewRecordHandler(recordUseCase recordsUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{recordUseCase: recordUseCase, logger: logger}
}

// CreateHandler stores a client sealed value.
// POST /v1/records - Requires WriteCapability. Returns 201 Created with the metadata view.
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	record, err := h.recordUseCase.Create(c.Request.Context(), authHTTP.GetActor(c), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRecordToResponse(record))
}

// GetHandler returns the metadata view of a record.
// GET /v1/records/:id - Requires ReadCapability.
func (h *RecordHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// ListHandler lists records.
// GET /v1/records?record_type=&tag=&include_deleted=&include_expired=&offset=&limit=
// Requires ReadCapability.
func (h *RecordHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	includeDeleted, err := parseBool(c, "include_deleted")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	includeExpired, err := parseBool(c, "include_expired")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := recordsDomain.ListFilter{
		RecordType:     c.Query("record_type"),
		Tag:            c.Query("tag"),
		IncludeDeleted: includeDeleted,
		IncludeExpired: includeExpired,
		Offset:         offset,
		Limit:          limit,
	}

	records, err := h.recordUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordsToListResponse(records))
}

// DeleteHandler soft deletes a record.
// DELETE /v1/records/:id - Requires DeleteCapability. Returns 204 No Content.
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.recordUseCase.SoftDelete(c.Request.Context(), authHTTP.GetActor(c), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RestoreHandler restores a soft deleted record.
// POST /v1/records/:id/restore - Requires DeleteCapability. Returns 204 No Content.
func (h *RecordHandler) RestoreHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.recordUseCase.Restore(c.Request.Context(), authHTTP.GetActor(c), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

func (h *RecordHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid record id: must be a UUID"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func parseBool(c *gin.Context, name string) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter: must be a boolean", name)
	}
	return b, nil
}
