package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	authHTTP "github.com/allisson/sealbox/internal/auth/http"
	cryptoDomain "github.com/allisson/sealbox/internal/crypto/domain"
	recordsDomain "github.com/allisson/sealbox/internal/records/domain"
	recordsUsecaseMocks "github.com/allisson/sealbox/internal/records/usecase/mocks"
)

var testClient = &authDomain.Client{ID: uuid.Must(uuid.NewV7()), IsActive: true}

func newRecordRouter(recordUseCase *recordsUsecaseMocks.MockRecordUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewRecordHandler(recordUseCase, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(authHTTP.WithClient(c.Request.Context(), testClient))
		c.Next()
	})
	router.POST("/v1/records", handler.CreateHandler)
	router.GET("/v1/records", handler.ListHandler)
	router.GET("/v1/records/:id", handler.GetHandler)
	router.DELETE("/v1/records/:id", handler.DeleteHandler)
	router.POST("/v1/records/:id/restore", handler.RestoreHandler)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func actorOf(id uuid.UUID) any {
	return mock.MatchedBy(func(actor auditDomain.Actor) bool { return actor.ID == id })
}

func newRecord() *recordsDomain.Record {
	return &recordsDomain.Record{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       testClient.ID,
		Ciphertext:    []byte("ciphertext"),
		MaskSurrogate: "***-**-6789",
		RecordType:    "ssn",
		Tags:          []string{"hr"},
		Algorithm:     cryptoDomain.AESGCM,
		CreatedAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func createBody(overrides map[string]any) string {
	encode := base64.StdEncoding.EncodeToString
	body := map[string]any{
		"ciphertext":     encode([]byte("ciphertext")),
		"iv":             encode(make([]byte, cryptoDomain.IVSize)),
		"auth_tag":       encode(make([]byte, cryptoDomain.TagSize)),
		"integrity_hash": strings.Repeat("ab", 32),
		"kdf_salt":       encode(make([]byte, cryptoDomain.MinSaltSize)),
		"kdf_iterations": cryptoDomain.DefaultIterations,
		"mask_surrogate": "***-**-6789",
		"record_type":    "ssn",
		"tags":           []string{"hr"},
	}
	for k, v := range overrides {
		body[k] = v
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func TestRecordHandler_CreateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		record := newRecord()
		recordUseCase.On("Create", mock.Anything, actorOf(testClient.ID),
			mock.MatchedBy(func(input *recordsDomain.CreateRecordInput) bool {
				return string(input.Sealed.Ciphertext) == "ciphertext" &&
					input.Sealed.KDF.Hash == cryptoDomain.SHA256 &&
					input.Sealed.Algorithm == cryptoDomain.AESGCM &&
					input.MaskSurrogate == "***-**-6789"
			})).Return(record, nil).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodPost, "/v1/records", createBody(nil))

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, record.ID.String(), body["id"])
		assert.Equal(t, "***-**-6789", body["mask_surrogate"])
		assert.NotContains(t, body, "ciphertext")
		assert.NotContains(t, body, "kdf_salt")
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		w := do(newRecordRouter(recordsUsecaseMocks.NewMockRecordUseCase(t)), http.MethodPost, "/v1/records", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_ValidationFailure", func(t *testing.T) {
		cases := map[string]map[string]any{
			"short iv":       {"iv": base64.StdEncoding.EncodeToString([]byte("short"))},
			"weak kdf":       {"kdf_iterations": 1000},
			"blank mask":     {"mask_surrogate": "   "},
			"bad algorithm":  {"algorithm": "des"},
			"bad hash":       {"integrity_hash": "not-hex"},
			"padded type":    {"record_type": " ssn"},
			"missing cipher": {"ciphertext": ""},
		}
		for name, override := range cases {
			t.Run(name, func(t *testing.T) {
				w := do(newRecordRouter(recordsUsecaseMocks.NewMockRecordUseCase(t)),
					http.MethodPost, "/v1/records", createBody(override))
				assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			})
		}
	})

	t.Run("Error_ExpiryInPast", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, recordsDomain.ErrExpiryInPast).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodPost, "/v1/records",
			createBody(map[string]any{"expires_at": "2020-01-01T00:00:00Z"}))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRecordHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		record := newRecord()
		recordUseCase.On("Get", mock.Anything, record.ID).Return(record, nil).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodGet, "/v1/records/"+record.ID.String(), "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reveal_count":0`)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		id := uuid.Must(uuid.NewV7())
		recordUseCase.On("Get", mock.Anything, id).Return(nil, recordsDomain.ErrRecordNotFound).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodGet, "/v1/records/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		w := do(newRecordRouter(recordsUsecaseMocks.NewMockRecordUseCase(t)), http.MethodGet, "/v1/records/nope", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRecordHandler_ListHandler(t *testing.T) {
	t.Run("Success_WithFilters", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("List", mock.Anything, recordsDomain.ListFilter{
			RecordType:     "ssn",
			Tag:            "hr",
			IncludeDeleted: true,
			Offset:         10,
			Limit:          5,
		}).Return([]*recordsDomain.Record{newRecord()}, nil).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodGet,
			"/v1/records?record_type=ssn&tag=hr&include_deleted=true&offset=10&limit=5", "")

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Data, 1)
	})

	t.Run("Success_Empty", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("List", mock.Anything, recordsDomain.ListFilter{Limit: 50}).
			Return([]*recordsDomain.Record{}, nil).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodGet, "/v1/records", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("Error_InvalidParameters", func(t *testing.T) {
		for _, query := range []string{"limit=0", "offset=-1", "include_deleted=maybe", "include_expired=2"} {
			w := do(newRecordRouter(recordsUsecaseMocks.NewMockRecordUseCase(t)),
				http.MethodGet, "/v1/records?"+query, "")
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, query)
		}
	})
}

func TestRecordHandler_DeleteAndRestore(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	t.Run("Delete_Success", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("SoftDelete", mock.Anything, actorOf(testClient.ID), id).Return(nil).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodDelete, "/v1/records/"+id.String(), "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Delete_NotFound", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("SoftDelete", mock.Anything, mock.Anything, id).Return(recordsDomain.ErrRecordNotFound).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodDelete, "/v1/records/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Restore_Success", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("Restore", mock.Anything, actorOf(testClient.ID), id).Return(nil).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodPost, "/v1/records/"+id.String()+"/restore", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Restore_NotDeleted", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("Restore", mock.Anything, mock.Anything, id).Return(recordsDomain.ErrRecordNotDeleted).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodPost, "/v1/records/"+id.String()+"/restore", "")

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Restore_UnexpectedError", func(t *testing.T) {
		recordUseCase := recordsUsecaseMocks.NewMockRecordUseCase(t)
		recordUseCase.On("Restore", mock.Anything, mock.Anything, id).Return(errors.New("db down")).Once()

		w := do(newRecordRouter(recordUseCase), http.MethodPost, "/v1/records/"+id.String()+"/restore", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
