package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gemsimce/handler"
	"github.com/dmitrymomot/gemsimce/pkg/binder"
	"github.com/dmitrymomot/gemsimce/pkg/logger"
	"github.com/dmitrymomot/gemsimce/pkg/requestid"
	"github.com/dmitrymomot/gemsimce/pkg/validator"
)

func contextWith(r *http.Request, key, val any) context.Context {
	return context.WithValue(r.Context(), key, val)
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	errQuota := handler.NewHTTPError(http.StatusPaymentRequired, "quota_exceeded", "Has alcanzado el límite")

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
		level   string
	}{
		{"http error", handler.ErrNotFound, http.StatusNotFound, "not_found", "Not found", "WARN"},
		{"joined http error keeps safe message", errors.Join(errQuota, errors.New("store: 20/20")), http.StatusPaymentRequired, "quota_exceeded", "Has alcanzado el límite", "WARN"},
		{"unsupported media", fmt.Errorf("%w: got text/plain", binder.ErrUnsupportedMediaType), http.StatusUnsupportedMediaType, "unsupported_media_type", "Expected application/json request body", "WARN"},
		{"missing content type", binder.ErrMissingContentType, http.StatusUnsupportedMediaType, "unsupported_media_type", "Expected application/json request body", "WARN"},
		{"malformed json", binder.ErrFailedToParseJSON, http.StatusBadRequest, "bad_request", "Malformed request", "WARN"},
		{"unknown error is hidden", errors.New("mongo: connection refused"), http.StatusInternalServerError, "internal_server_error", "An error occurred processing your request", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logs := &bytes.Buffer{}
			eh := handler.NewErrorHandler(logger.New(logger.WithOutput(logs)))
			rec := httptest.NewRecorder()
			eh(handler.NewContext(rec, httptest.NewRequest(http.MethodPost, "/api/v1/gems", nil)), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body handler.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Error)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "/api/v1/gems", entry["path"])
			assert.Contains(t, entry["error"], tt.err.Error())
		})
	}
}

func TestErrorLogCarriesRequestIDOnce(t *testing.T) {
	t.Parallel()

	logs := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(logs), logger.WithContextExtractors(requestid.LoggerExtractor()))
	eh := handler.NewErrorHandler(log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gems/x", nil)
	req = req.WithContext(requestid.WithContext(req.Context(), "req-123"))
	eh(handler.NewContext(httptest.NewRecorder(), req), handler.ErrNotFound)

	assert.Equal(t, 1, strings.Count(logs.String(), `"request_id"`), logs.String())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestValidationErrorsCarryDetails(t *testing.T) {
	t.Parallel()

	verr := validator.Errors{}
	verr.Add("schoolName", "is required")

	rec := httptest.NewRecorder()
	eh := handler.NewErrorHandler(logger.Discard())
	eh(handler.NewContext(rec, httptest.NewRequest(http.MethodPost, "/", nil)), fmt.Errorf("gems: %w", verr))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body handler.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, []string{"is required"}, body.Details["schoolName"])
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.NewErrorHandler(nil)(handler.NewContext(rec, httptest.NewRequest(http.MethodGet, "/", nil)), handler.ErrUnauthorized)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorWithNil(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, handler.Error(nil).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
