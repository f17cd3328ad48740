package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionserver/internal/infrastructure"
	"auctionserver/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_Wrap(t *testing.T) {
	tests := []struct {
		name       string
		handler    HandlerFunc
		wantStatus int
		wantType   string
		wantCode   string
		wantBody   string
	}{
		{
			name: "success passes through",
			handler: func(w http.ResponseWriter, r *http.Request) error {
				w.Write([]byte("ok"))
				return nil
			},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) error {
				return NotFoundError("product")
			},
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name: "wrapped api error",
			handler: func(w http.ResponseWriter, r *http.Request) error {
				return fmt.Errorf("lookup: %w", ErrServiceUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeServiceDown,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name: "plain error",
			handler: func(w http.ResponseWriter, r *http.Request) error {
				return errors.New("boom")
			},
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name: "deadline",
			handler: func(w http.ResponseWriter, r *http.Request) error {
				return fmt.Errorf("query: %w", context.DeadlineExceeded)
			},
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name: "body too large",
			handler: func(w http.ResponseWriter, r *http.Request) error {
				return &http.MaxBytesError{Limit: 10}
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/product/1", nil)
			rec := httptest.NewRecorder()
			h.Wrap(tt.handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				return
			}

			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/product/1", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
		})
	}
}

func TestErrorHandler_WrapAfterWrite(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	handler := h.Wrap(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusAccepted)
		return errors.New("late failure")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bidding", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
	testutil.AssertLogContains(t, logs, slog.LevelError, "error after response started")
}

func TestErrorHandler_TraceID(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-42"))
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, ErrInvalidRequest)

	body := decodeProblem(t, rec)
	assert.Equal(t, "trace-42", body["trace_id"])
	assert.Equal(t, "INVALID_REQUEST", body["error_code"])
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("db exploded"))

	body := decodeProblem(t, rec)
	assert.Equal(t, "db exploded", body["error"])
}

func TestErrorHandler_Recover(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	handler := h.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(decodeProblem(t, rec)["detail"].(string), "/nowhere"))

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, TypeMethodNotAllowed, decodeProblem(t, rec)["type"])
}
