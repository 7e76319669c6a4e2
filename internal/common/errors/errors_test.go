package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.errors = append(l.errors, msg)
}

func TestClassification(t *testing.T) {
	notFound := NewActivityNotFoundError("Robotics Club")
	dup := NewAlreadySignedUpError("Chess Club", "michael@mergington.edu")
	full := NewActivityFullError("Chess Club", 12)

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsConflict(notFound))

	assert.True(t, IsConflict(dup))
	assert.True(t, IsConflict(full))
	assert.False(t, IsNotFound(full))

	wrapped := fmt.Errorf("signup: %w", dup)
	assert.True(t, IsConflict(wrapped))
	assert.True(t, stderrors.Is(wrapped, &StandardError{Code: ErrCodeAlreadySignedUp}))
	assert.False(t, stderrors.Is(wrapped, &StandardError{Code: ErrCodeActivityFull}))
}

func TestHTTPStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewActivityNotFoundError("x"), http.StatusNotFound},
		{"duplicate", NewAlreadySignedUpError("x", "a@b.edu"), http.StatusBadRequest},
		{"full", NewActivityFullError("x", 1), http.StatusBadRequest},
		{"invalid input", NewInvalidInputError("email", "Invalid email address"), http.StatusUnprocessableEntity},
		{"rate limited", NewRateLimitedError("1.2.3.4"), http.StatusTooManyRequests},
		{"store", NewStoreUnavailableError("list", stderrors.New("down")), http.StatusServiceUnavailable},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFor(tt.err))
		})
	}
}

func TestStoreUnavailableUnwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStoreUnavailableError("append", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeActivityNotFound))
	assert.Equal(t, "CONFLICT", GetErrorCategory(ErrCodeActivityFull))
	assert.Equal(t, "CONFLICT", GetErrorCategory(ErrCodeAlreadySignedUp))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "THROTTLING", GetErrorCategory(ErrCodeRateLimited))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeStoreUnavailable))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeInternal))
}

func TestErrorHandler_WriteError(t *testing.T) {
	t.Run("conflict is a warning with detail body", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup", nil)

		h.WriteError(rec, req, NewAlreadySignedUpError("Chess Club", "michael@mergington.edu"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Student is already signed up", body.Detail)
		assert.Len(t, log.warns, 1)
		assert.Empty(t, log.errors)
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		log := &recordingLogger{}
		h := NewErrorHandler(log)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/activities", nil)

		h.WriteError(rec, req, stderrors.New("disk on fire"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, MsgInternal, body.Detail)
		assert.Len(t, log.errors, 1)
	})
}
