// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler turns errors into HTTP responses with a FastAPI-style
// {"detail": "..."} body.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WriteError normalizes err, logs it and writes the response.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.normalizeError(err)
	h.logError(r, stdErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: stdErr.Message})
}

// normalizeError ensures we always have a StandardError with a status.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		if stdErr.HTTPStatus == 0 {
			stdErr.HTTPStatus = http.StatusInternalServerError
		}
		return stdErr
	}
	return &StandardError{
		Code:       ErrCodeInternal,
		Message:    MsgInternal,
		Details:    errString(err),
		HTTPStatus: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC(),
		cause:      err,
	}
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"status":        stdErr.HTTPStatus,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	// Client-side failures are expected traffic.
	if stdErr.HTTPStatus < http.StatusInternalServerError {
		h.logger.Warn("request rejected", fields)
		return
	}
	h.logger.Error("request failed", fields)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
