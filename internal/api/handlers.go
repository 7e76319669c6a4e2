// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/validation"
	"mergington-activities/internal/web"

	"github.com/gorilla/mux"
)

const (
	msgEmailRequired = "email query parameter is required"
	msgEmailInvalid  = "Invalid email address"
	readyTimeout     = 2 * time.Second
)

var signupSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"activityName": {Type: "string", MinLength: validation.IntPtr(1)},
		"email":        {Type: "string", Format: "email", MaxLength: validation.IntPtr(254)},
	},
	Required: []string{"activityName", "email"},
}

type signupResponse struct {
	Message string `json:"message"`
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, web.IndexPath, http.StatusTemporaryRedirect)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.registry.List(r.Context())
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	activityName := mux.Vars(r)["activity_name"]
	email := strings.TrimSpace(r.URL.Query().Get("email"))

	if err := validateSignup(activityName, email); err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	conf, err := h.registry.Signup(r.Context(), activityName, email)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	h.notifier.SignupConfirmed(r.Context(), conf)
	writeJSON(w, http.StatusOK, signupResponse{Message: conf.Message})
}

func validateSignup(activityName, email string) error {
	result := validation.ValidateInput(map[string]interface{}{
		"activityName": activityName,
		"email":        email,
	}, signupSchema)
	if result.Valid {
		return nil
	}

	if result.HasErrors("email") {
		if email == "" {
			return apperrors.NewInvalidInputError("email", msgEmailRequired)
		}
		return apperrors.NewInvalidInputError("email", msgEmailInvalid)
	}
	first := result.FirstError()
	return apperrors.NewInvalidInputError(first.Field, first.Field+": "+first.Message)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.registry.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
