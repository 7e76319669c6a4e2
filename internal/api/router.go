// Package api exposes the activity registry over HTTP.
package api

import (
	"context"
	"net/http"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/common/config"
	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/notify"
	"mergington-activities/internal/web"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the part of *activities.Registry the handlers use.
type Registry interface {
	List(ctx context.Context) (activities.Catalog, error)
	Signup(ctx context.Context, activityName, email string) (*activities.Confirmation, error)
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Registry      Registry
	Notifier      notify.Notifier
	Logger        logger.Logger
	Observability *observability.Observability
	RateLimit     config.RateLimitConfig
}

type Handler struct {
	registry Registry
	notifier notify.Notifier
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(registry Registry, notifier notify.Notifier, log logger.Logger) *Handler {
	if notifier == nil {
		notifier = notify.NoOp{}
	}
	return &Handler{
		registry: registry,
		notifier: notifier,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

// NewRouter wires routes and middleware.
func NewRouter(deps Dependencies) *mux.Router {
	h := NewHandler(deps.Registry, deps.Notifier, deps.Logger)

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(MetricsMiddleware(deps.Observability))

	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/activities", h.listActivities).Methods(http.MethodGet)

	var signup http.Handler = http.HandlerFunc(h.signup)
	if deps.RateLimit.RequestsPerSecond > 0 {
		limiter := NewRateLimiter(deps.RateLimit.RequestsPerSecond, deps.RateLimit.Burst, h.errors, deps.Logger)
		signup = limiter.Handler(signup)
	}
	r.Handle("/activities/{activity_name}/signup", signup).Methods(http.MethodPost)

	r.PathPrefix("/static/").Handler(web.Handler()).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, apperrors.ErrorResponse{Detail: "Not Found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorResponse{Detail: "Method Not Allowed"})
	})

	return r
}
