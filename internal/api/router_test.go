package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/common/config"
	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type recordingNotifier struct {
	mu    sync.Mutex
	confs []*activities.Confirmation
}

func (n *recordingNotifier) SignupConfirmed(_ context.Context, conf *activities.Confirmation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confs = append(n.confs, conf)
}

func (n *recordingNotifier) Close(context.Context) error { return nil }

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confs)
}

type brokenRegistry struct {
	err error
}

func (b brokenRegistry) List(context.Context) (activities.Catalog, error) { return nil, b.err }

func (b brokenRegistry) Signup(context.Context, string, string) (*activities.Confirmation, error) {
	return nil, b.err
}

func (b brokenRegistry) Ping(context.Context) error { return b.err }

func newTestRouter(t *testing.T, rl config.RateLimitConfig) (*mux.Router, *activities.Registry, *recordingNotifier) {
	t.Helper()
	log := logger.NewTestLogger(t)
	reg := activities.NewRegistry(activities.NewMemoryStore(), log)
	require.NoError(t, reg.Seed(context.Background(), activities.DefaultSeed()))

	n := &recordingNotifier{}
	r := NewRouter(Dependencies{
		Registry:  reg,
		Notifier:  n,
		Logger:    log,
		RateLimit: rl,
	})
	return r, reg, n
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

// ==========================
// Routes
// ==========================

func TestRoot_RedirectsToIndex(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{})

	rec := do(t, r, http.MethodGet, "/")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/static/index.html", rec.Header().Get("Location"))
}

func TestStatic_ServesIndex(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{})

	rec := do(t, r, http.MethodGet, "/static/index.html")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mergington High School")
}

func TestListActivities(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{})

	rec := do(t, r, http.MethodGet, "/activities")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var catalog activities.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	require.Len(t, catalog, 9)
	assert.Equal(t, "Chess Club", catalog[0].Name)
	assert.Equal(t, "Math Olympiad", catalog[8].Name)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, float64(12), raw["Chess Club"]["max_participants"])
	assert.Equal(t, []interface{}{}, raw["Soccer Practice"]["participants"])
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
		wantDetail string
	}{
		{
			name:       "success",
			target:     "/activities/Soccer%20Practice/signup?email=ana@mergington.edu",
			wantStatus: http.StatusOK,
			wantBody:   "Signed up ana@mergington.edu for Soccer Practice",
		},
		{
			name:       "name with ampersand",
			target:     "/activities/Track%20%26%20Field/signup?email=ana@mergington.edu",
			wantStatus: http.StatusOK,
			wantBody:   "Signed up ana@mergington.edu for Track & Field",
		},
		{
			name:       "already signed up",
			target:     "/activities/Chess%20Club/signup?email=michael@mergington.edu",
			wantStatus: http.StatusBadRequest,
			wantDetail: "Student is already signed up",
		},
		{
			name:       "unknown activity",
			target:     "/activities/Robotics%20Club/signup?email=x@mergington.edu",
			wantStatus: http.StatusNotFound,
			wantDetail: "Activity not found",
		},
		{
			name:       "missing email",
			target:     "/activities/Chess%20Club/signup",
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "email query parameter is required",
		},
		{
			name:       "blank email",
			target:     "/activities/Chess%20Club/signup?email=%20%20",
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "email query parameter is required",
		},
		{
			name:       "malformed email",
			target:     "/activities/Chess%20Club/signup?email=not-an-email",
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "Invalid email address",
		},
		{
			name:       "input is validated before lookup",
			target:     "/activities/Robotics%20Club/signup?email=bad",
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "Invalid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, n := newTestRouter(t, config.RateLimitConfig{})

			rec := do(t, r, http.MethodPost, tt.target)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantBody, body["message"])
				assert.Equal(t, 1, n.count())
				return
			}
			assert.Equal(t, tt.wantDetail, detail(t, rec))
			assert.Equal(t, 0, n.count())
		})
	}
}

func TestSignup_TrimsEmailAndUpdatesListing(t *testing.T) {
	r, reg, _ := newTestRouter(t, config.RateLimitConfig{})

	rec := do(t, r, http.MethodPost, "/activities/Drama%20Club/signup?email=%20lee@mergington.edu%20")
	require.Equal(t, http.StatusOK, rec.Code)

	a, err := reg.Get(context.Background(), "Drama Club")
	require.NoError(t, err)
	assert.Equal(t, []string{"lee@mergington.edu"}, a.Participants)

	rec = do(t, r, http.MethodGet, "/activities")
	assert.Contains(t, rec.Body.String(), `"lee@mergington.edu"`)
}

func TestSignup_FullActivity(t *testing.T) {
	log := logger.NewTestLogger(t)
	reg := activities.NewRegistry(activities.NewMemoryStore(), log)
	require.NoError(t, reg.Seed(context.Background(), []activities.Activity{
		{Name: "Tiny Club", MaxParticipants: 1, Participants: []string{"a@mergington.edu"}},
	}))
	r := NewRouter(Dependencies{Registry: reg, Logger: log})

	rec := do(t, r, http.MethodPost, "/activities/Tiny%20Club/signup?email=b@mergington.edu")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Activity is full", detail(t, rec))
}

func TestSignup_RateLimited(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})

	first := do(t, r, http.MethodPost, "/activities/Chess%20Club/signup?email=a1@mergington.edu")
	second := do(t, r, http.MethodPost, "/activities/Chess%20Club/signup?email=a2@mergington.edu")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "Too many requests", detail(t, second))

	// listing is not throttled
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/activities").Code)
}

func TestStoreFailures(t *testing.T) {
	log := logger.NewTestLogger(t)
	storeErr := apperrors.NewStoreUnavailableError("list", errors.New("connection refused"))
	r := NewRouter(Dependencies{Registry: brokenRegistry{err: storeErr}, Logger: log})

	rec := do(t, r, http.MethodGet, "/activities")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Store unavailable", detail(t, rec))

	rec = do(t, r, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// anything unclassified becomes a 500
	r = NewRouter(Dependencies{Registry: brokenRegistry{err: errors.New("boom")}, Logger: log})
	rec = do(t, r, http.MethodPost, "/activities/Chess%20Club/signup?email=a@mergington.edu")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", detail(t, rec))
}

func TestHealthAndReady(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{})

	rec := do(t, r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(t, r, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{})
	do(t, r, http.MethodPost, "/activities/Chess%20Club/signup?email=m1@mergington.edu")

	rec := do(t, r, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "activities_signups_total")
	assert.Contains(t, body, `route="/activities/{activity_name}/signup"`)
}

func TestRequestID(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{})

	rec := do(t, r, http.MethodGet, "/health")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestUnknownRoutes(t *testing.T) {
	r, _, _ := newTestRouter(t, config.RateLimitConfig{})

	rec := do(t, r, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", detail(t, rec))

	rec = do(t, r, http.MethodGet, "/activities/Chess%20Club/signup?email=a@mergington.edu")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}
