// internal/activities/registry.go
package activities

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
)

// ErrUnknownActivity is returned by stores asked to append to an activity they do not hold.
var ErrUnknownActivity = errors.New("UNKNOWN_ACTIVITY")

// Store holds activity rosters. Implementations do not enforce signup rules;
// the Registry does, under its own lock.
type Store interface {
	// Seed inserts activities that are not present yet and leaves existing ones untouched.
	Seed(ctx context.Context, seed []Activity) error
	// List returns every activity in seed order.
	List(ctx context.Context) ([]Activity, error)
	Get(ctx context.Context, name string) (Activity, bool, error)
	AppendParticipant(ctx context.Context, name, email string) error
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Registry is the activity registry: the only place signup rules are enforced.
type Registry struct {
	// mu serializes check-then-append so two signups can never both take the
	// last open slot.
	mu     sync.Mutex
	store  Store
	logger logger.Logger
}

func NewRegistry(store Store, log logger.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "activity-registry"}),
	}
}

// Seed validates and loads the startup activities.
func (r *Registry) Seed(ctx context.Context, seed []Activity) error {
	if err := ValidateSeed(seed); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Seed(ctx, seed); err != nil {
		return storeError("seed", err)
	}

	all, err := r.store.List(ctx)
	if err != nil {
		return storeError("list", err)
	}
	for _, a := range all {
		metrics.Participants.WithLabelValues(a.Name).Set(float64(len(a.Participants)))
	}

	r.logger.Info("registry seeded", map[string]interface{}{
		"activities": len(all),
	})
	return nil
}

// List returns a snapshot of every activity with its current participants.
func (r *Registry) List(ctx context.Context) (Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.store.List(ctx)
	if err != nil {
		return nil, storeError("list", err)
	}

	catalog := make(Catalog, len(all))
	for i, a := range all {
		catalog[i] = a.Clone()
	}
	return catalog, nil
}

// Get returns a snapshot of one activity.
func (r *Registry) Get(ctx context.Context, name string) (Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, found, err := r.store.Get(ctx, name)
	if err != nil {
		return Activity{}, storeError("get", err)
	}
	if !found {
		return Activity{}, apperrors.NewActivityNotFoundError(name)
	}
	return a.Clone(), nil
}

// Signup adds email to the activity's roster. Checks run in order and stop at
// the first failure: unknown activity, duplicate email, full roster.
func (r *Registry) Signup(ctx context.Context, activityName, email string) (*Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, found, err := r.store.Get(ctx, activityName)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(activityName, metrics.OutcomeError).Inc()
		return nil, storeError("get", err)
	}
	if !found {
		// unknown names are caller input; keep them out of metric labels
		metrics.SignupsTotal.WithLabelValues("unknown", metrics.OutcomeNotFound).Inc()
		return nil, apperrors.NewActivityNotFoundError(activityName)
	}

	if activity.HasParticipant(email) {
		metrics.SignupsTotal.WithLabelValues(activityName, metrics.OutcomeAlreadySignedUp).Inc()
		return nil, apperrors.NewAlreadySignedUpError(activityName, email)
	}

	if activity.IsFull() {
		metrics.SignupsTotal.WithLabelValues(activityName, metrics.OutcomeFull).Inc()
		return nil, apperrors.NewActivityFullError(activityName, activity.MaxParticipants)
	}

	if err := r.store.AppendParticipant(ctx, activityName, email); err != nil {
		metrics.SignupsTotal.WithLabelValues(activityName, metrics.OutcomeError).Inc()
		return nil, storeError("append participant", err)
	}

	activity = activity.Clone()
	activity.Participants = append(activity.Participants, email)

	metrics.SignupsTotal.WithLabelValues(activityName, metrics.OutcomeSuccess).Inc()
	metrics.Participants.WithLabelValues(activityName).Set(float64(len(activity.Participants)))

	r.logger.Info("student signed up", map[string]interface{}{
		"activity":     activityName,
		"email":        email,
		"participants": len(activity.Participants),
		"capacity":     activity.MaxParticipants,
	})

	return &Confirmation{
		Message:  SignupMessage(email, activityName),
		Email:    email,
		Activity: activity,
	}, nil
}

// Ping checks the backing store; in-process stores are always ready.
func (r *Registry) Ping(ctx context.Context) error {
	p, ok := r.store.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

func storeError(op string, err error) error {
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	return apperrors.NewStoreUnavailableError(op, fmt.Errorf("store: %w", err))
}
