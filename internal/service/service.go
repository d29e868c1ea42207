// Package service is the caller-facing surface of the pipeline: it validates
// submissions, creates records, enqueues work, and resolves status.
//
// Every read and mutation is scoped to the requesting owner. A record that
// does not exist and a record owned by someone else are indistinguishable to
// the caller, so task tokens cannot be probed.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealwise/mealwise/internal/errors"
	"github.com/mealwise/mealwise/internal/logging"
	"github.com/mealwise/mealwise/internal/mealplan"
	"github.com/mealwise/mealwise/internal/store"
	"github.com/mealwise/mealwise/internal/taskqueue"
)

// Service coordinates the store and the queue on behalf of callers.
type Service struct {
	store store.Store
	queue *taskqueue.EventQueue
	log   *logging.Logger

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the identifier source used for record IDs and
// task tokens.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a Service. The logger may be nil.
func New(st store.Store, queue *taskqueue.EventQueue, log *logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NopLogger()
	}
	s := &Service{
		store: st,
		queue: queue,
		log:   log.WithComponent("service"),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the parameters, creates a pending record, and enqueues
// its generation task. It returns before any generation work happens; the
// caller polls Status with the returned task token.
func (s *Service) Submit(ctx context.Context, ownerID string, params mealplan.Parameters) (mealplan.Projection, error) {
	if ownerID == "" {
		return mealplan.Projection{}, errors.NewValidationError("owner is required").WithField("owner_id")
	}

	normalized, err := validateParameters(params)
	if err != nil {
		return mealplan.Projection{}, err
	}

	now := s.now().UTC()
	rec := &mealplan.PlanRecord{
		ID:         s.newID(),
		TaskToken:  s.newID(),
		OwnerID:    ownerID,
		Parameters: normalized,
		State:      mealplan.StatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Create(ctx, rec); err != nil {
		return mealplan.Projection{}, errors.Wrap(err, "creating plan record")
	}

	if err := s.queue.Enqueue(rec.ID, ownerID); err != nil {
		// The record exists but its task does not; fail it so the caller is
		// not left polling a record that will never progress.
		info := mealplan.ErrorInfo{
			Kind:    string(errors.KindTerminal),
			Message: "failed to schedule generation",
		}
		if failErr := s.store.MarkFailed(ctx, rec.ID, info); failErr != nil {
			s.log.Error("failing unschedulable record failed",
				"record_id", rec.ID, "error", failErr.Error())
		}
		return mealplan.Projection{}, errors.Wrap(err, "enqueuing generation task")
	}

	s.log.Info("plan submitted", "record_id", rec.ID, "owner_id", ownerID,
		"dietary_preference", normalized.DietaryPreference)
	return rec.Project(), nil
}

// Status returns the owner's record for the given task token. Non-terminal
// records carry no result or error; completed records carry the plan and
// failed records the failure detail.
func (s *Service) Status(ctx context.Context, ownerID, token string) (mealplan.Projection, error) {
	rec, err := s.store.GetByToken(ctx, ownerID, token)
	if err != nil {
		return mealplan.Projection{}, err
	}
	return rec.Project(), nil
}

// List returns the owner's records, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]mealplan.Projection, error) {
	recs, err := s.store.List(ctx, ownerID, store.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	out := make([]mealplan.Projection, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Project())
	}
	return out, nil
}

// Cancel aborts a pending record: its task leaves the queue and the record
// fails with a cancellation kind. Records already claimed by a worker, or
// already terminal, are not cancellable.
func (s *Service) Cancel(ctx context.Context, ownerID, token string) (mealplan.Projection, error) {
	rec, err := s.store.GetByToken(ctx, ownerID, token)
	if err != nil {
		return mealplan.Projection{}, err
	}
	if rec.State != mealplan.StatePending {
		return mealplan.Projection{}, errors.Wrapf(errors.ErrNotCancellable,
			"record %s is %s", rec.ID, rec.State)
	}

	// Removing the task first closes the race with workers: once the task is
	// gone no worker can claim it, and if a worker got there first Remove
	// reports the record as not cancellable. A task missing entirely is fine;
	// the record may not be queued in this process, and a worker that later
	// picks it up drops it on seeing the terminal state.
	if err := s.queue.Remove(rec.ID); err != nil {
		if errors.Is(err, errors.ErrNotCancellable) {
			return mealplan.Projection{}, errors.Wrapf(errors.ErrNotCancellable,
				"record %s was already picked up", rec.ID)
		}
		if !errors.Is(err, errors.ErrTaskNotFound) {
			return mealplan.Projection{}, errors.Wrap(err, "removing queued task")
		}
	}

	info := mealplan.ErrorInfo{
		Kind:    string(errors.KindCancelled),
		Message: "cancelled by owner",
	}
	// The conditional write is the arbiter: if the daemon's worker marked
	// the record processing after the read above, the cancellation loses.
	if err := s.store.CancelPending(ctx, rec.ID, info); err != nil {
		if errors.Is(err, errors.ErrNotCancellable) || errors.Is(err, errors.ErrRecordTerminal) {
			return mealplan.Projection{}, errors.Wrapf(errors.ErrNotCancellable,
				"record %s was already picked up", rec.ID)
		}
		return mealplan.Projection{}, errors.Wrap(err, "recording cancellation")
	}

	s.log.Info("plan cancelled", "record_id", rec.ID, "owner_id", ownerID)

	updated, err := s.store.GetByToken(ctx, ownerID, token)
	if err != nil {
		return mealplan.Projection{}, err
	}
	return updated.Project(), nil
}

// Delete removes the owner's record, identified by task token or record ID.
// A pending record's task leaves the queue with it; a record currently being
// processed cannot be deleted.
func (s *Service) Delete(ctx context.Context, ownerID, idOrToken string) error {
	rec, err := s.resolve(ctx, ownerID, idOrToken)
	if err != nil {
		return err
	}

	switch rec.State {
	case mealplan.StateProcessing:
		return errors.NewValidationError("record is being processed and cannot be deleted").
			WithField("state").WithValue(rec.State)
	case mealplan.StatePending:
		if err := s.queue.Remove(rec.ID); err != nil {
			if errors.Is(err, errors.ErrNotCancellable) {
				return errors.NewValidationError("record is being processed and cannot be deleted").
					WithField("state").WithValue(mealplan.StateProcessing)
			}
			// A missing task means the queue already dropped it; deletion
			// proceeds.
			if !errors.Is(err, errors.ErrTaskNotFound) {
				return errors.Wrap(err, "removing queued task")
			}
		}
	}

	if err := s.store.Delete(ctx, ownerID, rec.ID); err != nil {
		return err
	}
	s.log.Info("plan deleted", "record_id", rec.ID, "owner_id", ownerID)
	return nil
}

// resolve looks the owner's record up by task token first, then by record
// ID. A record owned by someone else reports not found either way, so the
// two identifier forms leak nothing the token alone would not.
func (s *Service) resolve(ctx context.Context, ownerID, idOrToken string) (*mealplan.PlanRecord, error) {
	rec, err := s.store.GetByToken(ctx, ownerID, idOrToken)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, errors.ErrPlanNotFound) {
		return nil, err
	}

	rec, err = s.store.Get(ctx, idOrToken)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("plan", idOrToken)
	}
	return rec, nil
}

// RecoverOrphans enqueues tasks for active records that have none. It backs
// the daemon's startup and periodic recovery scan: records submitted while
// the daemon was down, or stranded by a crash that lost the queue state,
// re-enter the queue in submission order. It returns the number of tasks
// enqueued.
func (s *Service) RecoverOrphans(ctx context.Context) (int, error) {
	recs, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing active records")
	}

	recovered := 0
	for _, rec := range recs {
		if s.queue.Get(rec.ID) != nil {
			continue
		}
		if err := s.queue.Enqueue(rec.ID, rec.OwnerID); err != nil {
			// Duplicate means another enqueue won the race; not an orphan.
			if errors.Is(err, errors.ErrDuplicateTask) {
				continue
			}
			return recovered, errors.Wrapf(err, "re-enqueuing record %s", rec.ID)
		}
		s.log.Info("recovered orphaned record", "record_id", rec.ID, "state", string(rec.State))
		recovered++
	}
	return recovered, nil
}

// validateParameters checks and normalizes submission input.
func validateParameters(params mealplan.Parameters) (mealplan.Parameters, error) {
	pref := strings.ToLower(strings.TrimSpace(params.DietaryPreference))
	if pref == "" {
		return mealplan.Parameters{}, errors.NewValidationError("dietary preference is required").
			WithField("dietary_preference")
	}
	if !validPreference(pref) {
		return mealplan.Parameters{}, errors.NewValidationError("unknown dietary preference").
			WithField("dietary_preference").WithValue(params.DietaryPreference)
	}

	if params.CalorieTarget < mealplan.MinCalorieTarget || params.CalorieTarget > mealplan.MaxCalorieTarget {
		return mealplan.Parameters{}, errors.NewValidationError("calorie target out of range").
			WithField("calorie_target").WithValue(params.CalorieTarget)
	}

	var exclusions []string
	for _, ing := range params.ExcludeIngredients {
		ing = strings.TrimSpace(ing)
		if ing != "" {
			exclusions = append(exclusions, ing)
		}
	}

	return mealplan.Parameters{
		DietaryPreference:  pref,
		CalorieTarget:      params.CalorieTarget,
		ExcludeIngredients: exclusions,
	}, nil
}

func validPreference(pref string) bool {
	for _, p := range mealplan.DietaryPreferences() {
		if p == pref {
			return true
		}
	}
	return false
}
