// Package store persists plan records and enforces the record state machine.
//
// The store is the single source of truth for record lifecycle: every write
// that changes state is validated against the allowed transitions, progress is
// monotonically non-decreasing while processing, and terminal records are
// immutable. Callers never mutate a record in place; they go through the
// transition methods so the invariants hold no matter how many workers race.
package store

import (
	"context"

	"github.com/mealwise/mealwise/internal/mealplan"
)

// ListOptions controls pagination for List. Records are always returned
// newest first.
type ListOptions struct {
	// Limit caps the number of records returned. Zero means no limit.
	Limit int

	// Offset skips that many records from the newest end.
	Offset int
}

// Store is the persistence contract for plan records.
//
// Get is unscoped and intended for pipeline internals (workers hold record
// IDs, not owner identities). All caller-facing reads go through the
// owner-scoped methods, which report ErrPlanNotFound for both missing
// records and records owned by someone else.
type Store interface {
	// Create inserts a new record. The record must be in StatePending with
	// zero progress and no result or error.
	Create(ctx context.Context, rec *mealplan.PlanRecord) error

	// Get returns the record with the given ID regardless of owner.
	Get(ctx context.Context, id string) (*mealplan.PlanRecord, error)

	// GetByToken returns the owner's record with the given task token.
	GetByToken(ctx context.Context, ownerID, token string) (*mealplan.PlanRecord, error)

	// List returns the owner's records, newest first.
	List(ctx context.Context, ownerID string, opts ListOptions) ([]*mealplan.PlanRecord, error)

	// ListActive returns all pending and processing records across owners,
	// oldest first. Used on daemon startup to rebuild the task queue from
	// records whose tasks were lost.
	ListActive(ctx context.Context) ([]*mealplan.PlanRecord, error)

	// Delete removes the owner's record with the given ID.
	Delete(ctx context.Context, ownerID, id string) error

	// MarkProcessing transitions the record into StateProcessing and
	// increments its attempt counter. Valid from StatePending and from
	// StateProcessing (a redelivered task is picked up again).
	MarkProcessing(ctx context.Context, id string) error

	// SetProgress updates the progress hint of a processing record.
	// Regressing progress is rejected with ErrProgressRegression.
	SetProgress(ctx context.Context, id string, progress int) error

	// MarkCompleted transitions the record into StateCompleted with the
	// given result, sets progress to 100, and stamps CompletedAt.
	MarkCompleted(ctx context.Context, id string, result *mealplan.GeneratedPlan) error

	// MarkFailed transitions the record into StateFailed with the given
	// error detail and stamps CompletedAt.
	MarkFailed(ctx context.Context, id string, info mealplan.ErrorInfo) error

	// CancelPending transitions a pending record into StateFailed with the
	// given error detail. Unlike MarkFailed it refuses a record that is
	// already processing with ErrNotCancellable, so a cancellation raced by
	// a worker claim in another process cannot fail in-flight work.
	CancelPending(ctx context.Context, id string, info mealplan.ErrorInfo) error

	// Close releases the underlying resources.
	Close() error
}
