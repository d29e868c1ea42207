package mealplan

import (
	"time"
)

// SchemaVersion identifies the result payload schema. Bump when the shape of
// GeneratedPlan changes so stored results can be interpreted correctly.
const SchemaVersion = 1

// PlanDays is the number of days in a generated plan.
const PlanDays = 7

// Calorie target bounds accepted at submission time.
const (
	MinCalorieTarget = 1200
	MaxCalorieTarget = 3500
)

// DietaryPreferences lists the diet types the generator recognizes.
// An unrecognized preference is rejected at submission time.
func DietaryPreferences() []string {
	return []string{"vegan", "vegetarian", "pescatarian", "flexitarian", "omnivore", "balanced"}
}

// Parameters is the validated input to plan generation. It is immutable once
// the owning PlanRecord has been created.
type Parameters struct {
	// DietaryPreference selects the meal catalog, e.g. "vegan" or "balanced".
	DietaryPreference string `json:"dietary_preference"`

	// CalorieTarget is the daily calorie target within
	// [MinCalorieTarget, MaxCalorieTarget].
	CalorieTarget int `json:"calorie_target"`

	// ExcludeIngredients lists ingredient names that must not appear in any
	// selected meal.
	ExcludeIngredients []string `json:"exclude_ingredients,omitempty"`
}

// ErrorInfo is the failure detail persisted on a failed record: a
// machine-checkable kind plus a human-readable message.
type ErrorInfo struct {
	// Kind is one of "transient", "terminal", "timeout", "cancelled".
	Kind string `json:"kind"`

	// Message is a human-readable cause.
	Message string `json:"message"`
}

// PlanRecord is the durable unit of work: one generation request, its
// lifecycle state, and its eventual result or error.
type PlanRecord struct {
	// ID uniquely identifies the record; assigned at creation, stable for
	// the record's lifetime.
	ID string `json:"id"`

	// TaskToken is the opaque identifier returned to the caller for status
	// polling. It is distinct from ID so external polling identity and
	// internal record identity can evolve independently.
	TaskToken string `json:"task_token"`

	// OwnerID identifies the requesting principal. Every read is scoped to
	// the owner.
	OwnerID string `json:"owner_id"`

	// Parameters is the validated generation input; immutable after creation.
	Parameters Parameters `json:"parameters"`

	// State is the current lifecycle state.
	State State `json:"state"`

	// Progress is a 0-100 completion hint, monotonically non-decreasing
	// while processing. It is a UX hint, not a correctness signal.
	Progress int `json:"progress"`

	// Attempts counts generation attempts, including the automatic retry.
	Attempts int `json:"attempts"`

	// Result is present only when State is StateCompleted.
	Result *GeneratedPlan `json:"result,omitempty"`

	// Error is present only when State is StateFailed.
	Error *ErrorInfo `json:"error,omitempty"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record was last mutated.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is set exactly once, on the transition into a terminal
	// state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Projection is the caller-facing view of a record returned by the status
// resolver. It carries the result or error only once the record is terminal.
type Projection struct {
	ID          string         `json:"id"`
	TaskToken   string         `json:"task_token"`
	State       State          `json:"state"`
	Progress    int            `json:"progress"`
	Parameters  Parameters     `json:"parameters"`
	Result      *GeneratedPlan `json:"result,omitempty"`
	Error       *ErrorInfo     `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Project returns the caller-facing projection of the record.
func (r *PlanRecord) Project() Projection {
	return Projection{
		ID:          r.ID,
		TaskToken:   r.TaskToken,
		State:       r.State,
		Progress:    r.Progress,
		Parameters:  r.Parameters,
		Result:      r.Result,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}
