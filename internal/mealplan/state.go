package mealplan

// State represents the lifecycle state of a PlanRecord.
type State string

const (
	// StatePending indicates the record is waiting to be picked up by a worker.
	StatePending State = "pending"

	// StateProcessing indicates a worker is actively generating the plan.
	StateProcessing State = "processing"

	// StateCompleted indicates generation finished and a result is attached.
	StateCompleted State = "completed"

	// StateFailed indicates generation failed, timed out, or was cancelled;
	// an error is attached.
	StateFailed State = "failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true if this state represents a final state.
// Records never leave a terminal state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// The permitted transitions are:
//
//	pending    -> processing          (worker picked up the task)
//	pending    -> failed              (owner cancellation)
//	processing -> processing          (progress update)
//	processing -> completed
//	processing -> failed
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StatePending:
		return next == StateProcessing || next == StateFailed
	case StateProcessing:
		return next == StateProcessing || next == StateCompleted || next == StateFailed
	default:
		return false
	}
}
