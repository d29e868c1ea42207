// Package event defines event types for decoupling pipeline components.
// The task queue and worker pool publish lifecycle events; the serve daemon
// subscribes to log them without the queue or workers depending on the logger.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.enqueued", "record.state_changed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Task Queue Events
// -----------------------------------------------------------------------------

// TaskEnqueuedEvent is emitted when a generation task enters the queue.
type TaskEnqueuedEvent struct {
	baseEvent
	RecordID string // Plan record the task references
	OwnerID  string // Requesting principal
}

// NewTaskEnqueuedEvent creates a TaskEnqueuedEvent.
func NewTaskEnqueuedEvent(recordID, ownerID string) TaskEnqueuedEvent {
	return TaskEnqueuedEvent{
		baseEvent: newBaseEvent("task.enqueued"),
		RecordID:  recordID,
		OwnerID:   ownerID,
	}
}

// TaskClaimedEvent is emitted when a task is delivered to a worker.
type TaskClaimedEvent struct {
	baseEvent
	RecordID string
	WorkerID string
}

// NewTaskClaimedEvent creates a TaskClaimedEvent.
func NewTaskClaimedEvent(recordID, workerID string) TaskClaimedEvent {
	return TaskClaimedEvent{
		baseEvent: newBaseEvent("task.claimed"),
		RecordID:  recordID,
		WorkerID:  workerID,
	}
}

// TaskAckedEvent is emitted when a worker acknowledges a finished delivery.
type TaskAckedEvent struct {
	baseEvent
	RecordID string
	WorkerID string
}

// NewTaskAckedEvent creates a TaskAckedEvent.
func NewTaskAckedEvent(recordID, workerID string) TaskAckedEvent {
	return TaskAckedEvent{
		baseEvent: newBaseEvent("task.acked"),
		RecordID:  recordID,
		WorkerID:  workerID,
	}
}

// TaskRequeuedEvent is emitted when a delivery is returned to the queue,
// either explicitly by a worker or by the visibility-timeout reaper.
type TaskRequeuedEvent struct {
	baseEvent
	RecordID string
	Reason   string // e.g. "worker_nack", "visibility_timeout"
}

// NewTaskRequeuedEvent creates a TaskRequeuedEvent.
func NewTaskRequeuedEvent(recordID, reason string) TaskRequeuedEvent {
	return TaskRequeuedEvent{
		baseEvent: newBaseEvent("task.requeued"),
		RecordID:  recordID,
		Reason:    reason,
	}
}

// TaskRemovedEvent is emitted when a pending task is removed from the queue
// by an owner cancellation.
type TaskRemovedEvent struct {
	baseEvent
	RecordID string
}

// NewTaskRemovedEvent creates a TaskRemovedEvent.
func NewTaskRemovedEvent(recordID string) TaskRemovedEvent {
	return TaskRemovedEvent{
		baseEvent: newBaseEvent("task.removed"),
		RecordID:  recordID,
	}
}

// QueueDepthChangedEvent is emitted whenever queue counts change.
type QueueDepthChangedEvent struct {
	baseEvent
	Ready     int // Tasks waiting for delivery
	Delivered int // Tasks currently held by workers
}

// NewQueueDepthChangedEvent creates a QueueDepthChangedEvent.
func NewQueueDepthChangedEvent(ready, delivered int) QueueDepthChangedEvent {
	return QueueDepthChangedEvent{
		baseEvent: newBaseEvent("queue.depth_changed"),
		Ready:     ready,
		Delivered: delivered,
	}
}

// -----------------------------------------------------------------------------
// Record Lifecycle Events
// -----------------------------------------------------------------------------

// RecordStateChangedEvent is emitted when a plan record transitions state.
type RecordStateChangedEvent struct {
	baseEvent
	RecordID string
	From     string
	To       string
	WorkerID string // Empty for transitions not driven by a worker
}

// NewRecordStateChangedEvent creates a RecordStateChangedEvent.
func NewRecordStateChangedEvent(recordID, from, to, workerID string) RecordStateChangedEvent {
	return RecordStateChangedEvent{
		baseEvent: newBaseEvent("record.state_changed"),
		RecordID:  recordID,
		From:      from,
		To:        to,
		WorkerID:  workerID,
	}
}

// GenerationRetriedEvent is emitted when a worker retries a transient
// generation failure. The redelivery itself is invisible to callers; the
// event exists for operator logs only.
type GenerationRetriedEvent struct {
	baseEvent
	RecordID string
	WorkerID string
	Attempt  int
	Cause    string
}

// NewGenerationRetriedEvent creates a GenerationRetriedEvent.
func NewGenerationRetriedEvent(recordID, workerID string, attempt int, cause string) GenerationRetriedEvent {
	return GenerationRetriedEvent{
		baseEvent: newBaseEvent("generation.retried"),
		RecordID:  recordID,
		WorkerID:  workerID,
		Attempt:   attempt,
		Cause:     cause,
	}
}
