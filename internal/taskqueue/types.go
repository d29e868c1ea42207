package taskqueue

import "time"

// TaskStatus represents the current state of a queued task.
type TaskStatus string

const (
	// TaskReady indicates the task is waiting to be claimed.
	TaskReady TaskStatus = "ready"

	// TaskDelivered indicates the task has been claimed by a worker and is
	// invisible to other claimers until acked, requeued, or reaped.
	TaskDelivered TaskStatus = "delivered"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// Task is one unit of queued work: a pointer to the plan record a worker
// must generate for. The queue carries delivery bookkeeping only; record
// lifecycle lives in the store.
type Task struct {
	// RecordID identifies the plan record this task generates for.
	// It doubles as the task's queue identity.
	RecordID string `json:"record_id"`

	// OwnerID is the requesting principal, carried for logging and events.
	OwnerID string `json:"owner_id"`

	// Status is the current delivery state.
	Status TaskStatus `json:"status"`

	// EnqueuedAt is when the task entered the queue.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// DeliveredTo is the worker ID currently holding this task.
	DeliveredTo string `json:"delivered_to,omitempty"`

	// DeliveredAt is when the current delivery started. RequeueStale uses
	// it to detect claims that outlived the visibility timeout.
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	// Deliveries counts how many times the task has been claimed.
	Deliveries int `json:"deliveries"`
}

// QueueStatus is a snapshot of the queue's current state counts.
type QueueStatus struct {
	Total     int `json:"total"`
	Ready     int `json:"ready"`
	Delivered int `json:"delivered"`
}
