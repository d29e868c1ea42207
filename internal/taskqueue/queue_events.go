package taskqueue

import (
	"sync"
	"time"

	"github.com/mealwise/mealwise/internal/event"
)

// EventQueue wraps a Queue and publishes events to an event bus whenever
// queue operations occur.
type EventQueue struct {
	mu  sync.Mutex
	q   *Queue
	bus *event.Bus
}

// NewEventQueue creates an EventQueue that publishes events on the given bus.
func NewEventQueue(q *Queue, bus *event.Bus) *EventQueue {
	return &EventQueue{q: q, bus: bus}
}

// Enqueue adds a task and publishes TaskEnqueuedEvent and QueueDepthChangedEvent.
func (eq *EventQueue) Enqueue(recordID, ownerID string) error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if err := eq.q.Enqueue(recordID, ownerID); err != nil {
		return err
	}
	eq.bus.Publish(event.NewTaskEnqueuedEvent(recordID, ownerID))
	eq.publishDepth()
	return nil
}

// ClaimNext delivers the oldest ready task and publishes TaskClaimedEvent
// and QueueDepthChangedEvent.
func (eq *EventQueue) ClaimNext(workerID string) (*Task, error) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	task, err := eq.q.ClaimNext(workerID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	eq.bus.Publish(event.NewTaskClaimedEvent(task.RecordID, workerID))
	eq.publishDepth()
	return task, nil
}

// Ack removes a delivered task and publishes TaskAckedEvent and
// QueueDepthChangedEvent.
func (eq *EventQueue) Ack(recordID, workerID string) error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if err := eq.q.Ack(recordID, workerID); err != nil {
		return err
	}
	eq.bus.Publish(event.NewTaskAckedEvent(recordID, workerID))
	eq.publishDepth()
	return nil
}

// Requeue returns a task to the ready set and publishes TaskRequeuedEvent
// and QueueDepthChangedEvent.
func (eq *EventQueue) Requeue(recordID, workerID, reason string) error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if err := eq.q.Requeue(recordID, workerID); err != nil {
		return err
	}
	eq.bus.Publish(event.NewTaskRequeuedEvent(recordID, reason))
	eq.publishDepth()
	return nil
}

// RequeueStale returns deliveries older than the cutoff to the ready set.
// Publishes a TaskRequeuedEvent per reclaimed task.
func (eq *EventQueue) RequeueStale(cutoff time.Time) []string {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	requeued := eq.q.RequeueStale(cutoff)

	for _, id := range requeued {
		eq.bus.Publish(event.NewTaskRequeuedEvent(id, "visibility_timeout"))
	}
	if len(requeued) > 0 {
		eq.publishDepth()
	}
	return requeued
}

// Remove deletes a ready task and publishes TaskRemovedEvent and
// QueueDepthChangedEvent.
func (eq *EventQueue) Remove(recordID string) error {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if err := eq.q.Remove(recordID); err != nil {
		return err
	}
	eq.bus.Publish(event.NewTaskRemovedEvent(recordID))
	eq.publishDepth()
	return nil
}

// Get returns the task for the given record.
func (eq *EventQueue) Get(recordID string) *Task {
	return eq.q.Get(recordID)
}

// Status returns the current queue status snapshot.
func (eq *EventQueue) Status() QueueStatus {
	return eq.q.Status()
}

// Close marks the underlying queue closed.
func (eq *EventQueue) Close() {
	eq.q.Close()
}

// SaveState persists the queue state to disk.
func (eq *EventQueue) SaveState(dir string) error {
	return eq.q.SaveState(dir)
}

// publishDepth publishes a QueueDepthChangedEvent with current counts.
// Must be called while eq.mu is held.
func (eq *EventQueue) publishDepth() {
	s := eq.q.Status()
	eq.bus.Publish(event.NewQueueDepthChangedEvent(s.Ready, s.Delivered))
}

// Ensure the event types satisfy the Event interface at compile time.
var (
	_ event.Event = event.TaskEnqueuedEvent{}
	_ event.Event = event.TaskClaimedEvent{}
	_ event.Event = event.TaskAckedEvent{}
	_ event.Event = event.TaskRequeuedEvent{}
	_ event.Event = event.TaskRemovedEvent{}
	_ event.Event = event.QueueDepthChangedEvent{}
)
