package taskqueue

import (
	"sync"
	"time"

	"github.com/mealwise/mealwise/internal/errors"
)

// Queue is a FIFO task queue with at-least-once delivery.
// All methods are safe for concurrent use via an internal mutex.
type Queue struct {
	mu     sync.Mutex
	tasks  map[string]*Task // recordID -> task
	order  []string         // record IDs in arrival order
	closed bool
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{
		tasks: make(map[string]*Task),
	}
}

// newFromTasks creates a Queue from pre-built task maps and order.
// Used internally for loading persisted state. Deliveries in flight when
// the state was saved are returned to the ready set: the workers holding
// them are gone.
func newFromTasks(tasks map[string]*Task, order []string) *Queue {
	for _, task := range tasks {
		if task.Status == TaskDelivered {
			task.Status = TaskReady
			task.DeliveredTo = ""
			task.DeliveredAt = nil
		}
	}
	return &Queue{
		tasks: tasks,
		order: order,
	}
}

// Enqueue adds a task for the given record at the tail of the queue.
func (q *Queue) Enqueue(recordID, ownerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.ErrQueueClosed
	}
	if recordID == "" {
		return errors.New("recordID must not be empty")
	}
	if _, ok := q.tasks[recordID]; ok {
		return errors.Wrapf(errors.ErrDuplicateTask, "record %s", recordID)
	}

	q.tasks[recordID] = &Task{
		RecordID:   recordID,
		OwnerID:    ownerID,
		Status:     TaskReady,
		EnqueuedAt: time.Now(),
	}
	q.order = append(q.order, recordID)
	return nil
}

// ClaimNext delivers the oldest ready task to the given worker.
// Returns nil with no error if no tasks are currently available.
func (q *Queue) ClaimNext(workerID string) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, errors.ErrQueueClosed
	}
	if workerID == "" {
		return nil, errors.New("workerID must not be empty")
	}

	for _, id := range q.order {
		task := q.tasks[id]
		if task.Status != TaskReady {
			continue
		}
		now := time.Now()
		task.Status = TaskDelivered
		task.DeliveredTo = workerID
		task.DeliveredAt = &now
		task.Deliveries++
		// Return a copy to avoid data races on the internal task pointer.
		cp := *task
		return &cp, nil
	}
	return nil, nil
}

// Ack removes a delivered task from the queue. Only the worker holding the
// delivery may ack; a stale worker whose claim was reaped and redelivered
// gets ErrNotDelivered instead of removing someone else's work.
func (q *Queue) Ack(recordID, workerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[recordID]
	if !ok {
		return errors.Wrapf(errors.ErrTaskNotFound, "record %s", recordID)
	}
	if task.Status != TaskDelivered || task.DeliveredTo != workerID {
		return errors.Wrapf(errors.ErrNotDelivered, "record %s is not held by worker %s", recordID, workerID)
	}

	delete(q.tasks, recordID)
	q.removeFromOrder(recordID)
	return nil
}

// Requeue returns a delivered task to the ready set, keeping its original
// queue position. Only the worker holding the delivery may requeue.
func (q *Queue) Requeue(recordID, workerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[recordID]
	if !ok {
		return errors.Wrapf(errors.ErrTaskNotFound, "record %s", recordID)
	}
	if task.Status != TaskDelivered || task.DeliveredTo != workerID {
		return errors.Wrapf(errors.ErrNotDelivered, "record %s is not held by worker %s", recordID, workerID)
	}

	task.Status = TaskReady
	task.DeliveredTo = ""
	task.DeliveredAt = nil
	return nil
}

// RequeueStale returns deliveries older than the cutoff to the ready set
// and reports the affected record IDs. The reaper calls this periodically
// with now minus the visibility timeout.
func (q *Queue) RequeueStale(cutoff time.Time) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var requeued []string
	for _, id := range q.order {
		task := q.tasks[id]
		if task.Status == TaskDelivered && task.DeliveredAt != nil && task.DeliveredAt.Before(cutoff) {
			task.Status = TaskReady
			task.DeliveredTo = ""
			task.DeliveredAt = nil
			requeued = append(requeued, id)
		}
	}
	return requeued
}

// Remove deletes a ready task from the queue. Cancellation uses this; a
// task already delivered to a worker cannot be removed.
func (q *Queue) Remove(recordID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[recordID]
	if !ok {
		return errors.Wrapf(errors.ErrTaskNotFound, "record %s", recordID)
	}
	if task.Status != TaskReady {
		return errors.Wrapf(errors.ErrNotCancellable, "record %s is delivered to worker %s", recordID, task.DeliveredTo)
	}

	delete(q.tasks, recordID)
	q.removeFromOrder(recordID)
	return nil
}

// Get returns a copy of the task for the given record, or nil if not queued.
func (q *Queue) Get(recordID string) *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.tasks[recordID]
	if !ok {
		return nil
	}
	cp := *task
	return &cp
}

// Status returns a snapshot of the current queue state counts.
func (q *Queue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	var s QueueStatus
	s.Total = len(q.tasks)
	for _, task := range q.tasks {
		switch task.Status {
		case TaskReady:
			s.Ready++
		case TaskDelivered:
			s.Delivered++
		}
	}
	return s
}

// Close marks the queue closed. Subsequent Enqueue and ClaimNext calls
// return ErrQueueClosed; acks and requeues for in-flight deliveries still
// work so a draining worker can finish cleanly.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// removeFromOrder drops an ID from the order slice. Caller holds q.mu.
func (q *Queue) removeFromOrder(recordID string) {
	for i, id := range q.order {
		if id == recordID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			return
		}
	}
}
