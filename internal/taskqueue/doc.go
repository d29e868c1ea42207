// Package taskqueue provides the FIFO generation queue with at-least-once
// delivery semantics.
//
// Submissions enqueue one task per plan record. Workers claim the oldest
// ready task, hold it invisibly while they work, and either acknowledge it
// (removing it from the queue) or requeue it. A task whose claim outlives
// the visibility timeout is returned to the ready set by RequeueStale, so a
// crashed or wedged worker never strands a task.
//
// A requeued task keeps its original queue position, so redelivery does not
// push it behind newer submissions.
//
// The core type is [Queue], safe for concurrent use via an internal mutex.
// [EventQueue] wraps a Queue and publishes lifecycle events on an event bus.
// Queue state can be persisted to disk and restored, so pending work
// survives a daemon restart.
//
// Usage:
//
//	queue := taskqueue.New()
//	queue.Enqueue(recordID, ownerID)
//
//	// Worker claims the oldest ready task
//	task, err := queue.ClaimNext("worker-1")
//	if task != nil {
//	    // ... run generation ...
//	    queue.Ack(task.RecordID, "worker-1")
//	}
package taskqueue
