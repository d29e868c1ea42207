package taskqueue

import (
	"testing"
	"time"

	"github.com/mealwise/mealwise/internal/event"
)

// collectTypes subscribes to all events and returns the observed type list.
func collectTypes(bus *event.Bus) *[]string {
	var types []string
	bus.SubscribeAll(func(e event.Event) {
		types = append(types, e.EventType())
	})
	return &types
}

func TestEventQueueLifecycle(t *testing.T) {
	bus := event.NewBus()
	types := collectTypes(bus)
	eq := NewEventQueue(New(), bus)

	if err := eq.Enqueue("rec-1", "user-1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	task, err := eq.ClaimNext("worker-1")
	if err != nil || task == nil {
		t.Fatalf("ClaimNext: task=%v err=%v", task, err)
	}
	if err := eq.Ack("rec-1", "worker-1"); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	want := []string{
		"task.enqueued", "queue.depth_changed",
		"task.claimed", "queue.depth_changed",
		"task.acked", "queue.depth_changed",
	}
	if len(*types) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(*types), *types, len(want))
	}
	for i, w := range want {
		if (*types)[i] != w {
			t.Errorf("event %d: got %q, want %q", i, (*types)[i], w)
		}
	}
}

func TestEventQueueRequeuePublishesReason(t *testing.T) {
	bus := event.NewBus()
	eq := NewEventQueue(New(), bus)

	var reasons []string
	bus.Subscribe("task.requeued", func(e event.Event) {
		reasons = append(reasons, e.(event.TaskRequeuedEvent).Reason)
	})

	if err := eq.Enqueue("rec-1", "user-1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := eq.ClaimNext("worker-1"); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if err := eq.Requeue("rec-1", "worker-1", "worker_shutdown"); err != nil {
		t.Fatalf("Requeue: %v", err)
	}

	if len(reasons) != 1 || reasons[0] != "worker_shutdown" {
		t.Errorf("reasons = %v", reasons)
	}
}

func TestEventQueueRequeueStale(t *testing.T) {
	bus := event.NewBus()
	eq := NewEventQueue(New(), bus)

	var requeued []string
	bus.Subscribe("task.requeued", func(e event.Event) {
		evt := e.(event.TaskRequeuedEvent)
		if evt.Reason == "visibility_timeout" {
			requeued = append(requeued, evt.RecordID)
		}
	})

	if err := eq.Enqueue("rec-1", "user-1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := eq.ClaimNext("worker-1"); err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}

	// Nothing is stale yet; no events expected.
	if ids := eq.RequeueStale(time.Now().Add(-time.Minute)); len(ids) != 0 {
		t.Fatalf("unexpected stale requeue: %v", ids)
	}
	if len(requeued) != 0 {
		t.Fatalf("unexpected events: %v", requeued)
	}

	// A cutoff in the future makes the delivery stale.
	ids := eq.RequeueStale(time.Now().Add(time.Minute))
	if len(ids) != 1 || ids[0] != "rec-1" {
		t.Fatalf("stale requeue = %v, want [rec-1]", ids)
	}
	if len(requeued) != 1 || requeued[0] != "rec-1" {
		t.Errorf("events = %v, want [rec-1]", requeued)
	}
}

func TestEventQueueFailedOperationPublishesNothing(t *testing.T) {
	bus := event.NewBus()
	types := collectTypes(bus)
	eq := NewEventQueue(New(), bus)

	if err := eq.Ack("rec-1", "worker-1"); err == nil {
		t.Fatal("expected error acking a missing task")
	}
	if len(*types) != 0 {
		t.Errorf("failed operation published events: %v", *types)
	}
}

func TestEventQueueRemove(t *testing.T) {
	bus := event.NewBus()
	eq := NewEventQueue(New(), bus)

	var removed []string
	bus.Subscribe("task.removed", func(e event.Event) {
		removed = append(removed, e.(event.TaskRemovedEvent).RecordID)
	})

	if err := eq.Enqueue("rec-1", "user-1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := eq.Remove("rec-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if len(removed) != 1 || removed[0] != "rec-1" {
		t.Errorf("removed = %v", removed)
	}
}
