// Package testutil provides testing utilities for Mealwise tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mealwise/mealwise/internal/event"
	"github.com/mealwise/mealwise/internal/mealplan"
	"github.com/mealwise/mealwise/internal/store"
	"github.com/mealwise/mealwise/internal/taskqueue"
)

// NewStore creates a SQLite store in a temporary directory. The store is
// automatically closed when the test completes.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "mealwise.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// NewQueue creates an event-publishing task queue backed by a fresh bus.
func NewQueue(t *testing.T) (*taskqueue.EventQueue, *event.Bus) {
	t.Helper()

	bus := event.NewBus()
	return taskqueue.NewEventQueue(taskqueue.New(), bus), bus
}

// NewRecord creates a pending record with valid parameters for the given
// owner. The record is not stored; callers pass it to Store.Create.
func NewRecord(ownerID string) *mealplan.PlanRecord {
	now := time.Now().UTC()
	return &mealplan.PlanRecord{
		ID:        uuid.NewString(),
		TaskToken: uuid.NewString(),
		OwnerID:   ownerID,
		Parameters: mealplan.Parameters{
			DietaryPreference: "vegan",
			CalorieTarget:     2000,
		},
		State:     mealplan.StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StubGenerator is a scripted generator for worker and pipeline tests.
// Responses are consumed in order; once exhausted, the last response
// repeats. The zero value succeeds with a minimal plan on every call.
type StubGenerator struct {
	Responses []StubResponse

	calls atomic.Int32
}

// StubResponse is one scripted generator outcome.
type StubResponse struct {
	Plan  *mealplan.GeneratedPlan
	Err   error
	Delay time.Duration
}

// Generate implements generator.Generator.
func (g *StubGenerator) Generate(ctx context.Context, params mealplan.Parameters) (*mealplan.GeneratedPlan, error) {
	n := int(g.calls.Add(1)) - 1

	if len(g.Responses) == 0 {
		return minimalPlan(params), nil
	}
	resp := g.Responses[min(n, len(g.Responses)-1)]

	if resp.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(resp.Delay):
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Plan != nil {
		return resp.Plan, nil
	}
	return minimalPlan(params), nil
}

// Calls returns how many times Generate has been invoked.
func (g *StubGenerator) Calls() int {
	return int(g.calls.Load())
}

func minimalPlan(params mealplan.Parameters) *mealplan.GeneratedPlan {
	return &mealplan.GeneratedPlan{
		SchemaVersion:     mealplan.SchemaVersion,
		DietaryPreference: params.DietaryPreference,
		Days:              []mealplan.DayPlan{{Day: 1, TotalCalories: params.CalorieTarget}},
	}
}

// WaitFor polls cond until it returns true or the timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// WaitForState polls the store until the record reaches the wanted state
// and returns the record.
func WaitForState(t *testing.T, st store.Store, recordID string, want mealplan.State) *mealplan.PlanRecord {
	t.Helper()

	var rec *mealplan.PlanRecord
	WaitFor(t, 5*time.Second, "record "+recordID+" to reach "+string(want), func() bool {
		var err error
		rec, err = st.Get(context.Background(), recordID)
		if err != nil {
			t.Fatalf("failed to load record: %v", err)
		}
		return rec.State == want
	})
	return rec
}
