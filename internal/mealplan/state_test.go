package mealplan

import "testing"

func TestStateIsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		terminal bool
	}{
		{StatePending, false},
		{StateProcessing, false},
		{StateCompleted, true},
		{StateFailed, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	allowed := map[State][]State{
		StatePending:    {StateProcessing, StateFailed},
		StateProcessing: {StateProcessing, StateCompleted, StateFailed},
		StateCompleted:  {},
		StateFailed:     {},
	}

	all := []State{StatePending, StateProcessing, StateCompleted, StateFailed}
	for from, oks := range allowed {
		okSet := make(map[State]bool)
		for _, s := range oks {
			okSet[s] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != okSet[to] {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, okSet[to])
			}
		}
	}
}

func TestProject(t *testing.T) {
	rec := &PlanRecord{
		ID:        "rec-1",
		TaskToken: "tok-1",
		OwnerID:   "user-1",
		State:     StateProcessing,
		Progress:  40,
		Parameters: Parameters{
			DietaryPreference: "vegan",
			CalorieTarget:     2000,
		},
	}

	p := rec.Project()
	if p.ID != "rec-1" || p.TaskToken != "tok-1" {
		t.Errorf("projection identity mismatch: %+v", p)
	}
	if p.State != StateProcessing || p.Progress != 40 {
		t.Errorf("projection state mismatch: %+v", p)
	}
	if p.Result != nil || p.Error != nil {
		t.Error("non-terminal projection must carry neither result nor error")
	}
}

func TestSummarize(t *testing.T) {
	plan := &GeneratedPlan{
		Days: []DayPlan{
			{TotalCalories: 1400, TotalCarbon: 1.5},
			{TotalCalories: 1600, TotalCarbon: 2.5},
		},
	}
	s := plan.Summarize()
	if s.TotalCalories != 3000 {
		t.Errorf("TotalCalories = %d, want 3000", s.TotalCalories)
	}
	if s.TotalCarbon != 4.0 {
		t.Errorf("TotalCarbon = %v, want 4.0", s.TotalCarbon)
	}
	if s.AvgCaloriesPerDay != 1500 {
		t.Errorf("AvgCaloriesPerDay = %d, want 1500", s.AvgCaloriesPerDay)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	var plan GeneratedPlan
	s := plan.Summarize()
	if s.TotalCalories != 0 || s.AvgCaloriesPerDay != 0 {
		t.Errorf("empty plan summary should be zero, got %+v", s)
	}
}
