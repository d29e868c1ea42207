package generator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mealwise/mealwise/internal/errors"
	"github.com/mealwise/mealwise/internal/mealplan"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestGenerateSevenDays(t *testing.T) {
	g := New(WithSeed(1), WithClock(fixedClock()))

	plan, err := g.Generate(context.Background(), mealplan.Parameters{
		DietaryPreference: "vegan",
		CalorieTarget:     2000,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if plan.SchemaVersion != mealplan.SchemaVersion {
		t.Errorf("schema version = %d, want %d", plan.SchemaVersion, mealplan.SchemaVersion)
	}
	if plan.DietaryPreference != "vegan" {
		t.Errorf("preference = %s, want vegan", plan.DietaryPreference)
	}
	if len(plan.Days) != mealplan.PlanDays {
		t.Fatalf("got %d days, want %d", len(plan.Days), mealplan.PlanDays)
	}

	for i, d := range plan.Days {
		if d.Day != i+1 {
			t.Errorf("day %d numbered %d", i, d.Day)
		}
		wantDate := time.Date(2026, 3, 2+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if d.Date != wantDate {
			t.Errorf("day %d date = %s, want %s", d.Day, d.Date, wantDate)
		}
		if got := d.Breakfast.Calories + d.Lunch.Calories + d.Dinner.Calories; got != d.TotalCalories {
			t.Errorf("day %d total calories = %d, meals sum to %d", d.Day, d.TotalCalories, got)
		}
		if d.Breakfast.Name == "" || d.Lunch.Name == "" || d.Dinner.Name == "" {
			t.Errorf("day %d has an empty meal slot", d.Day)
		}
	}

	want := plan.Summarize()
	if plan.Summary.TotalCalories != want.TotalCalories {
		t.Errorf("summary calories = %d, want %d", plan.Summary.TotalCalories, want.TotalCalories)
	}
	if plan.Summary.AvgCaloriesPerDay != want.AvgCaloriesPerDay {
		t.Errorf("summary average = %d, want %d", plan.Summary.AvgCaloriesPerDay, want.AvgCaloriesPerDay)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	params := mealplan.Parameters{DietaryPreference: "balanced", CalorieTarget: 2200}

	a, err := New(WithSeed(42), WithClock(fixedClock())).Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate a: %v", err)
	}
	b, err := New(WithSeed(42), WithClock(fixedClock())).Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate b: %v", err)
	}

	for i := range a.Days {
		if a.Days[i].Breakfast.Name != b.Days[i].Breakfast.Name ||
			a.Days[i].Lunch.Name != b.Days[i].Lunch.Name ||
			a.Days[i].Dinner.Name != b.Days[i].Dinner.Name {
			t.Fatalf("day %d differs between identically seeded runs", i+1)
		}
	}
}

func TestGenerateScalesPortionsToCalorieTarget(t *testing.T) {
	for _, target := range []int{1200, 2000, 3500} {
		plan, err := New(WithSeed(11), WithClock(fixedClock())).Generate(context.Background(), mealplan.Parameters{
			DietaryPreference: "vegetarian",
			CalorieTarget:     target,
		})
		if err != nil {
			t.Fatalf("Generate with target %d: %v", target, err)
		}
		for _, d := range plan.Days {
			// Three per-meal roundings leave the day total within a couple
			// of kcal of the target.
			if diff := d.TotalCalories - target; diff < -3 || diff > 3 {
				t.Errorf("target %d: day %d total = %d", target, d.Day, d.TotalCalories)
			}
			for _, m := range []mealplan.Meal{d.Breakfast, d.Lunch, d.Dinner} {
				if m.Calories <= 0 || m.Protein <= 0 {
					t.Errorf("target %d: day %d meal %q scaled to nothing", target, d.Day, m.Name)
				}
			}
		}
	}
}

func TestGenerateDistinctTargetsDistinctPlans(t *testing.T) {
	params := mealplan.Parameters{DietaryPreference: "vegan", CalorieTarget: 1200}
	low, err := New(WithSeed(42), WithClock(fixedClock())).Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate low: %v", err)
	}

	params.CalorieTarget = 3500
	high, err := New(WithSeed(42), WithClock(fixedClock())).Generate(context.Background(), params)
	if err != nil {
		t.Fatalf("Generate high: %v", err)
	}

	if low.Days[0].TotalCalories == high.Days[0].TotalCalories {
		t.Error("identical day totals for 1200 and 3500 kcal targets")
	}
	if low.Summary.TotalCalories >= high.Summary.TotalCalories {
		t.Errorf("summary calories %d (1200 target) not below %d (3500 target)",
			low.Summary.TotalCalories, high.Summary.TotalCalories)
	}
}

func TestGenerateUnknownPreferenceFallsBack(t *testing.T) {
	g := New(WithSeed(1))

	plan, err := g.Generate(context.Background(), mealplan.Parameters{
		DietaryPreference: "carnivore",
		CalorieTarget:     2000,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if plan.DietaryPreference != "balanced" {
		t.Errorf("preference = %s, want balanced fallback", plan.DietaryPreference)
	}
}

func TestGenerateHonorsExclusions(t *testing.T) {
	g := New(WithSeed(7))

	plan, err := g.Generate(context.Background(), mealplan.Parameters{
		DietaryPreference:  "vegan",
		CalorieTarget:      2000,
		ExcludeIngredients: []string{"tofu", "Chickpeas"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, d := range plan.Days {
		for _, m := range []mealplan.Meal{d.Breakfast, d.Lunch, d.Dinner} {
			joined := strings.ToLower(strings.Join(m.Ingredients, " "))
			if strings.Contains(joined, "tofu") || strings.Contains(joined, "chickpeas") {
				t.Errorf("day %d meal %q contains an excluded ingredient", d.Day, m.Name)
			}
		}
	}
}

func TestGenerateFailsWhenNothingEligible(t *testing.T) {
	g := New(WithSeed(1))

	// Every vegetarian breakfast contains one of these.
	_, err := g.Generate(context.Background(), mealplan.Parameters{
		DietaryPreference:  "vegetarian",
		CalorieTarget:      2000,
		ExcludeIngredients: []string{"yogurt", "eggs"},
	})
	if err == nil {
		t.Fatal("expected an error when no meals are eligible")
	}

	var genErr *errors.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T: %v", err, err)
	}
	if genErr.Kind != errors.KindTerminal {
		t.Errorf("kind = %s, want terminal", genErr.Kind)
	}
	if got := errors.GetSeverity(err); got != errors.SeverityWarning {
		t.Errorf("severity = %s, want warning", got)
	}
	if errors.IsRetryable(err) {
		t.Error("exhausted exclusions must not be retryable")
	}
}

func TestGenerateCancellation(t *testing.T) {
	g := New(WithSeed(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, mealplan.Parameters{DietaryPreference: "vegan", CalorieTarget: 2000})
	if !errors.Is(err, errors.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
	if kind := errors.KindOf(err); kind != errors.KindCancelled {
		t.Errorf("kind = %s, want cancelled", kind)
	}
}

func TestGenerateTimeout(t *testing.T) {
	g := New(WithSeed(1))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := g.Generate(ctx, mealplan.Parameters{DietaryPreference: "vegan", CalorieTarget: 2000})
	if !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if kind := errors.KindOf(err); kind != errors.KindTimeout {
		t.Errorf("kind = %s, want timeout", kind)
	}
}

func TestCatalogAlternatives(t *testing.T) {
	c := DefaultCatalog()

	alts := c.Alternatives("vegan", "dinner", []string{"Chickpea Curry with Rice"})
	if len(alts) != 2 {
		t.Fatalf("got %d alternatives, want 2", len(alts))
	}
	for _, m := range alts {
		if m.Name == "Chickpea Curry with Rice" {
			t.Error("excluded meal returned as alternative")
		}
	}

	if alts := c.Alternatives("vegan", "brunch", nil); alts != nil {
		t.Errorf("unknown slot should return nil, got %v", alts)
	}

	// Unknown preference falls back to the balanced catalog.
	if alts := c.Alternatives("keto", "lunch", nil); len(alts) == 0 {
		t.Error("fallback catalog returned no lunches")
	}
}

func TestGeneratorFunc(t *testing.T) {
	called := false
	g := Func(func(ctx context.Context, params mealplan.Parameters) (*mealplan.GeneratedPlan, error) {
		called = true
		return &mealplan.GeneratedPlan{SchemaVersion: mealplan.SchemaVersion}, nil
	})

	if _, err := g.Generate(context.Background(), mealplan.Parameters{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !called {
		t.Error("adapter did not invoke the function")
	}
}
