// Package generator produces meal plans from the built-in meal catalog.
//
// Generation is a pure function of its parameters and the random source: no
// store access, no queue access, no side effects. The worker pool owns all
// persistence around it. Generators must honor context cancellation between
// units of work so a timed-out or shut-down worker can abandon an attempt.
package generator

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/mealwise/mealwise/internal/errors"
	"github.com/mealwise/mealwise/internal/mealplan"
)

// Generator is the contract the worker pool executes.
//
// Implementations return the completed plan or an error classified by the
// errors package: transient failures are retried once by the worker,
// everything else fails the record.
type Generator interface {
	Generate(ctx context.Context, params mealplan.Parameters) (*mealplan.GeneratedPlan, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, params mealplan.Parameters) (*mealplan.GeneratedPlan, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, params mealplan.Parameters) (*mealplan.GeneratedPlan, error) {
	return f(ctx, params)
}

// CatalogGenerator draws meals from a Catalog to build week-long plans.
type CatalogGenerator struct {
	catalog Catalog
	seed    func() int64
	now     func() time.Time
}

var _ Generator = (*CatalogGenerator)(nil)

// Option configures a CatalogGenerator.
type Option func(*CatalogGenerator)

// WithCatalog replaces the default meal catalog.
func WithCatalog(c Catalog) Option {
	return func(g *CatalogGenerator) { g.catalog = c }
}

// WithSeed fixes the random seed, making generation deterministic.
func WithSeed(seed int64) Option {
	return func(g *CatalogGenerator) { g.seed = func() int64 { return seed } }
}

// WithClock replaces the time source used for plan dates.
func WithClock(now func() time.Time) Option {
	return func(g *CatalogGenerator) { g.now = now }
}

// New creates a CatalogGenerator over the default catalog.
func New(opts ...Option) *CatalogGenerator {
	g := &CatalogGenerator{
		catalog: DefaultCatalog(),
		seed:    func() int64 { return time.Now().UnixNano() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a plan of mealplan.PlanDays days. Portions are scaled so
// each day's total lands within rounding distance of the calorie target; a
// zero target keeps the catalog portions. An unknown dietary preference
// falls back to the balanced catalog; the submission gateway rejects
// unknown preferences before they reach here, so the fallback only covers
// records written by older versions.
func (g *CatalogGenerator) Generate(ctx context.Context, params mealplan.Parameters) (*mealplan.GeneratedPlan, error) {
	pref := strings.ToLower(params.DietaryPreference)
	set, ok := g.catalog[pref]
	if !ok {
		pref = "balanced"
		set = g.catalog[pref]
	}

	rng := rand.New(rand.NewSource(g.seed()))
	start := g.now()

	plan := &mealplan.GeneratedPlan{
		SchemaVersion:     mealplan.SchemaVersion,
		DietaryPreference: pref,
		Days:              make([]mealplan.DayPlan, 0, mealplan.PlanDays),
	}

	for day := 1; day <= mealplan.PlanDays; day++ {
		if err := ctx.Err(); err != nil {
			return nil, cancellationError(err)
		}

		breakfast, err := pickMeal(rng, set.Breakfast, params.ExcludeIngredients)
		if err != nil {
			return nil, err
		}
		lunch, err := pickMeal(rng, set.Lunch, params.ExcludeIngredients)
		if err != nil {
			return nil, err
		}
		dinner, err := pickMeal(rng, set.Dinner, params.ExcludeIngredients)
		if err != nil {
			return nil, err
		}

		if params.CalorieTarget > 0 {
			factor := float64(params.CalorieTarget) /
				float64(breakfast.Calories+lunch.Calories+dinner.Calories)
			breakfast = scalePortion(breakfast, factor)
			lunch = scalePortion(lunch, factor)
			dinner = scalePortion(dinner, factor)
		}

		d := mealplan.DayPlan{
			Day:           day,
			Date:          start.AddDate(0, 0, day-1).Format("2006-01-02"),
			Breakfast:     breakfast,
			Lunch:         lunch,
			Dinner:        dinner,
			TotalCalories: breakfast.Calories + lunch.Calories + dinner.Calories,
			TotalCarbon:   round2(breakfast.CarbonFootprint + lunch.CarbonFootprint + dinner.CarbonFootprint),
		}
		plan.Days = append(plan.Days, d)
	}

	plan.Summary = plan.Summarize()
	plan.Summary.TotalCarbon = round2(plan.Summary.TotalCarbon)
	return plan, nil
}

// pickMeal selects a random meal from options that contains none of the
// excluded ingredients. Exclusion is a case-insensitive substring match
// against the meal's ingredient list.
func pickMeal(rng *rand.Rand, options []mealplan.Meal, exclude []string) (mealplan.Meal, error) {
	eligible := make([]mealplan.Meal, 0, len(options))
	for _, m := range options {
		if !containsExcluded(m, exclude) {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		// A user-input problem, not a pipeline fault; logged as a warning.
		return mealplan.Meal{}, errors.NewGenerationError(errors.KindTerminal,
			"no catalog meals satisfy the ingredient exclusions", nil).
			WithSeverity(errors.SeverityWarning)
	}
	return eligible[rng.Intn(len(eligible))], nil
}

// scalePortion resizes a meal toward the daily calorie target. Every
// per-portion metric moves by the same factor; ingredients and cooking time
// describe the recipe, not the portion, and stay fixed.
func scalePortion(m mealplan.Meal, factor float64) mealplan.Meal {
	m.Calories = int(math.Round(float64(m.Calories) * factor))
	m.Protein = int(math.Round(float64(m.Protein) * factor))
	m.Carbs = int(math.Round(float64(m.Carbs) * factor))
	m.Fats = int(math.Round(float64(m.Fats) * factor))
	m.CarbonFootprint = round2(m.CarbonFootprint * factor)
	return m
}

func containsExcluded(m mealplan.Meal, exclude []string) bool {
	if len(exclude) == 0 {
		return false
	}
	joined := strings.ToLower(strings.Join(m.Ingredients, " "))
	for _, ing := range exclude {
		if ing == "" {
			continue
		}
		if strings.Contains(joined, strings.ToLower(ing)) {
			return true
		}
	}
	return false
}

func cancellationError(err error) error {
	kind := errors.KindCancelled
	msg := "generation cancelled"
	if errors.Is(err, context.DeadlineExceeded) {
		kind = errors.KindTimeout
		msg = "generation exceeded its time budget"
	}
	return errors.NewGenerationError(kind, msg, err)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
