package mealplan

// Meal is a single meal slot entry: descriptive fields plus the numeric
// metrics the summary aggregates over.
type Meal struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	Calories int `json:"calories"`
	Protein  int `json:"protein"` // grams
	Carbs    int `json:"carbs"`   // grams
	Fats     int `json:"fats"`    // grams

	// CarbonFootprint is the estimated kg CO2 for the meal.
	CarbonFootprint float64 `json:"carbon_footprint"`

	Ingredients []string `json:"ingredients"`

	// CookingTime is the preparation time in minutes.
	CookingTime int `json:"cooking_time"`
}

// DayPlan holds the meals for one day of the plan plus per-day totals.
type DayPlan struct {
	// Day is 1-based within the plan.
	Day int `json:"day"`

	// Date is the calendar date in YYYY-MM-DD form.
	Date string `json:"date"`

	Breakfast Meal `json:"breakfast"`
	Lunch     Meal `json:"lunch"`
	Dinner    Meal `json:"dinner"`

	TotalCalories int     `json:"total_calories"`
	TotalCarbon   float64 `json:"total_carbon"`
}

// Summary aggregates the whole plan: weekly totals and the daily average.
type Summary struct {
	TotalCalories     int     `json:"total_calories"`
	TotalCarbon       float64 `json:"total_carbon"`
	AvgCaloriesPerDay int     `json:"avg_calories_per_day"`
}

// GeneratedPlan is the structured result payload attached to a completed
// record. The schema is owned by the generator contract; the store and the
// status resolver treat it as opaque beyond its version and shape.
type GeneratedPlan struct {
	// SchemaVersion stamps the payload with the schema it was written under.
	SchemaVersion int `json:"schema_version"`

	// DietaryPreference echoes the catalog the plan was drawn from.
	DietaryPreference string `json:"dietary_preference"`

	// Days is the ordered sequence of per-day entries.
	Days []DayPlan `json:"days"`

	// Summary aggregates totals and averages over all days.
	Summary Summary `json:"summary"`
}

// Summarize recomputes the summary from the per-day totals.
func (p *GeneratedPlan) Summarize() Summary {
	var s Summary
	for _, d := range p.Days {
		s.TotalCalories += d.TotalCalories
		s.TotalCarbon += d.TotalCarbon
	}
	if n := len(p.Days); n > 0 {
		s.AvgCaloriesPerDay = s.TotalCalories / n
	}
	return s
}
