package generator

import "github.com/mealwise/mealwise/internal/mealplan"

// MealSet holds the meal options for each slot of a day.
type MealSet struct {
	Breakfast []mealplan.Meal
	Lunch     []mealplan.Meal
	Dinner    []mealplan.Meal
}

// Catalog maps a dietary preference to its meal options.
type Catalog map[string]MealSet

// Alternatives returns the meals available for a slot under the given
// preference, excluding the named meals. Used for meal swapping.
func (c Catalog) Alternatives(preference, slot string, excludeNames []string) []mealplan.Meal {
	set, ok := c[preference]
	if !ok {
		set = c["balanced"]
	}

	var options []mealplan.Meal
	switch slot {
	case "breakfast":
		options = set.Breakfast
	case "lunch":
		options = set.Lunch
	case "dinner":
		options = set.Dinner
	default:
		return nil
	}

	excluded := make(map[string]bool, len(excludeNames))
	for _, name := range excludeNames {
		excluded[name] = true
	}

	var out []mealplan.Meal
	for _, m := range options {
		if !excluded[m.Name] {
			out = append(out, m)
		}
	}
	return out
}

// DefaultCatalog returns the built-in meal catalog. The balanced set mixes
// vegetarian and vegan or omnivore options; pescatarian currently aliases
// vegetarian and flexitarian aliases balanced.
func DefaultCatalog() Catalog {
	vegan := MealSet{
		Breakfast: []mealplan.Meal{
			{
				Name:            "Overnight Oats with Berries",
				Description:     "Creamy oats with fresh berries and chia seeds",
				Calories:        350,
				Protein:         12,
				Carbs:           58,
				Fats:            8,
				CarbonFootprint: 0.3,
				Ingredients:     []string{"oats", "almond milk", "berries", "chia seeds", "maple syrup"},
				CookingTime:     5,
			},
			{
				Name:            "Tofu Scramble with Spinach",
				Description:     "Scrambled tofu with spinach and nutritional yeast",
				Calories:        320,
				Protein:         18,
				Carbs:           15,
				Fats:            20,
				CarbonFootprint: 0.4,
				Ingredients:     []string{"tofu", "spinach", "nutritional yeast", "turmeric", "olive oil"},
				CookingTime:     15,
			},
			{
				Name:            "Avocado Toast with Tomatoes",
				Description:     "Whole grain toast with mashed avocado and cherry tomatoes",
				Calories:        380,
				Protein:         10,
				Carbs:           42,
				Fats:            18,
				CarbonFootprint: 0.5,
				Ingredients:     []string{"whole grain bread", "avocado", "cherry tomatoes", "lemon", "red pepper flakes"},
				CookingTime:     10,
			},
		},
		Lunch: []mealplan.Meal{
			{
				Name:            "Quinoa Buddha Bowl",
				Description:     "Quinoa with roasted vegetables and tahini dressing",
				Calories:        480,
				Protein:         16,
				Carbs:           68,
				Fats:            16,
				CarbonFootprint: 0.6,
				Ingredients:     []string{"quinoa", "chickpeas", "sweet potato", "kale", "tahini", "lemon"},
				CookingTime:     30,
			},
			{
				Name:            "Lentil Soup with Vegetables",
				Description:     "Hearty lentil soup with seasonal vegetables",
				Calories:        420,
				Protein:         20,
				Carbs:           62,
				Fats:            8,
				CarbonFootprint: 0.5,
				Ingredients:     []string{"red lentils", "carrots", "celery", "tomatoes", "vegetable broth"},
				CookingTime:     35,
			},
			{
				Name:            "Falafel Wrap with Hummus",
				Description:     "Crispy falafel in whole wheat wrap with hummus",
				Calories:        520,
				Protein:         18,
				Carbs:           72,
				Fats:            16,
				CarbonFootprint: 0.7,
				Ingredients:     []string{"chickpeas", "whole wheat wrap", "lettuce", "tomato", "hummus", "cucumber"},
				CookingTime:     25,
			},
		},
		Dinner: []mealplan.Meal{
			{
				Name:            "Vegetable Stir-Fry with Tofu",
				Description:     "Colorful vegetables stir-fried with crispy tofu",
				Calories:        480,
				Protein:         24,
				Carbs:           48,
				Fats:            20,
				CarbonFootprint: 0.6,
				Ingredients:     []string{"tofu", "broccoli", "bell peppers", "brown rice", "soy sauce", "ginger"},
				CookingTime:     25,
			},
			{
				Name:            "Chickpea Curry with Rice",
				Description:     "Spiced chickpea curry served over basmati rice",
				Calories:        520,
				Protein:         18,
				Carbs:           82,
				Fats:            12,
				CarbonFootprint: 0.5,
				Ingredients:     []string{"chickpeas", "coconut milk", "tomatoes", "basmati rice", "curry spices"},
				CookingTime:     35,
			},
			{
				Name:            "Mushroom and Spinach Pasta",
				Description:     "Whole wheat pasta with garlic mushrooms and spinach",
				Calories:        500,
				Protein:         16,
				Carbs:           78,
				Fats:            14,
				CarbonFootprint: 0.4,
				Ingredients:     []string{"whole wheat pasta", "mushrooms", "spinach", "garlic", "olive oil"},
				CookingTime:     20,
			},
		},
	}

	vegetarian := MealSet{
		Breakfast: []mealplan.Meal{
			{
				Name:            "Greek Yogurt with Granola",
				Description:     "Protein-rich Greek yogurt with homemade granola and honey",
				Calories:        380,
				Protein:         18,
				Carbs:           52,
				Fats:            10,
				CarbonFootprint: 0.8,
				Ingredients:     []string{"Greek yogurt", "granola", "honey", "blueberries", "almonds"},
				CookingTime:     5,
			},
			{
				Name:            "Vegetable Omelette",
				Description:     "Fluffy omelette with bell peppers, onions, and cheese",
				Calories:        340,
				Protein:         22,
				Carbs:           12,
				Fats:            22,
				CarbonFootprint: 1.2,
				Ingredients:     []string{"eggs", "bell peppers", "onions", "cheese", "butter"},
				CookingTime:     15,
			},
		},
		Lunch: []mealplan.Meal{
			{
				Name:            "Caprese Salad with Mozzarella",
				Description:     "Fresh tomatoes, mozzarella, and basil with balsamic",
				Calories:        420,
				Protein:         20,
				Carbs:           18,
				Fats:            28,
				CarbonFootprint: 1.5,
				Ingredients:     []string{"tomatoes", "mozzarella", "basil", "olive oil", "balsamic vinegar"},
				CookingTime:     10,
			},
			{
				Name:            "Vegetarian Burrito Bowl",
				Description:     "Rice bowl with black beans, cheese, and guacamole",
				Calories:        550,
				Protein:         22,
				Carbs:           68,
				Fats:            20,
				CarbonFootprint: 1.0,
				Ingredients:     []string{"brown rice", "black beans", "cheese", "avocado", "sour cream", "salsa"},
				CookingTime:     20,
			},
		},
		Dinner: []mealplan.Meal{
			{
				Name:            "Eggplant Parmesan",
				Description:     "Breaded eggplant baked with marinara and mozzarella",
				Calories:        520,
				Protein:         20,
				Carbs:           58,
				Fats:            22,
				CarbonFootprint: 1.1,
				Ingredients:     []string{"eggplant", "marinara sauce", "mozzarella", "parmesan", "breadcrumbs"},
				CookingTime:     45,
			},
			{
				Name:            "Spinach and Ricotta Stuffed Shells",
				Description:     "Pasta shells filled with ricotta and spinach",
				Calories:        580,
				Protein:         26,
				Carbs:           72,
				Fats:            18,
				CarbonFootprint: 0.9,
				Ingredients:     []string{"pasta shells", "ricotta", "spinach", "marinara", "parmesan"},
				CookingTime:     40,
			},
		},
	}

	omnivore := MealSet{
		Breakfast: []mealplan.Meal{
			{
				Name:            "Scrambled Eggs with Bacon",
				Description:     "Classic scrambled eggs with crispy bacon strips",
				Calories:        420,
				Protein:         28,
				Carbs:           8,
				Fats:            30,
				CarbonFootprint: 2.5,
				Ingredients:     []string{"eggs", "bacon", "butter", "cheese", "toast"},
				CookingTime:     15,
			},
			{
				Name:            "Pancakes with Sausage",
				Description:     "Fluffy pancakes served with maple syrup and sausage",
				Calories:        520,
				Protein:         18,
				Carbs:           68,
				Fats:            18,
				CarbonFootprint: 2.0,
				Ingredients:     []string{"flour", "eggs", "milk", "sausage", "maple syrup"},
				CookingTime:     20,
			},
		},
		Lunch: []mealplan.Meal{
			{
				Name:            "Grilled Chicken Caesar Salad",
				Description:     "Grilled chicken breast over romaine with Caesar dressing",
				Calories:        480,
				Protein:         42,
				Carbs:           22,
				Fats:            22,
				CarbonFootprint: 3.2,
				Ingredients:     []string{"chicken breast", "romaine lettuce", "parmesan", "croutons", "Caesar dressing"},
				CookingTime:     20,
			},
			{
				Name:            "Turkey and Avocado Sandwich",
				Description:     "Whole grain sandwich with turkey, avocado, and vegetables",
				Calories:        520,
				Protein:         32,
				Carbs:           48,
				Fats:            20,
				CarbonFootprint: 2.8,
				Ingredients:     []string{"turkey", "whole grain bread", "avocado", "lettuce", "tomato", "mayo"},
				CookingTime:     10,
			},
		},
		Dinner: []mealplan.Meal{
			{
				Name:            "Grilled Salmon with Vegetables",
				Description:     "Herb-crusted salmon with roasted seasonal vegetables",
				Calories:        540,
				Protein:         42,
				Carbs:           32,
				Fats:            24,
				CarbonFootprint: 4.5,
				Ingredients:     []string{"salmon", "broccoli", "carrots", "olive oil", "herbs", "lemon"},
				CookingTime:     30,
			},
			{
				Name:            "Chicken Stir-Fry",
				Description:     "Chicken breast with mixed vegetables in teriyaki sauce",
				Calories:        520,
				Protein:         38,
				Carbs:           58,
				Fats:            14,
				CarbonFootprint: 3.8,
				Ingredients:     []string{"chicken breast", "bell peppers", "snap peas", "rice", "teriyaki sauce"},
				CookingTime:     25,
			},
			{
				Name:            "Beef Tacos with Toppings",
				Description:     "Seasoned ground beef tacos with fresh toppings",
				Calories:        580,
				Protein:         32,
				Carbs:           52,
				Fats:            26,
				CarbonFootprint: 5.2,
				Ingredients:     []string{"ground beef", "taco shells", "lettuce", "cheese", "sour cream", "salsa"},
				CookingTime:     20,
			},
		},
	}

	balanced := MealSet{
		Breakfast: concat(vegetarian.Breakfast, vegan.Breakfast[:1]),
		Lunch:     concat(vegetarian.Lunch, omnivore.Lunch[:1]),
		Dinner:    concat(vegetarian.Dinner, omnivore.Dinner[:2]),
	}

	return Catalog{
		"vegan":       vegan,
		"vegetarian":  vegetarian,
		"omnivore":    omnivore,
		"balanced":    balanced,
		"pescatarian": vegetarian,
		"flexitarian": balanced,
	}
}

func concat(sets ...[]mealplan.Meal) []mealplan.Meal {
	var out []mealplan.Meal
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
