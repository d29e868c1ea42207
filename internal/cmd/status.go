package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealwise/mealwise/internal/mealplan"
)

var statusCmd = &cobra.Command{
	Use:   "status <token>",
	Short: "Show the state of a plan request",
	Long: `Display the current state of a plan request by its task token.

Pending and processing requests show progress only; completed requests
include the generated plan summary and failed requests the failure detail.
With --watch the command polls until the request reaches a terminal state.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var (
	statusOwner    string
	statusJSON     bool
	statusFull     bool
	statusWatch    bool
	statusInterval time.Duration
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOwner, "owner", "o", "", "Owner identity (or MEALWISE_OWNER)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output the record as JSON")
	statusCmd.Flags().BoolVar(&statusFull, "full", false, "Print the full day-by-day plan when completed")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Poll until the request is terminal")
	statusCmd.Flags().DurationVar(&statusInterval, "interval", time.Second, "Poll interval for --watch")
}

func runStatus(cmd *cobra.Command, args []string) error {
	owner, err := resolveOwner(statusOwner)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	token := args[0]

	for {
		proj, err := c.svc.Status(ctx, owner, token)
		if err != nil {
			return err
		}

		if !statusWatch || proj.State.IsTerminal() {
			return printProjection(proj)
		}
		fmt.Printf("%s %s (%d%%)\n", labelStyle.Render("State:"), renderState(proj.State), proj.Progress)
		time.Sleep(statusInterval)
	}
}

func printProjection(proj mealplan.Projection) error {
	if statusJSON {
		out, err := json.MarshalIndent(proj, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%s %s\n", labelStyle.Render("Token:"), proj.TaskToken)
	fmt.Printf("%s %s\n", labelStyle.Render("State:"), renderState(proj.State))
	fmt.Printf("%s %d%%\n", labelStyle.Render("Progress:"), proj.Progress)
	fmt.Printf("%s %s, %d kcal/day\n", labelStyle.Render("Request:"),
		proj.Parameters.DietaryPreference, proj.Parameters.CalorieTarget)
	fmt.Printf("%s %s\n", labelStyle.Render("Created:"), proj.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	switch {
	case proj.Error != nil:
		fmt.Printf("%s %s (%s)\n", failedStyle.Render("Failed:"), proj.Error.Message, proj.Error.Kind)
	case proj.Result != nil:
		printPlan(proj.Result)
	}
	return nil
}

func printPlan(plan *mealplan.GeneratedPlan) {
	s := plan.Summary
	fmt.Println()
	fmt.Println(headerStyle.Render("Weekly summary"))
	fmt.Printf("%s %d kcal total, %d kcal/day average\n",
		labelStyle.Render("Calories:"), s.TotalCalories, s.AvgCaloriesPerDay)
	fmt.Printf("%s %.2f kg CO2e\n", labelStyle.Render("Carbon:"), s.TotalCarbon)

	if !statusFull {
		fmt.Println(dimStyle.Render("Use --full to print the day-by-day plan"))
		return
	}

	for _, day := range plan.Days {
		fmt.Println()
		fmt.Println(headerStyle.Render(fmt.Sprintf("Day %d (%s)", day.Day, day.Date)))
		for _, meal := range []struct {
			slot string
			m    mealplan.Meal
		}{
			{"Breakfast", day.Breakfast},
			{"Lunch", day.Lunch},
			{"Dinner", day.Dinner},
		} {
			fmt.Printf("  %s %s %s\n", labelStyle.Render(meal.slot+":"), meal.m.Name,
				dimStyle.Render(fmt.Sprintf("(%d kcal, %d min)", meal.m.Calories, meal.m.CookingTime)))
		}
		fmt.Printf("  %s %d kcal, %.2f kg CO2e\n",
			labelStyle.Render("Total:"), day.TotalCalories, day.TotalCarbon)
	}
}
