package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mealwise/mealwise/internal/mealplan"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit a meal plan request",
	Long: `Submit a meal plan request for asynchronous generation.

The request is validated and queued immediately; generation happens in the
serve daemon's worker pool. The printed task token is used to poll for the
result:

  mealwise generate --owner alice --preference vegan --calories 2000
  mealwise status <token> --owner alice`,
	RunE: runGenerate,
}

var (
	generateOwner      string
	generatePreference string
	generateCalories   int
	generateExclude    []string
	generateJSON       bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOwner, "owner", "o", "", "Owner identity (or MEALWISE_OWNER)")
	generateCmd.Flags().StringVarP(&generatePreference, "preference", "p", "", "Dietary preference: "+strings.Join(mealplan.DietaryPreferences(), ", "))
	generateCmd.Flags().IntVar(&generateCalories, "calories", 2000, fmt.Sprintf("Daily calorie target (%d-%d)", mealplan.MinCalorieTarget, mealplan.MaxCalorieTarget))
	generateCmd.Flags().StringSliceVarP(&generateExclude, "exclude", "x", nil, "Ingredients to exclude (repeatable)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Output the submission as JSON")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	owner, err := resolveOwner(generateOwner)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	proj, err := c.svc.Submit(context.Background(), owner, mealplan.Parameters{
		DietaryPreference:  generatePreference,
		CalorieTarget:      generateCalories,
		ExcludeIngredients: generateExclude,
	})
	if err != nil {
		return err
	}

	if generateJSON {
		out, err := json.MarshalIndent(proj, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(headerStyle.Render("Plan request submitted"))
	fmt.Printf("%s %s\n", labelStyle.Render("Token:"), proj.TaskToken)
	fmt.Printf("%s %s\n", labelStyle.Render("State:"), renderState(proj.State))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Poll with: mealwise status %s --owner %s", proj.TaskToken, owner)))
	return nil
}
