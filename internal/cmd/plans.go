package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List plan requests",
	Long:  `List the owner's plan requests, newest first.`,
	RunE:  runPlans,
}

var (
	plansOwner  string
	plansLimit  int
	plansOffset int
	plansJSON   bool
)

func init() {
	rootCmd.AddCommand(plansCmd)

	plansCmd.Flags().StringVarP(&plansOwner, "owner", "o", "", "Owner identity (or MEALWISE_OWNER)")
	plansCmd.Flags().IntVarP(&plansLimit, "limit", "n", 20, "Maximum number of records (0 for all)")
	plansCmd.Flags().IntVar(&plansOffset, "offset", 0, "Records to skip from the newest end")
	plansCmd.Flags().BoolVar(&plansJSON, "json", false, "Output the records as JSON")
}

func runPlans(cmd *cobra.Command, args []string) error {
	owner, err := resolveOwner(plansOwner)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	projs, err := c.svc.List(context.Background(), owner, plansLimit, plansOffset)
	if err != nil {
		return err
	}

	if plansJSON {
		out, err := json.MarshalIndent(projs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(projs) == 0 {
		fmt.Println("No plan requests")
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-36s  %-10s  %-12s  %-8s  %s",
		"TOKEN", "STATE", "PREFERENCE", "KCAL", "CREATED")))
	for _, proj := range projs {
		// Pad before styling; ANSI escapes would break %-10s width math.
		state := renderState(proj.State) + strings.Repeat(" ", max(0, 10-len(proj.State)))
		fmt.Printf("%-36s  %s  %-12s  %-8d  %s\n",
			proj.TaskToken,
			state,
			proj.Parameters.DietaryPreference,
			proj.Parameters.CalorieTarget,
			dimStyle.Render(proj.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}
