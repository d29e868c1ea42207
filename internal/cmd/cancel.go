package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <token>",
	Short: "Cancel a pending plan request",
	Long: `Cancel a plan request that has not been picked up by a worker yet.

A pending request is marked failed with a cancellation kind and its queued
task is discarded. Requests already being processed, or already finished,
cannot be cancelled.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

var cancelOwner string

func init() {
	rootCmd.AddCommand(cancelCmd)

	cancelCmd.Flags().StringVarP(&cancelOwner, "owner", "o", "", "Owner identity (or MEALWISE_OWNER)")
}

func runCancel(cmd *cobra.Command, args []string) error {
	owner, err := resolveOwner(cancelOwner)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	proj, err := c.svc.Cancel(context.Background(), owner, args[0])
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Plan request cancelled"))
	fmt.Printf("%s %s\n", labelStyle.Render("Token:"), proj.TaskToken)
	fmt.Printf("%s %s\n", labelStyle.Render("State:"), renderState(proj.State))
	return nil
}
