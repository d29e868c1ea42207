package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id-or-token>",
	Short: "Delete a plan request",
	Long: `Delete a plan request and its stored result. The request may be
identified by its task token or by its record ID.

Pending and finished requests can be deleted; a request currently being
processed cannot.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteOwner string

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVarP(&deleteOwner, "owner", "o", "", "Owner identity (or MEALWISE_OWNER)")
}

func runDelete(cmd *cobra.Command, args []string) error {
	owner, err := resolveOwner(deleteOwner)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.svc.Delete(context.Background(), owner, args[0]); err != nil {
		return err
	}

	fmt.Println("Plan request deleted")
	return nil
}
