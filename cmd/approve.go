package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datum-redsoft/expense-reports/internal"
)

var approveMonth string

var approveCmd = &cobra.Command{
	Use:   "approve <card-id>",
	Short: "Approve a monthly expense report",
	Long:  `Approve the expense group named by --month and print the refreshed list.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		return runApprove(cmd.Context(), cardID)
	},
}

func init() {
	approveCmd.Flags().StringVar(&approveMonth, "month", "", "Month label of the group, exactly as listed")
	_ = approveCmd.MarkFlagRequired("month")
}

func runApprove(ctx context.Context, cardID int64) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}

	ctx, cancel := internal.WithTimeout(ctx, deps.Config.Backend.Timeout)
	defer cancel()

	groups, err := deps.Reports.Approve(ctx, cardID, approveMonth)
	if err != nil {
		return err
	}

	fmt.Printf("Approved report %q for card %d\n\n", approveMonth, cardID)
	printGroups(groups)
	return nil
}
