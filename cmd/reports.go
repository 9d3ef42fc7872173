package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
	"github.com/datum-redsoft/expense-reports/internal/report"
)

var reportsFlags struct {
	status   string
	period   string
	category string
	offline  bool
}

var reportsCmd = &cobra.Command{
	Use:   "reports <card-id>",
	Short: "List a card's expense reports",
	Long: `List the monthly expense groups of one card, optionally narrowed by
status, period or category. With --offline the last cached snapshot is
shown instead of querying the backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		return runReports(cmd.Context(), cardID)
	},
}

func init() {
	f := reportsCmd.Flags()
	f.StringVar(&reportsFlags.status, "status", report.FilterAll, "Filter by group status")
	f.StringVar(&reportsFlags.period, "period", report.FilterAll, "Filter by period substring")
	f.StringVar(&reportsFlags.category, "category", report.FilterAll, "Filter expenses by category")
	f.BoolVar(&reportsFlags.offline, "offline", false, "Serve the last cached snapshot")
}

func runReports(ctx context.Context, cardID int64) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}

	filter := report.Filter{
		Status:   reportsFlags.status,
		Period:   reportsFlags.period,
		Category: reportsFlags.category,
	}

	if reportsFlags.offline {
		groups, fetchedAt, err := deps.Reports.OfflineReports(cardID, filter)
		if err != nil {
			return err
		}
		fmt.Printf("Snapshot from %s\n\n", fetchedAt.Format("2006-01-02 15:04"))
		printGroups(groups)
		return nil
	}

	ctx, cancel := internal.WithTimeout(ctx, deps.Config.Backend.Timeout)
	defer cancel()

	groups, err := deps.Reports.ListReports(ctx, cardID, filter)
	if err != nil {
		return err
	}
	printGroups(groups)
	return nil
}

func printGroups(groups []expense.Group) {
	if len(groups) == 0 {
		fmt.Println("No expense reports found.")
		return
	}
	fmt.Printf("%-25s %12s %8s  %s\n", "PERIOD", "TOTAL", "COUNT", "STATUS")
	for _, g := range groups {
		fmt.Printf("%-25s %12.2f %8d  %s\n", g.Month, g.Total, g.Count, g.Status)
	}
}

func parseCardID(arg string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(arg, "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("card id must be a positive integer, got %q", arg)
	}
	return id, nil
}
