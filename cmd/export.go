package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/export"
)

var exportFlags struct {
	month      string
	outDir     string
	userName   string
	cardNumber string
	cardHolder string
	bank       string
}

var exportCmd = &cobra.Command{
	Use:   "export <card-id>",
	Short: "Export an approved report to XLSX",
	Long: `Write the expense group named by --month as an XLSX workbook with the
summary block, expense detail and total row.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID, err := parseCardID(args[0])
		if err != nil {
			return err
		}
		return runExport(cmd.Context(), cardID)
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.month, "month", "", "Month label of the group, exactly as listed")
	f.StringVar(&exportFlags.outDir, "out", ".", "Directory to write the workbook into")
	f.StringVar(&exportFlags.userName, "user-name", "", "User name for the summary block")
	f.StringVar(&exportFlags.cardNumber, "card-number", "", "Masked card number for the summary block")
	f.StringVar(&exportFlags.cardHolder, "card-holder", "", "Card holder for the summary block")
	f.StringVar(&exportFlags.bank, "bank", "", "Issuing bank for the summary block")
	_ = exportCmd.MarkFlagRequired("month")
}

func runExport(ctx context.Context, cardID int64) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}

	ctx, cancel := internal.WithTimeout(ctx, deps.Config.Backend.Timeout)
	defer cancel()

	group, _, err := deps.Reports.GroupDetail(ctx, cardID, exportFlags.month)
	if err != nil {
		return err
	}

	in := export.Input{
		UserName:   exportFlags.userName,
		CardNumber: exportFlags.cardNumber,
		CardHolder: exportFlags.cardHolder,
		Bank:       exportFlags.bank,
		Report:     *group,
	}

	data, err := deps.Exporter.Build(in)
	if err != nil {
		return err
	}

	path := filepath.Join(exportFlags.outDir, deps.Exporter.FileName(in))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	fmt.Printf("Wrote %s (%d expenses)\n", path, group.Count)
	return nil
}
