package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/invoice"
	"github.com/datum-redsoft/expense-reports/internal/invoiceform"
)

var captureFlags struct {
	submit      bool
	userID      int64
	companyID   int64
	countryID   int64
	cardID      int64
	categoryID  int64
	costCenter  int64
	vendor      string
	date        string
	amount      string
	currency    string
	concept     string
	client      string
	notes       string
	description string
}

var captureCmd = &cobra.Command{
	Use:   "capture <image-file>",
	Short: "Extract invoice fields from an image",
	Long: `Run OCR over an invoice image and print the extracted fields.
With --submit the invoice is validated, the image uploaded and the
complete invoice created in one shot. Flags override extracted values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapture(cmd.Context(), args[0])
	},
}

func init() {
	f := captureCmd.Flags()
	f.BoolVar(&captureFlags.submit, "submit", false, "Submit the invoice after extraction")
	f.Int64Var(&captureFlags.userID, "user", 0, "User id the expense belongs to")
	f.Int64Var(&captureFlags.companyID, "company", 0, "Company id")
	f.Int64Var(&captureFlags.countryID, "country", 0, "Country id")
	f.Int64Var(&captureFlags.cardID, "card", 0, "Card id charged")
	f.Int64Var(&captureFlags.categoryID, "category", 0, "Expense category id")
	f.Int64Var(&captureFlags.costCenter, "cost-center", 0, "Cost center id")
	f.StringVar(&captureFlags.vendor, "vendor", "", "Vendor name (overrides extraction)")
	f.StringVar(&captureFlags.date, "date", "", "Invoice date, YYYY-MM-DD (overrides extraction)")
	f.StringVar(&captureFlags.amount, "amount", "", "Total amount (overrides extraction)")
	f.StringVar(&captureFlags.currency, "currency", "", "Currency code (overrides extraction)")
	f.StringVar(&captureFlags.concept, "concept", "", "Expense concept")
	f.StringVar(&captureFlags.client, "client", "", "Client visited")
	f.StringVar(&captureFlags.notes, "notes", "", "Free-form notes")
	f.StringVar(&captureFlags.description, "description", "", "Stored document description")
}

func runCapture(ctx context.Context, imagePath string) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(imagePath))

	analyzeCtx, cancelAnalyze := internal.WithTimeout(ctx, deps.Config.OCR.Timeout)
	defer cancelAnalyze()

	result, err := deps.Invoices.Analyze(analyzeCtx, image, mimeType)
	if err != nil {
		return err
	}

	fmt.Printf("Vendor:   %s\n", result.Fields.VendorName)
	fmt.Printf("Date:     %s\n", result.Fields.InvoiceDate)
	fmt.Printf("Amount:   %s %s\n", result.Fields.TotalAmount, result.Fields.Currency)
	fmt.Printf("OCR took: %dms\n", result.ProcessingMS)

	if !captureFlags.submit {
		return nil
	}

	fields := invoiceform.Fields{
		CountryID:     captureFlags.countryID,
		CardID:        captureFlags.cardID,
		VendorName:    firstNonEmpty(captureFlags.vendor, result.Fields.VendorName),
		InvoiceDate:   firstNonEmpty(captureFlags.date, result.Fields.InvoiceDate),
		TotalAmount:   firstNonEmpty(captureFlags.amount, result.Fields.TotalAmount),
		Currency:      firstNonEmpty(captureFlags.currency, result.Fields.Currency),
		Concept:       captureFlags.concept,
		CategoryID:    captureFlags.categoryID,
		CostCenterID:  captureFlags.costCenter,
		ClientVisited: captureFlags.client,
		Notes:         captureFlags.notes,
	}

	submitCtx, cancelSubmit := internal.WithTimeout(internal.ContextWithUserID(ctx, captureFlags.userID), deps.Config.Backend.Timeout)
	defer cancelSubmit()

	resp, err := deps.Invoices.Submit(submitCtx, invoice.SubmitInput{
		Form:        fields,
		UserID:      captureFlags.userID,
		CompanyID:   captureFlags.companyID,
		Image:       image,
		ImageName:   filepath.Base(imagePath),
		ImageMime:   mimeType,
		Description: captureFlags.description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Invoice created: id=%d\n", resp.ID)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
