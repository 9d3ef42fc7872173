package export

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
)

// SheetName is the single worksheet every report lands on.
const SheetName = "Reporte de Gastos"

const titleRow = "REPORTE DE GASTOS APROBADO"

// Input carries the approved group plus the card/user context printed in the
// summary block. No validation happens here; the caller already confirmed the
// group is approved.
type Input struct {
	UserName   string
	CardNumber string
	CardHolder string
	Bank       string
	Report     expense.Group
}

var headers = []string{
	"Fecha",
	"Proveedor",
	"Concepto",
	"Categoría",
	"Centro de Costo",
	"Cliente Visitado",
	"Moneda",
	"Monto",
	"Estado",
	"Notas",
}

// Per-column presentation widths, matching the header order.
var columnWidths = []float64{12, 25, 30, 20, 20, 20, 10, 12, 12, 30}

var whitespace = regexp.MustCompile(`\s+`)

// Exporter serializes approved expense groups into XLSX workbooks.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// FileName embeds the month label (whitespace collapsed to underscores), the
// card number (whitespace stripped) and a uniqueness token.
func (e *Exporter) FileName(in Input) string {
	month := whitespace.ReplaceAllString(strings.TrimSpace(in.Report.Month), "_")
	cardNumber := whitespace.ReplaceAllString(in.CardNumber, "")
	return fmt.Sprintf("Reporte_%s_%s_%s.xlsx", month, cardNumber, uuid.NewString())
}

// Build produces the workbook bytes: title, key-value summary block, blank
// separator, the itemized expense table and a trailing total row.
func (e *Exporter) Build(in Input) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	row := 1
	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(SheetName, cell, v)
	}
	writeRow := func(values ...any) {
		for i, v := range values {
			if v != nil {
				write(i+1, row, v)
			}
		}
		row++
	}

	// Title, merged across the table width.
	writeRow(titleRow)
	if style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", "A1", style)
	}
	_ = f.MergeCell(SheetName, "A1", "J1")
	row++

	// Summary block.
	writeRow("Usuario:", in.UserName)
	writeRow("Tarjeta:", in.CardNumber)
	writeRow("Titular:", in.CardHolder)
	writeRow("Banco:", in.Bank)
	writeRow("Período:", in.Report.Month)
	writeRow("Estado:", in.Report.Status)
	writeRow("Total de Gastos:", in.Report.Count)
	writeRow("Monto Total:", fmt.Sprintf("$%.2f", in.Report.Total))
	row++

	writeRow("DETALLE DE GASTOS")
	row++

	headerValues := make([]any, len(headers))
	for i, h := range headers {
		headerValues[i] = h
	}
	writeRow(headerValues...)

	for _, exp := range in.Report.Expenses {
		writeRow(
			exp.InvoiceDate,
			exp.VendorName,
			exp.Concept,
			exp.Category,
			orDash(exp.CostCenterName),
			orDash(exp.ClientVisited),
			exp.Currency,
			exp.TotalAmount,
			exp.Status,
			orDash(exp.Notes),
		)
	}

	row += 2
	write(7, row, "TOTAL:")
	write(8, row, fmt.Sprintf("%.2f", in.Report.Total))

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, width)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("report workbook built",
		"month", in.Report.Month,
		"rows", len(in.Report.Expenses),
		"elapsed_ms", time.Since(start).Milliseconds())

	return buf.Bytes(), nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
