package export_test

import (
	"bytes"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
	"github.com/datum-redsoft/expense-reports/internal/export"
)

func approvedInput() export.Input {
	costCenter := "Ventas"
	client := "Acme Corp"
	return export.Input{
		UserName:   "María García",
		CardNumber: "4111 2222 3333 4444",
		CardHolder: "MARIA GARCIA",
		Bank:       "Banco Nacional",
		Report: expense.Group{
			Month:  "Enero 2025",
			Total:  250.50,
			Count:  2,
			Status: expense.GroupStatusApproved,
			Expenses: []expense.Expense{
				{
					InvoiceDate:    "2025-01-10",
					VendorName:     "Hotel Central",
					Concept:        "Hospedaje",
					Category:       "Hospedaje",
					CostCenterName: &costCenter,
					ClientVisited:  &client,
					Currency:       "USD",
					TotalAmount:    200.50,
					Status:         "APROBADO",
				},
				{
					InvoiceDate: "2025-01-12",
					VendorName:  "Taxi Express",
					Concept:     "Traslado aeropuerto",
					Category:    "Transporte",
					Currency:    "USD",
					TotalAmount: 50.00,
					Status:      "APROBADO",
				},
			},
		},
	}
}

var _ = Describe("Exporter", func() {
	var exporter *export.Exporter

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		exporter = export.NewExporter(logger)
	})

	Describe("FileName", func() {
		It("embeds the month, the stripped card number and a unique token", func() {
			name := exporter.FileName(approvedInput())

			Expect(name).To(MatchRegexp(`^Reporte_Enero_2025_4111222233334444_[0-9a-f-]{36}\.xlsx$`))
		})

		It("differs between calls for the same input", func() {
			in := approvedInput()

			Expect(exporter.FileName(in)).ToNot(Equal(exporter.FileName(in)))
		})
	})

	Describe("Build", func() {
		var sheet *excelize.File

		cell := func(ref string) string {
			value, err := sheet.GetCellValue(export.SheetName, ref)
			Expect(err).ToNot(HaveOccurred())
			return value
		}

		BeforeEach(func() {
			data, err := exporter.Build(approvedInput())
			Expect(err).ToNot(HaveOccurred())

			sheet, err = excelize.OpenReader(bytes.NewReader(data))
			Expect(err).ToNot(HaveOccurred())
		})

		AfterEach(func() {
			Expect(sheet.Close()).To(Succeed())
		})

		It("produces a single named worksheet", func() {
			Expect(sheet.GetSheetList()).To(Equal([]string{export.SheetName}))
		})

		It("writes the title and the summary block", func() {
			Expect(cell("A1")).To(Equal("REPORTE DE GASTOS APROBADO"))
			Expect(cell("A3")).To(Equal("Usuario:"))
			Expect(cell("B3")).To(Equal("María García"))
			Expect(cell("B4")).To(Equal("4111 2222 3333 4444"))
			Expect(cell("B5")).To(Equal("MARIA GARCIA"))
			Expect(cell("B6")).To(Equal("Banco Nacional"))
			Expect(cell("B7")).To(Equal("Enero 2025"))
			Expect(cell("B8")).To(Equal("APROBADO"))
			Expect(cell("B9")).To(Equal("2"))
			Expect(cell("B10")).To(Equal("$250.50"))
		})

		It("writes the detail header row", func() {
			Expect(cell("A12")).To(Equal("DETALLE DE GASTOS"))
			Expect(cell("A14")).To(Equal("Fecha"))
			Expect(cell("B14")).To(Equal("Proveedor"))
			Expect(cell("H14")).To(Equal("Monto"))
			Expect(cell("J14")).To(Equal("Notas"))
		})

		It("writes one row per expense, dashing empty optionals", func() {
			Expect(cell("A15")).To(Equal("2025-01-10"))
			Expect(cell("B15")).To(Equal("Hotel Central"))
			Expect(cell("E15")).To(Equal("Ventas"))
			Expect(cell("F15")).To(Equal("Acme Corp"))
			Expect(cell("H15")).To(Equal("200.5"))
			Expect(cell("J15")).To(Equal("-"))

			Expect(cell("B16")).To(Equal("Taxi Express"))
			Expect(cell("E16")).To(Equal("-"))
			Expect(cell("F16")).To(Equal("-"))
		})

		It("writes the total row below the table", func() {
			Expect(cell("G19")).To(Equal("TOTAL:"))
			Expect(cell("H19")).To(Equal("250.50"))
		})
	})

	Context("with an empty expense list", func() {
		It("still builds a workbook with summary and total", func() {
			in := approvedInput()
			in.Report.Expenses = nil
			in.Report.Count = 0
			in.Report.Total = 0

			data, err := exporter.Build(in)
			Expect(err).ToNot(HaveOccurred())

			sheet, err := excelize.OpenReader(bytes.NewReader(data))
			Expect(err).ToNot(HaveOccurred())
			defer sheet.Close()

			total, err := sheet.GetCellValue(export.SheetName, "G17")
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal("TOTAL:"))
		})
	})
})
