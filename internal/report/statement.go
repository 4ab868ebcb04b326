package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// core PDF fonts are Latin-1 only
var pdfText = strings.NewReplacer("→", "->", "€", "EUR", "£", "GBP")

// BuildXLSX renders a workbook with summary, providers, daily and records sheets.
func BuildXLSX(stmt Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	providersSheet := "providers"
	dailySheet := "daily"
	recordsSheet := "records"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{providersSheet, dailySheet, recordsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	s := stmt.Summary
	_ = f.SetCellValue(summarySheet, "A1", "Commission Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Period")
	_ = f.SetCellValue(summarySheet, "B3", stmt.Period())
	_ = f.SetCellValue(summarySheet, "A4", "Generated")
	_ = f.SetCellValue(summarySheet, "B4", stmt.GeneratedAt.UTC().Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Bookings")
	_ = f.SetCellValue(summarySheet, "B5", s.TotalBookings)
	_ = f.SetCellValue(summarySheet, "A6", "Total Commission")
	_ = f.SetCellValue(summarySheet, "B6", s.TotalCommission.Round(2).InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A7", "Total Revenue")
	_ = f.SetCellValue(summarySheet, "B7", s.TotalRevenue.Round(2).InexactFloat64())
	_ = f.SetCellValue(summarySheet, "A8", "Average Commission")
	_ = f.SetCellValue(summarySheet, "B8", s.AverageCommission.Round(2).InexactFloat64())

	_ = f.SetSheetRow(providersSheet, "A1", &[]any{"Provider", "Bookings", "Commission", "Revenue", "Average Commission"})
	for i, b := range s.ByProvider {
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(providersSheet, cell, &[]any{
			b.Name,
			b.Count,
			b.Commission.Round(2).InexactFloat64(),
			b.Revenue.Round(2).InexactFloat64(),
			b.AverageCommission.Round(2).InexactFloat64(),
		})
	}

	_ = f.SetSheetRow(dailySheet, "A1", &[]any{"Date", "Bookings", "Commission", "Revenue"})
	for i, day := range s.DailyTrends {
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(dailySheet, cell, &[]any{
			day.Date,
			day.Count,
			day.Commission.Round(2).InexactFloat64(),
			day.Revenue.Round(2).InexactFloat64(),
		})
	}

	_ = f.SetSheetRow(recordsSheet, "A1", &[]any{
		"ID", "Timestamp", "Provider", "Carrier", "Service", "Customer Price",
		"Commission", "Commission %", "Currency", "Route", "Shipment ID", "Customer Email",
	})
	for i, rec := range stmt.Records {
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(recordsSheet, cell, &[]any{
			rec.ID,
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.Provider,
			rec.CarrierName,
			rec.ServiceName,
			rec.CustomerPrice.Round(2).InexactFloat64(),
			rec.Commission.Round(2).InexactFloat64(),
			rec.CommissionPercentage.Round(2).InexactFloat64(),
			rec.Currency,
			rec.Route,
			optionalText(rec.ShipmentID),
			optionalText(rec.CustomerEmail),
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildPDF renders a one-document commission statement.
func BuildPDF(stmt Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	s := stmt.Summary
	pdf.Cell(0, 8, "Commission Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", stmt.Period()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", stmt.GeneratedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Bookings: %d", s.TotalBookings))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Commission: %s", s.TotalCommission.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Revenue: %s", s.TotalRevenue.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average Commission: %s", s.AverageCommission.StringFixed(2)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Provider", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Bookings", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Commission", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Revenue", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, b := range s.ByProvider {
		pdf.CellFormat(60, 6, pdfText.Replace(b.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", b.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, b.Commission.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, b.Revenue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(24, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Provider", "1", 0, "C", false, 0, "")
	pdf.CellFormat(36, 6, "Carrier", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(26, 6, "Commission", "1", 0, "C", false, 0, "")
	pdf.CellFormat(16, 6, "Cur", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Route", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, rec := range stmt.Records {
		pdf.CellFormat(24, 6, rec.Timestamp.UTC().Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(26, 6, pdfText.Replace(rec.Provider), "1", 0, "L", false, 0, "")
		pdf.CellFormat(36, 6, pdfText.Replace(rec.CarrierName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(26, 6, rec.CustomerPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, rec.Commission.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(16, 6, rec.Currency, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, pdfText.Replace(rec.Route), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
