package cli

import (
	"github.com/spf13/cobra"

	"freight-rate-hub/internal/app"
)

var (
	exportFrom      string
	exportTo        string
	exportCSVPath   string
	exportPNGPath   string
	exportXLSXPath  string
	exportPDFPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export commission records as CSV, PNG chart, XLSX and/or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseWindow(exportFrom, exportTo)
		if err != nil {
			return err
		}

		opts := app.ExportOptions{
			From:      from,
			To:        to,
			CSVPath:   exportCSVPath,
			PNGPath:   exportPNGPath,
			XLSXPath:  exportXLSXPath,
			PDFPath:   exportPDFPath,
			MaxPoints: exportMaxPoints,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start (RFC3339 or YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End (RFC3339 or YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV records")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write the daily trend chart")
	exportCmd.Flags().StringVar(&exportXLSXPath, "xlsx", "", "Path to write the XLSX workbook")
	exportCmd.Flags().StringVar(&exportPDFPath, "pdf", "", "Path to write the PDF statement")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum days plotted on the chart (0 plots all)")
}
