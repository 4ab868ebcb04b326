package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/report"
)

// Export writes the ledger window as CSV, PNG chart, XLSX and/or PDF.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" && opts.XLSXPath == "" && opts.PDFPath == "" {
		return errors.New("at least one of --csv, --png, --xlsx or --pdf must be provided")
	}
	if opts.From != nil && opts.To != nil && opts.To.Before(*opts.From) {
		return errors.New("from must not be after to")
	}

	l, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	filter := ledger.Filter{Start: opts.From, End: opts.To}
	stmt := report.Statement{
		GeneratedAt: a.Now().UTC(),
		Start:       opts.From,
		End:         opts.To,
		Summary:     l.Summarize(filter),
		Records:     l.Filtered(filter),
	}
	a.Logger.Info().Int("records", len(stmt.Records)).Str("period", stmt.Period()).Msg("exporting commissions")

	if opts.CSVPath != "" {
		text, err := l.ExportCSV(opts.From, opts.To)
		if err != nil {
			return err
		}
		if err := writeFile(opts.CSVPath, []byte(text)); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeTrendPNG(opts.PNGPath, report.DownsampleTrends(stmt.Summary.DailyTrends, opts.MaxPoints)); err != nil {
			if !errors.Is(err, report.ErrNotEnoughPoints) {
				return err
			}
			a.Logger.Warn().Err(err).Msg("skipping trend chart")
		}
	}

	if opts.XLSXPath != "" {
		data, err := report.BuildXLSX(stmt)
		if err != nil {
			return err
		}
		if err := writeFile(opts.XLSXPath, data); err != nil {
			return err
		}
	}

	if opts.PDFPath != "" {
		data, err := report.BuildPDF(stmt)
		if err != nil {
			return err
		}
		if err := writeFile(opts.PDFPath, data); err != nil {
			return err
		}
	}

	return nil
}

func writeTrendPNG(path string, trends []ledger.DailyTrend) error {
	if len(trends) < 2 {
		return report.ErrNotEnoughPoints
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return report.WriteTrendPNG(file, trends)
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
