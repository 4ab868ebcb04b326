package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"freight-rate-hub/internal/ledger"
)

// Summary prints totals, breakdowns and daily trends for a window.
func (a *App) Summary(ctx context.Context, opts SummaryOptions) error {
	l, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	s := l.Summarize(ledger.Filter{Start: opts.From, End: opts.To, Provider: opts.Provider})
	if opts.JSON {
		return writeJSON(a.Out, s)
	}

	fmt.Fprintf(a.Out, "Bookings: %d\nCommission: %s\nRevenue: %s\nAverage commission: %s\n\n",
		s.TotalBookings,
		s.TotalCommission.StringFixed(2),
		s.TotalRevenue.StringFixed(2),
		s.AverageCommission.StringFixed(2),
	)
	if s.TotalBookings == 0 {
		fmt.Fprintln(a.Out, "no commission records found")
		return nil
	}

	writeBreakdowns(a.Out, "Provider", s.ByProvider)
	fmt.Fprintln(a.Out)
	writeBreakdowns(a.Out, "Carrier", s.ByCarrier)
	fmt.Fprintln(a.Out)

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tBookings\tCommission\tRevenue")
	for _, day := range s.DailyTrends {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\n", day.Date, day.Count, day.Commission.StringFixed(2), day.Revenue.StringFixed(2))
	}
	writer.Flush()
	return nil
}

// Top prints the highest-earning providers and carriers.
func (a *App) Top(ctx context.Context, opts TopOptions) error {
	l, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	top := l.TopPerformers(a.Config.ResolveTopLimit(opts.Limit))
	if opts.JSON {
		return writeJSON(a.Out, top)
	}
	writeBreakdowns(a.Out, "Provider", top.TopProviders)
	fmt.Fprintln(a.Out)
	writeBreakdowns(a.Out, "Carrier", top.TopCarriers)
	return nil
}

// Status prints the commission tracking health.
func (a *App) Status(ctx context.Context, asJSON bool) error {
	l, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	st := l.Status()
	if asJSON {
		return writeJSON(a.Out, st)
	}

	last := "never"
	if st.LastRecord != nil {
		last = st.LastRecord.Timestamp.UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(a.Out, "Status: %s\nRecords: %d\nAverage daily commission (30d): %s\nLast booking: %s\n",
		st.Status, st.TotalRecords, st.AverageDailyCommission.StringFixed(2), last)
	return nil
}

func writeBreakdowns(out io.Writer, label string, rows []ledger.Breakdown) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "%s\tBookings\tCommission\tRevenue\tAvg\n", label)
	for _, b := range rows {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%s\n",
			b.Name, b.Count, b.Commission.StringFixed(2), b.Revenue.StringFixed(2), b.AverageCommission.StringFixed(2))
	}
	writer.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
