package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"freight-rate-hub/internal/storage"
)

const timeLayout = "15:04:05"

// CSVHeader is the fixed column contract of ExportCSV.
var CSVHeader = []string{
	"Date",
	"Time",
	"Provider",
	"Carrier",
	"Service",
	"Customer Price",
	"Commission",
	"Commission %",
	"Currency",
	"Route",
	"Shipment ID",
	"Customer Email",
}

// ExportCSV renders the records inside the inclusive window as CSV text.
func (l *Ledger) ExportCSV(start, end *time.Time) (string, error) {
	records := l.Filtered(Filter{Start: start, End: end})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(csvRow(rec)); err != nil {
			return "", fmt.Errorf("write csv row %s: %w", rec.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

func csvRow(rec storage.CommissionRecord) []string {
	ts := rec.Timestamp.UTC()
	return []string{
		ts.Format(dateLayout),
		ts.Format(timeLayout),
		rec.Provider,
		rec.CarrierName,
		rec.ServiceName,
		rec.CustomerPrice.StringFixed(2),
		rec.Commission.StringFixed(2),
		rec.CommissionPercentage.StringFixed(2) + "%",
		rec.Currency,
		rec.Route,
		deref(rec.ShipmentID),
		deref(rec.CustomerEmail),
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
