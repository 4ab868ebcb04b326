package report

import (
	"errors"
	"fmt"
	"time"

	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/storage"
)

// ErrNotEnoughPoints is returned when a trend chart has fewer than two days.
var ErrNotEnoughPoints = errors.New("trend chart needs at least two days of data")

// Statement is the input shared by every report renderer.
type Statement struct {
	GeneratedAt time.Time
	Start       *time.Time
	End         *time.Time
	Summary     ledger.Summary
	Records     []storage.CommissionRecord
}

// Period renders the statement window for titles.
func (s Statement) Period() string {
	from, to := "beginning", "now"
	if s.Start != nil {
		from = s.Start.UTC().Format("2006-01-02")
	}
	if s.End != nil {
		to = s.End.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s to %s", from, to)
}

func optionalText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
