package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"freight-rate-hub/internal/storage"
)

// Tracking status values.
const (
	StatusHealthy = "healthy"
	StatusLow     = "low"
	StatusNone    = "none"
)

const statusWindowDays = 30

var (
	healthyThreshold = decimal.NewFromInt(10)
	lowThreshold     = decimal.NewFromInt(1)
)

// Status reports whether commission tracking is producing revenue.
type Status struct {
	IsTracking             bool                      `json:"isTracking"`
	TotalRecords           int                       `json:"totalRecords"`
	LastRecord             *storage.CommissionRecord `json:"lastRecord,omitempty"`
	AverageDailyCommission decimal.Decimal           `json:"averageDailyCommission"`
	Status                 string                    `json:"status"`
}

// StatusLevels lists every status value, best first.
func StatusLevels() []string {
	return []string{StatusHealthy, StatusLow, StatusNone}
}

// Status averages the trailing 30 days of commission over the full window,
// regardless of how many days actually have records.
func (l *Ledger) Status() Status {
	now := l.now().UTC()
	since := now.Add(-statusWindowDays * 24 * time.Hour)
	recent := l.Summarize(Filter{Start: &since, End: &now})
	average := recent.TotalCommission.Div(decimal.NewFromInt(statusWindowDays))

	l.mu.RLock()
	total := len(l.records)
	var last *storage.CommissionRecord
	if total > 0 {
		rec := l.records[total-1]
		last = &rec
	}
	l.mu.RUnlock()

	return Status{
		IsTracking:             true,
		TotalRecords:           total,
		LastRecord:             last,
		AverageDailyCommission: average,
		Status:                 classify(average),
	}
}

// Rank orders statuses so that degradation can be detected; lower is better.
func Rank(status string) int {
	switch status {
	case StatusHealthy:
		return 0
	case StatusLow:
		return 1
	default:
		return 2
	}
}

func classify(average decimal.Decimal) string {
	switch {
	case average.GreaterThan(healthyThreshold):
		return StatusHealthy
	case average.GreaterThan(lowThreshold):
		return StatusLow
	default:
		return StatusNone
	}
}
