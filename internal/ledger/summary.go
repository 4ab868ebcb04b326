package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"freight-rate-hub/internal/storage"
)

const (
	dateLayout          = "2006-01-02"
	DefaultTopPerformer = 5
)

// Filter narrows the records considered. Zero-valued fields match everything;
// Start and End are inclusive.
type Filter struct {
	Start    *time.Time
	End      *time.Time
	Provider string
}

func (f Filter) match(rec storage.CommissionRecord) bool {
	if f.Start != nil && rec.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && rec.Timestamp.After(*f.End) {
		return false
	}
	if f.Provider != "" && !strings.EqualFold(f.Provider, rec.Provider) {
		return false
	}
	return true
}

// Breakdown aggregates records sharing a provider or carrier.
type Breakdown struct {
	Name              string          `json:"name"`
	Commission        decimal.Decimal `json:"commission"`
	Revenue           decimal.Decimal `json:"revenue"`
	Count             int             `json:"count"`
	AverageCommission decimal.Decimal `json:"averageCommission"`
}

// DailyTrend is one UTC calendar day bucket.
type DailyTrend struct {
	Date       string          `json:"date"`
	Commission decimal.Decimal `json:"commission"`
	Revenue    decimal.Decimal `json:"revenue"`
	Count      int             `json:"count"`
}

// Summary is derived from the records on demand and never persisted.
type Summary struct {
	TotalCommission   decimal.Decimal `json:"totalCommission"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalBookings     int             `json:"totalBookings"`
	AverageCommission decimal.Decimal `json:"averageCommission"`
	ByProvider        []Breakdown     `json:"byProvider"`
	ByCarrier         []Breakdown     `json:"byCarrier"`
	DailyTrends       []DailyTrend    `json:"dailyTrends"`
}

// Performers lists the highest-earning providers and carriers.
type Performers struct {
	TopProviders []Breakdown `json:"topProviders"`
	TopCarriers  []Breakdown `json:"topCarriers"`
}

// Filtered returns the records matching f in insertion order.
func (l *Ledger) Filtered(f Filter) []storage.CommissionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]storage.CommissionRecord, 0, len(l.records))
	for _, rec := range l.records {
		if f.match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Summarize reduces the filtered records into totals, breakdowns and trends.
func (l *Ledger) Summarize(f Filter) Summary {
	return summarize(l.Filtered(f))
}

// TopPerformers ranks providers and carriers by commission over all records.
func (l *Ledger) TopPerformers(limit int) Performers {
	if limit <= 0 {
		limit = DefaultTopPerformer
	}
	s := l.Summarize(Filter{})
	return Performers{
		TopProviders: topByCommission(s.ByProvider, limit),
		TopCarriers:  topByCommission(s.ByCarrier, limit),
	}
}

func summarize(records []storage.CommissionRecord) Summary {
	s := Summary{
		TotalCommission:   decimal.Zero,
		TotalRevenue:      decimal.Zero,
		AverageCommission: decimal.Zero,
	}
	providers := newBreakdowns()
	carriers := newBreakdowns()
	days := make(map[string]*DailyTrend)

	for _, rec := range records {
		s.TotalCommission = s.TotalCommission.Add(rec.Commission)
		s.TotalRevenue = s.TotalRevenue.Add(rec.CustomerPrice)
		s.TotalBookings++

		providers.add(rec.Provider, rec)
		carriers.add(rec.CarrierName, rec)

		key := rec.Timestamp.UTC().Format(dateLayout)
		day, ok := days[key]
		if !ok {
			day = &DailyTrend{Date: key, Commission: decimal.Zero, Revenue: decimal.Zero}
			days[key] = day
		}
		day.Commission = day.Commission.Add(rec.Commission)
		day.Revenue = day.Revenue.Add(rec.CustomerPrice)
		day.Count++
	}

	if s.TotalBookings > 0 {
		s.AverageCommission = s.TotalCommission.Div(decimal.NewFromInt(int64(s.TotalBookings)))
	}
	s.ByProvider = providers.list()
	s.ByCarrier = carriers.list()

	s.DailyTrends = make([]DailyTrend, 0, len(days))
	for _, day := range days {
		s.DailyTrends = append(s.DailyTrends, *day)
	}
	sort.Slice(s.DailyTrends, func(i, j int) bool {
		return s.DailyTrends[i].Date < s.DailyTrends[j].Date
	})
	return s
}

type breakdowns struct {
	order []string
	byKey map[string]*Breakdown
}

func newBreakdowns() *breakdowns {
	return &breakdowns{byKey: make(map[string]*Breakdown)}
}

func (b *breakdowns) add(name string, rec storage.CommissionRecord) {
	entry, ok := b.byKey[name]
	if !ok {
		entry = &Breakdown{Name: name, Commission: decimal.Zero, Revenue: decimal.Zero}
		b.byKey[name] = entry
		b.order = append(b.order, name)
	}
	entry.Commission = entry.Commission.Add(rec.Commission)
	entry.Revenue = entry.Revenue.Add(rec.CustomerPrice)
	entry.Count++
	entry.AverageCommission = entry.Commission.Div(decimal.NewFromInt(int64(entry.Count)))
}

// list returns entries in first-seen order.
func (b *breakdowns) list() []Breakdown {
	out := make([]Breakdown, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.byKey[name])
	}
	return out
}

func topByCommission(in []Breakdown, limit int) []Breakdown {
	out := make([]Breakdown, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Commission.GreaterThan(out[j].Commission)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
