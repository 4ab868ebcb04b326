package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-rate-hub/internal/commission"
	"freight-rate-hub/internal/rates"
	"freight-rate-hub/internal/storage"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) LoadCommissions(context.Context) ([]storage.CommissionRecord, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return nil, nil
}

func (f *failingStore) SaveCommissions(context.Context, []storage.CommissionRecord) error {
	f.saves++
	return f.saveErr
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLedger(t *testing.T, store storage.CommissionStore, c *clock) *Ledger {
	t.Helper()
	calc := commission.NewCalculator(commission.Rule{
		Percentage: decimal.NewFromInt(10),
		FixedFee:   decimal.Zero,
	}, nil)
	return New(context.Background(), store, calc, Options{Now: c.now}, zerolog.Nop())
}

func rateWithCommission(provider string, price, fee string) rates.UnifiedRate {
	r := rates.UnifiedRate{
		ID:          provider + "_1",
		Provider:    provider,
		CarrierName: "DHL",
		ServiceName: "Express",
		Price:       decimal.RequireFromString(price),
		Currency:    "GBP",
	}
	if fee != "" {
		r.Commission = decimal.NewNullDecimal(decimal.RequireFromString(fee))
	}
	return r
}

func TestRecordComputesCommissionAndPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))}
	l := newTestLedger(t, store, c)

	rec, err := l.Record(context.Background(), rateWithCommission("shippo", "80", ""), CustomerContext{
		CustomerEmail: "buyer@example.com",
		Route:         "GB → US",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
	assert.True(t, rec.Commission.Equal(decimal.NewFromInt(8)))
	assert.True(t, rec.CommissionPercentage.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, rec.ShipmentID)
	require.NotNil(t, rec.CustomerEmail)

	stored, err := store.LoadCommissions(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.ID, stored[0].ID)
}

func TestRecordKeepsExistingCommission(t *testing.T) {
	l := newTestLedger(t, storage.NewMemoryStore(), &clock{t: time.Now()})

	rec, err := l.Record(context.Background(), rateWithCommission("searates", "200", "30"), CustomerContext{})
	require.NoError(t, err)
	assert.True(t, rec.Commission.Equal(decimal.NewFromInt(30)))
	assert.True(t, rec.CommissionPercentage.Equal(decimal.NewFromInt(15)))
}

func TestRecordRejectsNonPositivePrice(t *testing.T) {
	l := newTestLedger(t, storage.NewMemoryStore(), &clock{t: time.Now()})

	_, err := l.Record(context.Background(), rateWithCommission("shippo", "0", ""), CustomerContext{})
	require.ErrorIs(t, err, ErrInvalidRate)
	assert.Empty(t, l.Records())
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	store := &failingStore{loadErr: errors.New("disk gone")}
	l := newTestLedger(t, store, &clock{t: time.Now()})
	assert.Empty(t, l.Records())
	assert.Equal(t, 0, l.Status().TotalRecords)
}

func TestSaveFailureKeepsInMemoryRecord(t *testing.T) {
	store := &failingStore{saveErr: errors.New("read-only")}
	l := newTestLedger(t, store, &clock{t: time.Now()})

	_, err := l.Record(context.Background(), rateWithCommission("shippo", "50", ""), CustomerContext{})
	require.NoError(t, err)
	assert.Len(t, l.Records(), 1)
	assert.Equal(t, 1, store.saves)
}

func TestRecordsSurviveReload(t *testing.T) {
	store := storage.NewMemoryStore()
	c := &clock{t: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)}
	first := newTestLedger(t, store, c)
	_, err := first.Record(context.Background(), rateWithCommission("shippo", "40", ""), CustomerContext{ShipmentID: "shp_1"})
	require.NoError(t, err)

	second := newTestLedger(t, store, c)
	require.Len(t, second.Records(), 1)
	assert.Equal(t, "shp_1", *second.Records()[0].ShipmentID)
}

type flakyStore struct {
	*storage.MemoryStore
	failSave bool
}

func (f *flakyStore) SaveCommissions(ctx context.Context, records []storage.CommissionRecord) error {
	if f.failSave {
		return errors.New("store unavailable")
	}
	return f.MemoryStore.SaveCommissions(ctx, records)
}

func TestReloadKeepsUnsavedRecords(t *testing.T) {
	shared := storage.NewMemoryStore()
	c := &clock{t: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)}

	local := newTestLedger(t, &flakyStore{MemoryStore: shared, failSave: true}, c)
	unsaved, err := local.Record(context.Background(), rateWithCommission("shippo", "40", ""), CustomerContext{})
	require.NoError(t, err)

	other := newTestLedger(t, shared, c)
	saved, err := other.Record(context.Background(), rateWithCommission("searates", "90", ""), CustomerContext{})
	require.NoError(t, err)

	require.NoError(t, local.Reload(context.Background()))
	records := local.Records()
	require.Len(t, records, 2)
	assert.Equal(t, saved.ID, records[0].ID)
	assert.Equal(t, unsaved.ID, records[1].ID)

	require.NoError(t, local.Reload(context.Background()))
	assert.Len(t, local.Records(), 2)
}

func TestSummarizeIsStableBetweenRecords(t *testing.T) {
	c := &clock{t: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	l := newTestLedger(t, storage.NewMemoryStore(), c)

	ids := make([]string, 20)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			provider := "shippo"
			if i%2 == 1 {
				provider = "searates"
			}
			rec, err := l.Record(context.Background(), rateWithCommission(provider, "100", ""), CustomerContext{})
			if err == nil {
				ids[i] = rec.ID
			}
		}(i)
	}
	wg.Wait()

	first := l.Summarize(Filter{})
	second := l.Summarize(Filter{})
	assert.Equal(t, first, second)
	assert.Equal(t, 20, first.TotalBookings)
	assert.True(t, first.TotalCommission.Equal(decimal.NewFromInt(200)), first.TotalCommission.String())

	present := make(map[string]bool)
	for _, rec := range l.Filtered(Filter{}) {
		present[rec.ID] = true
	}
	for _, id := range ids {
		require.NotEmpty(t, id)
		assert.True(t, present[id], id)
	}
}

func TestSummarizeAcrossDays(t *testing.T) {
	c := &clock{}
	l := newTestLedger(t, storage.NewMemoryStore(), c)

	days := []time.Time{
		time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	fees := []string{"5", "15", "25"}
	for i, day := range days {
		c.t = day
		_, err := l.Record(context.Background(), rateWithCommission("shippo", "100", fees[i]), CustomerContext{})
		require.NoError(t, err)
	}

	summary := l.Summarize(Filter{})
	assert.True(t, summary.TotalCommission.Equal(decimal.NewFromInt(45)))
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 3, summary.TotalBookings)
	require.Len(t, summary.DailyTrends, 3)
	assert.Equal(t, "2026-01-01", summary.DailyTrends[0].Date)
	assert.Equal(t, "2026-01-02", summary.DailyTrends[1].Date)
	assert.Equal(t, "2026-01-03", summary.DailyTrends[2].Date)

	require.Len(t, summary.ByProvider, 1)
	assert.True(t, summary.ByProvider[0].AverageCommission.Equal(decimal.NewFromInt(15)))
}

func TestSummarizeFilters(t *testing.T) {
	c := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestLedger(t, storage.NewMemoryStore(), c)

	_, err := l.Record(context.Background(), rateWithCommission("shippo", "100", "10"), CustomerContext{})
	require.NoError(t, err)
	c.t = c.t.Add(48 * time.Hour)
	_, err = l.Record(context.Background(), rateWithCommission("searates", "100", "20"), CustomerContext{})
	require.NoError(t, err)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	got := l.Summarize(Filter{Start: &start, End: &start})
	assert.Equal(t, 1, got.TotalBookings, "bounds are inclusive")

	got = l.Summarize(Filter{Provider: "SEARATES"})
	assert.Equal(t, 1, got.TotalBookings)
	assert.True(t, got.TotalCommission.Equal(decimal.NewFromInt(20)))
}

func TestTopPerformers(t *testing.T) {
	l := newTestLedger(t, storage.NewMemoryStore(), &clock{t: time.Now()})
	for _, tc := range []struct{ provider, fee string }{
		{"shippo", "5"}, {"searates", "40"}, {"sandbox", "12"}, {"shippo", "3"},
	} {
		_, err := l.Record(context.Background(), rateWithCommission(tc.provider, "100", tc.fee), CustomerContext{})
		require.NoError(t, err)
	}

	top := l.TopPerformers(2)
	require.Len(t, top.TopProviders, 2)
	assert.Equal(t, "searates", top.TopProviders[0].Name)
	assert.Equal(t, "sandbox", top.TopProviders[1].Name)
	require.Len(t, top.TopCarriers, 1)
	assert.True(t, top.TopCarriers[0].Commission.Equal(decimal.NewFromInt(60)))
}

func TestExportCSVFormatting(t *testing.T) {
	c := &clock{t: time.Date(2026, 6, 7, 8, 9, 10, 0, time.UTC)}
	l := newTestLedger(t, storage.NewMemoryStore(), c)

	_, err := l.Record(context.Background(), rateWithCommission("shippo", "100", "12.345"), CustomerContext{
		ShipmentID:    "shp_9",
		CustomerEmail: "a@b.com",
		Route:         "GB → US",
	})
	require.NoError(t, err)

	out, err := l.ExportCSV(nil, nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{
		"2026-06-07", "08:09:10", "shippo", "DHL", "Express",
		"100.00", "12.35", "12.35%", "GBP", "GB → US", "shp_9", "a@b.com",
	}, rows[1])
}

func TestExportCSVWindow(t *testing.T) {
	c := &clock{t: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestLedger(t, storage.NewMemoryStore(), c)
	_, err := l.Record(context.Background(), rateWithCommission("shippo", "10", "1"), CustomerContext{})
	require.NoError(t, err)

	later := c.t.Add(time.Hour)
	out, err := l.ExportCSV(&later, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"), "header only")
}

func TestStatusThresholds(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		fees    []string
		average string
		status  string
	}{
		{"empty", nil, "0.0000", StatusNone},
		{"one", []string{"30"}, "1.0000", StatusNone},
		{"low", []string{"31"}, "1.0333", StatusLow},
		{"healthy", []string{"200", "101"}, "10.0333", StatusHealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &clock{t: now.Add(-24 * time.Hour)}
			l := newTestLedger(t, storage.NewMemoryStore(), c)
			for _, fee := range tc.fees {
				_, err := l.Record(context.Background(), rateWithCommission("shippo", "500", fee), CustomerContext{})
				require.NoError(t, err)
			}
			c.t = now

			st := l.Status()
			assert.True(t, st.IsTracking)
			assert.Equal(t, len(tc.fees), st.TotalRecords)
			assert.Equal(t, tc.status, st.Status)
			assert.Equal(t, tc.average, st.AverageDailyCommission.StringFixed(4))
			if len(tc.fees) > 0 {
				require.NotNil(t, st.LastRecord)
			} else {
				assert.Nil(t, st.LastRecord)
			}
		})
	}
}

func TestStatusIgnoresOldRecords(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestLedger(t, storage.NewMemoryStore(), c)
	_, err := l.Record(context.Background(), rateWithCommission("shippo", "5000", "1000"), CustomerContext{})
	require.NoError(t, err)

	c.t = c.t.AddDate(0, 2, 0)
	st := l.Status()
	assert.Equal(t, StatusNone, st.Status)
	assert.Equal(t, 1, st.TotalRecords)
}

func TestRankOrdersStatuses(t *testing.T) {
	assert.Less(t, Rank(StatusHealthy), Rank(StatusLow))
	assert.Less(t, Rank(StatusLow), Rank(StatusNone))
}
