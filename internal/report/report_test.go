package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/storage"
)

func sampleStatement() Statement {
	shipment := "shp_1"
	records := []storage.CommissionRecord{
		{
			ID:                   "r1",
			Timestamp:            time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
			Provider:             "shippo",
			CarrierName:          "USPS",
			ServiceName:          "Priority",
			CustomerPrice:        decimal.RequireFromString("40"),
			Commission:           decimal.RequireFromString("4"),
			CommissionPercentage: decimal.RequireFromString("10"),
			Currency:             "USD",
			ShipmentID:           &shipment,
			Route:                "GB → US",
		},
		{
			ID:                   "r2",
			Timestamp:            time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
			Provider:             "searates",
			CarrierName:          "Maersk",
			ServiceName:          "LCL",
			CustomerPrice:        decimal.RequireFromString("900"),
			Commission:           decimal.RequireFromString("90"),
			CommissionPercentage: decimal.RequireFromString("10"),
			Currency:             "USD",
			Route:                "CN → GB",
		},
	}
	return Statement{
		GeneratedAt: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		Summary: ledger.Summary{
			TotalCommission:   decimal.NewFromInt(94),
			TotalRevenue:      decimal.NewFromInt(940),
			TotalBookings:     2,
			AverageCommission: decimal.NewFromInt(47),
			ByProvider: []ledger.Breakdown{
				{Name: "shippo", Commission: decimal.NewFromInt(4), Revenue: decimal.NewFromInt(40), Count: 1, AverageCommission: decimal.NewFromInt(4)},
				{Name: "searates", Commission: decimal.NewFromInt(90), Revenue: decimal.NewFromInt(900), Count: 1, AverageCommission: decimal.NewFromInt(90)},
			},
			DailyTrends: []ledger.DailyTrend{
				{Date: "2026-05-01", Commission: decimal.NewFromInt(4), Revenue: decimal.NewFromInt(40), Count: 1},
				{Date: "2026-05-02", Commission: decimal.NewFromInt(90), Revenue: decimal.NewFromInt(900), Count: 1},
			},
		},
		Records: records,
	}
}

func TestPeriod(t *testing.T) {
	stmt := sampleStatement()
	assert.Equal(t, "beginning to now", stmt.Period())

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	stmt.Start = &start
	assert.Equal(t, "2026-05-01 to now", stmt.Period())
}

func TestBuildXLSX(t *testing.T) {
	data, err := BuildXLSX(sampleStatement())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "providers", "daily", "records"}, f.GetSheetList())

	title, err := f.GetCellValue("summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Commission Statement", title)

	rows, err := f.GetRows("records")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "r1", rows[1][0])
	assert.Equal(t, "GB → US", rows[1][9])
}

func TestBuildPDF(t *testing.T) {
	data, err := BuildPDF(sampleStatement())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestWriteTrendPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrendPNG(&buf, sampleStatement().Summary.DailyTrends))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestWriteTrendPNGNeedsTwoPoints(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTrendPNG(&buf, sampleStatement().Summary.DailyTrends[:1])
	require.ErrorIs(t, err, ErrNotEnoughPoints)
	assert.Zero(t, buf.Len())
}

func TestDownsampleTrends(t *testing.T) {
	trends := make([]ledger.DailyTrend, 10)
	for i := range trends {
		trends[i] = ledger.DailyTrend{Date: time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")}
	}

	got := DownsampleTrends(trends, 4)
	require.Len(t, got, 4)
	assert.Equal(t, "2026-01-01", got[0].Date)
	assert.Equal(t, "2026-01-10", got[3].Date)

	assert.Len(t, DownsampleTrends(trends, 0), 10)
}
