package report

import (
	"fmt"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"freight-rate-hub/internal/ledger"
)

// DownsampleTrends keeps at most max evenly spaced buckets, always including
// the first and last.
func DownsampleTrends(trends []ledger.DailyTrend, max int) []ledger.DailyTrend {
	if max <= 1 || len(trends) <= max {
		return trends
	}

	result := make([]ledger.DailyTrend, 0, max)
	step := float64(len(trends)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(trends) {
			idx = len(trends) - 1
		}
		result = append(result, trends[idx])
	}
	return result
}

// WriteTrendPNG plots daily commission and revenue.
func WriteTrendPNG(w io.Writer, trends []ledger.DailyTrend) error {
	if len(trends) < 2 {
		return ErrNotEnoughPoints
	}

	x := make([]time.Time, len(trends))
	commission := make([]float64, len(trends))
	revenue := make([]float64, len(trends))
	for i, day := range trends {
		ts, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return fmt.Errorf("parse trend date %q: %w", day.Date, err)
		}
		x[i] = ts
		commission[i] = day.Commission.InexactFloat64()
		revenue[i] = day.Revenue.InexactFloat64()
	}

	moneyFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Commission",
			ValueFormatter: moneyFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Revenue",
			ValueFormatter: moneyFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Commission",
				XValues: x,
				YValues: commission,
			},
			chart.TimeSeries{
				Name:    "Revenue",
				XValues: x,
				YValues: revenue,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
