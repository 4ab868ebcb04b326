package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "ratehub_"

// Provider call outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

var (
	registerOnce sync.Once

	quoteRequests   *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	ratesReturned   *prometheus.HistogramVec

	commissionsRecorded *prometheus.CounterVec
	commissionAmount    *prometheus.CounterVec
	ledgerSaveErrors    prometheus.Counter

	ledgerRecords      prometheus.Gauge
	ledgerAverageDaily prometheus.Gauge
	ledgerHealth       *prometheus.GaugeVec
)

// Init registers collectors with reg. Helpers are no-ops until Init runs.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		quoteRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "quote_requests_total",
				Help: "Aggregated quote requests by result",
			},
			[]string{"result"},
		)
		providerCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "provider_calls_total",
				Help: "Provider adapter calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		)
		providerLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "provider_latency_seconds",
				Help:    "Provider adapter latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		)
		ratesReturned = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "provider_rates_returned",
				Help:    "Rates returned per provider call",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
			[]string{"provider"},
		)
		commissionsRecorded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commissions_recorded_total",
				Help: "Commission records appended to the ledger",
			},
			[]string{"provider"},
		)
		commissionAmount = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commission_amount_total",
				Help: "Sum of recorded commission by provider and currency",
			},
			[]string{"provider", "currency"},
		)
		ledgerSaveErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_save_errors_total",
				Help: "Failed ledger persistence attempts",
			},
		)
		ledgerRecords = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ledger_records",
				Help: "Records currently held by the ledger",
			},
		)
		ledgerAverageDaily = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ledger_average_daily_commission",
				Help: "Trailing 30-day commission divided by 30",
			},
		)
		ledgerHealth = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ledger_health",
				Help: "1 for the current commission health status",
			},
			[]string{"status"},
		)

		reg.MustRegister(
			quoteRequests,
			providerCalls,
			providerLatency,
			ratesReturned,
			commissionsRecorded,
			commissionAmount,
			ledgerSaveErrors,
			ledgerRecords,
			ledgerAverageDaily,
			ledgerHealth,
		)
	})
}

// ObserveQuote counts an aggregation run; empty is true when no rate survived.
func ObserveQuote(empty bool) {
	if quoteRequests == nil {
		return
	}
	result := OutcomeSuccess
	if empty {
		result = OutcomeEmpty
	}
	quoteRequests.WithLabelValues(result).Inc()
}

// ObserveProviderCall records one adapter call.
func ObserveProviderCall(provider, outcome string, rates int, elapsed time.Duration) {
	if providerCalls == nil {
		return
	}
	providerCalls.WithLabelValues(provider, outcome).Inc()
	providerLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
	ratesReturned.WithLabelValues(provider).Observe(float64(rates))
}

// ObserveCommission counts a ledger append.
func ObserveCommission(provider, currency string, amount float64) {
	if commissionsRecorded == nil {
		return
	}
	commissionsRecorded.WithLabelValues(provider).Inc()
	commissionAmount.WithLabelValues(provider, currency).Add(amount)
}

// ObserveLedgerSaveError counts a failed persistence attempt.
func ObserveLedgerSaveError() {
	if ledgerSaveErrors == nil {
		return
	}
	ledgerSaveErrors.Inc()
}

// SetLedgerStatus publishes the ledger health snapshot.
func SetLedgerStatus(records int, averageDaily float64, status string, known []string) {
	if ledgerRecords == nil {
		return
	}
	ledgerRecords.Set(float64(records))
	ledgerAverageDaily.Set(averageDaily)
	for _, s := range known {
		value := 0.0
		if s == status {
			value = 1
		}
		ledgerHealth.WithLabelValues(s).Set(value)
	}
}
