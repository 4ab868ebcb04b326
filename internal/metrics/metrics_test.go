package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersRecordAfterInit(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg)

	ObserveQuote(false)
	ObserveQuote(true)
	ObserveProviderCall("shippo", OutcomeSuccess, 3, 120*time.Millisecond)
	ObserveCommission("shippo", "USD", 12.5)
	ObserveLedgerSaveError()
	SetLedgerStatus(4, 11.2, "healthy", []string{"healthy", "low", "none"})

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"ratehub_quote_requests_total",
		"ratehub_provider_calls_total",
		"ratehub_provider_latency_seconds",
		"ratehub_commission_amount_total",
		"ratehub_ledger_save_errors_total",
		"ratehub_ledger_health",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}
