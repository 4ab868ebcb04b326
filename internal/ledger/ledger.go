package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freight-rate-hub/internal/commission"
	"freight-rate-hub/internal/metrics"
	"freight-rate-hub/internal/rates"
	"freight-rate-hub/internal/storage"
)

// ErrInvalidRate is returned when a rate without a positive price is recorded.
var ErrInvalidRate = errors.New("rate price must be positive")

var hundred = decimal.NewFromInt(100)

// CustomerContext carries booking details attached to a record.
type CustomerContext struct {
	ShipmentID    string
	CustomerEmail string
	Route         string
}

// Options tune the ledger.
type Options struct {
	Now func() time.Time
}

// Ledger is the append-only commission log backed by a CommissionStore.
type Ledger struct {
	mu         sync.RWMutex
	records    []storage.CommissionRecord
	store      storage.CommissionStore
	calculator *commission.Calculator
	now        func() time.Time
	logger     zerolog.Logger
}

// New loads the existing collection from store. A load failure starts an empty
// ledger and is only logged.
func New(ctx context.Context, store storage.CommissionStore, calculator *commission.Calculator, opts Options, logger zerolog.Logger) *Ledger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	l := &Ledger{
		store:      store,
		calculator: calculator,
		now:        opts.Now,
		logger:     logger.With().Str("component", "ledger").Logger(),
	}

	l.records = make([]storage.CommissionRecord, 0)
	if store == nil {
		return l
	}
	loaded, err := store.LoadCommissions(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("failed to load commission records, starting empty")
		return l
	}
	l.records = loaded
	l.logger.Debug().Int("records", len(loaded)).Msg("commission records loaded")
	return l
}

// Record appends the commission earned on a booked rate and persists the
// whole collection. A save failure is logged and the in-memory record stands.
func (l *Ledger) Record(ctx context.Context, rate rates.UnifiedRate, cc CustomerContext) (storage.CommissionRecord, error) {
	if !rate.Price.IsPositive() {
		return storage.CommissionRecord{}, fmt.Errorf("%w: %s", ErrInvalidRate, rate.ID)
	}

	amount := l.commissionFor(&rate)
	rec := storage.CommissionRecord{
		ID:                   uuid.NewString(),
		Timestamp:            l.now().UTC(),
		Provider:             rate.Provider,
		CarrierName:          rate.CarrierName,
		ServiceName:          rate.ServiceName,
		CustomerPrice:        rate.Price,
		Commission:           amount,
		CommissionPercentage: amount.Div(rate.Price).Mul(hundred),
		Currency:             rate.Currency,
		ShipmentID:           optional(cc.ShipmentID),
		CustomerEmail:        optional(cc.CustomerEmail),
		Route:                cc.Route,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)
	if l.store != nil {
		if err := l.store.SaveCommissions(ctx, l.records); err != nil {
			metrics.ObserveLedgerSaveError()
			l.logger.Warn().Err(err).Str("record", rec.ID).Msg("failed to persist commission records")
		}
	}

	amountF, _ := amount.Float64()
	metrics.ObserveCommission(rec.Provider, rec.Currency, amountF)
	l.logger.Info().
		Str("record", rec.ID).
		Str("provider", rec.Provider).
		Str("carrier", rec.CarrierName).
		Str("commission", amount.StringFixed(2)).
		Str("currency", rec.Currency).
		Msg("commission recorded")
	return rec, nil
}

// Reload merges the store's contents into the in-memory collection, picking
// up records written by other processes. Records the store does not know
// about, such as ones whose save failed, are kept after the loaded ones.
// On failure the current state is kept.
func (l *Ledger) Reload(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	loaded, err := l.store.LoadCommissions(ctx)
	if err != nil {
		return fmt.Errorf("reload commission records: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(loaded))
	merged := make([]storage.CommissionRecord, 0, len(loaded)+len(l.records))
	for _, rec := range loaded {
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}
	pending := 0
	for _, rec := range l.records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		merged = append(merged, rec)
		pending++
	}
	if pending > 0 {
		l.logger.Debug().Int("pending", pending).Msg("kept records missing from store")
	}
	l.records = merged
	return nil
}

// Records returns a copy of the collection in insertion order.
func (l *Ledger) Records() []storage.CommissionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]storage.CommissionRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) commissionFor(rate *rates.UnifiedRate) decimal.Decimal {
	if rate.Commission.Valid {
		return rate.Commission.Decimal
	}
	if l.calculator == nil {
		return decimal.Zero
	}
	return l.calculator.Apply(rate)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
