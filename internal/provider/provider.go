package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"freight-rate-hub/internal/metrics"
	"freight-rate-hub/internal/rates"
)

// RateProvider turns a shipment request into unified rates from one source.
//
// GetRates never fails: timeouts, bad responses and invalid requests are
// logged and produce an empty slice, so callers can always merge partial
// results.
type RateProvider interface {
	Name() string
	GetRates(ctx context.Context, req rates.ShipmentRequest) []rates.UnifiedRate
}

type fetchFunc func(ctx context.Context, req rates.ShipmentRequest) ([]rates.UnifiedRate, error)

// base carries what every adapter shares: validation, throttling and the
// empty-on-failure policy.
type base struct {
	name           string
	defaultCountry string
	client         *http.Client
	limiter        *rate.Limiter
	logger         zerolog.Logger
}

func newBase(name, defaultCountry string, timeout time.Duration, rps float64, logger zerolog.Logger) base {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if defaultCountry == "" {
		defaultCountry = "US"
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return base{
		name:           name,
		defaultCountry: defaultCountry,
		client:         &http.Client{Timeout: timeout},
		limiter:        limiter,
		logger:         logger.With().Str("component", "provider").Str("provider", name).Logger(),
	}
}

// Name returns the provider tag placed on every rate.
func (b *base) Name() string {
	return b.name
}

func (b *base) run(ctx context.Context, req rates.ShipmentRequest, fetch fetchFunc) []rates.UnifiedRate {
	start := time.Now()

	normalized := req.Normalize(b.defaultCountry)
	if err := normalized.Validate(); err != nil {
		b.logger.Warn().Err(err).Msg("shipment request rejected")
		metrics.ObserveProviderCall(b.name, metrics.OutcomeRejected, 0, time.Since(start))
		return nil
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			b.logger.Warn().Err(err).Msg("rate limiter wait aborted")
			metrics.ObserveProviderCall(b.name, metrics.OutcomeError, 0, time.Since(start))
			return nil
		}
	}

	out, err := fetch(ctx, normalized)
	if err != nil {
		event := b.logger.Warn().Err(err).Dur("elapsed", time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) {
			event = event.Bool("timeout", true)
		}
		event.Msg("provider request failed")
		metrics.ObserveProviderCall(b.name, metrics.OutcomeError, 0, time.Since(start))
		return nil
	}

	priced := filterPriced(out)
	if dropped := len(out) - len(priced); dropped > 0 {
		b.logger.Debug().Int("dropped", dropped).Msg("dropped rates without a positive price")
	}

	outcome := metrics.OutcomeSuccess
	if len(priced) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ObserveProviderCall(b.name, outcome, len(priced), time.Since(start))
	b.logger.Debug().Int("rates", len(priced)).Dur("elapsed", time.Since(start)).Msg("provider rates fetched")
	return priced
}

func filterPriced(in []rates.UnifiedRate) []rates.UnifiedRate {
	out := make([]rates.UnifiedRate, 0, len(in))
	for _, r := range in {
		if r.Price.IsPositive() {
			out = append(out, r)
		}
	}
	return out
}
