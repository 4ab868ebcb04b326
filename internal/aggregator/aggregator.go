package aggregator

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"freight-rate-hub/internal/commission"
	"freight-rate-hub/internal/metrics"
	"freight-rate-hub/internal/provider"
	"freight-rate-hub/internal/rates"
)

// speedWeight is the price-equivalent of one transit day in the recommended score.
var speedWeight = decimal.NewFromInt(10)

// Result is the ranked, labelled outcome of one quote run.
//
// Cheapest, Fastest and Recommended point into AllRates; a nil pointer means
// no rate survived.
type Result struct {
	Cheapest        *rates.UnifiedRate   `json:"cheapest"`
	Fastest         *rates.UnifiedRate   `json:"fastest"`
	Recommended     *rates.UnifiedRate   `json:"recommended"`
	AllRates        []*rates.UnifiedRate `json:"allRates"`
	Savings         decimal.Decimal      `json:"savings"`
	TotalCommission decimal.Decimal      `json:"totalCommission"`
}

// Empty reports whether no quote was found.
func (r Result) Empty() bool {
	return len(r.AllRates) == 0
}

// Find returns the rate with the given id.
func (r Result) Find(id string) (*rates.UnifiedRate, bool) {
	for _, rate := range r.AllRates {
		if rate.ID == id {
			return rate, true
		}
	}
	return nil, false
}

// Options tune the aggregator.
type Options struct {
	ProviderTimeout time.Duration
	Now             func() time.Time
}

// Aggregator fans a request out to every provider and ranks the union.
type Aggregator struct {
	providers  []provider.RateProvider
	calculator *commission.Calculator
	opts       Options
	logger     zerolog.Logger
}

// New constructs an aggregator. Providers are merged in the order given.
func New(providers []provider.RateProvider, calculator *commission.Calculator, opts Options, logger zerolog.Logger) *Aggregator {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 20 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{
		providers:  providers,
		calculator: calculator,
		opts:       opts,
		logger:     logger.With().Str("component", "aggregator").Logger(),
	}
}

// GetBestRates queries every provider concurrently and returns the ranked result.
// Provider failures only shrink the result; they never fail the call.
func (a *Aggregator) GetBestRates(ctx context.Context, req rates.ShipmentRequest) Result {
	collected := a.collect(ctx, req)
	result := a.rank(collected)

	metrics.ObserveQuote(result.Empty())
	event := a.logger.Info().Int("providers", len(a.providers)).Int("rates", len(result.AllRates))
	if result.Cheapest != nil {
		event = event.Str("cheapest", result.Cheapest.ID).Str("savings", result.Savings.StringFixed(2))
	}
	event.Msg("quote aggregated")
	return result
}

// collect runs every provider and concatenates results in provider order.
func (a *Aggregator) collect(ctx context.Context, req rates.ShipmentRequest) []*rates.UnifiedRate {
	slots := make([][]rates.UnifiedRate, len(a.providers))

	var g errgroup.Group
	for i, p := range a.providers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, a.opts.ProviderTimeout)
			defer cancel()
			slots[i] = p.GetRates(callCtx, req)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*rates.UnifiedRate, 0)
	for _, slot := range slots {
		for j := range slot {
			out = append(out, &slot[j])
		}
	}
	return out
}

// rank filters, normalises, labels and sorts the collected rates.
func (a *Aggregator) rank(collected []*rates.UnifiedRate) Result {
	result := Result{
		AllRates:        make([]*rates.UnifiedRate, 0, len(collected)),
		Savings:         decimal.Zero,
		TotalCommission: decimal.Zero,
	}

	now := a.opts.Now()
	for _, r := range collected {
		if r == nil || !r.Price.IsPositive() {
			continue
		}
		if r.EstimatedDays <= 0 {
			r.EstimatedDays = rates.EstimateDays(r.EstimatedDeliveryDate, now)
		}
		r.IsCheapest, r.IsFastest, r.IsRecommended = false, false, false
		if a.calculator != nil {
			result.TotalCommission = result.TotalCommission.Add(a.calculator.Apply(r))
		} else if r.Commission.Valid {
			result.TotalCommission = result.TotalCommission.Add(r.Commission.Decimal)
		}
		result.AllRates = append(result.AllRates, r)
	}

	if len(result.AllRates) == 0 {
		return result
	}

	cheapest, fastest, recommended := result.AllRates[0], result.AllRates[0], result.AllRates[0]
	mostExpensive := result.AllRates[0]
	for _, r := range result.AllRates[1:] {
		if r.Price.LessThan(cheapest.Price) {
			cheapest = r
		}
		if r.EstimatedDays < fastest.EstimatedDays {
			fastest = r
		}
		if score(r).LessThan(score(recommended)) {
			recommended = r
		}
		if r.Price.GreaterThan(mostExpensive.Price) {
			mostExpensive = r
		}
	}

	cheapest.IsCheapest = true
	fastest.IsFastest = true
	recommended.IsRecommended = true

	result.Cheapest = cheapest
	result.Fastest = fastest
	result.Recommended = recommended
	result.Savings = mostExpensive.Price.Sub(cheapest.Price)

	sort.SliceStable(result.AllRates, func(i, j int) bool {
		return result.AllRates[i].Price.LessThan(result.AllRates[j].Price)
	})
	return result
}

// score is price plus a weighted transit time; lower is better.
func score(r *rates.UnifiedRate) decimal.Decimal {
	return r.Price.Add(speedWeight.Mul(decimal.NewFromInt(int64(r.EstimatedDays))))
}
