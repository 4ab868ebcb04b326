package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"freight-rate-hub/internal/aggregator"
	"freight-rate-hub/internal/alerting"
	"freight-rate-hub/internal/config"
	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/provider"
	"freight-rate-hub/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
	Now    func() time.Time
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Out:    os.Stdout,
		Now:    time.Now,
	}
}

// newProviders builds the enabled adapters in a fixed order, which is also
// the merge order of the aggregator.
func (a *App) newProviders(forceSandbox bool) []provider.RateProvider {
	pc := a.Config.Providers
	providers := make([]provider.RateProvider, 0, 3)

	if pc.Shippo.Enabled {
		providers = append(providers, provider.NewShippo(provider.ShippoOptions{
			BaseURL:           pc.Shippo.BaseURL,
			APIKey:            pc.Shippo.APIKey,
			Timeout:           pc.Shippo.RequestTimeout,
			RequestsPerSecond: pc.Shippo.RequestsPerSecond,
			UserAgent:         pc.Shippo.UserAgent,
			DefaultCountry:    pc.DefaultCountry,
		}, a.Logger))
	}
	if pc.SeaRates.Enabled {
		providers = append(providers, provider.NewSeaRates(provider.SeaRatesOptions{
			BaseURL:           pc.SeaRates.BaseURL,
			APIKey:            pc.SeaRates.APIKey,
			Mode:              pc.SeaRates.Mode,
			Timeout:           pc.SeaRates.RequestTimeout,
			RequestsPerSecond: pc.SeaRates.RequestsPerSecond,
			UserAgent:         pc.SeaRates.UserAgent,
			DefaultCountry:    pc.DefaultCountry,
		}, a.Logger))
	}
	if pc.Sandbox.Enabled || forceSandbox {
		providers = append(providers, provider.NewSandbox(pc.DefaultCountry, a.Logger))
	}
	return providers
}

func (a *App) newAggregator(forceSandbox bool) *aggregator.Aggregator {
	return aggregator.New(a.newProviders(forceSandbox), a.Config.CommissionCalculator(), aggregator.Options{
		ProviderTimeout: a.Config.Aggregator.ProviderTimeout,
		Now:             a.Now,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (storage.CommissionStore, func(), error) {
	return a.openBackend(ctx, a.Config.Ledger.Backend, a.Config.Ledger.Path)
}

func (a *App) openBackend(ctx context.Context, backend, path string) (storage.CommissionStore, func(), error) {
	switch backend {
	case "postgres":
		pool, err := storage.NewPool(ctx, a.Config.Database)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case "redis":
		store, err := storage.NewRedisStore(ctx, a.Config.Ledger.Redis)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "memory":
		a.Logger.Warn().Msg("ledger.backend is memory; commissions are lost on exit")
		return storage.NewMemoryStore(), func() {}, nil
	case "file", "":
		return storage.NewFileStore(path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("ledger backend %q is not supported", backend)
	}
}

func (a *App) openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	l := ledger.New(ctx, store, a.Config.CommissionCalculator(), ledger.Options{Now: a.Now}, a.Logger)
	return l, closeStore, nil
}

// QuoteOptions configure the quote command.
type QuoteOptions struct {
	RequestPath string
	Sandbox     bool
	JSON        bool
	BookRateID  string
	ShipmentID  string
	Email       string
}

// SummaryOptions configure the summary command.
type SummaryOptions struct {
	From     *time.Time
	To       *time.Time
	Provider string
	JSON     bool
}

// TopOptions configure the top command.
type TopOptions struct {
	Limit int
	JSON  bool
}

// ExportOptions hold parameters for exporting the ledger.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	CSVPath   string
	PNGPath   string
	XLSXPath  string
	PDFPath   string
	MaxPoints int
}

// MigrateOptions configure copying records between ledger backends.
type MigrateOptions struct {
	SourceBackend string
	SourcePath    string
	DryRun        bool
}

// HSCodeOptions configure the hscode command.
type HSCodeOptions struct {
	Description string
	Limit       int
	JSON        bool
}
