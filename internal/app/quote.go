package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"freight-rate-hub/internal/aggregator"
	"freight-rate-hub/internal/ledger"
	"freight-rate-hub/internal/rates"
)

// requestFile is the on-disk shape of a quote request.
type requestFile struct {
	From   rates.Address `yaml:"from"`
	To     rates.Address `yaml:"to"`
	Parcel struct {
		rates.Parcel  `yaml:",inline"`
		DeclaredValue string `yaml:"declared_value"`
	} `yaml:"parcel"`
}

// LoadRequest reads a YAML shipment request.
func LoadRequest(r io.Reader) (rates.ShipmentRequest, error) {
	var file requestFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return rates.ShipmentRequest{}, fmt.Errorf("decode request: %w", err)
	}

	req := rates.ShipmentRequest{From: file.From, To: file.To, Parcel: file.Parcel.Parcel}
	if v := strings.TrimSpace(file.Parcel.DeclaredValue); v != "" {
		value, err := decimal.NewFromString(v)
		if err != nil {
			return rates.ShipmentRequest{}, fmt.Errorf("parcel.declared_value: %w", err)
		}
		req.Parcel.DeclaredValue = value
	}
	return req, nil
}

func loadRequestFile(path string) (rates.ShipmentRequest, error) {
	if path == "" {
		return rates.ShipmentRequest{}, errors.New("--request is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return rates.ShipmentRequest{}, err
	}
	defer f.Close()
	return LoadRequest(f)
}

// Quote aggregates rates for a request file and optionally books one.
func (a *App) Quote(ctx context.Context, opts QuoteOptions) error {
	req, err := loadRequestFile(opts.RequestPath)
	if err != nil {
		return err
	}
	req = req.Normalize(a.Config.Providers.DefaultCountry)
	if err := req.Validate(); err != nil {
		// Each adapter rejects it on its own; the quote then comes back empty.
		a.Logger.Warn().Err(err).Msg("shipment request is incomplete")
	}

	result := a.newAggregator(opts.Sandbox).GetBestRates(ctx, req)

	if opts.JSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		writeQuoteTable(a.Out, req, result)
	}

	if opts.BookRateID == "" {
		return nil
	}
	chosen, ok := result.Find(opts.BookRateID)
	if !ok {
		return fmt.Errorf("rate %q not found in this quote", opts.BookRateID)
	}

	l, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	rec, err := l.Record(ctx, *chosen, ledger.CustomerContext{
		ShipmentID:    opts.ShipmentID,
		CustomerEmail: opts.Email,
		Route:         req.Route(),
	})
	if err != nil {
		return err
	}
	if !opts.JSON {
		fmt.Fprintf(a.Out, "\nbooked %s: commission %s %s (record %s)\n",
			chosen.ID, rec.Commission.StringFixed(2), rec.Currency, rec.ID)
	}
	return nil
}

func writeQuoteTable(out io.Writer, req rates.ShipmentRequest, result aggregator.Result) {
	fmt.Fprintf(out, "Route: %s  chargeable weight: %s kg\n\n",
		req.Route(), req.Parcel.ChargeableWeightKg().StringFixed(2))

	if result.Empty() {
		fmt.Fprintln(out, "no quotes available")
		return
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tProvider\tCarrier\tService\tPrice\tDays\tCommission\tLabels")
	for _, r := range result.AllRates {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s %s\t%d\t%s\t%s\n",
			r.ID,
			r.Provider,
			r.CarrierName,
			r.ServiceName,
			r.Price.StringFixed(2),
			r.Currency,
			r.EstimatedDays,
			r.Commission.Decimal.StringFixed(2),
			labels(r),
		)
	}
	writer.Flush()

	fmt.Fprintf(out, "\nsavings vs most expensive: %s\n", result.Savings.StringFixed(2))
	fmt.Fprintf(out, "total commission across quotes: %s\n", result.TotalCommission.StringFixed(2))
}

func labels(r *rates.UnifiedRate) string {
	parts := make([]string, 0, 3)
	if r.IsCheapest {
		parts = append(parts, "cheapest")
	}
	if r.IsFastest {
		parts = append(parts, "fastest")
	}
	if r.IsRecommended {
		parts = append(parts, "recommended")
	}
	return strings.Join(parts, ",")
}
