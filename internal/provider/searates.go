package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freight-rate-hub/internal/rates"
)

const (
	seaRatesName      = "searates"
	seaRatesRatesPath = "/rates"
)

// Shipping modes understood by SeaRates.
const (
	ModeFCL = "fcl"
	ModeLCL = "lcl"
	ModeAir = "air"
)

// SeaRatesOptions parameterise the SeaRates adapter.
type SeaRatesOptions struct {
	BaseURL           string
	APIKey            string
	Mode              string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
	DefaultCountry    string
}

// SeaRates quotes container and air freight rates. It works in metric units.
type SeaRates struct {
	base
	opts    SeaRatesOptions
	baseURL string
}

// NewSeaRates constructs a SeaRates adapter.
func NewSeaRates(opts SeaRatesOptions, logger zerolog.Logger) *SeaRates {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.searates.com/api/v1"
	}
	if opts.Mode == "" {
		opts.Mode = ModeLCL
	}

	return &SeaRates{
		base:    newBase(seaRatesName, opts.DefaultCountry, opts.Timeout, opts.RequestsPerSecond, logger),
		opts:    opts,
		baseURL: baseURL,
	}
}

// GetRates returns SeaRates quotes for the request, or nothing on failure.
func (s *SeaRates) GetRates(ctx context.Context, req rates.ShipmentRequest) []rates.UnifiedRate {
	return s.run(ctx, req, s.fetch)
}

func (s *SeaRates) fetch(ctx context.Context, req rates.ShipmentRequest) ([]rates.UnifiedRate, error) {
	if s.opts.APIKey == "" {
		return nil, errors.New("searates api key not configured")
	}

	payload := seaRatesRequest{
		Mode:        s.opts.Mode,
		Origin:      toSeaRatesPlace(req.From),
		Destination: toSeaRatesPlace(req.To),
		Cargo: seaRatesCargo{
			WeightKg:           decimal.NewFromFloat(req.Parcel.WeightKg).Round(2),
			VolumeM3:           req.Parcel.VolumeM3(),
			ChargeableWeightKg: req.Parcel.ChargeableWeightKg(),
			Description:        req.Parcel.Description,
			Value:              req.Parcel.DeclaredValue,
			Currency:           req.Parcel.Currency,
		},
	}

	headers := map[string]string{
		"X-API-KEY":  s.opts.APIKey,
		"User-Agent": s.opts.UserAgent,
	}

	body, err := postJSON(ctx, s.client, seaRatesName, s.baseURL+seaRatesRatesPath, payload, headers)
	if err != nil {
		return nil, err
	}

	var res seaRatesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode searates response: %w", err)
	}

	raws := res.Rates
	if len(raws) == 0 && res.Data != nil {
		raws = res.Data.Rates
	}

	out := make([]rates.UnifiedRate, 0, len(raws))
	for i, raw := range raws {
		rate, ok := s.parseRate(i, raw)
		if !ok {
			continue
		}
		out = append(out, rate)
	}
	return out, nil
}

func (s *SeaRates) parseRate(idx int, raw json.RawMessage) (rates.UnifiedRate, bool) {
	var r seaRatesRate
	if err := json.Unmarshal(raw, &r); err != nil {
		s.logger.Debug().Err(err).Int("index", idx).Msg("skip malformed searates rate")
		return rates.UnifiedRate{}, false
	}
	if !r.Price.valid {
		s.logger.Debug().Int("index", idx).Msg("skip searates rate without numeric price")
		return rates.UnifiedRate{}, false
	}

	id := r.ID
	if id == "" {
		id = fmt.Sprintf("%d", idx)
	}
	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}
	service := r.Service
	if service == "" {
		service = strings.ToUpper(s.opts.Mode)
	}

	rate := rates.UnifiedRate{
		ID:           seaRatesName + "_" + id,
		Provider:     seaRatesName,
		CarrierName:  r.Carrier,
		ServiceName:  service,
		Price:        r.Price.value,
		Currency:     strings.ToUpper(currency),
		OriginalData: raw,
	}
	if r.TransitDays.valid {
		rate.EstimatedDays = int(r.TransitDays.value.Ceil().IntPart())
	}
	if delivery, ok := parseDeliveryDate(r.DeliveryDate); ok {
		rate.EstimatedDeliveryDate = &delivery
	}
	return rate, true
}

func parseDeliveryDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func toSeaRatesPlace(a rates.Address) seaRatesPlace {
	return seaRatesPlace{
		Country:    a.Country,
		City:       a.City,
		PostalCode: a.PostalCode,
		Address:    strings.TrimSpace(a.Street1 + " " + a.Street2),
	}
}

// flexDecimal accepts a JSON number or a numeric string.
type flexDecimal struct {
	value decimal.Decimal
	valid bool
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	text := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	f.value = d
	f.valid = true
	return nil
}

type seaRatesRequest struct {
	Mode        string        `json:"shipping_type"`
	Origin      seaRatesPlace `json:"origin"`
	Destination seaRatesPlace `json:"destination"`
	Cargo       seaRatesCargo `json:"cargo"`
}

type seaRatesPlace struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Address    string `json:"address,omitempty"`
}

type seaRatesCargo struct {
	WeightKg           decimal.Decimal `json:"weight_kg"`
	VolumeM3           decimal.Decimal `json:"volume_m3"`
	ChargeableWeightKg decimal.Decimal `json:"chargeable_weight_kg"`
	Description        string          `json:"description,omitempty"`
	Value              decimal.Decimal `json:"value"`
	Currency           string          `json:"currency,omitempty"`
}

type seaRatesResponse struct {
	Rates []json.RawMessage `json:"rates"`
	Data  *struct {
		Rates []json.RawMessage `json:"rates"`
	} `json:"data"`
}

type seaRatesRate struct {
	ID           string      `json:"id"`
	Carrier      string      `json:"carrier"`
	Service      string      `json:"service"`
	Price        flexDecimal `json:"price"`
	Currency     string      `json:"currency"`
	TransitDays  flexDecimal `json:"transit_days"`
	DeliveryDate string      `json:"delivery_date"`
}

var _ RateProvider = (*SeaRates)(nil)
