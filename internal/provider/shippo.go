package provider

import (
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
	shippoName          = "shippo"
	shippoShipmentsPath = "/shipments/"
)

// Shippo needs dimensions on every parcel; this cube is sent when none are given.
var shippoFallbackInches = decimal.NewFromInt(1)

// ShippoOptions parameterise the Shippo adapter.
type ShippoOptions struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
	DefaultCountry    string
}

// Shippo quotes parcel rates from the Shippo shipments API.
type Shippo struct {
	base
	opts    ShippoOptions
	baseURL string
}

// NewShippo constructs a Shippo adapter.
func NewShippo(opts ShippoOptions, logger zerolog.Logger) *Shippo {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.goshippo.com"
	}

	return &Shippo{
		base:    newBase(shippoName, opts.DefaultCountry, opts.Timeout, opts.RequestsPerSecond, logger),
		opts:    opts,
		baseURL: baseURL,
	}
}

// GetRates returns Shippo rates for the request, or nothing on failure.
func (s *Shippo) GetRates(ctx context.Context, req rates.ShipmentRequest) []rates.UnifiedRate {
	return s.run(ctx, req, s.fetch)
}

func (s *Shippo) fetch(ctx context.Context, req rates.ShipmentRequest) ([]rates.UnifiedRate, error) {
	if s.opts.APIKey == "" {
		return nil, errors.New("shippo api key not configured")
	}

	payload := shipmentRequest{
		AddressFrom: toShippoAddress(req.From),
		AddressTo:   toShippoAddress(req.To),
		Parcels:     []shippoParcel{toShippoParcel(req.Parcel)},
		Async:       false,
	}

	headers := map[string]string{
		"Authorization": "ShippoToken " + s.opts.APIKey,
		"User-Agent":    s.opts.UserAgent,
	}

	body, err := postJSON(ctx, s.client, shippoName, s.baseURL+shippoShipmentsPath, payload, headers)
	if err != nil {
		return nil, err
	}

	var res shipmentResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode shippo response: %w", err)
	}

	out := make([]rates.UnifiedRate, 0, len(res.Rates))
	for _, raw := range res.Rates {
		rate, ok := s.parseRate(raw)
		if !ok {
			continue
		}
		out = append(out, rate)
	}

	if len(out) == 0 && len(res.Messages) > 0 {
		s.logger.Info().Str("shipment", res.ObjectID).Str("message", res.Messages[0].Text).Msg("shippo returned no rates")
	}
	return out, nil
}

func (s *Shippo) parseRate(raw json.RawMessage) (rates.UnifiedRate, bool) {
	var r shippoRate
	if err := json.Unmarshal(raw, &r); err != nil {
		s.logger.Debug().Err(err).Msg("skip malformed shippo rate")
		return rates.UnifiedRate{}, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		s.logger.Debug().Str("rate", r.ObjectID).Str("amount", r.Amount).Msg("skip shippo rate without numeric amount")
		return rates.UnifiedRate{}, false
	}

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	days := 0
	if r.EstimatedDays != nil {
		days = *r.EstimatedDays
	}

	return rates.UnifiedRate{
		ID:            shippoName + "_" + r.ObjectID,
		Provider:      shippoName,
		CarrierName:   r.Provider,
		ServiceName:   r.ServiceLevel.Name,
		Price:         price,
		Currency:      strings.ToUpper(currency),
		EstimatedDays: days,
		OriginalData:  raw,
	}, true
}

func toShippoAddress(a rates.Address) shippoAddress {
	return shippoAddress{
		Name:    a.Name,
		Company: a.Company,
		Street1: a.Street1,
		Street2: a.Street2,
		City:    a.City,
		State:   a.State,
		Zip:     a.PostalCode,
		Country: a.Country,
		Phone:   a.Phone,
		Email:   a.Email,
	}
}

func toShippoParcel(p rates.Parcel) shippoParcel {
	length, width, height := shippoFallbackInches, shippoFallbackInches, shippoFallbackInches
	if p.HasDimensions() {
		length = rates.CmToIn(p.LengthCm)
		width = rates.CmToIn(p.WidthCm)
		height = rates.CmToIn(p.HeightCm)
	}
	return shippoParcel{
		Length:       length.StringFixed(2),
		Width:        width.StringFixed(2),
		Height:       height.StringFixed(2),
		DistanceUnit: "in",
		Weight:       rates.KgToLb(p.WeightKg).StringFixed(2),
		MassUnit:     "lb",
	}
}

type shipmentRequest struct {
	AddressFrom shippoAddress  `json:"address_from"`
	AddressTo   shippoAddress  `json:"address_to"`
	Parcels     []shippoParcel `json:"parcels"`
	Async       bool           `json:"async"`
}

type shippoAddress struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type shippoParcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type shipmentResponse struct {
	ObjectID string            `json:"object_id"`
	Status   string            `json:"status"`
	Rates    []json.RawMessage `json:"rates"`
	Messages []struct {
		Source string `json:"source"`
		Text   string `json:"text"`
	} `json:"messages"`
}

type shippoRate struct {
	ObjectID     string `json:"object_id"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Provider     string `json:"provider"`
	ServiceLevel struct {
		Name  string `json:"name"`
		Token string `json:"token"`
	} `json:"servicelevel"`
	EstimatedDays *int   `json:"estimated_days"`
	DurationTerms string `json:"duration_terms"`
}

var _ RateProvider = (*Shippo)(nil)
