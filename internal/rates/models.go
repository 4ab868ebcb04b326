package rates

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Address is one end of a shipment.
type Address struct {
	Name       string `json:"name" yaml:"name"`
	Company    string `json:"company,omitempty" yaml:"company"`
	Street1    string `json:"street1" yaml:"street1"`
	Street2    string `json:"street2,omitempty" yaml:"street2"`
	City       string `json:"city" yaml:"city"`
	State      string `json:"state,omitempty" yaml:"state"`
	PostalCode string `json:"postalCode" yaml:"postal_code"`
	Country    string `json:"country,omitempty" yaml:"country"`
	Phone      string `json:"phone,omitempty" yaml:"phone"`
	Email      string `json:"email,omitempty" yaml:"email"`
}

// Parcel describes the goods. Dimensions are optional and metric.
type Parcel struct {
	WeightKg      float64         `json:"weightKg" yaml:"weight_kg"`
	LengthCm      float64         `json:"lengthCm,omitempty" yaml:"length_cm"`
	WidthCm       float64         `json:"widthCm,omitempty" yaml:"width_cm"`
	HeightCm      float64         `json:"heightCm,omitempty" yaml:"height_cm"`
	DeclaredValue decimal.Decimal `json:"declaredValue" yaml:"-"`
	Currency      string          `json:"currency,omitempty" yaml:"currency"`
	Description   string          `json:"description,omitempty" yaml:"description"`
}

// HasDimensions reports whether all three dimensions were supplied.
func (p Parcel) HasDimensions() bool {
	return p.LengthCm > 0 && p.WidthCm > 0 && p.HeightCm > 0
}

// ShipmentRequest is the immutable input of a single quote run.
type ShipmentRequest struct {
	From   Address `json:"from" yaml:"from"`
	To     Address `json:"to" yaml:"to"`
	Parcel Parcel  `json:"parcel" yaml:"parcel"`
}

// UnifiedRate is the provider-agnostic quote shape.
//
// Commission and the Is* labels are owned by the aggregator; adapters leave
// them unset.
type UnifiedRate struct {
	ID                    string              `json:"id"`
	Provider              string              `json:"provider"`
	CarrierName           string              `json:"carrierName"`
	ServiceName           string              `json:"serviceName"`
	Price                 decimal.Decimal     `json:"price"`
	Currency              string              `json:"currency"`
	EstimatedDays         int                 `json:"estimatedDays"`
	EstimatedDeliveryDate *time.Time          `json:"estimatedDeliveryDate,omitempty"`
	IsCheapest            bool                `json:"isCheapest"`
	IsFastest             bool                `json:"isFastest"`
	IsRecommended         bool                `json:"isRecommended"`
	Commission            decimal.NullDecimal `json:"commission"`
	OriginalData          json.RawMessage     `json:"originalData,omitempty"`
}

// Route renders "FROM → TO" using the country codes of the request.
func (r ShipmentRequest) Route() string {
	return r.From.Country + " → " + r.To.Country
}
