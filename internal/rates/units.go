package rates

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultEstimatedDays is used when a provider gives neither days nor a date.
const DefaultEstimatedDays = 3

// volumetricDivisor is the cm³ per kg factor used by most freight carriers.
const volumetricDivisor = 5000

var (
	lbPerKg   = decimal.RequireFromString("2.20462")
	cmPerInch = decimal.RequireFromString("2.54")
)

// KgToLb converts kilograms to pounds rounded to 2 decimals.
func KgToLb(kg float64) decimal.Decimal {
	return decimal.NewFromFloat(kg).Mul(lbPerKg).Round(2)
}

// CmToIn converts centimetres to inches rounded to 2 decimals.
func CmToIn(cm float64) decimal.Decimal {
	return decimal.NewFromFloat(cm).Div(cmPerInch).Round(2)
}

// VolumeM3 is L×W×H in cubic metres, rounded to 3 decimals. Zero without dimensions.
func (p Parcel) VolumeM3() decimal.Decimal {
	if !p.HasDimensions() {
		return decimal.Zero
	}
	cm3 := decimal.NewFromFloat(p.LengthCm).
		Mul(decimal.NewFromFloat(p.WidthCm)).
		Mul(decimal.NewFromFloat(p.HeightCm))
	return cm3.Div(decimal.NewFromInt(1_000_000)).Round(3)
}

// ChargeableWeightKg is the greater of actual weight and volumetric weight.
func (p Parcel) ChargeableWeightKg() decimal.Decimal {
	actual := decimal.NewFromFloat(p.WeightKg)
	if !p.HasDimensions() {
		return actual.Round(2)
	}
	volumetric := decimal.NewFromFloat(p.LengthCm * p.WidthCm * p.HeightCm / volumetricDivisor)
	return decimal.Max(actual, volumetric).Round(2)
}

// EstimateDays turns an optional delivery date into whole transit days.
// The result is never below 1; without a date it is DefaultEstimatedDays.
func EstimateDays(delivery *time.Time, now time.Time) int {
	if delivery == nil || delivery.IsZero() {
		return DefaultEstimatedDays
	}
	days := int(math.Ceil(delivery.Sub(now).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
