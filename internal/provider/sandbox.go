package provider

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freight-rate-hub/internal/rates"
)

const sandboxName = "sandbox"

type sandboxService struct {
	key     string
	name    string
	days    int
	base    decimal.Decimal
	perKg   decimal.Decimal
	carrier string
}

var sandboxServices = []sandboxService{
	{key: "economy", name: "Sandbox Economy", days: 7, base: decimal.NewFromInt(6), perKg: decimal.RequireFromString("1.20"), carrier: "Sandbox Post"},
	{key: "standard", name: "Sandbox Standard", days: 4, base: decimal.NewFromInt(9), perKg: decimal.RequireFromString("1.80"), carrier: "Sandbox Post"},
	{key: "express", name: "Sandbox Express", days: 1, base: decimal.NewFromInt(18), perKg: decimal.RequireFromString("3.10"), carrier: "Sandbox Air"},
}

// Sandbox produces deterministic synthetic rates for demos and tests. Its
// rates are tagged with provider "sandbox" and it only runs when explicitly
// enabled; it is never a fallback for a failing live provider.
type Sandbox struct {
	base
}

// NewSandbox constructs the synthetic provider.
func NewSandbox(defaultCountry string, logger zerolog.Logger) *Sandbox {
	return &Sandbox{base: newBase(sandboxName, defaultCountry, 0, 0, logger)}
}

// GetRates prices every sandbox service from the chargeable weight.
func (s *Sandbox) GetRates(ctx context.Context, req rates.ShipmentRequest) []rates.UnifiedRate {
	return s.run(ctx, req, s.quote)
}

func (s *Sandbox) quote(_ context.Context, req rates.ShipmentRequest) ([]rates.UnifiedRate, error) {
	weight := req.Parcel.ChargeableWeightKg()
	out := make([]rates.UnifiedRate, 0, len(sandboxServices))
	for _, svc := range sandboxServices {
		price := svc.base.Add(svc.perKg.Mul(weight)).Round(2)
		raw, _ := json.Marshal(map[string]any{"sandbox": true, "service": svc.key, "weight_kg": weight})
		out = append(out, rates.UnifiedRate{
			ID:            sandboxName + "_" + svc.key,
			Provider:      sandboxName,
			CarrierName:   svc.carrier,
			ServiceName:   svc.name,
			Price:         price,
			Currency:      "USD",
			EstimatedDays: svc.days,
			OriginalData:  raw,
		})
	}
	return out, nil
}

var _ RateProvider = (*Sandbox)(nil)
