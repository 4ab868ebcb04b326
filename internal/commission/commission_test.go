package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"freight-rate-hub/internal/rates"
)

func testCalculator() *Calculator {
	return NewCalculator(
		Rule{Percentage: decimal.NewFromInt(10), FixedFee: decimal.Zero},
		map[string]Rule{
			"Shippo":   {Percentage: decimal.NewFromInt(15), FixedFee: decimal.RequireFromString("2.50")},
			"searates": {Percentage: decimal.NewFromInt(5), FixedFee: decimal.NewFromInt(20)},
		},
	)
}

func TestCalculateUsesProviderRule(t *testing.T) {
	c := testCalculator()

	got := c.Calculate("shippo", decimal.NewFromInt(100))
	assert.True(t, got.Equal(decimal.RequireFromString("17.5")), got.String())

	got = c.Calculate("SeaRates", decimal.NewFromInt(1000))
	assert.True(t, got.Equal(decimal.NewFromInt(70)), got.String())
}

func TestCalculateFallsBackToDefault(t *testing.T) {
	c := testCalculator()

	got := c.Calculate("unknown", decimal.RequireFromString("80"))
	assert.True(t, got.Equal(decimal.NewFromInt(8)), got.String())
}

func TestApplyDoesNotDoubleApply(t *testing.T) {
	c := testCalculator()
	rate := &rates.UnifiedRate{Provider: "shippo", Price: decimal.NewFromInt(100)}

	first := c.Apply(rate)
	second := c.Apply(rate)

	assert.True(t, first.Equal(second))
	assert.True(t, rate.Commission.Valid)
	assert.True(t, rate.Commission.Decimal.Equal(decimal.RequireFromString("17.5")))

	preset := &rates.UnifiedRate{Provider: "shippo", Price: decimal.NewFromInt(100), Commission: decimal.NewNullDecimal(decimal.NewFromInt(1))}
	assert.True(t, c.Apply(preset).Equal(decimal.NewFromInt(1)))
}
