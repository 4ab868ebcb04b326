package commission

import (
	"strings"

	"github.com/shopspring/decimal"

	"freight-rate-hub/internal/rates"
)

var hundred = decimal.NewFromInt(100)

// Rule is the platform margin for one provider.
type Rule struct {
	Percentage decimal.Decimal
	FixedFee   decimal.Decimal
}

// Calculator resolves a provider's rule and prices the commission.
type Calculator struct {
	def   Rule
	rules map[string]Rule
}

// NewCalculator builds a calculator. Provider keys are matched case-insensitively.
func NewCalculator(def Rule, rules map[string]Rule) *Calculator {
	normalized := make(map[string]Rule, len(rules))
	for name, rule := range rules {
		normalized[strings.ToLower(name)] = rule
	}
	return &Calculator{def: def, rules: normalized}
}

// RuleFor returns the provider's rule or the default one.
func (c *Calculator) RuleFor(provider string) Rule {
	if rule, ok := c.rules[strings.ToLower(provider)]; ok {
		return rule
	}
	return c.def
}

// Calculate returns price*percentage/100 + fixedFee for the provider.
func (c *Calculator) Calculate(provider string, price decimal.Decimal) decimal.Decimal {
	rule := c.RuleFor(provider)
	return price.Mul(rule.Percentage).Div(hundred).Add(rule.FixedFee)
}

// Apply sets the rate's commission unless it already carries one.
func (c *Calculator) Apply(rate *rates.UnifiedRate) decimal.Decimal {
	if rate.Commission.Valid {
		return rate.Commission.Decimal
	}
	value := c.Calculate(rate.Provider, rate.Price)
	rate.Commission = decimal.NewNullDecimal(value)
	return value
}
