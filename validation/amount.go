package validation

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/shopspring/decimal"
)

// ParseAmount converts an ast.Amount to a decimal.Decimal.
func ParseAmount(amount *ast.Amount) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, fmt.Errorf("amount is nil")
	}
	d, err := decimal.NewFromString(amount.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount value %q: %w", amount.Value, err)
	}
	return d, nil
}

var (
	defaultTolerance  = decimal.New(5, -3)
	defaultMultiplier = decimal.New(5, -1)
)

// ToleranceConfig controls how much imprecision a balance check accepts.
type ToleranceConfig struct {
	// defaults maps currency to default tolerance; "*" is the wildcard.
	defaults   map[string]decimal.Decimal
	multiplier decimal.Decimal
	// inferFromCost includes cost and price amounts when inferring.
	inferFromCost bool
}

// NewToleranceConfig returns the default configuration: 0.005 for every
// currency and a 0.5 multiplier.
func NewToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		defaults:   map[string]decimal.Decimal{"*": defaultTolerance},
		multiplier: defaultMultiplier,
	}
}

// ParseToleranceConfig reads the tolerance options of a ledger:
//
//	option "inferred_tolerance_default" "*:0.005"
//	option "inferred_tolerance_default" "USD:0.003"
//	option "inferred_tolerance_multiplier" "0.6"
//	option "infer_tolerance_from_cost" "TRUE"
//
// "tolerance_multiplier" is accepted as an alias of
// "inferred_tolerance_multiplier".
func ParseToleranceConfig(opts *ast.Options) (*ToleranceConfig, error) {
	config := NewToleranceConfig()

	for _, name := range []string{"tolerance_multiplier", "inferred_tolerance_multiplier"} {
		if v, ok := opts.Get(name); ok {
			multiplier, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q", name, v)
			}
			config.multiplier = multiplier
		}
	}

	for _, v := range opts.All("inferred_tolerance_default") {
		currency, tol, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("invalid inferred_tolerance_default format %q, expected CURRENCY:TOLERANCE", v)
		}
		tolerance, err := decimal.NewFromString(strings.TrimSpace(tol))
		if err != nil {
			return nil, fmt.Errorf("invalid tolerance value in %q", v)
		}
		config.defaults[strings.TrimSpace(currency)] = tolerance
	}

	if v, ok := opts.Get("infer_tolerance_from_cost"); ok {
		switch strings.ToUpper(v) {
		case "TRUE":
			config.inferFromCost = true
		case "FALSE":
		default:
			return nil, fmt.Errorf("invalid infer_tolerance_from_cost %q, expected TRUE or FALSE", v)
		}
	}

	return config, nil
}

// toleranceConfig is ParseToleranceConfig falling back to the defaults on
// bad options. Bad options are reported by the options pass.
func toleranceConfig(opts *ast.Options) *ToleranceConfig {
	config, err := ParseToleranceConfig(opts)
	if err != nil {
		return NewToleranceConfig()
	}
	return config
}

// InferTolerance derives a tolerance from the precision of amounts: half a
// unit of the most precise non-zero amount. Integers or an empty list fall
// back to the default tolerance for currency.
func InferTolerance(amounts []decimal.Decimal, currency string, config *ToleranceConfig) decimal.Decimal {
	if config == nil {
		config = NewToleranceConfig()
	}

	minExp := int32(0)
	found := false
	for _, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		if exp := amount.Exponent(); !found || exp < minExp {
			minExp = exp
			found = true
		}
	}

	if !found || minExp >= 0 {
		return config.DefaultTolerance(currency)
	}
	return decimal.New(1, minExp).Mul(config.multiplier)
}

// DefaultTolerance returns the configured tolerance for currency, checking
// the currency first and then the wildcard.
func (c *ToleranceConfig) DefaultTolerance(currency string) decimal.Decimal {
	if c == nil {
		return defaultTolerance
	}
	if tolerance, ok := c.defaults[currency]; ok {
		return tolerance
	}
	if tolerance, ok := c.defaults["*"]; ok {
		return tolerance
	}
	return defaultTolerance
}

// AmountEqual checks if two amounts are equal within tolerance.
func AmountEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
