package validation

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/shopspring/decimal"
)

func TestInferTolerance(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []string
		currency string
		config   *ToleranceConfig
		want     string
	}{
		{name: "standard 2 decimals", amounts: []string{"24.45", "100.00"}, currency: "USD", config: NewToleranceConfig(), want: "0.005"},
		{name: "high precision 5 decimals", amounts: []string{"10.22626", "5.12345"}, currency: "RGAGX", config: NewToleranceConfig(), want: "0.000005"},
		{name: "single decimal", amounts: []string{"384.6"}, currency: "USD", config: NewToleranceConfig(), want: "0.05"},
		{name: "mixed precision uses smallest", amounts: []string{"100.00", "50.123"}, currency: "USD", config: NewToleranceConfig(), want: "0.0005"},
		{
			name:     "custom multiplier",
			amounts:  []string{"100.00"},
			currency: "USD",
			config: &ToleranceConfig{
				defaults:   map[string]decimal.Decimal{"*": decimal.RequireFromString("0.005")},
				multiplier: decimal.RequireFromString("0.6"),
			},
			want: "0.006",
		},
		{name: "no amounts", amounts: nil, currency: "USD", config: NewToleranceConfig(), want: "0.005"},
		{name: "all zero amounts", amounts: []string{"0.00", "0.000"}, currency: "USD", config: NewToleranceConfig(), want: "0.005"},
		{name: "integer amounts use the default", amounts: []string{"100", "200"}, currency: "USD", config: NewToleranceConfig(), want: "0.005"},
		{name: "nil config", amounts: []string{"1.5"}, currency: "USD", config: nil, want: "0.05"},
		{
			name:     "currency-specific default",
			currency: "USD",
			config: &ToleranceConfig{
				defaults: map[string]decimal.Decimal{
					"USD": decimal.RequireFromString("0.003"),
					"*":   decimal.RequireFromString("0.005"),
				},
				multiplier: decimal.RequireFromString("0.5"),
			},
			want: "0.003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := make([]decimal.Decimal, 0, len(tt.amounts))
			for _, s := range tt.amounts {
				amounts = append(amounts, decimal.RequireFromString(s))
			}
			assert.Equal(t, tt.want, InferTolerance(amounts, tt.currency, tt.config).String())
		})
	}
}

func TestParseToleranceConfig(t *testing.T) {
	opt := func(name, value string) *ast.Option {
		return &ast.Option{Name: name, Value: value}
	}

	t.Run("Defaults", func(t *testing.T) {
		config, err := ParseToleranceConfig(nil)
		assert.NoError(t, err)
		assert.Equal(t, "0.5", config.multiplier.String())
		assert.Equal(t, "0.005", config.DefaultTolerance("EUR").String())
		assert.False(t, config.inferFromCost)
	})

	t.Run("AllOptions", func(t *testing.T) {
		config, err := ParseToleranceConfig(ast.NewOptions(
			opt("inferred_tolerance_multiplier", "0.6"),
			opt("inferred_tolerance_default", "*:0.001"),
			opt("inferred_tolerance_default", "USD : 0.003"),
			opt("infer_tolerance_from_cost", "true"),
		))
		assert.NoError(t, err)
		assert.Equal(t, "0.6", config.multiplier.String())
		assert.Equal(t, "0.003", config.DefaultTolerance("USD").String())
		assert.Equal(t, "0.001", config.DefaultTolerance("EUR").String())
		assert.True(t, config.inferFromCost)
	})

	t.Run("LegacyMultiplier", func(t *testing.T) {
		config, err := ParseToleranceConfig(ast.NewOptions(opt("tolerance_multiplier", "0.25")))
		assert.NoError(t, err)
		assert.Equal(t, "0.25", config.multiplier.String())
	})

	for _, bad := range []*ast.Option{
		opt("inferred_tolerance_multiplier", "lots"),
		opt("inferred_tolerance_default", "USD"),
		opt("inferred_tolerance_default", "USD:x"),
		opt("infer_tolerance_from_cost", "maybe"),
	} {
		t.Run("Invalid"+bad.Name, func(t *testing.T) {
			_, err := ParseToleranceConfig(ast.NewOptions(bad))
			assert.Error(t, err)
			assert.Equal(t, "0.5", toleranceConfig(ast.NewOptions(bad)).multiplier.String())
		})
	}
}

func TestAmountEqual(t *testing.T) {
	tol := decimal.RequireFromString("0.005")
	assert.True(t, AmountEqual(decimal.RequireFromString("10.004"), decimal.RequireFromString("10"), tol))
	assert.True(t, AmountEqual(decimal.RequireFromString("10.005"), decimal.RequireFromString("10"), tol))
	assert.False(t, AmountEqual(decimal.RequireFromString("10.006"), decimal.RequireFromString("10"), tol))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(ast.NewAmount("-12.50", "USD"))
	assert.NoError(t, err)
	assert.Equal(t, "-12.5", d.String())

	_, err = ParseAmount(nil)
	assert.EqualError(t, err, "amount is nil")

	_, err = ParseAmount(ast.NewAmount("twelve", "USD"))
	assert.Error(t, err)
}

func TestPostingWeight(t *testing.T) {
	tests := []struct {
		name    string
		posting *ast.Posting
		want    string
		ok      bool
	}{
		{"Units", ast.NewPosting("Assets:Cash", ast.WithAmount("-20.00", "USD")), "-20 USD", true},
		{"Elided", ast.NewPosting("Assets:Cash"), "", false},
		{"EmptyCost", ast.NewPosting("Assets:Stock", ast.WithAmount("-1", "HOOL"), ast.WithCost(ast.NewEmptyCost())), "", false},
		{"PerUnitCost", ast.NewPosting("Assets:Stock", ast.WithAmount("10", "HOOL"), ast.WithCost(ast.NewCost(ast.NewAmount("5.50", "USD")))), "55 USD", true},
		{"TotalCostSellKeepsSign", ast.NewPosting("Assets:Stock", ast.WithAmount("-10", "HOOL"), ast.WithCost(ast.NewTotalCost(ast.NewAmount("55", "USD")))), "-55 USD", true},
		{"CostBeatsPrice", ast.NewPosting("Assets:Stock", ast.WithAmount("10", "HOOL"),
			ast.WithCost(ast.NewCost(ast.NewAmount("5", "USD"))), ast.WithPrice(ast.NewAmount("6", "USD"))), "50 USD", true},
		{"PerUnitPrice", ast.NewPosting("Assets:Cash", ast.WithAmount("-100", "EUR"), ast.WithPrice(ast.NewAmount("1.10", "USD"))), "-110 USD", true},
		{"TotalPrice", ast.NewPosting("Assets:Cash", ast.WithAmount("-100", "EUR"), ast.WithTotalPrice(ast.NewAmount("110", "USD"))), "-110 USD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok, err := postingWeight(tt.posting)
			assert.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, w.Amount.String()+" "+w.Currency)
			}
		})
	}
}
