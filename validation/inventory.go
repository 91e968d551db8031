package validation

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Inventory is the running balance of an account across currencies. Holdings
// are kept sorted by currency for deterministic iteration and display.
type Inventory struct {
	holdings []*Holding
}

// Holding is the amount held in a single currency.
type Holding struct {
	Currency string
	Amount   decimal.Decimal
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// Get returns the amount held in currency, or zero.
func (inv *Inventory) Get(currency string) decimal.Decimal {
	for _, h := range inv.holdings {
		if h.Currency == currency {
			return h.Amount
		}
	}
	return decimal.Zero
}

// Add adds amount to the holding in currency, creating it if needed.
func (inv *Inventory) Add(currency string, amount decimal.Decimal) {
	for _, h := range inv.holdings {
		if h.Currency == currency {
			h.Amount = h.Amount.Add(amount)
			return
		}
	}

	inv.holdings = append(inv.holdings, &Holding{Currency: currency, Amount: amount})
	sort.Slice(inv.holdings, func(i, j int) bool {
		return inv.holdings[i].Currency < inv.holdings[j].Currency
	})
}

// IsZero returns true if all amounts are zero or the inventory is empty.
func (inv *Inventory) IsZero() bool {
	for _, h := range inv.holdings {
		if !h.Amount.IsZero() {
			return false
		}
	}
	return true
}

// Currencies returns the held currencies in sorted order.
func (inv *Inventory) Currencies() []string {
	currencies := make([]string, len(inv.holdings))
	for i, h := range inv.holdings {
		currencies[i] = h.Currency
	}
	return currencies
}

// String returns a human-readable representation of the inventory.
func (inv *Inventory) String() string {
	if len(inv.holdings) == 0 {
		return "(empty)"
	}

	parts := make([]string, len(inv.holdings))
	for i, h := range inv.holdings {
		parts[i] = h.Amount.String() + " " + h.Currency
	}
	return strings.Join(parts, ", ")
}

// residualPool provides maps for per-transaction residual sums. A typical
// transaction touches two to four currencies.
var residualPool = sync.Pool{
	New: func() any {
		return make(map[string]decimal.Decimal, 4)
	},
}

func getResidualMap() map[string]decimal.Decimal {
	return residualPool.Get().(map[string]decimal.Decimal)
}

func putResidualMap(m map[string]decimal.Decimal) {
	clear(m)
	residualPool.Put(m)
}
