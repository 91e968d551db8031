package validation

import (
	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/shopspring/decimal"
)

// weight is the contribution of a posting to the balance of its
// transaction, in a single currency.
type weight struct {
	Amount   decimal.Decimal
	Currency string
}

// postingWeight computes the weight of a posting. A cost takes precedence
// over a price, which takes precedence over the units themselves; a price
// on a posting held at cost is informational only.
//
// ok is false when the posting has no determinable weight: its amount is
// elided or it uses the empty cost {}.
func postingWeight(p *ast.Posting) (w weight, ok bool, err error) {
	if p.Amount == nil || p.Cost.IsEmpty() {
		return weight{}, false, nil
	}

	units, err := ParseAmount(p.Amount)
	if err != nil {
		return weight{}, false, err
	}

	switch {
	case p.Cost != nil && p.Cost.Amount != nil:
		cost, err := ParseAmount(p.Cost.Amount)
		if err != nil {
			return weight{}, false, err
		}
		if p.Cost.IsTotal {
			// {{X}} is the total for the lot and carries the sign of the units.
			if units.IsNegative() {
				cost = cost.Neg()
			}
			return weight{Amount: cost, Currency: p.Cost.Amount.Currency}, true, nil
		}
		return weight{Amount: units.Mul(cost), Currency: p.Cost.Amount.Currency}, true, nil

	case p.Price != nil:
		price, err := ParseAmount(p.Price)
		if err != nil {
			return weight{}, false, err
		}
		if p.PriceTotal {
			if units.IsNegative() {
				price = price.Neg()
			}
			return weight{Amount: price, Currency: p.Price.Currency}, true, nil
		}
		return weight{Amount: units.Mul(price), Currency: p.Price.Currency}, true, nil

	default:
		return weight{Amount: units, Currency: p.Amount.Currency}, true, nil
	}
}
