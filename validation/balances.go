package validation

import (
	"sort"
	"strings"

	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/shopspring/decimal"
)

// sumWeights adds the weight of every posting into residual and collects,
// per currency, the numbers the tolerance is inferred from. It reports false
// when a posting has no determinable weight or an unreadable number; those
// transactions balance by definition or are left to the amounts pass.
func sumWeights(postings []*ast.Posting, config *ToleranceConfig, residual map[string]decimal.Decimal, precision map[string][]decimal.Decimal) bool {
	for _, p := range postings {
		w, ok, err := postingWeight(p)
		if err != nil || !ok {
			return false
		}
		residual[w.Currency] = residual[w.Currency].Add(w.Amount)

		if precision == nil {
			continue
		}
		units, _ := ParseAmount(p.Amount)
		precision[p.Amount.Currency] = append(precision[p.Amount.Currency], units)
		if !config.inferFromCost {
			continue
		}
		if p.Cost != nil && p.Cost.Amount != nil {
			if cost, err := ParseAmount(p.Cost.Amount); err == nil {
				precision[p.Cost.Amount.Currency] = append(precision[p.Cost.Amount.Currency], cost)
			}
		} else if p.Price != nil {
			if price, err := ParseAmount(p.Price); err == nil {
				precision[p.Price.Currency] = append(precision[p.Price.Currency], price)
			}
		}
	}
	return true
}

// ValidateTransactionBalances checks that the weights of a transaction's
// postings sum to zero in every currency, within the inferred tolerance.
// Each unbalanced transaction yields exactly one error listing the residual
// per currency.
func ValidateTransactionBalances(entries []ast.Directive, opts *ast.Options) []*Error {
	config := toleranceConfig(opts)

	var errs []*Error
	for _, txn := range ast.Transactions(entries) {
		if err := checkTransactionBalance(txn, config); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func checkTransactionBalance(txn *ast.Transaction, config *ToleranceConfig) *Error {
	residual := getResidualMap()
	defer putResidualMap(residual)
	precision := make(map[string][]decimal.Decimal, 2)

	if !sumWeights(txn.Postings, config, residual, precision) {
		return nil
	}

	var offending []string
	for currency, amount := range residual {
		tolerance := InferTolerance(precision[currency], currency, config)
		if amount.Abs().GreaterThan(tolerance) {
			offending = append(offending, currency)
		}
	}
	if len(offending) == 0 {
		return nil
	}

	sort.Strings(offending)
	parts := make([]string, len(offending))
	for i, currency := range offending {
		parts[i] = residual[currency].String() + " " + currency
	}
	return entryError(txn, "Transaction does not balance: (%s)", strings.Join(parts, ", "))
}

// pendingPad is a pad waiting for the balance assertion that sizes it.
type pendingPad struct {
	pad    *ast.Pad
	used   bool
	filled map[string]bool
}

type assertionChecker struct {
	config      *ToleranceConfig
	inventories map[ast.Account]*Inventory
	pads        map[ast.Account]*pendingPad
	errs        []*Error
}

func (c *assertionChecker) inventory(account ast.Account) *Inventory {
	inv, ok := c.inventories[account]
	if !ok {
		inv = NewInventory()
		c.inventories[account] = inv
	}
	return inv
}

// balanceOf sums currency over account and all its sub-accounts.
func (c *assertionChecker) balanceOf(account ast.Account, currency string) decimal.Decimal {
	total := decimal.Zero
	for a, inv := range c.inventories {
		if a.IsOrDescendantOf(account) {
			total = total.Add(inv.Get(currency))
		}
	}
	return total
}

// applyTransaction books the units of every posting. An elided amount is
// interpolated from the rest of the transaction when possible.
func (c *assertionChecker) applyTransaction(txn *ast.Transaction) {
	var elided *ast.Posting
	for _, p := range txn.Postings {
		if p.Amount == nil {
			elided = p
			continue
		}
		if units, err := ParseAmount(p.Amount); err == nil {
			c.inventory(p.Account).Add(p.Amount.Currency, units)
		}
	}
	if elided == nil {
		return
	}

	known := make([]*ast.Posting, 0, len(txn.Postings)-1)
	for _, p := range txn.Postings {
		if p != elided {
			known = append(known, p)
		}
	}
	residual := getResidualMap()
	defer putResidualMap(residual)
	if !sumWeights(known, c.config, residual, nil) {
		return
	}
	for currency, amount := range residual {
		c.inventory(elided.Account).Add(currency, amount.Neg())
	}
}

func (c *assertionChecker) applyPad(pad *ast.Pad) {
	c.flushPad(pad.Account)
	c.pads[pad.Account] = &pendingPad{pad: pad, filled: make(map[string]bool)}
}

// flushPad reports the pending pad of account if it never padded anything.
func (c *assertionChecker) flushPad(account ast.Account) {
	pending, ok := c.pads[account]
	if !ok {
		return
	}
	delete(c.pads, account)
	if !pending.used {
		c.errs = append(c.errs, entryError(pending.pad, "Unused Pad entry for %s", account))
	}
}

func (c *assertionChecker) applyBalance(b *ast.Balance) {
	expected, err := ParseAmount(b.Amount)
	if err != nil {
		return
	}
	currency := b.Amount.Currency

	var tolerance decimal.Decimal
	if b.Tolerance != "" {
		if tolerance, err = decimal.NewFromString(b.Tolerance); err != nil {
			return
		}
	} else {
		tolerance = InferTolerance([]decimal.Decimal{expected}, currency, c.config)
	}

	actual := c.balanceOf(b.Account, currency)
	diff := expected.Sub(actual)

	if pending, ok := c.pads[b.Account]; ok && !pending.filled[currency] {
		pending.filled[currency] = true
		if diff.Abs().GreaterThan(tolerance) {
			c.inventory(b.Account).Add(currency, diff)
			c.inventory(pending.pad.AccountPad).Add(currency, diff.Neg())
			pending.used = true
		}
		return
	}

	if diff.Abs().GreaterThan(tolerance) {
		c.errs = append(c.errs, entryError(b, "Balance mismatch for %s:\n  Expected: %s %s\n  Actual:   %s %s\n  (%s %s too %s)",
			b.Account, b.Amount.Value, currency, formatLike(actual, expected), currency,
			formatLike(diff.Abs(), expected), currency, tooMuchOrLittle(diff)))
	}
}

// formatLike renders d with at least the decimal places of ref.
func formatLike(d, ref decimal.Decimal) string {
	if exp := ref.Exponent(); exp < 0 && d.Exponent() >= exp {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func tooMuchOrLittle(diff decimal.Decimal) string {
	if diff.IsNegative() {
		return "much"
	}
	return "little"
}

// ValidateBalanceAssertions replays the ledger in date order, keeping a
// running inventory per account, and checks every balance assertion against
// the total of the account and its sub-accounts. A pad inserts the
// difference needed by the next assertion on its account; a pad that never
// inserts anything is reported.
func ValidateBalanceAssertions(entries []ast.Directive, opts *ast.Options) []*Error {
	c := &assertionChecker{
		config:      toleranceConfig(opts),
		inventories: make(map[ast.Account]*Inventory),
		pads:        make(map[ast.Account]*pendingPad),
	}

	for _, entry := range ast.Sorted(entries) {
		switch e := entry.(type) {
		case *ast.Transaction:
			c.applyTransaction(e)
		case *ast.Pad:
			c.applyPad(e)
		case *ast.Balance:
			c.applyBalance(e)
		}
	}

	remaining := make([]ast.Account, 0, len(c.pads))
	for account := range c.pads {
		remaining = append(remaining, account)
	}
	sort.Slice(remaining, func(i, j int) bool {
		a, b := ast.DateOf(c.pads[remaining[i]].pad), ast.DateOf(c.pads[remaining[j]].pad)
		if !a.Equal(b.Time) {
			return a.Before(b.Time)
		}
		return remaining[i] < remaining[j]
	})
	for _, account := range remaining {
		c.flushPad(account)
	}
	return c.errs
}
