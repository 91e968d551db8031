package validation

import (
	"cmp"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// ValidateDuplicateCommodities reports a commodity declared more than once.
func ValidateDuplicateCommodities(entries []ast.Directive, _ *ast.Options) []*Error {
	seen := make(map[string]*ast.Commodity)

	var errs []*Error
	for _, entry := range ast.Sorted(entries) {
		c, ok := entry.(*ast.Commodity)
		if !ok {
			continue
		}
		if first, ok := seen[c.Currency]; ok {
			errs = append(errs, newError("Duplicate commodity directive for %s (first declared at %s)",
				[]ast.Directive{c, first}, c.Currency, first.Position().Location()))
			continue
		}
		seen[c.Currency] = c
	}
	return errs
}

type balanceKey struct {
	date     string
	account  ast.Account
	currency string
}

// ValidateDuplicateBalances reports balance assertions for the same account,
// currency and date that disagree on the amount. Repeating an identical
// assertion is allowed.
func ValidateDuplicateBalances(entries []ast.Directive, _ *ast.Options) []*Error {
	seen := make(map[balanceKey]*ast.Balance)

	var errs []*Error
	for _, entry := range ast.Sorted(entries) {
		b, ok := entry.(*ast.Balance)
		if !ok || b.Amount == nil {
			continue
		}
		key := balanceKey{date: b.Date.String(), account: b.Account, currency: b.Amount.Currency}
		first, ok := seen[key]
		if !ok {
			seen[key] = b
			continue
		}

		x, errX := ParseAmount(first.Amount)
		y, errY := ParseAmount(b.Amount)
		if errX != nil || errY != nil || x.Equal(y) {
			continue
		}
		errs = append(errs, newError("Duplicate balance assertion with different amounts for %s on %s: %s vs %s",
			[]ast.Directive{b, first}, b.Account, b.Date, first.Amount, b.Amount))
	}
	return errs
}

// fingerprint is the content of a transaction that makes it a duplicate.
// Postings are a multiset: sorted, so order does not matter but repeats do.
type fingerprint struct {
	Date      string
	Narration string
	Postings  []postingKey
}

type postingKey struct {
	Account string
	Units   string
	Cost    string
	Price   string
}

func comparePostingKeys(a, b postingKey) int {
	return cmp.Or(
		strings.Compare(a.Account, b.Account),
		strings.Compare(a.Units, b.Units),
		strings.Compare(a.Cost, b.Cost),
		strings.Compare(a.Price, b.Price),
	)
}

func (fp fingerprint) equal(other fingerprint) bool {
	return fp.Date == other.Date && fp.Narration == other.Narration && slices.Equal(fp.Postings, other.Postings)
}

// normalizeNumber makes "10" and "10.00" compare equal.
func normalizeNumber(a *ast.Amount) string {
	if a == nil {
		return ""
	}
	if d, err := decimal.NewFromString(a.Value); err == nil {
		return d.String() + " " + a.Currency
	}
	return a.String()
}

func fingerprintOf(txn *ast.Transaction) fingerprint {
	fp := fingerprint{
		Date:      txn.Date.String(),
		Narration: txn.Narration,
		Postings:  make([]postingKey, len(txn.Postings)),
	}
	for i, p := range txn.Postings {
		key := postingKey{
			Account: string(p.Account),
			Units:   normalizeNumber(p.Amount),
			Price:   normalizeNumber(p.Price),
		}
		if p.Cost != nil {
			key.Cost = "{" + normalizeNumber(p.Cost.Amount) + "}"
			if p.Cost.IsTotal {
				key.Cost = "{" + key.Cost + "}"
			}
		}
		fp.Postings[i] = key
	}
	slices.SortFunc(fp.Postings, comparePostingKeys)
	return fp
}

type candidate struct {
	txn *ast.Transaction
	fp  fingerprint
}

// ValidateDuplicateTransactions flags transactions with the same date,
// narration and postings as an earlier one. The first occurrence is not
// flagged; every later one is, referencing both entries. Hashes only pick
// the bucket; a match is confirmed on the fingerprints themselves.
func ValidateDuplicateTransactions(entries []ast.Directive, _ *ast.Options) []*Error {
	buckets := make(map[uint64][]candidate)

	var errs []*Error
	for _, entry := range ast.Sorted(entries) {
		txn, ok := entry.(*ast.Transaction)
		if !ok {
			continue
		}
		fp := fingerprintOf(txn)
		hash, err := hashstructure.Hash(fp, hashstructure.FormatV2, nil)
		if err != nil {
			errs = append(errs, entryError(txn, "Cannot check transaction for duplicates: %v", err))
			continue
		}

		var first *ast.Transaction
		for _, c := range buckets[hash] {
			if c.fp.equal(fp) {
				first = c.txn
				break
			}
		}
		if first != nil {
			errs = append(errs, newError("Duplicate transaction of entry at %s",
				[]ast.Directive{txn, first}, first.Position().Location()))
			continue
		}
		buckets[hash] = append(buckets[hash], candidate{txn: txn, fp: fp})
	}
	return errs
}
