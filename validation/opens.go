package validation

import (
	"github.com/robinvdvleuten/beancount-validate/ast"
)

// ValidateOpenClose checks the lifetime directives themselves: an account is
// opened at most once, closed at most once and only after it was opened.
func ValidateOpenClose(entries []ast.Directive, _ *ast.Options) []*Error {
	opens := make(map[ast.Account]*ast.Open)
	closes := make(map[ast.Account]*ast.Close)

	var errs []*Error
	for _, entry := range ast.Sorted(entries) {
		switch e := entry.(type) {
		case *ast.Open:
			if prev, ok := opens[e.Account]; ok {
				errs = append(errs, newError("Account %s is already open (opened on %s)",
					[]ast.Directive{e, prev}, e.Account, prev.Date))
				continue
			}
			opens[e.Account] = e

		case *ast.Close:
			if _, ok := opens[e.Account]; !ok {
				errs = append(errs, entryError(e, "Cannot close account %s that was never opened", e.Account))
				continue
			}
			if prev, ok := closes[e.Account]; ok {
				errs = append(errs, newError("Account %s is already closed (closed on %s)",
					[]ast.Directive{e, prev}, e.Account, prev.Date))
				continue
			}
			closes[e.Account] = e
		}
	}
	return errs
}

// ValidateActiveAccounts checks that every account an entry references is
// open on the entry's date. An account can still be used on the day it is
// closed. Each offending (entry, account) pair yields one error.
func ValidateActiveAccounts(entries []ast.Directive, _ *ast.Options) []*Error {
	opened := make(map[ast.Account]bool)
	closes := make(map[ast.Account]*ast.Close)

	var errs []*Error
	for _, entry := range ast.Sorted(entries) {
		switch e := entry.(type) {
		case *ast.Open:
			opened[e.Account] = true
			continue
		case *ast.Close:
			if _, ok := closes[e.Account]; !ok {
				closes[e.Account] = e
			}
			continue
		}

		for _, account := range referencedAccounts(entry) {
			if !opened[account] {
				errs = append(errs, entryError(entry, "Invalid reference to unknown account '%s'", account))
				continue
			}
			if c, ok := closes[account]; ok && c.Date.Before(ast.DateOf(entry).Time) {
				errs = append(errs, entryError(entry, "Invalid reference to inactive account '%s' (closed on %s)", account, c.Date))
			}
		}
	}
	return errs
}

// ValidateCurrencyConstraints checks postings and balance assertions against
// the currencies their account was opened with.
func ValidateCurrencyConstraints(entries []ast.Directive, _ *ast.Options) []*Error {
	opens := make(map[ast.Account]*ast.Open)

	var errs []*Error
	for _, entry := range ast.Sorted(entries) {
		switch e := entry.(type) {
		case *ast.Open:
			if _, ok := opens[e.Account]; !ok {
				opens[e.Account] = e
			}

		case *ast.Transaction:
			for _, p := range e.Postings {
				if p.Amount == nil {
					continue
				}
				if open, ok := opens[p.Account]; ok && !open.Allows(p.Amount.Currency) {
					errs = append(errs, entryError(e, "Invalid currency %s for account %s", p.Amount.Currency, p.Account))
				}
			}

		case *ast.Balance:
			if e.Amount == nil {
				continue
			}
			if open, ok := opens[e.Account]; ok && !open.Allows(e.Amount.Currency) {
				errs = append(errs, entryError(e, "Invalid currency %s for balance of account %s", e.Amount.Currency, e.Account))
			}
		}
	}
	return errs
}
