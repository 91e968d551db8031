package validation

import (
	"github.com/robinvdvleuten/beancount-validate/ast"
	"golang.org/x/exp/slices"
)

// rootOptions maps the options that rename account roots to their defaults.
var rootOptions = []struct {
	option string
	root   string
}{
	{"name_assets", "Assets"},
	{"name_liabilities", "Liabilities"},
	{"name_equity", "Equity"},
	{"name_income", "Income"},
	{"name_expenses", "Expenses"},
}

// RootNames returns the five account roots, honoring the name_* options.
func RootNames(opts *ast.Options) []string {
	roots := make([]string, len(rootOptions))
	for i, r := range rootOptions {
		roots[i] = opts.GetOr(r.option, r.root)
	}
	return roots
}

// Accounts returns every account opened, closed or referenced by entries,
// sorted by name.
func Accounts(entries []ast.Directive) []ast.Account {
	seen := make(map[ast.Account]bool)
	for _, entry := range entries {
		for _, account := range referencedAccounts(entry) {
			seen[account] = true
		}
	}

	accounts := make([]ast.Account, 0, len(seen))
	for account := range seen {
		accounts = append(accounts, account)
	}
	slices.Sort(accounts)
	return accounts
}

// referencedAccounts returns the accounts an entry names, in order of
// appearance and without duplicates.
func referencedAccounts(entry ast.Directive) []ast.Account {
	switch e := entry.(type) {
	case *ast.Transaction:
		return e.Accounts()
	case *ast.Open:
		return []ast.Account{e.Account}
	case *ast.Close:
		return []ast.Account{e.Account}
	case *ast.Balance:
		return []ast.Account{e.Account}
	case *ast.Pad:
		if e.Account == e.AccountPad {
			return []ast.Account{e.Account}
		}
		return []ast.Account{e.Account, e.AccountPad}
	case *ast.Note:
		return []ast.Account{e.Account}
	case *ast.Document:
		return []ast.Account{e.Account}
	default:
		return nil
	}
}
