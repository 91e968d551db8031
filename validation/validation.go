// Package validation holds the checks run over a parsed ledger.
//
// A check is a Pass: a name, a display label, a tier and a pure function
// from (entries, options) to errors. Passes never mutate the entries they
// are given and never depend on each other's output, so they can run in any
// order and concurrently. The order of the list returned by Default is still
// part of the contract: it decides the order in which errors are reported.
//
// Basic passes look at one entry at a time. Hardcore passes check invariants
// that span entries, such as accounts being open or transactions balancing.
package validation

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-validate/ast"
)

// Func is the signature of a validation pass.
type Func func(entries []ast.Directive, opts *ast.Options) []*Error

// Tier groups passes by cost and scope.
type Tier int

const (
	// TierBasic passes check single entries.
	TierBasic Tier = iota
	// TierHardcore passes check invariants across entries.
	TierHardcore
)

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierHardcore:
		return "hardcore"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Pass describes one validation pass.
type Pass struct {
	Name  string
	Label string
	Tier  Tier
	Run   Func
}

// Exec runs the pass and stamps its name on every error it returns.
func (p Pass) Exec(entries []ast.Directive, opts *ast.Options) []*Error {
	errs := p.Run(entries, opts)
	for _, err := range errs {
		err.Pass = p.Name
	}
	return errs
}

// Default returns the registered passes in execution order: every basic
// pass, then every hardcore pass. A new slice is returned on each call.
func Default() []Pass {
	return []Pass{
		{Name: "dates", Label: "Checking dates", Tier: TierBasic, Run: ValidateDates},
		{Name: "options", Label: "Checking options", Tier: TierBasic, Run: ValidateOptions},
		{Name: "postings", Label: "Checking postings", Tier: TierBasic, Run: ValidatePostings},
		{Name: "amounts", Label: "Checking amounts", Tier: TierBasic, Run: ValidateAmounts},
		{Name: "metadata", Label: "Checking metadata", Tier: TierBasic, Run: ValidateMetadata},
		{Name: "account_names", Label: "Checking account names", Tier: TierBasic, Run: ValidateAccountNames},
		{Name: "document_paths", Label: "Checking document paths", Tier: TierBasic, Run: ValidateDocumentPaths},

		{Name: "open_close", Label: "Checking open and close directives", Tier: TierHardcore, Run: ValidateOpenClose},
		{Name: "active_accounts", Label: "Checking account references", Tier: TierHardcore, Run: ValidateActiveAccounts},
		{Name: "currency_constraints", Label: "Checking currency constraints", Tier: TierHardcore, Run: ValidateCurrencyConstraints},
		{Name: "duplicate_commodities", Label: "Checking duplicate commodities", Tier: TierHardcore, Run: ValidateDuplicateCommodities},
		{Name: "duplicate_balances", Label: "Checking duplicate balances", Tier: TierHardcore, Run: ValidateDuplicateBalances},
		{Name: "duplicate_transactions", Label: "Checking duplicate transactions", Tier: TierHardcore, Run: ValidateDuplicateTransactions},
		{Name: "transaction_balances", Label: "Checking transaction balances", Tier: TierHardcore, Run: ValidateTransactionBalances},
		{Name: "balance_assertions", Label: "Checking balance assertions", Tier: TierHardcore, Run: ValidateBalanceAssertions},
	}
}

// Lookup returns the default pass with the given name.
func Lookup(name string) (Pass, bool) {
	for _, p := range Default() {
		if p.Name == name {
			return p, true
		}
	}
	return Pass{}, false
}

// Select returns passes without the disabled ones, keeping their order.
// Naming a pass that does not exist is an error.
func Select(passes []Pass, disabled []string) ([]Pass, error) {
	if len(disabled) == 0 {
		return passes, nil
	}

	known := make(map[string]bool, len(passes))
	for _, p := range passes {
		known[p.Name] = true
	}
	skip := make(map[string]bool, len(disabled))
	var unknown []string
	for _, name := range disabled {
		if !known[name] {
			unknown = append(unknown, name)
		}
		skip[name] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown validation pass %s", strings.Join(unknown, ", "))
	}

	selected := make([]Pass, 0, len(passes))
	for _, p := range passes {
		if !skip[p.Name] {
			selected = append(selected, p)
		}
	}
	return selected, nil
}
