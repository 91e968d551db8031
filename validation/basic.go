package validation

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/shopspring/decimal"
)

// ValidateDates checks that every entry carries a date with a year between 1
// and 9999, including the acquisition dates of costs.
func ValidateDates(entries []ast.Directive, _ *ast.Options) []*Error {
	var errs []*Error
	for _, entry := range entries {
		date := ast.DateOf(entry)
		if date == nil {
			errs = append(errs, entryError(entry, "Missing date on %s entry", entry.Kind()))
			continue
		}
		if !validYear(date) {
			errs = append(errs, entryError(entry, "Invalid date %s: year must be between 1 and 9999", date))
		}

		txn, ok := entry.(*ast.Transaction)
		if !ok {
			continue
		}
		for _, p := range txn.Postings {
			if p.Cost != nil && p.Cost.Date != nil && !validYear(p.Cost.Date) {
				errs = append(errs, entryError(entry, "Invalid cost date %s for account %s", p.Cost.Date, p.Account))
			}
		}
	}
	return errs
}

func validYear(d *ast.Date) bool {
	y := d.Year()
	return y >= 1 && y <= 9999
}

var bookingMethods = map[string]bool{
	"STRICT": true, "STRICT_WITH_SIZE": true, "NONE": true, "AVERAGE": true,
	"FIFO": true, "LIFO": true, "HIFO": true,
}

func checkDecimal(v string) error {
	if _, err := decimal.NewFromString(v); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

func checkBool(v string) error {
	switch strings.ToUpper(v) {
	case "TRUE", "FALSE":
		return nil
	}
	return fmt.Errorf("expected TRUE or FALSE")
}

func checkRoot(v string) error {
	if !ast.IsValidAccountSegment(v) {
		return fmt.Errorf("not a valid account root")
	}
	return nil
}

func checkCurrency(v string) error {
	if v == "" || v[0] < 'A' || v[0] > 'Z' {
		return fmt.Errorf("not a valid currency")
	}
	return nil
}

func checkToleranceDefault(v string) error {
	currency, tol, ok := strings.Cut(v, ":")
	if !ok || strings.TrimSpace(currency) == "" {
		return fmt.Errorf("expected CURRENCY:TOLERANCE")
	}
	return checkDecimal(strings.TrimSpace(tol))
}

func checkBookingMethod(v string) error {
	if !bookingMethods[v] {
		return fmt.Errorf("unknown booking method")
	}
	return nil
}

func checkInt(v string) error {
	if _, err := strconv.Atoi(v); err != nil {
		return fmt.Errorf("not an integer")
	}
	return nil
}

func anyValue(string) error { return nil }

// optionCheckers lists the recognized options and how their values are
// checked.
var optionCheckers = map[string]func(string) error{
	"title":                         anyValue,
	"filename":                      anyValue,
	"documents":                     anyValue,
	"insert_pythonpath":             checkBool,
	"render_commas":                 checkBool,
	"plugin_processing_mode":        anyValue,
	"long_string_maxlines":          checkInt,
	"operating_currency":            checkCurrency,
	"conversion_currency":           checkCurrency,
	"name_assets":                   checkRoot,
	"name_liabilities":              checkRoot,
	"name_equity":                   checkRoot,
	"name_income":                   checkRoot,
	"name_expenses":                 checkRoot,
	"account_previous_balances":     checkAccountLeaf,
	"account_previous_earnings":     checkAccountLeaf,
	"account_previous_conversions":  checkAccountLeaf,
	"account_current_earnings":      checkAccountLeaf,
	"account_current_conversions":   checkAccountLeaf,
	"account_unrealized_gains":      checkAccountLeaf,
	"account_rounding":              checkAccountLeaf,
	"booking_method":                checkBookingMethod,
	"inferred_tolerance_default":    checkToleranceDefault,
	"inferred_tolerance_multiplier": checkDecimal,
	"tolerance_multiplier":          checkDecimal,
	"infer_tolerance_from_cost":     checkBool,
}

// checkAccountLeaf accepts either a full account or the sub-account part
// that is appended to a root, e.g. "Earnings:Previous".
func checkAccountLeaf(v string) error {
	if strings.Contains(v, ":") {
		for _, s := range strings.Split(v, ":") {
			if !ast.IsValidAccountSegment(s) {
				return fmt.Errorf("bad account segment %q", s)
			}
		}
		return nil
	}
	return checkRoot(v)
}

// ValidateOptions checks every option line: the name must be known and the
// value well formed. The errors reference no entries; they are positioned
// at the option line.
func ValidateOptions(_ []ast.Directive, opts *ast.Options) []*Error {
	var errs []*Error
	for _, line := range opts.Lines() {
		check, ok := optionCheckers[line.Name]
		if !ok {
			errs = append(errs, &Error{Pos: line.Pos, Message: fmt.Sprintf("Invalid option %q", line.Name)})
			continue
		}
		if err := check(line.Value); err != nil {
			errs = append(errs, &Error{Pos: line.Pos, Message: fmt.Sprintf("Invalid value %q for option %q: %v", line.Value, line.Name, err)})
		}
	}
	return errs
}

// ValidatePostings checks that transactions have postings and that at most
// one of them has its amount elided.
func ValidatePostings(entries []ast.Directive, _ *ast.Options) []*Error {
	var errs []*Error
	for _, txn := range ast.Transactions(entries) {
		if len(txn.Postings) == 0 {
			errs = append(errs, entryError(txn, "Transaction has no postings"))
			continue
		}
		elided := 0
		for _, p := range txn.Postings {
			if p.Amount == nil {
				elided++
			}
		}
		if elided > 1 {
			errs = append(errs, entryError(txn, "Transaction has %d postings without amount; at most one can be elided", elided))
		}
	}
	return errs
}

// ValidateAmounts checks that every number is a valid decimal, that costs
// and prices are not negative and that a total cost is not put on zero
// units.
func ValidateAmounts(entries []ast.Directive, _ *ast.Options) []*Error {
	var errs []*Error
	for _, entry := range entries {
		switch e := entry.(type) {
		case *ast.Transaction:
			for i, p := range e.Postings {
				errs = append(errs, checkPostingAmounts(e, i, p)...)
			}
		case *ast.Balance:
			if _, err := ParseAmount(e.Amount); err != nil {
				errs = append(errs, entryError(e, "Invalid balance amount for %s: %v", e.Account, err))
			}
			if e.Tolerance != "" {
				tol, err := decimal.NewFromString(e.Tolerance)
				if err != nil {
					errs = append(errs, entryError(e, "Invalid balance tolerance %q for %s", e.Tolerance, e.Account))
				} else if tol.IsNegative() {
					errs = append(errs, entryError(e, "Negative balance tolerance %s for %s", e.Tolerance, e.Account))
				}
			}
		case *ast.Price:
			value, err := ParseAmount(e.Amount)
			if err != nil {
				errs = append(errs, entryError(e, "Invalid price for %s: %v", e.Commodity, err))
			} else if value.IsNegative() {
				errs = append(errs, entryError(e, "Negative price %s for %s", e.Amount, e.Commodity))
			}
		}
	}
	return errs
}

func checkPostingAmounts(txn *ast.Transaction, i int, p *ast.Posting) []*Error {
	var errs []*Error
	if p.Amount == nil {
		return nil
	}
	units, err := ParseAmount(p.Amount)
	if err != nil {
		return []*Error{entryError(txn, "Invalid amount %q for account %s (posting #%d)", p.Amount.Value, p.Account, i+1)}
	}
	if p.Cost != nil && p.Cost.Amount != nil {
		cost, err := ParseAmount(p.Cost.Amount)
		switch {
		case err != nil:
			errs = append(errs, entryError(txn, "Invalid cost %q for account %s (posting #%d)", p.Cost.Amount.Value, p.Account, i+1))
		case cost.IsNegative():
			errs = append(errs, entryError(txn, "Cost is negative: %s for account %s (posting #%d)", p.Cost.Amount, p.Account, i+1))
		case p.Cost.IsTotal && units.IsZero():
			errs = append(errs, entryError(txn, "Total cost on zero units for account %s (posting #%d)", p.Account, i+1))
		}
	}
	if p.Price != nil {
		price, err := ParseAmount(p.Price)
		switch {
		case err != nil:
			errs = append(errs, entryError(txn, "Invalid price %q for account %s (posting #%d)", p.Price.Value, p.Account, i+1))
		case price.IsNegative():
			errs = append(errs, entryError(txn, "Price is negative: %s for account %s (posting #%d)", p.Price, p.Account, i+1))
		}
	}
	return errs
}

// ValidateMetadata reports duplicate and empty metadata keys on entries and
// postings.
func ValidateMetadata(entries []ast.Directive, _ *ast.Options) []*Error {
	var errs []*Error
	for _, entry := range entries {
		errs = append(errs, checkMetadata(entry, entry.Meta(), "")...)
		if txn, ok := entry.(*ast.Transaction); ok {
			for _, p := range txn.Postings {
				errs = append(errs, checkMetadata(entry, p.Meta(), fmt.Sprintf(" on posting %s", p.Account))...)
			}
		}
	}
	return errs
}

func checkMetadata(entry ast.Directive, meta ast.Metadata, where string) []*Error {
	var errs []*Error
	seen := make(map[string]bool, len(meta))
	for _, md := range meta {
		if md.Key == "" {
			errs = append(errs, entryError(entry, "Empty metadata key%s", where))
			continue
		}
		if seen[md.Key] {
			errs = append(errs, entryError(entry, "Duplicate metadata key %q%s", md.Key, where))
		}
		seen[md.Key] = true
	}
	return errs
}

// ValidateAccountNames checks that every account starts with one of the
// configured roots and is made of well formed segments.
func ValidateAccountNames(entries []ast.Directive, opts *ast.Options) []*Error {
	roots := RootNames(opts)
	valid := make(map[string]bool, len(roots))
	for _, r := range roots {
		valid[r] = true
	}

	var errs []*Error
	for _, entry := range entries {
		for _, account := range referencedAccounts(entry) {
			segments := account.Segments()
			if !valid[segments[0]] {
				errs = append(errs, entryError(entry, "Invalid account name %s: root must be one of %s", account, strings.Join(roots, ", ")))
				continue
			}
			if len(segments) < 2 {
				errs = append(errs, entryError(entry, "Invalid account name %s: a root cannot be used on its own", account))
				continue
			}
			for _, s := range segments[1:] {
				if !ast.IsValidAccountSegment(s) {
					errs = append(errs, entryError(entry, "Invalid account name %s: bad segment %q", account, s))
					break
				}
			}
		}
	}
	return errs
}

// ValidateDocumentPaths checks that document entries use absolute paths.
func ValidateDocumentPaths(entries []ast.Directive, _ *ast.Options) []*Error {
	var errs []*Error
	for _, entry := range entries {
		doc, ok := entry.(*ast.Document)
		if !ok {
			continue
		}
		if !filepath.IsAbs(doc.Path) {
			errs = append(errs, entryError(doc, "Invalid relative path for document %q", doc.Path))
		}
	}
	return errs
}
