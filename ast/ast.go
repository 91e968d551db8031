// Package ast declares the entry model produced by the parser and consumed by
// the validation passes.
//
// A parsed ledger is an AST: an ordered list of dated directives (transactions,
// opens, closes, balance assertions and friends), the options map built from
// `option` lines, and the undated plugin and include lines that are carried
// along so the printer can emit them again. Directives are treated as
// immutable once the parser hands them out; validation passes only read them.
package ast

import (
	"time"

	"golang.org/x/exp/slices"
)

// Directives is a slice of Directive that implements sort.Interface.
type Directives []Directive

func (d Directives) Len() int           { return len(d) }
func (d Directives) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }
func (d Directives) Less(i, j int) bool { return compareDirectives(d[i], d[j]) < 0 }

// compareDirectives compares two directives by their date, then by type priority.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
//
// For same-date directives, the processing order is:
//  1. Open (accounts must be opened before use)
//  2. Balance (assertions apply at the beginning of the day)
//  3. All other directives
//  4. Close (an account can still be used on the day it is closed)
func compareDirectives(a, b Directive) int {
	if c := timeOf(a).Compare(timeOf(b)); c != 0 {
		return c
	}

	aPriority := directiveTypePriority(a)
	bPriority := directiveTypePriority(b)
	if aPriority < bPriority {
		return -1
	} else if aPriority > bPriority {
		return 1
	}

	return 0
}

func timeOf(d Directive) time.Time {
	if date := d.date(); date != nil {
		return date.Time
	}
	return time.Time{}
}

// directiveTypePriority returns the processing priority for a directive type.
// Lower numbers are processed first.
func directiveTypePriority(d Directive) int {
	switch d.(type) {
	case *Open:
		return 0
	case *Balance:
		return 1
	case *Close:
		return 3
	default:
		return 2
	}
}

// AST represents a parsed ledger file.
type AST struct {
	Directives Directives
	Options    *Options
	Includes   []*Include
	Plugins    []*Plugin
}

// Directive is the interface implemented by all dated ledger entries.
type Directive interface {
	date() *Date
	// Position returns where the entry starts in the source file.
	Position() Position
	// Kind returns the directive keyword, e.g. "open" or "transaction".
	Kind() string
	// Meta returns the entry-level metadata in source order.
	Meta() Metadata
}

// withMetadata is an embeddable struct that carries entry metadata.
type withMetadata struct {
	Metadata Metadata
}

// Meta returns the metadata attached to the entry.
func (w *withMetadata) Meta() Metadata { return w.Metadata }

// AddMetadata appends metadata entries.
func (w *withMetadata) AddMetadata(m ...*Metadatum) {
	w.Metadata = append(w.Metadata, m...)
}

// DateOf returns the date a directive applies to.
func DateOf(d Directive) *Date {
	return d.date()
}

// isSorted checks if directives are already sorted by date.
func isSorted(d Directives) bool {
	for i := 1; i < len(d); i++ {
		if d.Less(i, i-1) {
			return false
		}
	}
	return true
}

// SortDirectives sorts the AST's directives by date and type priority in
// place. Directives that compare equal keep their file order.
//
// This is called automatically by the parser, but can be called on a manually
// constructed AST.
func SortDirectives(tree *AST) {
	if isSorted(tree.Directives) {
		return
	}
	slices.SortStableFunc(tree.Directives, compareDirectives)
}

// Sorted returns the directives in date order. The input slice is never
// modified: when it is already ordered it is returned as is, otherwise a
// sorted copy is made.
func Sorted(ds []Directive) []Directive {
	if isSorted(ds) {
		return ds
	}
	sorted := slices.Clone(ds)
	slices.SortStableFunc(sorted, compareDirectives)
	return sorted
}

// Transactions returns the transactions among ds, in order.
func Transactions(ds []Directive) []*Transaction {
	var txns []*Transaction
	for _, d := range ds {
		if txn, ok := d.(*Transaction); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}
