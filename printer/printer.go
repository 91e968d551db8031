// Package printer writes parsed ledger entries back out as beancount text.
//
// The output is canonical rather than a copy of the input: option, plugin
// and include lines come first, then every directive in date order. Amounts
// in postings, balance assertions and price directives are right-aligned on a
// shared currency column, computed from the display width of the accounts so
// that wide characters line up too.
package printer

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/beancount-validate/ast"
)

const (
	// DefaultCurrencyColumn is used when no currency column can be derived.
	DefaultCurrencyColumn = 52

	// DefaultIndentation is the number of spaces before postings and
	// metadata.
	DefaultIndentation = 2

	// MinimumSpacing is the least number of spaces between an account and
	// its amount.
	MinimumSpacing = 2

	DateWidth           = 10 // YYYY-MM-DD
	BalanceKeywordWidth = 9  // " balance "
	PriceKeywordWidth   = 7  // " price "
)

// Option configures a Printer.
type Option func(*Printer)

// WithCurrencyColumn fixes the column currencies end on. Zero derives it
// from the widest account and amount.
func WithCurrencyColumn(col int) Option {
	return func(p *Printer) {
		p.CurrencyColumn = col
	}
}

// WithIndentation sets the indentation of postings and metadata.
func WithIndentation(n int) Option {
	return func(p *Printer) {
		p.Indentation = n
	}
}

// Printer renders entries as beancount text.
type Printer struct {
	CurrencyColumn int
	Indentation    int
}

// New creates a printer. Without options the currency column is derived
// from the entries being printed.
func New(opts ...Option) *Printer {
	p := &Printer{Indentation: DefaultIndentation}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PrintEntries writes tree to w.
func (p *Printer) PrintEntries(w io.Writer, tree *ast.AST) error {
	bw := bufio.NewWriter(w)
	p.writeTree(bw, tree)
	return bw.Flush()
}

// String renders tree as a string.
func (p *Printer) String(tree *ast.AST) string {
	var buf strings.Builder
	p.writeTree(&buf, tree)
	return buf.String()
}

// Entry renders a single directive, without trailing blank line. It is used
// to show the entries an error refers to.
func (p *Printer) Entry(d ast.Directive) string {
	var buf strings.Builder
	p.writeDirective(&buf, d, p.currencyColumn([]ast.Directive{d}))
	return strings.TrimSuffix(buf.String(), "\n")
}

type stringWriter interface {
	io.Writer
	WriteString(s string) (int, error)
	WriteByte(c byte) error
}

func (p *Printer) writeTree(buf stringWriter, tree *ast.AST) {
	if tree == nil {
		return
	}

	header := false
	for _, opt := range tree.Options.Lines() {
		buf.WriteString("option ")
		writeQuoted(buf, opt.Name)
		buf.WriteByte(' ')
		writeQuoted(buf, opt.Value)
		buf.WriteByte('\n')
		header = true
	}
	for _, plugin := range tree.Plugins {
		buf.WriteString("plugin ")
		writeQuoted(buf, plugin.Name)
		if plugin.Config != "" {
			buf.WriteByte(' ')
			writeQuoted(buf, plugin.Config)
		}
		buf.WriteByte('\n')
		header = true
	}
	for _, include := range tree.Includes {
		buf.WriteString("include ")
		writeQuoted(buf, include.Filename)
		buf.WriteByte('\n')
		header = true
	}

	entries := ast.Sorted(tree.Directives)
	col := p.currencyColumn(entries)

	var prev ast.Directive
	for _, d := range entries {
		if (prev == nil && header) || (prev != nil && separate(prev, d)) {
			buf.WriteByte('\n')
		}
		p.writeDirective(buf, d, col)
		prev = d
	}
}

// separate reports whether a blank line goes between a and b. Runs of
// single-line directives of the same kind stay together.
func separate(a, b ast.Directive) bool {
	if a.Kind() != b.Kind() {
		return true
	}
	if _, ok := b.(*ast.Transaction); ok {
		return true
	}
	return len(a.Meta()) > 0 || len(b.Meta()) > 0
}

func (p *Printer) writeDirective(buf stringWriter, d ast.Directive, col int) {
	switch e := d.(type) {
	case *ast.Transaction:
		// Transaction metadata goes before the postings.
		p.writeTransaction(buf, e, col)
		return
	case *ast.Balance:
		p.writeBalance(buf, e, col)
	case *ast.Open:
		writeHead(buf, e.Date, "open")
		buf.WriteString(string(e.Account))
		if len(e.ConstraintCurrencies) > 0 {
			buf.WriteByte(' ')
			buf.WriteString(strings.Join(e.ConstraintCurrencies, ","))
		}
		if e.BookingMethod != "" {
			buf.WriteByte(' ')
			writeQuoted(buf, e.BookingMethod)
		}
		buf.WriteByte('\n')
	case *ast.Close:
		writeHead(buf, e.Date, "close")
		buf.WriteString(string(e.Account))
		buf.WriteByte('\n')
	case *ast.Commodity:
		writeHead(buf, e.Date, "commodity")
		buf.WriteString(e.Currency)
		buf.WriteByte('\n')
	case *ast.Pad:
		writeHead(buf, e.Date, "pad")
		buf.WriteString(string(e.Account))
		buf.WriteByte(' ')
		buf.WriteString(string(e.AccountPad))
		buf.WriteByte('\n')
	case *ast.Note:
		writeHead(buf, e.Date, "note")
		buf.WriteString(string(e.Account))
		buf.WriteByte(' ')
		writeQuoted(buf, e.Description)
		buf.WriteByte('\n')
	case *ast.Document:
		writeHead(buf, e.Date, "document")
		buf.WriteString(string(e.Account))
		buf.WriteByte(' ')
		writeQuoted(buf, e.Path)
		buf.WriteByte('\n')
	case *ast.Price:
		p.writePrice(buf, e, col)
	case *ast.Event:
		writeHead(buf, e.Date, "event")
		writeQuoted(buf, e.Name)
		buf.WriteByte(' ')
		writeQuoted(buf, e.Value)
		buf.WriteByte('\n')
	default:
		return
	}
	p.writeMetadata(buf, d.Meta(), p.Indentation)
}

func writeHead(buf stringWriter, date *ast.Date, keyword string) {
	buf.WriteString(date.String())
	buf.WriteByte(' ')
	buf.WriteString(keyword)
	buf.WriteByte(' ')
}

func (p *Printer) writeTransaction(buf stringWriter, txn *ast.Transaction, col int) {
	buf.WriteString(txn.Date.String())
	buf.WriteByte(' ')
	flag := txn.Flag
	if flag == "" {
		flag = "*"
	}
	buf.WriteString(flag)

	if txn.Payee != "" {
		buf.WriteByte(' ')
		writeQuoted(buf, txn.Payee)
	}
	if txn.Narration != "" || txn.Payee != "" {
		buf.WriteByte(' ')
		writeQuoted(buf, txn.Narration)
	}
	for _, tag := range txn.Tags {
		buf.WriteString(" #")
		buf.WriteString(string(tag))
	}
	for _, link := range txn.Links {
		buf.WriteString(" ^")
		buf.WriteString(string(link))
	}
	buf.WriteByte('\n')

	p.writeMetadata(buf, txn.Metadata, p.Indentation)

	indent := strings.Repeat(" ", p.Indentation)
	for _, posting := range txn.Postings {
		var line strings.Builder
		line.WriteString(indent)
		if posting.Flag != "" {
			line.WriteString(posting.Flag)
			line.WriteByte(' ')
		}
		line.WriteString(string(posting.Account))

		if posting.Amount != nil {
			writeAligned(&line, posting.Amount.Value, posting.Amount.Currency, col)
			if posting.Cost != nil {
				line.WriteByte(' ')
				writeCost(&line, posting.Cost)
			}
			if posting.Price != nil {
				if posting.PriceTotal {
					line.WriteString(" @@ ")
				} else {
					line.WriteString(" @ ")
				}
				line.WriteString(posting.Price.String())
			}
		}

		buf.WriteString(line.String())
		buf.WriteByte('\n')
		p.writeMetadata(buf, posting.Metadata, p.Indentation*2)
	}
}

func (p *Printer) writeBalance(buf stringWriter, b *ast.Balance, col int) {
	var line strings.Builder
	writeHead(&line, b.Date, "balance")
	line.WriteString(string(b.Account))
	if b.Amount != nil {
		number := b.Amount.Value
		if b.Tolerance != "" {
			number += " ~ " + b.Tolerance
		}
		writeAligned(&line, number, b.Amount.Currency, col)
	}
	buf.WriteString(line.String())
	buf.WriteByte('\n')
}

func (p *Printer) writePrice(buf stringWriter, price *ast.Price, col int) {
	var line strings.Builder
	writeHead(&line, price.Date, "price")
	line.WriteString(price.Commodity)
	if price.Amount != nil {
		writeAligned(&line, price.Amount.Value, price.Amount.Currency, col)
	}
	buf.WriteString(line.String())
	buf.WriteByte('\n')
}

// writeAligned pads line so that the currency following number ends on
// col. At least MinimumSpacing spaces separate the number from what comes
// before it.
func writeAligned(line *strings.Builder, number, currency string, col int) {
	width := runewidth.StringWidth(line.String())
	spaces := col - width - runewidth.StringWidth(number) - 1 - runewidth.StringWidth(currency)
	if spaces < MinimumSpacing {
		spaces = MinimumSpacing
	}
	line.WriteString(strings.Repeat(" ", spaces))
	line.WriteString(number)
	line.WriteByte(' ')
	line.WriteString(currency)
}

func writeCost(line *strings.Builder, cost *ast.Cost) {
	left, right := "{", "}"
	if cost.IsTotal {
		left, right = "{{", "}}"
	}
	line.WriteString(left)

	var parts []string
	if cost.Amount != nil {
		parts = append(parts, cost.Amount.String())
	}
	if cost.Date != nil {
		parts = append(parts, cost.Date.String())
	}
	if cost.Label != "" {
		parts = append(parts, `"`+escapeString(cost.Label)+`"`)
	}
	line.WriteString(strings.Join(parts, ", "))
	line.WriteString(right)
}

func (p *Printer) writeMetadata(buf stringWriter, meta ast.Metadata, indent int) {
	prefix := strings.Repeat(" ", indent)
	for _, md := range meta {
		buf.WriteString(prefix)
		buf.WriteString(md.Key)
		buf.WriteByte(':')
		switch md.Value.Kind {
		case ast.MetaNone:
		case ast.MetaString:
			buf.WriteByte(' ')
			writeQuoted(buf, md.Value.Raw)
		default:
			buf.WriteByte(' ')
			buf.WriteString(md.Value.Raw)
		}
		buf.WriteByte('\n')
	}
}

// currencyColumn returns the configured column, or derives one wide enough
// for every account and amount in entries.
func (p *Printer) currencyColumn(entries []ast.Directive) int {
	if p.CurrencyColumn > 0 {
		return p.CurrencyColumn
	}

	widest := 0
	longest := 0
	consider := func(prefix int, account string, number string, currency string) {
		if w := prefix + runewidth.StringWidth(account); w > widest {
			widest = w
		}
		if l := runewidth.StringWidth(number) + 1 + runewidth.StringWidth(currency); l > longest {
			longest = l
		}
	}

	for _, d := range entries {
		switch e := d.(type) {
		case *ast.Transaction:
			for _, posting := range e.Postings {
				prefix := p.Indentation
				if posting.Flag != "" {
					prefix += runewidth.StringWidth(posting.Flag) + 1
				}
				if posting.Amount == nil {
					continue
				}
				consider(prefix, string(posting.Account), posting.Amount.Value, posting.Amount.Currency)
			}
		case *ast.Balance:
			if e.Amount == nil {
				continue
			}
			number := e.Amount.Value
			if e.Tolerance != "" {
				number += " ~ " + e.Tolerance
			}
			consider(DateWidth+BalanceKeywordWidth, string(e.Account), number, e.Amount.Currency)
		case *ast.Price:
			if e.Amount == nil {
				continue
			}
			consider(DateWidth+PriceKeywordWidth, e.Commodity, e.Amount.Value, e.Amount.Currency)
		}
	}

	if widest == 0 {
		return DefaultCurrencyColumn
	}
	col := widest + MinimumSpacing + longest
	if col < DefaultCurrencyColumn {
		col = DefaultCurrencyColumn
	}
	return col
}

func writeQuoted(buf stringWriter, s string) {
	buf.WriteByte('"')
	buf.WriteString(escapeString(s))
	buf.WriteByte('"')
}
