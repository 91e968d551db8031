package ast

import (
	"fmt"
	"strings"
	"time"
)

// NewAmount creates an Amount. The value is kept as written; it is not
// validated here.
func NewAmount(value, currency string) *Amount {
	return &Amount{Value: value, Currency: currency}
}

// NewDate parses a YYYY-MM-DD date.
func NewDate(s string) (*Date, error) {
	d := &Date{}
	if err := d.Capture([]string{s}); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDate is like NewDate but panics on malformed input. It is meant for
// literals in tests and examples.
func MustDate(s string) *Date {
	d, err := NewDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDateFromTime creates a Date from the calendar day of t.
func NewDateFromTime(t time.Time) *Date {
	y, m, d := t.Date()
	return &Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewAccount checks the general shape of an account name: at least two
// segments, each starting with an uppercase letter or a digit. Whether the
// root is one of the configured account types is left to validation.
func NewAccount(name string) (Account, error) {
	segments := strings.Split(name, ":")
	if len(segments) < 2 {
		return "", fmt.Errorf("invalid account %q: expected at least two segments", name)
	}
	for _, s := range segments {
		if !IsValidAccountSegment(s) {
			return "", fmt.Errorf("invalid account %q: bad segment %q", name, s)
		}
	}
	return Account(name), nil
}

// NewLink creates a Link, stripping a leading ^.
func NewLink(name string) Link {
	return Link(strings.TrimPrefix(name, "^"))
}

// NewTag creates a Tag, stripping a leading #.
func NewTag(name string) Tag {
	return Tag(strings.TrimPrefix(name, "#"))
}

// NewMetadatum creates a string-valued metadata entry.
func NewMetadatum(key, value string) *Metadatum {
	return &Metadatum{Key: key, Value: MetaValue{Kind: MetaString, Raw: value}}
}

// NewTypedMetadatum creates a metadata entry of the given kind. raw must be
// the literal as it would be written in a ledger.
func NewTypedMetadatum(key string, kind MetaKind, raw string) *Metadatum {
	return &Metadatum{Key: key, Value: MetaValue{Kind: kind, Raw: raw}}
}

// TransactionOption configures a Transaction built by NewTransaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a cleared transaction.
//
//	txn := ast.NewTransaction(date, "Coffee",
//		ast.WithPayee("Blue Bottle"),
//		ast.WithPostings(
//			ast.NewPosting("Expenses:Coffee", ast.WithAmount("4.50", "USD")),
//			ast.NewPosting("Assets:Cash"),
//		),
//	)
func NewTransaction(date *Date, narration string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{Date: date, Flag: "*", Narration: narration}
	for _, opt := range opts {
		opt(txn)
	}
	return txn
}

func WithFlag(flag string) TransactionOption {
	return func(t *Transaction) { t.Flag = flag }
}

func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) { t.Payee = payee }
}

func WithTags(tags ...string) TransactionOption {
	return func(t *Transaction) {
		for _, tag := range tags {
			t.Tags = append(t.Tags, NewTag(tag))
		}
	}
}

func WithLinks(links ...string) TransactionOption {
	return func(t *Transaction) {
		for _, link := range links {
			t.Links = append(t.Links, NewLink(link))
		}
	}
}

func WithTransactionMetadata(metadata ...*Metadatum) TransactionOption {
	return func(t *Transaction) { t.AddMetadata(metadata...) }
}

func WithPostings(postings ...*Posting) TransactionOption {
	return func(t *Transaction) { t.Postings = append(t.Postings, postings...) }
}

// WithPosition sets the source position of the transaction.
func WithPosition(pos Position) TransactionOption {
	return func(t *Transaction) { t.Pos = pos }
}

// PostingOption configures a Posting built by NewPosting.
type PostingOption func(*Posting)

// NewPosting creates a posting. Without WithAmount the amount is elided.
func NewPosting(account Account, opts ...PostingOption) *Posting {
	p := &Posting{Account: account}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithAmount(value, currency string) PostingOption {
	return func(p *Posting) { p.Amount = NewAmount(value, currency) }
}

func WithCost(cost *Cost) PostingOption {
	return func(p *Posting) { p.Cost = cost }
}

// WithPrice sets a per-unit price (@).
func WithPrice(price *Amount) PostingOption {
	return func(p *Posting) {
		p.Price = price
		p.PriceTotal = false
	}
}

// WithTotalPrice sets a total price (@@).
func WithTotalPrice(price *Amount) PostingOption {
	return func(p *Posting) {
		p.Price = price
		p.PriceTotal = true
	}
}

func WithPostingFlag(flag string) PostingOption {
	return func(p *Posting) { p.Flag = flag }
}

func WithPostingMetadata(metadata ...*Metadatum) PostingOption {
	return func(p *Posting) { p.AddMetadata(metadata...) }
}

// NewCost creates a per-unit cost {X CUR}.
func NewCost(amount *Amount) *Cost {
	return &Cost{Amount: amount}
}

// NewTotalCost creates a total cost {{X CUR}}.
func NewTotalCost(amount *Amount) *Cost {
	return &Cost{Amount: amount, IsTotal: true}
}

// NewEmptyCost creates the empty cost {}.
func NewEmptyCost() *Cost {
	return &Cost{}
}

func NewOpen(date *Date, account Account, constraintCurrencies []string, bookingMethod string) *Open {
	return &Open{Date: date, Account: account, ConstraintCurrencies: constraintCurrencies, BookingMethod: bookingMethod}
}

func NewClose(date *Date, account Account) *Close {
	return &Close{Date: date, Account: account}
}

func NewBalance(date *Date, account Account, amount *Amount) *Balance {
	return &Balance{Date: date, Account: account, Amount: amount}
}

func NewPad(date *Date, account, padAccount Account) *Pad {
	return &Pad{Date: date, Account: account, AccountPad: padAccount}
}

func NewNote(date *Date, account Account, description string) *Note {
	return &Note{Date: date, Account: account, Description: description}
}

func NewDocument(date *Date, account Account, path string) *Document {
	return &Document{Date: date, Account: account, Path: path}
}

func NewCommodity(date *Date, currency string) *Commodity {
	return &Commodity{Date: date, Currency: currency}
}

func NewPrice(date *Date, commodity string, amount *Amount) *Price {
	return &Price{Date: date, Commodity: commodity, Amount: amount}
}

func NewEvent(date *Date, name, value string) *Event {
	return &Event{Date: date, Name: name, Value: value}
}
