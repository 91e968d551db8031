package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Amount represents a numerical value with its associated currency or commodity symbol.
// The value is stored as a string to preserve the exact decimal representation from
// the input, avoiding floating-point precision issues.
type Amount struct {
	Value    string
	Currency string
}

// String returns "VALUE CURRENCY".
func (a *Amount) String() string {
	if a == nil {
		return ""
	}
	return a.Value + " " + a.Currency
}

// Cost represents the cost basis specification for a posting. An empty cost {}
// selects any lot automatically. Otherwise the per-unit (or, with double braces,
// total) cost amount can be given along with an acquisition date and a label.
//
// Example cost specifications:
//
//	10 HOOL {518.73 USD}              ; Per-unit cost
//	10 HOOL {{5187.30 USD}}           ; Total cost
//	10 HOOL {518.73 USD, 2014-05-01}  ; Cost with acquisition date
//	-5 HOOL {502.12 USD, "first-lot"} ; Cost with label for lot selection
//	10 HOOL {}                        ; Any lot (automatic selection)
type Cost struct {
	Amount  *Amount
	Date    *Date
	Label   string
	IsTotal bool
}

// IsEmpty returns true if this is an empty cost specification {}.
// Distinguishes between nil (no cost) and empty cost (any lot selection).
func (c *Cost) IsEmpty() bool {
	return c != nil && c.Amount == nil && c.Date == nil && c.Label == ""
}

// Account represents an account name: colon separated segments where the
// first one is the account root (Assets, Liabilities, Equity, Income or
// Expenses unless renamed through options).
//
// Example accounts:
//
//	Assets:US:BofA:Checking
//	Liabilities:CreditCard:CapitalOne
//	Expenses:Home:Rent
type Account string

// Root returns the first segment of the account.
func (a Account) Root() string {
	root, _, _ := strings.Cut(string(a), ":")
	return root
}

// Segments returns the colon separated parts of the account name.
func (a Account) Segments() []string {
	return strings.Split(string(a), ":")
}

// Parent returns the account one level up, or "" for a root.
func (a Account) Parent() Account {
	i := strings.LastIndexByte(string(a), ':')
	if i < 0 {
		return ""
	}
	return a[:i]
}

// IsOrDescendantOf reports whether a equals parent or lives below it.
func (a Account) IsOrDescendantOf(parent Account) bool {
	if a == parent {
		return true
	}
	return strings.HasPrefix(string(a), string(parent)+":")
}

// accountSegmentRegex validates account segments (after first).
// Must start with uppercase letter or digit, can contain alphanumerics and hyphens.
var accountSegmentRegex = regexp.MustCompile(`^[\p{Lu}\p{Lo}0-9][\p{L}\p{N}-]*$`)

// IsValidAccountSegment checks if an account segment (after the root) is valid.
func IsValidAccountSegment(segment string) bool {
	return len(segment) > 0 && accountSegmentRegex.MatchString(segment)
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD).
type Date struct {
	time.Time
}

// Capture parses the first value as a YYYY-MM-DD date.
func (d *Date) Capture(values []string) error {
	t, err := time.Parse("2006-01-02", values[0])
	if err != nil {
		return fmt.Errorf("invalid date: %s", values[0])
	}
	d.Time = t
	return nil
}

// IsZero returns true if the Date is nil or represents the zero time.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// String formats the date as YYYY-MM-DD.
func (d *Date) String() string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}

// Link represents a reference link starting with ^, used to connect related
// transactions. Stored without the prefix.
type Link string

// Tag represents a hashtag starting with #. Stored without the prefix.
type Tag string

// MetaKind identifies the scalar type of a metadata value.
type MetaKind uint8

const (
	MetaString MetaKind = iota
	MetaNumber
	MetaDate
	MetaAccount
	MetaCurrency
	MetaBool
	MetaTag
	MetaLink
	MetaAmount
	MetaNone
)

var metaKindNames = [...]string{
	MetaString:   "string",
	MetaNumber:   "number",
	MetaDate:     "date",
	MetaAccount:  "account",
	MetaCurrency: "currency",
	MetaBool:     "boolean",
	MetaTag:      "tag",
	MetaLink:     "link",
	MetaAmount:   "amount",
	MetaNone:     "none",
}

func (k MetaKind) String() string {
	if int(k) < len(metaKindNames) {
		return metaKindNames[k]
	}
	return "unknown"
}

// MetaValue is a scalar metadata value. Raw holds the value as it must be
// written back: unquoted string contents for MetaString, the literal text for
// every other kind.
type MetaValue struct {
	Kind MetaKind
	Raw  string
}

// Metadatum is a single key-value pair attached to a directive or posting.
//
// Example:
//
//	2014-05-05 * "Payment"
//	  invoice: "INV-2014-05-001"
//	  Assets:Checking  -100.00 USD
//	    confirmation: "CONF123456"
//	  Expenses:Services
type Metadatum struct {
	Pos   Position
	Key   string
	Value MetaValue
}

// Metadata is an ordered list of metadata entries.
type Metadata []*Metadatum

// Get returns the first value stored under key.
func (m Metadata) Get(key string) (MetaValue, bool) {
	for _, md := range m {
		if md.Key == key {
			return md.Value, true
		}
	}
	return MetaValue{}, false
}
