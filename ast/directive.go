package ast

// Commodity declares a currency or tradable instrument.
//
//	2014-01-01 commodity USD
//	  name: "US Dollar"
type Commodity struct {
	Pos      Position
	Date     *Date
	Currency string

	withMetadata
}

var _ Directive = &Commodity{}

func (c *Commodity) Position() Position { return c.Pos }
func (c *Commodity) date() *Date        { return c.Date }
func (c *Commodity) Kind() string       { return "commodity" }

// Open starts the lifetime of an account. The account may be restricted to a
// set of currencies and carry a booking method for lot matching.
//
//	2014-05-01 open Assets:US:BofA:Checking USD
//	2014-05-01 open Assets:Investments:Brokerage USD,EUR "FIFO"
type Open struct {
	Pos                  Position
	Date                 *Date
	Account              Account
	ConstraintCurrencies []string
	BookingMethod        string

	withMetadata
}

var _ Directive = &Open{}

func (o *Open) Position() Position { return o.Pos }
func (o *Open) date() *Date        { return o.Date }
func (o *Open) Kind() string       { return "open" }

// Allows reports whether the account accepts postings in currency. An open
// without constraint currencies accepts everything.
func (o *Open) Allows(currency string) bool {
	if len(o.ConstraintCurrencies) == 0 {
		return true
	}
	for _, c := range o.ConstraintCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// Close ends the lifetime of an account. The account can still be used on the
// closing date itself.
//
//	2015-09-23 close Assets:US:BofA:Checking
type Close struct {
	Pos     Position
	Date    *Date
	Account Account

	withMetadata
}

var _ Directive = &Close{}

func (c *Close) Position() Position { return c.Pos }
func (c *Close) date() *Date        { return c.Date }
func (c *Close) Kind() string       { return "close" }

// Balance asserts the amount of one currency held by an account (and its
// sub-accounts) at the beginning of the given date.
//
//	2014-08-09 balance Assets:US:BofA:Checking 562.00 USD
//	2014-08-09 balance Assets:US:BofA:Checking 562.00 ~ 0.01 USD
type Balance struct {
	Pos       Position
	Date      *Date
	Account   Account
	Amount    *Amount
	Tolerance string

	withMetadata
}

var _ Directive = &Balance{}

func (b *Balance) Position() Position { return b.Pos }
func (b *Balance) date() *Date        { return b.Date }
func (b *Balance) Kind() string       { return "balance" }

// Pad fills Account from AccountPad so that the next balance assertion on
// Account holds.
//
//	2014-01-01 pad Assets:US:BofA:Checking Equity:Opening-Balances
type Pad struct {
	Pos        Position
	Date       *Date
	Account    Account
	AccountPad Account

	withMetadata
}

var _ Directive = &Pad{}

func (p *Pad) Position() Position { return p.Pos }
func (p *Pad) date() *Date        { return p.Date }
func (p *Pad) Kind() string       { return "pad" }

// Note attaches a dated comment to an account.
//
//	2014-07-09 note Assets:US:BofA:Checking "Called bank about pending deposit"
type Note struct {
	Pos         Position
	Date        *Date
	Account     Account
	Description string

	withMetadata
}

var _ Directive = &Note{}

func (n *Note) Position() Position { return n.Pos }
func (n *Note) date() *Date        { return n.Date }
func (n *Note) Kind() string       { return "note" }

// Document links an external file to an account.
//
//	2014-07-09 document Assets:US:BofA:Checking "/statements/2014-07.pdf"
type Document struct {
	Pos     Position
	Date    *Date
	Account Account
	Path    string

	withMetadata
}

var _ Directive = &Document{}

func (d *Document) Position() Position { return d.Pos }
func (d *Document) date() *Date        { return d.Date }
func (d *Document) Kind() string       { return "document" }

// Price records the price of one commodity in another at a date.
//
//	2015-04-30 price HOOL 582.26 USD
type Price struct {
	Pos       Position
	Date      *Date
	Commodity string
	Amount    *Amount

	withMetadata
}

var _ Directive = &Price{}

func (p *Price) Position() Position { return p.Pos }
func (p *Price) date() *Date        { return p.Date }
func (p *Price) Kind() string       { return "price" }

// Event records the value of a named variable from a date onward.
//
//	2014-07-09 event "location" "New York, USA"
type Event struct {
	Pos   Position
	Date  *Date
	Name  string
	Value string

	withMetadata
}

var _ Directive = &Event{}

func (e *Event) Position() Position { return e.Pos }
func (e *Event) date() *Date        { return e.Date }
func (e *Event) Kind() string       { return "event" }
