package ast

// Transaction moves amounts between accounts. The flag is "*" for cleared
// entries and "!" for pending ones; the "txn" keyword is read as "*".
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine" #dinner ^inv-42
//	  Liabilities:CreditCard:CapitalOne         -37.45 USD
//	  Expenses:Food:Restaurant
type Transaction struct {
	Pos       Position
	Date      *Date
	Flag      string
	Payee     string
	Narration string
	Tags      []Tag
	Links     []Link

	withMetadata

	Postings []*Posting
}

var _ Directive = &Transaction{}

func (t *Transaction) Position() Position { return t.Pos }
func (t *Transaction) date() *Date        { return t.Date }
func (t *Transaction) Kind() string       { return "transaction" }

// Accounts returns the distinct accounts of the postings in order of first use.
func (t *Transaction) Accounts() []Account {
	accounts := make([]Account, 0, len(t.Postings))
	seen := make(map[Account]bool, len(t.Postings))
	for _, p := range t.Postings {
		if !seen[p.Account] {
			seen[p.Account] = true
			accounts = append(accounts, p.Account)
		}
	}
	return accounts
}

// Posting is a single leg of a transaction. Amount is nil when elided, in
// which case the posting absorbs whatever the other legs leave over.
//
//	Assets:Investments:Brokerage    10 HOOL {518.73 USD}  ; held at cost
//	Assets:Investments:Cash        200 EUR @ 1.35 USD     ; converted at price
//	Assets:Checking                                       ; elided
type Posting struct {
	Pos        Position
	Flag       string
	Account    Account
	Amount     *Amount
	Cost       *Cost
	Price      *Amount
	PriceTotal bool // @@ instead of @

	withMetadata
}
