package parser

// TokenType represents the type of token scanned from the input.
type TokenType uint8

const (
	EOF TokenType = iota
	ILLEGAL

	// Keywords
	TXN
	BALANCE
	OPEN
	CLOSE
	COMMODITY
	PAD
	NOTE
	DOCUMENT
	PRICE
	EVENT
	CUSTOM
	QUERY
	OPTION
	INCLUDE
	PLUGIN
	PUSHTAG
	POPTAG
	PUSHMETA
	POPMETA

	// Literals
	DATE    // YYYY-MM-DD
	ACCOUNT // Assets:Bank:Checking
	STRING  // "quoted string"
	NUMBER  // 123.45 or -123.45
	IDENT   // USD, TRUE, metadata keys
	TAG     // #tag
	LINK    // ^link

	// Symbols
	ASTERISK // *
	EXCLAIM  // !
	COLON    // :
	COMMA    // ,
	TILDE    // ~
	AT       // @
	ATAT     // @@
	LBRACE   // {
	RBRACE   // }
	LDBRACE  // {{
	RDBRACE  // }}
)

var tokenNames = [...]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	TXN:       "txn",
	BALANCE:   "balance",
	OPEN:      "open",
	CLOSE:     "close",
	COMMODITY: "commodity",
	PAD:       "pad",
	NOTE:      "note",
	DOCUMENT:  "document",
	PRICE:     "price",
	EVENT:     "event",
	CUSTOM:    "custom",
	QUERY:     "query",
	OPTION:    "option",
	INCLUDE:   "include",
	PLUGIN:    "plugin",
	PUSHTAG:   "pushtag",
	POPTAG:    "poptag",
	PUSHMETA:  "pushmeta",
	POPMETA:   "popmeta",

	DATE:    "DATE",
	ACCOUNT: "ACCOUNT",
	STRING:  "STRING",
	NUMBER:  "NUMBER",
	IDENT:   "IDENT",
	TAG:     "TAG",
	LINK:    "LINK",

	ASTERISK: "*",
	EXCLAIM:  "!",
	COLON:    ":",
	COMMA:    ",",
	TILDE:    "~",
	AT:       "@",
	ATAT:     "@@",
	LBRACE:   "{",
	RBRACE:   "}",
	LDBRACE:  "{{",
	RDBRACE:  "}}",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return "UNKNOWN"
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TXN && t <= POPMETA
}

var keywords = map[string]TokenType{
	"txn":       TXN,
	"balance":   BALANCE,
	"open":      OPEN,
	"close":     CLOSE,
	"commodity": COMMODITY,
	"pad":       PAD,
	"note":      NOTE,
	"document":  DOCUMENT,
	"price":     PRICE,
	"event":     EVENT,
	"custom":    CUSTOM,
	"query":     QUERY,
	"option":    OPTION,
	"include":   INCLUDE,
	"plugin":    PLUGIN,
	"pushtag":   PUSHTAG,
	"poptag":    POPTAG,
	"pushmeta":  PUSHMETA,
	"popmeta":   POPMETA,
}

// Token is a lexical token. It stores byte offsets into the source buffer
// instead of the text itself.
type Token struct {
	Type   TokenType
	Start  int // Byte offset into source buffer
	End    int // End offset (exclusive)
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// String materializes the token text from the source buffer.
func (t Token) String(source []byte) string {
	return string(t.Bytes(source))
}

// Bytes returns a view of the token text without copying.
func (t Token) Bytes(source []byte) []byte {
	if t.Start >= len(source) || t.End > len(source) || t.Start > t.End {
		return nil
	}
	return source[t.Start:t.End]
}
