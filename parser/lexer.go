package parser

// Lexer turns ledger source into tokens in a single pass. Comments and
// whitespace are dropped; the parser recovers the line structure from each
// token's line and column.
type Lexer struct {
	source []byte
	pos    int
	line   int
	column int
	tokens []Token
}

// NewLexer creates a lexer over source.
func NewLexer(source []byte) *Lexer {
	// Roughly one token per 20 bytes.
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, len(source)/20+16),
	}
}

// ScanAll lexes the entire source and returns the tokens, terminated by EOF.
func (l *Lexer) ScanAll() []Token {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.source) {
			break
		}
		if l.source[l.pos] == ';' || (l.column == 1 && isCommentLineStart(l.source[l.pos])) {
			l.skipLine()
			continue
		}
		l.tokens = append(l.tokens, l.scanToken())
	}

	l.tokens = append(l.tokens, Token{Type: EOF, Start: l.pos, End: l.pos, Line: l.line, Column: l.column})
	return l.tokens
}

// isCommentLineStart reports whether a line starting with ch is ignored
// as a whole. Org-mode headings and a few punctuation marks qualify.
func isCommentLineStart(ch byte) bool {
	switch ch {
	case '*', '#', '%', '|', '&':
		return true
	}
	return false
}

func (l *Lexer) scanToken() Token {
	start, line, col := l.pos, l.line, l.column
	ch := l.advance()

	tok := func(typ TokenType) Token {
		return Token{Type: typ, Start: start, End: l.pos, Line: line, Column: col}
	}

	switch {
	case isDigit(ch):
		if l.isDatePattern(start) {
			for i := 0; i < 9; i++ {
				l.advance()
			}
			return tok(DATE)
		}
		l.scanNumber()
		return tok(NUMBER)
	case (ch == '-' || ch == '+') && isDigit(l.peek()):
		l.scanNumber()
		return tok(NUMBER)
	case ch == '"':
		if !l.scanString() {
			return tok(ILLEGAL)
		}
		return tok(STRING)
	case ch == '#':
		l.scanWhile(isTagChar)
		return tok(TAG)
	case ch == '^':
		l.scanWhile(isTagChar)
		return tok(LINK)
	case ch >= 'A' && ch <= 'Z' || ch >= 0x80:
		if l.scanAccountOrIdent() {
			return tok(ACCOUNT)
		}
		return tok(IDENT)
	case ch >= 'a' && ch <= 'z':
		l.scanWhile(isKeyChar)
		if typ, ok := keywords[string(l.source[start:l.pos])]; ok {
			return tok(typ)
		}
		return tok(IDENT)
	case ch == '*':
		return tok(ASTERISK)
	case ch == '!':
		return tok(EXCLAIM)
	case ch == ':':
		return tok(COLON)
	case ch == ',':
		return tok(COMMA)
	case ch == '~':
		return tok(TILDE)
	case ch == '{':
		if l.peek() == '{' {
			l.advance()
			return tok(LDBRACE)
		}
		return tok(LBRACE)
	case ch == '}':
		if l.peek() == '}' {
			l.advance()
			return tok(RDBRACE)
		}
		return tok(RBRACE)
	case ch == '@':
		if l.peek() == '@' {
			l.advance()
			return tok(ATAT)
		}
		return tok(AT)
	default:
		return tok(ILLEGAL)
	}
}

// isDatePattern checks for YYYY-MM-DD at start.
func (l *Lexer) isDatePattern(start int) bool {
	if start+10 > len(l.source) {
		return false
	}
	src := l.source[start:]
	return isDigit(src[0]) && isDigit(src[1]) && isDigit(src[2]) && isDigit(src[3]) &&
		src[4] == '-' &&
		isDigit(src[5]) && isDigit(src[6]) &&
		src[7] == '-' &&
		isDigit(src[8]) && isDigit(src[9])
}

// scanNumber consumes the rest of [-+]?[0-9]+(\.[0-9]*)?
func (l *Lexer) scanNumber() {
	l.scanWhile(isDigit)
	if l.peek() == '.' {
		l.advance()
		l.scanWhile(isDigit)
	}
}

// scanString consumes a quoted string up to and including the closing quote.
// Strings do not span lines. Reports false when the string is unterminated.
func (l *Lexer) scanString() bool {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case '"':
			l.advance()
			return true
		case '\n':
			return false
		case '\\':
			l.advance()
			if l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.advance()
			}
		default:
			l.advance()
		}
	}
	return false
}

// scanAccountOrIdent consumes a capitalized word. Words containing a colon
// are accounts; everything else (currencies, TRUE, FALSE) is an identifier.
// Non-ASCII bytes are accepted so account segments can use any script.
func (l *Lexer) scanAccountOrIdent() bool {
	hasColon := false
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == ':' {
			// A trailing colon is a metadata separator, not part of an account.
			next := byte(0)
			if l.pos+1 < len(l.source) {
				next = l.source[l.pos+1]
			}
			if !isAccountChar(next) {
				break
			}
			hasColon = true
		} else if !isAccountChar(ch) && ch != '.' && ch != '_' && ch != '\'' {
			break
		}
		l.advance()
	}
	return hasColon
}

func (l *Lexer) scanWhile(pred func(byte) bool) {
	for l.pos < len(l.source) && pred(l.source[l.pos]) {
		l.advance()
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) skipLine() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else if ch < 0x80 || ch >= 0xC0 {
		// Continuation bytes of a UTF-8 sequence share the column of
		// their leading byte.
		l.column++
	}
	return ch
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isAccountChar(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' || isDigit(ch) || ch == '-' || ch >= 0x80
}

func isTagChar(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' || isDigit(ch) || ch == '_' || ch == '-' || ch == '/' || ch == '.'
}

func isKeyChar(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' || isDigit(ch) || ch == '_' || ch == '-'
}
