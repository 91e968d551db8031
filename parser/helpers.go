package parser

import (
	"strings"

	"github.com/robinvdvleuten/beancount-validate/ast"
)

// Helper parsing methods used across directive parsers. Each of them takes
// the line of the entry header and refuses tokens from other lines, which is
// how the line-oriented grammar is kept on top of a flat token stream.

func (p *Parser) parseDate() (*ast.Date, error) {
	tok := p.advance()
	date, err := ast.NewDate(tok.String(p.source))
	if err != nil {
		return nil, p.errorAtToken(tok, "invalid date %q", tok.String(p.source))
	}
	return date, nil
}

func (p *Parser) parseAccount(line int) (ast.Account, error) {
	tok, err := p.expectOnLine(ACCOUNT, line, "account")
	if err != nil {
		return "", err
	}
	return ast.Account(p.interner.InternBytes(tok.Bytes(p.source))), nil
}

func (p *Parser) parseString(line int) (string, error) {
	tok, err := p.expectOnLine(STRING, line, "string")
	if err != nil {
		return "", err
	}
	return unquote(tok.String(p.source)), nil
}

func (p *Parser) parseTag(line int) (ast.Tag, error) {
	tok, err := p.expectOnLine(TAG, line, "tag")
	if err != nil {
		return "", err
	}
	return ast.NewTag(tok.String(p.source)), nil
}

// parseCurrency parses a commodity symbol: an identifier starting with an
// uppercase letter.
func (p *Parser) parseCurrency(line int) (string, error) {
	tok := p.peek()
	if tok.Type != IDENT || tok.Line != line || !isCurrencyStart(p.source[tok.Start]) {
		return "", p.unexpected(tok, line, "currency")
	}
	p.advance()
	return p.interner.InternBytes(tok.Bytes(p.source)), nil
}

func (p *Parser) checkCurrency(line int) bool {
	tok := p.peek()
	return tok.Type == IDENT && tok.Line == line && isCurrencyStart(p.source[tok.Start])
}

func isCurrencyStart(ch byte) bool { return ch >= 'A' && ch <= 'Z' }

// parseNumber parses a NUMBER token and returns its text as written.
func (p *Parser) parseNumber(line int) (string, error) {
	tok, err := p.expectOnLine(NUMBER, line, "number")
	if err != nil {
		return "", err
	}
	return tok.String(p.source), nil
}

// parseAmount parses NUMBER CURRENCY.
func (p *Parser) parseAmount(line int) (*ast.Amount, error) {
	value, err := p.parseNumber(line)
	if err != nil {
		return nil, err
	}
	currency, err := p.parseCurrency(line)
	if err != nil {
		return nil, err
	}
	return ast.NewAmount(value, currency), nil
}

// parseCost parses { ... } or {{ ... }}. The components are an amount, an
// acquisition date and a label, separated by commas and in any order.
func (p *Parser) parseCost(line int) (*ast.Cost, error) {
	open := p.advance()
	cost := &ast.Cost{IsTotal: open.Type == LDBRACE}
	closing := RBRACE
	if cost.IsTotal {
		closing = RDBRACE
	}

	if p.checkOnLine(closing, line) {
		p.advance()
		return cost, nil
	}

	for {
		tok := p.peek()
		switch {
		case tok.Line != line:
			return nil, p.unexpected(tok, line, closing.String())
		case tok.Type == NUMBER && cost.Amount == nil:
			amount, err := p.parseAmount(line)
			if err != nil {
				return nil, err
			}
			cost.Amount = amount
		case tok.Type == DATE && cost.Date == nil:
			date, err := p.parseDate()
			if err != nil {
				return nil, err
			}
			cost.Date = date
		case tok.Type == STRING && cost.Label == "":
			cost.Label = unquote(tok.String(p.source))
			p.advance()
		default:
			return nil, p.unexpected(tok, line, "cost component")
		}

		if p.matchOnLine(COMMA, line) {
			continue
		}
		if _, err := p.expectOnLine(closing, line, closing.String()); err != nil {
			return nil, err
		}
		return cost, nil
	}
}

// isMetadataKey reports whether the next tokens are `key:` with the colon
// directly attached to the key.
func (p *Parser) isMetadataKey() bool {
	key := p.peek()
	if key.Type != IDENT && !key.Type.IsKeyword() {
		return false
	}
	if ch := p.source[key.Start]; ch < 'a' || ch > 'z' {
		return false
	}
	colon := p.peekAhead(1)
	return colon.Type == COLON && colon.Start == key.End && colon.Line == key.Line
}

// parseMetadatum parses `key: value`. The value is optional.
func (p *Parser) parseMetadatum() (*ast.Metadatum, error) {
	keyTok := p.advance()
	p.advance() // colon
	line := keyTok.Line
	md := &ast.Metadatum{Pos: p.position(keyTok), Key: keyTok.String(p.source)}

	tok := p.peek()
	if tok.Line != line || tok.Type == EOF {
		md.Value = ast.MetaValue{Kind: ast.MetaNone}
		return md, nil
	}

	switch tok.Type {
	case STRING:
		p.advance()
		md.Value = ast.MetaValue{Kind: ast.MetaString, Raw: unquote(tok.String(p.source))}
	case DATE:
		if _, err := p.parseDate(); err != nil {
			return nil, err
		}
		md.Value = ast.MetaValue{Kind: ast.MetaDate, Raw: tok.String(p.source)}
	case ACCOUNT:
		p.advance()
		md.Value = ast.MetaValue{Kind: ast.MetaAccount, Raw: tok.String(p.source)}
	case NUMBER:
		p.advance()
		if p.checkCurrency(line) {
			currency, _ := p.parseCurrency(line)
			md.Value = ast.MetaValue{Kind: ast.MetaAmount, Raw: tok.String(p.source) + " " + currency}
		} else {
			md.Value = ast.MetaValue{Kind: ast.MetaNumber, Raw: tok.String(p.source)}
		}
	case TAG:
		p.advance()
		md.Value = ast.MetaValue{Kind: ast.MetaTag, Raw: tok.String(p.source)}
	case LINK:
		p.advance()
		md.Value = ast.MetaValue{Kind: ast.MetaLink, Raw: tok.String(p.source)}
	case IDENT:
		p.advance()
		text := tok.String(p.source)
		switch {
		case text == "TRUE" || text == "FALSE":
			md.Value = ast.MetaValue{Kind: ast.MetaBool, Raw: text}
		case isCurrencyStart(text[0]):
			md.Value = ast.MetaValue{Kind: ast.MetaCurrency, Raw: text}
		default:
			return nil, p.errorAtToken(tok, "invalid metadata value %q", text)
		}
	default:
		return nil, p.errorAtToken(tok, "invalid metadata value %q", tok.String(p.source))
	}

	if err := p.endOfLine(line); err != nil {
		return nil, err
	}
	return md, nil
}

type metadataHolder interface {
	AddMetadata(m ...*ast.Metadatum)
}

// parseIndentedMetadata consumes the indented metadata lines following an
// entry header.
func (p *Parser) parseIndentedMetadata(target metadataHolder) error {
	for p.isIndented() {
		if !p.isMetadataKey() {
			tok := p.peek()
			return p.errorAtToken(tok, "expected metadata but got %s %q", tok.Type, tok.String(p.source))
		}
		md, err := p.parseMetadatum()
		if err != nil {
			return err
		}
		target.AddMetadata(md)
	}
	return nil
}

// endOfLine fails when tokens remain on line.
func (p *Parser) endOfLine(line int) error {
	if tok := p.peek(); tok.Type != EOF && tok.Line == line {
		if tok.Type == ILLEGAL && p.source[tok.Start] == '"' {
			return p.errorAtToken(tok, "unterminated string")
		}
		return p.errorAtToken(tok, "unexpected %s %q", tok.Type, tok.String(p.source))
	}
	return nil
}

// endOfEntry fails when tokens remain on line or an indented line follows.
func (p *Parser) endOfEntry(line int) error {
	if err := p.endOfLine(line); err != nil {
		return err
	}
	if p.isIndented() {
		tok := p.peek()
		return p.errorAtToken(tok, "unexpected indented %s %q", tok.Type, tok.String(p.source))
	}
	return nil
}

// unquote strips the surrounding quotes of a string token and resolves the
// escape sequences written by the printer. Unknown escapes are kept as is.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			buf.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '"', '\\':
			buf.WriteByte(s[i])
		case 'n':
			buf.WriteByte('\n')
		case 't':
			buf.WriteByte('\t')
		case 'r':
			buf.WriteByte('\r')
		default:
			buf.WriteByte('\\')
			buf.WriteByte(s[i])
		}
	}
	return buf.String()
}

// Token navigation

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAhead(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

// isIndented reports whether the next token starts an indented continuation
// line.
func (p *Parser) isIndented() bool {
	tok := p.peek()
	return tok.Type != EOF && tok.Column > 1
}

func (p *Parser) checkOnLine(typ TokenType, line int) bool {
	tok := p.peek()
	return tok.Type == typ && tok.Line == line
}

func (p *Parser) matchOnLine(typ TokenType, line int) bool {
	if p.checkOnLine(typ, line) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectOnLine(typ TokenType, line int, what string) (Token, error) {
	if p.checkOnLine(typ, line) {
		return p.advance(), nil
	}
	return Token{}, p.unexpected(p.peek(), line, what)
}

// Error helpers

func (p *Parser) unexpected(tok Token, line int, what string) error {
	if tok.Type == EOF || tok.Line != line {
		return newErrorf(p.endOfLinePosition(line), "expected %s", what)
	}
	if tok.Type == ILLEGAL && p.source[tok.Start] == '"' {
		return p.errorAtToken(tok, "unterminated string")
	}
	return p.errorAtToken(tok, "expected %s but got %s %q", what, tok.Type, tok.String(p.source))
}

func (p *Parser) errorAtToken(tok Token, format string, args ...any) error {
	return newErrorf(p.position(tok), format, args...)
}

// endOfLinePosition points just past the last token on line.
func (p *Parser) endOfLinePosition(line int) ast.Position {
	for i := p.pos - 1; i >= 0; i-- {
		if tok := p.tokens[i]; tok.Line == line {
			return ast.Position{Filename: p.filename, Offset: tok.End, Line: line, Column: tok.Column + (tok.End - tok.Start)}
		}
	}
	return ast.Position{Filename: p.filename, Line: line, Column: 1}
}

func (p *Parser) position(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Start,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}
