package parser

import "github.com/robinvdvleuten/beancount-validate/ast"

// Parsers for dated directives. Each one is handed the already parsed date
// and the line of the entry header.

// parseDated parses DATE KEYWORD ... and its indented body.
func (p *Parser) parseDated() (ast.Directive, error) {
	dateTok := p.peek()
	date, err := p.parseDate()
	if err != nil {
		return nil, err
	}
	pos := p.position(dateTok)
	line := dateTok.Line

	tok := p.peek()
	if tok.Line != line {
		return nil, p.unexpected(tok, line, "directive")
	}

	var (
		d      ast.Directive
		holder metadataHolder
	)
	switch tok.Type {
	case TXN, ASTERISK, EXCLAIM:
		// Transactions parse their own body: postings and metadata interleave.
		return p.parseTransaction(pos, date, line)
	case OPEN:
		open, err := p.parseOpen(pos, date, line)
		if err != nil {
			return nil, err
		}
		d, holder = open, open
	case CLOSE:
		p.advance()
		account, err := p.parseAccount(line)
		if err != nil {
			return nil, err
		}
		c := &ast.Close{Pos: pos, Date: date, Account: account}
		d, holder = c, c
	case BALANCE:
		bal, err := p.parseBalance(pos, date, line)
		if err != nil {
			return nil, err
		}
		d, holder = bal, bal
	case PAD:
		p.advance()
		account, err := p.parseAccount(line)
		if err != nil {
			return nil, err
		}
		source, err := p.parseAccount(line)
		if err != nil {
			return nil, err
		}
		pad := &ast.Pad{Pos: pos, Date: date, Account: account, AccountPad: source}
		d, holder = pad, pad
	case NOTE:
		p.advance()
		account, err := p.parseAccount(line)
		if err != nil {
			return nil, err
		}
		description, err := p.parseString(line)
		if err != nil {
			return nil, err
		}
		note := &ast.Note{Pos: pos, Date: date, Account: account, Description: description}
		d, holder = note, note
	case DOCUMENT:
		p.advance()
		account, err := p.parseAccount(line)
		if err != nil {
			return nil, err
		}
		path, err := p.parseString(line)
		if err != nil {
			return nil, err
		}
		doc := &ast.Document{Pos: pos, Date: date, Account: account, Path: path}
		d, holder = doc, doc
	case COMMODITY:
		p.advance()
		currency, err := p.parseCurrency(line)
		if err != nil {
			return nil, err
		}
		c := &ast.Commodity{Pos: pos, Date: date, Currency: currency}
		d, holder = c, c
	case PRICE:
		p.advance()
		commodity, err := p.parseCurrency(line)
		if err != nil {
			return nil, err
		}
		amount, err := p.parseAmount(line)
		if err != nil {
			return nil, err
		}
		price := &ast.Price{Pos: pos, Date: date, Commodity: commodity, Amount: amount}
		d, holder = price, price
	case EVENT:
		p.advance()
		name, err := p.parseString(line)
		if err != nil {
			return nil, err
		}
		value, err := p.parseString(line)
		if err != nil {
			return nil, err
		}
		event := &ast.Event{Pos: pos, Date: date, Name: name, Value: value}
		d, holder = event, event
	case CUSTOM, QUERY:
		return nil, p.errorAtToken(tok, "unsupported directive %q", tok.String(p.source))
	default:
		return nil, p.unexpected(tok, line, "directive")
	}

	if err := p.endOfLine(line); err != nil {
		return nil, err
	}
	if err := p.parseIndentedMetadata(holder); err != nil {
		return nil, err
	}
	return d, nil
}

// parseOpen parses: open ACCOUNT [CURRENCY[,CURRENCY]*] ["BOOKING_METHOD"]
func (p *Parser) parseOpen(pos ast.Position, date *ast.Date, line int) (*ast.Open, error) {
	p.advance()
	account, err := p.parseAccount(line)
	if err != nil {
		return nil, err
	}
	open := &ast.Open{Pos: pos, Date: date, Account: account}

	if p.checkCurrency(line) {
		for {
			currency, err := p.parseCurrency(line)
			if err != nil {
				return nil, err
			}
			open.ConstraintCurrencies = append(open.ConstraintCurrencies, currency)
			if !p.matchOnLine(COMMA, line) {
				break
			}
		}
	}

	if p.checkOnLine(STRING, line) {
		if open.BookingMethod, err = p.parseString(line); err != nil {
			return nil, err
		}
	}
	return open, nil
}

// parseBalance parses: balance ACCOUNT NUMBER [~ NUMBER] CURRENCY
func (p *Parser) parseBalance(pos ast.Position, date *ast.Date, line int) (*ast.Balance, error) {
	p.advance()
	account, err := p.parseAccount(line)
	if err != nil {
		return nil, err
	}
	value, err := p.parseNumber(line)
	if err != nil {
		return nil, err
	}
	bal := &ast.Balance{Pos: pos, Date: date, Account: account}
	if p.matchOnLine(TILDE, line) {
		if bal.Tolerance, err = p.parseNumber(line); err != nil {
			return nil, err
		}
	}
	currency, err := p.parseCurrency(line)
	if err != nil {
		return nil, err
	}
	bal.Amount = ast.NewAmount(value, currency)
	return bal, nil
}
