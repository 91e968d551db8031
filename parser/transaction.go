package parser

import "github.com/robinvdvleuten/beancount-validate/ast"

// parseTransaction parses a transaction:
//
//	DATE (txn|*|!) [[PAYEE] NARRATION] [TAG|LINK]*
//	  [key: value]*
//	  POSTING*
func (p *Parser) parseTransaction(pos ast.Position, date *ast.Date, line int) (*ast.Transaction, error) {
	flag := p.advance()
	txn := &ast.Transaction{Pos: pos, Date: date, Flag: "*"}
	if flag.Type == EXCLAIM {
		txn.Flag = "!"
	}

	if p.checkOnLine(STRING, line) {
		first, _ := p.parseString(line)
		if p.checkOnLine(STRING, line) {
			second, _ := p.parseString(line)
			txn.Payee, txn.Narration = first, second
		} else {
			txn.Narration = first
		}
	}

	p.parseTagsAndLinks(txn, line)
	if err := p.endOfLine(line); err != nil {
		return nil, err
	}

	for _, tag := range p.activeTags() {
		if !hasTag(txn.Tags, tag) {
			txn.Tags = append(txn.Tags, tag)
		}
	}

	var last *ast.Posting
	for p.isIndented() {
		tok := p.peek()
		switch {
		case p.isMetadataKey():
			md, err := p.parseMetadatum()
			if err != nil {
				return nil, err
			}
			if last != nil && tok.Column > last.Pos.Column {
				last.AddMetadata(md)
			} else {
				txn.AddMetadata(md)
			}
		case (tok.Type == TAG || tok.Type == LINK) && last == nil:
			p.parseTagsAndLinks(txn, tok.Line)
			if err := p.endOfLine(tok.Line); err != nil {
				return nil, err
			}
		case tok.Type == ACCOUNT || tok.Type == ASTERISK || tok.Type == EXCLAIM:
			posting, err := p.parsePosting()
			if err != nil {
				return nil, err
			}
			txn.Postings = append(txn.Postings, posting)
			last = posting
		default:
			return nil, p.errorAtToken(tok, "expected posting or metadata but got %s %q", tok.Type, tok.String(p.source))
		}
	}

	return txn, nil
}

func (p *Parser) parseTagsAndLinks(txn *ast.Transaction, line int) {
	for {
		switch {
		case p.checkOnLine(TAG, line):
			txn.Tags = append(txn.Tags, ast.NewTag(p.advance().String(p.source)))
		case p.checkOnLine(LINK, line):
			txn.Links = append(txn.Links, ast.NewLink(p.advance().String(p.source)))
		default:
			return
		}
	}
}

func hasTag(tags []ast.Tag, tag ast.Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// parsePosting parses a posting line:
//
//	[FLAG] ACCOUNT [NUMBER CURRENCY] [COST] [(@|@@) NUMBER CURRENCY]
func (p *Parser) parsePosting() (*ast.Posting, error) {
	start := p.peek()
	line := start.Line
	posting := &ast.Posting{Pos: p.position(start)}

	if start.Type == ASTERISK || start.Type == EXCLAIM {
		posting.Flag = p.advance().String(p.source)
	}

	account, err := p.parseAccount(line)
	if err != nil {
		return nil, err
	}
	posting.Account = account

	if p.checkOnLine(NUMBER, line) {
		if posting.Amount, err = p.parseAmount(line); err != nil {
			return nil, err
		}
	}

	if p.checkOnLine(LBRACE, line) || p.checkOnLine(LDBRACE, line) {
		if posting.Cost, err = p.parseCost(line); err != nil {
			return nil, err
		}
	}

	if p.checkOnLine(AT, line) || p.checkOnLine(ATAT, line) {
		at := p.advance()
		posting.PriceTotal = at.Type == ATAT
		if posting.Price, err = p.parseAmount(line); err != nil {
			return nil, err
		}
	}

	if posting.Amount == nil && (posting.Cost != nil || posting.Price != nil) {
		return nil, p.errorAtToken(start, "posting with cost or price needs an amount")
	}

	if err := p.endOfLine(line); err != nil {
		return nil, err
	}
	return posting, nil
}
