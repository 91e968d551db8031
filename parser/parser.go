// Package parser reads Beancount ledger text into an ast.AST.
//
// The parser is a hand-written recursive descent parser over the tokens of
// Lexer. Entries start at column 1; indented lines that follow carry
// metadata and postings. A syntax error does not stop the parser: the error
// is recorded and parsing resumes at the next line starting at column 1, so
// one run reports every malformed entry in the file.
//
// The returned directives are always sorted with ast.SortDirectives.
package parser

import (
	"context"
	"errors"

	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/robinvdvleuten/beancount-validate/telemetry"
)

// Parser holds the state for a single parse of one source buffer.
type Parser struct {
	source   []byte
	filename string
	tokens   []Token
	pos      int
	interner *Interner

	errors  []error
	tags    []pushedTag
	options ast.OptionsBuilder
}

type pushedTag struct {
	tag ast.Tag
	pos ast.Position
}

// New creates a parser for source. filename is only used in positions.
func New(filename string, source []byte) *Parser {
	return &Parser{
		source:   source,
		filename: filename,
		interner: NewInterner(len(source)/40 + 64),
	}
}

// Parse parses source and returns the tree together with every syntax error
// found. The tree is returned even when errors exist and then contains the
// entries that did parse.
func Parse(ctx context.Context, filename string, source []byte) (*ast.AST, []error) {
	return New(filename, source).Parse(ctx)
}

// ParseString parses a ledger held in a string. It joins all syntax errors
// into one.
func ParseString(ctx context.Context, source string) (*ast.AST, error) {
	tree, errs := Parse(ctx, "", []byte(source))
	return tree, errors.Join(errs...)
}

// Parse runs the parser. It can be called once.
func (p *Parser) Parse(ctx context.Context) (*ast.AST, []error) {
	timer := telemetry.StartTimer(ctx, "parser.lex")
	p.tokens = NewLexer(p.source).ScanAll()
	timer.End()

	timer = telemetry.StartTimer(ctx, "parser.parse")
	defer timer.End()

	tree := &ast.AST{}
	for !p.isAtEnd() {
		start := p.peek()
		if start.Column != 1 {
			p.record(p.errorAtToken(start, "unexpected indentation"))
			p.synchronize(start.Line - 1)
			continue
		}
		if err := p.parseEntry(tree); err != nil {
			p.record(err)
			p.synchronize(start.Line)
		}
	}

	for _, t := range p.tags {
		p.record(newErrorf(t.pos, "unbalanced pushed tag '%s'", t.tag))
	}

	tree.Options = p.options.Build()
	ast.SortDirectives(tree)
	return tree, p.errors
}

func (p *Parser) record(err error) {
	p.errors = append(p.errors, err)
}

// synchronize skips tokens until the first token at column 1 on a line
// after line.
func (p *Parser) synchronize(line int) {
	for !p.isAtEnd() {
		tok := p.peek()
		if tok.Column == 1 && tok.Line > line {
			return
		}
		p.advance()
	}
}

// parseEntry parses one top-level entry and adds it to tree.
func (p *Parser) parseEntry(tree *ast.AST) error {
	tok := p.peek()
	switch tok.Type {
	case DATE:
		d, err := p.parseDated()
		if err != nil {
			return err
		}
		tree.Directives = append(tree.Directives, d)
	case OPTION:
		opt, err := p.parseOption()
		if err != nil {
			return err
		}
		p.options.Add(opt)
	case INCLUDE:
		inc, err := p.parseInclude()
		if err != nil {
			return err
		}
		tree.Includes = append(tree.Includes, inc)
	case PLUGIN:
		plugin, err := p.parsePlugin()
		if err != nil {
			return err
		}
		tree.Plugins = append(tree.Plugins, plugin)
	case PUSHTAG:
		return p.parsePushtag()
	case POPTAG:
		return p.parsePoptag()
	case PUSHMETA, POPMETA:
		return p.errorAtToken(tok, "unsupported directive %q", tok.String(p.source))
	default:
		return p.errorAtToken(tok, "unexpected %s %q at start of entry", tok.Type, tok.String(p.source))
	}
	return nil
}

func (p *Parser) parseOption() (*ast.Option, error) {
	kw := p.advance()
	line := kw.Line
	name, err := p.parseString(line)
	if err != nil {
		return nil, err
	}
	value, err := p.parseString(line)
	if err != nil {
		return nil, err
	}
	if err := p.endOfEntry(line); err != nil {
		return nil, err
	}
	return &ast.Option{Pos: p.position(kw), Name: name, Value: value}, nil
}

func (p *Parser) parseInclude() (*ast.Include, error) {
	kw := p.advance()
	filename, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	if err := p.endOfEntry(kw.Line); err != nil {
		return nil, err
	}
	return &ast.Include{Pos: p.position(kw), Filename: filename}, nil
}

func (p *Parser) parsePlugin() (*ast.Plugin, error) {
	kw := p.advance()
	name, err := p.parseString(kw.Line)
	if err != nil {
		return nil, err
	}
	plugin := &ast.Plugin{Pos: p.position(kw), Name: name}
	if p.checkOnLine(STRING, kw.Line) {
		if plugin.Config, err = p.parseString(kw.Line); err != nil {
			return nil, err
		}
	}
	if err := p.endOfEntry(kw.Line); err != nil {
		return nil, err
	}
	return plugin, nil
}

func (p *Parser) parsePushtag() error {
	kw := p.advance()
	tag, err := p.parseTag(kw.Line)
	if err != nil {
		return err
	}
	if err := p.endOfEntry(kw.Line); err != nil {
		return err
	}
	p.tags = append(p.tags, pushedTag{tag: tag, pos: p.position(kw)})
	return nil
}

func (p *Parser) parsePoptag() error {
	kw := p.advance()
	tagTok := p.peek()
	tag, err := p.parseTag(kw.Line)
	if err != nil {
		return err
	}
	if err := p.endOfEntry(kw.Line); err != nil {
		return err
	}
	for i := len(p.tags) - 1; i >= 0; i-- {
		if p.tags[i].tag == tag {
			p.tags = append(p.tags[:i], p.tags[i+1:]...)
			return nil
		}
	}
	return p.errorAtToken(tagTok, "attempting to pop absent tag '%s'", tag)
}

// activeTags returns the tags pushed at this point of the file.
func (p *Parser) activeTags() []ast.Tag {
	if len(p.tags) == 0 {
		return nil
	}
	tags := make([]ast.Tag, len(p.tags))
	for i, t := range p.tags {
		tags[i] = t.tag
	}
	return tags
}
