package parser

import (
	"fmt"

	"github.com/robinvdvleuten/beancount-validate/ast"
)

// ParseError represents a syntax error during parsing.
type ParseError struct {
	Pos     ast.Position
	Message string
}

func newErrorf(pos ast.Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos.Location(), e.Message)
}

func (e *ParseError) GetPosition() ast.Position {
	return e.Pos
}

// GetDirective returns nil; syntax errors are not tied to a parsed entry.
func (e *ParseError) GetDirective() ast.Directive {
	return nil
}

func (e *ParseError) GetEntries() []ast.Directive {
	return nil
}
