package validation

import (
	"fmt"

	"github.com/robinvdvleuten/beancount-validate/ast"
)

// Error is a single finding of a validation pass. Entries are the offending
// entries, most relevant first; they are borrowed and must not be modified.
type Error struct {
	Pass    string
	Pos     ast.Position
	Message string
	Entries []ast.Directive
}

// newError reports a finding about entries, positioned at the first one.
func newError(format string, entries []ast.Directive, args ...any) *Error {
	err := &Error{Message: fmt.Sprintf(format, args...), Entries: entries}
	if len(entries) > 0 {
		err.Pos = entries[0].Position()
	}
	return err
}

// entryError is newError for a single entry.
func entryError(entry ast.Directive, format string, args ...any) *Error {
	return newError(format, []ast.Directive{entry}, args...)
}

// Error returns a bean-check style message with a file:line prefix.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos.Location(), e.Message)
}

func (e *Error) GetPosition() ast.Position {
	return e.Pos
}

// GetDirective returns the primary offending entry, or nil.
func (e *Error) GetDirective() ast.Directive {
	if len(e.Entries) == 0 {
		return nil
	}
	return e.Entries[0]
}

func (e *Error) GetEntries() []ast.Directive {
	return e.Entries
}
