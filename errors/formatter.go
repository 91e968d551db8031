// Package errors renders pipeline findings for people and programs.
//
// Findings stay plain Go errors in the packages that produce them (parser,
// validation); this package only decides how they look. Two renderings are
// provided:
//   - TextFormatter: bean-check style blocks for the terminal, each finding
//     followed by the entries it refers to or by the offending source lines
//   - JSONFormatter: a JSON array for tooling
package errors

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/robinvdvleuten/beancount-validate/parser"
	"github.com/robinvdvleuten/beancount-validate/printer"
	"github.com/robinvdvleuten/beancount-validate/validation"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

type positioned interface {
	GetPosition() ast.Position
}

type withEntries interface {
	GetEntries() []ast.Directive
}

// TextFormatter formats errors for command-line output in bean-check style.
type TextFormatter struct {
	printer *printer.Printer
	source  []byte
}

// TextFormatterOption configures a TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the ledger text used to show context for parse errors.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// NewTextFormatter creates a text formatter re-printing entries with p. A
// nil printer uses printer defaults.
func NewTextFormatter(p *printer.Printer, opts ...TextFormatterOption) *TextFormatter {
	if p == nil {
		p = printer.New()
	}
	tf := &TextFormatter{printer: p}
	for _, opt := range opts {
		if opt != nil {
			opt(tf)
		}
	}
	return tf
}

// Format formats a single error.
func (tf *TextFormatter) Format(err error) string {
	if e, ok := err.(withEntries); ok && len(e.GetEntries()) > 0 {
		return tf.formatWithEntries(err.Error(), e.GetEntries())
	}

	if e, ok := err.(positioned); ok && tf.source != nil && e.GetPosition().Line > 0 {
		return formatWithSourceContext(e.GetPosition(), err.Error(), tf.source)
	}

	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(strings.TrimRight(tf.Format(err), "\n"))
		buf.WriteByte('\n')
		if i < len(errs)-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// formatWithEntries writes message followed by every entry, indented by
// three spaces.
func (tf *TextFormatter) formatWithEntries(message string, entries []ast.Directive) string {
	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for _, line := range strings.Split(tf.printer.Entry(entry), "\n") {
			if line == "" {
				continue
			}
			buf.WriteString("   ")
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// formatWithSourceContext writes message followed by the source lines
// around pos, with a caret under the offending column.
func formatWithSourceContext(pos ast.Position, message string, source []byte) string {
	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	lines := strings.Split(string(source), "\n")

	// Two lines before the error line and one after.
	start := pos.Line - 3
	end := pos.Line
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}

	for i := start; i <= end; i++ {
		buf.WriteString("   ")
		buf.WriteString(lines[i])
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString("^\n")
		}
	}
	return buf.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string        `json:"type"`
	Source   string        `json:"source,omitempty"`
	Message  string        `json:"message"`
	Position *PositionJSON `json:"position,omitempty"`
	Entries  []EntryJSON   `json:"entries,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// EntryJSON identifies an entry an error refers to.
type EntryJSON struct {
	Kind     string       `json:"kind"`
	Date     string       `json:"date,omitempty"`
	Position PositionJSON `json:"position"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{Type: "error", Message: err.Error()}

	switch e := err.(type) {
	case *validation.Error:
		errJSON.Type = "validation"
		errJSON.Source = e.Pass
		errJSON.Message = e.Message
	case *parser.ParseError:
		errJSON.Type = "parse"
		errJSON.Message = e.Message
	}

	if e, ok := err.(positioned); ok {
		pos := positionJSON(e.GetPosition())
		errJSON.Position = &pos
	}
	if e, ok := err.(withEntries); ok {
		for _, entry := range e.GetEntries() {
			errJSON.Entries = append(errJSON.Entries, EntryJSON{
				Kind:     entry.Kind(),
				Date:     ast.DateOf(entry).String(),
				Position: positionJSON(entry.Position()),
			})
		}
	}
	return errJSON
}

func positionJSON(pos ast.Position) PositionJSON {
	return PositionJSON{Filename: pos.Filename, Line: pos.Line, Column: pos.Column}
}

