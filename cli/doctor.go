package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/beancount-validate/errors"
	"github.com/robinvdvleuten/beancount-validate/parser"
)

// DoctorCmd provides doctor utilities for debugging beancount files.
type DoctorCmd struct {
	Lex  LexCmd  `cmd:"" help:"Show lexical tokens from a beancount file."`
	Dump DumpCmd `cmd:"" help:"Dump the parsed entries of a beancount file."`
}

// LexCmd shows lexical tokens from a beancount file.
type LexCmd struct {
	File string `arg:"" type:"existingfile" help:"Beancount input filename."`
}

// Run executes the lex command.
func (cmd *LexCmd) Run(app *App) error {
	content, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Format: TYPE line:col "content"
	for _, token := range parser.NewLexer(content).ScanAll() {
		if token.Type == parser.EOF {
			continue
		}
		_, _ = fmt.Fprintf(app.Stdout, "%-10s %d:%d    %q\n",
			token.Type.String(),
			token.Line,
			token.Column,
			token.String(content))
	}
	return nil
}

// DumpCmd prints the parsed entries as Go values.
type DumpCmd struct {
	File string `arg:"" type:"existingfile" help:"Beancount input filename."`
}

// Run executes the dump command.
func (cmd *DumpCmd) Run(ctx context.Context, app *App) error {
	content, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	tree, errs := parser.Parse(ctx, cmd.File, content)
	if len(errs) > 0 {
		formatter := errors.NewTextFormatter(nil, errors.WithSource(content))
		_, _ = fmt.Fprint(app.Stderr, formatter.FormatAll(errs))
		return NewCommandError(1)
	}

	repr.New(app.Stdout, repr.Indent("  "), repr.OmitEmpty(true)).Println(tree.Directives)
	return nil
}
