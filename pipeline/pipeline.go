// Package pipeline drives a validation run: parse the ledger, run every
// validation pass over the parsed entries and collect what they report.
//
// A run moves through a small state machine:
//
//	Idle → Parsing → ParseFailed
//	Idle → Parsing → Parsed → Validating → ValidationFailed | ValidationSucceeded
//
// Validation never starts when the parser reported errors. Once it starts,
// every pass runs, whatever the earlier passes found.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/robinvdvleuten/beancount-validate/logging"
	"github.com/robinvdvleuten/beancount-validate/telemetry"
	"github.com/robinvdvleuten/beancount-validate/validation"
	"go.uber.org/zap"
)

// ParserSource attributes parse errors in the aggregator.
const ParserSource = "parser"

// State is the phase a run is in.
type State int

const (
	Idle State = iota
	Parsing
	ParseFailed
	Parsed
	Validating
	ValidationFailed
	ValidationSucceeded
)

var stateNames = [...]string{
	Idle:                "idle",
	Parsing:             "parsing",
	ParseFailed:         "parse failed",
	Parsed:              "parsed",
	Validating:          "validating",
	ValidationFailed:    "validation failed",
	ValidationSucceeded: "validation succeeded",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether a run ends in s.
func (s State) Terminal() bool {
	return s == ParseFailed || s == ValidationFailed || s == ValidationSucceeded
}

// Parser turns ledger text into entries.
type Parser interface {
	Parse(ctx context.Context, filename string, source []byte) (*ast.AST, []error)
}

// ParserFunc adapts a function to a Parser.
type ParserFunc func(ctx context.Context, filename string, source []byte) (*ast.AST, []error)

func (f ParserFunc) Parse(ctx context.Context, filename string, source []byte) (*ast.AST, []error) {
	return f(ctx, filename, source)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver adds an observer notified around every pass. Observers are
// called in the order they were added.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// WithParallelism runs up to n passes at the same time. n <= 1 runs them one
// after the other.
func WithParallelism(n int) Option {
	return func(p *Pipeline) {
		p.parallelism = n
	}
}

// Pipeline runs a fixed list of passes over parsed ledgers. A Pipeline can
// run any number of times and is safe for concurrent use.
type Pipeline struct {
	parser      Parser
	passes      []validation.Pass
	observers   multiObserver
	parallelism int
}

// New creates a pipeline running passes, in order, over what parser returns.
func New(parser Parser, passes []validation.Pass, opts ...Option) *Pipeline {
	p := &Pipeline{
		parser: parser,
		passes: append([]validation.Pass(nil), passes...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Passes returns the passes the pipeline runs, in order.
func (p *Pipeline) Passes() []validation.Pass {
	return append([]validation.Pass(nil), p.passes...)
}

func (p *Pipeline) observer() Observer {
	if len(p.observers) == 0 {
		return nopObserver{}
	}
	return p.observers
}

// Result is the outcome of a run.
type Result struct {
	State  State
	AST    *ast.AST
	Errors *Aggregator
}

// OK reports whether the ledger parsed and validated without errors.
func (r *Result) OK() bool {
	return r.State == ValidationSucceeded
}

// ExitCode maps the outcome to a process exit code.
func (r *Result) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// Run parses source and validates it. The returned error is only set when
// ctx is done before the run completes; findings are reported through the
// result. A panicking pass is not recovered.
func (p *Pipeline) Run(ctx context.Context, filename string, source []byte) (*Result, error) {
	logger := logging.FromContext(ctx).With(zap.String("file", filename))
	result := &Result{State: Idle, Errors: NewAggregator()}

	result.State = Parsing
	tree, parseErrs := p.parser.Parse(ctx, filename, source)
	result.AST = tree
	if len(parseErrs) > 0 {
		result.Errors.Add(ParserSource, parseErrs...)
		result.State = ParseFailed
		logger.Debug("parse failed", zap.Int("errors", len(parseErrs)))
		return result, nil
	}
	result.State = Parsed
	if tree == nil {
		tree = &ast.AST{}
		result.AST = tree
	}
	logger.Debug("parsed", zap.Int("entries", len(tree.Directives)))

	result.State = Validating
	timer := telemetry.StartTimer(ctx, "validation")
	defer timer.End()

	var err error
	if p.parallelism > 1 {
		err = p.runParallel(ctx, timer, tree, result.Errors)
	} else {
		err = p.runSequential(ctx, timer, tree, result.Errors)
	}
	if err != nil {
		return nil, err
	}

	if result.Errors.Len() > 0 {
		result.State = ValidationFailed
	} else {
		result.State = ValidationSucceeded
	}
	logger.Debug("validation finished", zap.Stringer("state", result.State), zap.Int("errors", result.Errors.Len()))
	return result, nil
}

func (p *Pipeline) runSequential(ctx context.Context, timer telemetry.Timer, tree *ast.AST, agg *Aggregator) error {
	observer := p.observer()
	logger := logging.FromContext(ctx)

	for i, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("validation interrupted before pass %s: %w", pass.Name, err)
		}

		event := PassEvent{Index: i, Total: len(p.passes), Pass: pass}
		observer.PassStarted(event)
		logger.Debug("pass started", zap.String("pass", pass.Name))

		passTimer := timer.Child(pass.Name)
		start := time.Now()
		errs := pass.Exec(tree.Directives, tree.Options)
		event.Duration = time.Since(start)
		passTimer.End()

		event.Errors = errs
		record(agg, pass, errs)
		logger.Debug("pass finished", zap.String("pass", pass.Name), zap.Int("errors", len(errs)), zap.Duration("took", event.Duration))
		observer.PassFinished(event)
	}
	return nil
}

// record adds the errors of pass to agg.
func record(agg *Aggregator, pass validation.Pass, errs []*validation.Error) {
	agg.Touch(pass.Name)
	converted := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			converted = append(converted, err)
		}
	}
	agg.Add(pass.Name, converted...)
}
