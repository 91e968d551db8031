package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/robinvdvleuten/beancount-validate/parser"
	"github.com/robinvdvleuten/beancount-validate/validation"
)

var realParser = ParserFunc(parser.Parse)

// countingPass returns a pass that counts its invocations and reports n
// errors each time.
func countingPass(name string, tier validation.Tier, n int, calls *int32) validation.Pass {
	return validation.Pass{
		Name: name,
		Tier: tier,
		Run: func(entries []ast.Directive, _ *ast.Options) []*validation.Error {
			atomic.AddInt32(calls, 1)
			errs := make([]*validation.Error, n)
			for i := range errs {
				errs[i] = &validation.Error{Message: fmt.Sprintf("%s #%d", name, i+1)}
			}
			return errs
		},
	}
}

func run(t *testing.T, p *Pipeline, source string) *Result {
	t.Helper()
	result, err := p.Run(context.Background(), "main.beancount", []byte(source))
	assert.NoError(t, err)
	assert.True(t, result.State.Terminal())
	return result
}

func messages(errs []error) []string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return msgs
}

func TestParseFailureSkipsValidation(t *testing.T) {
	var calls int32
	p := New(realParser, []validation.Pass{
		countingPass("basic", validation.TierBasic, 0, &calls),
		countingPass("hardcore", validation.TierHardcore, 0, &calls),
	})

	result := run(t, p, `2024-01-01 open Assets:Cash
2024-01-02 bogus directive here
`)
	assert.Equal(t, ParseFailed, result.State)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, 1, result.Errors.CountOf(ParserSource))
	assert.Equal(t, []PassCount{{Source: ParserSource, Count: 1}}, result.Errors.Counts())

	var parseErr *parser.ParseError
	assert.True(t, errors.As(result.Errors.Errors()[0], &parseErr))
	assert.Equal(t, 2, parseErr.Pos.Line)
}

func TestHardcoreRunsAfterBasicErrors(t *testing.T) {
	var basicCalls, hardcoreCalls int32
	p := New(realParser, []validation.Pass{
		countingPass("basic", validation.TierBasic, 2, &basicCalls),
		countingPass("hardcore", validation.TierHardcore, 1, &hardcoreCalls),
	})

	result := run(t, p, "")
	assert.Equal(t, ValidationFailed, result.State)
	assert.Equal(t, int32(1), basicCalls)
	assert.Equal(t, int32(1), hardcoreCalls)
	assert.Equal(t, []string{"line 0: basic #1", "line 0: basic #2", "line 0: hardcore #1"}, messages(result.Errors.Errors()))
	assert.Equal(t, []PassCount{{"basic", 2}, {"hardcore", 1}}, result.Errors.Counts())
}

func TestObserverEvents(t *testing.T) {
	var calls int32
	var events []string
	observer := ObserverFuncs{
		Started: func(e PassEvent) {
			events = append(events, fmt.Sprintf("start %d/%d %s", e.Index+1, e.Total, e.Pass.Name))
		},
		Finished: func(e PassEvent) {
			events = append(events, fmt.Sprintf("finish %s %d", e.Pass.Name, len(e.Errors)))
		},
	}
	p := New(realParser, []validation.Pass{
		countingPass("one", validation.TierBasic, 0, &calls),
		countingPass("two", validation.TierHardcore, 3, &calls),
	}, WithObserver(observer), WithObserver(nil))

	run(t, p, "")
	assert.Equal(t, []string{
		"start 1/2 one",
		"finish one 0",
		"start 2/2 two",
		"finish two 3",
	}, events)
}

func TestErrorsCarryPassName(t *testing.T) {
	var calls int32
	p := New(realParser, []validation.Pass{countingPass("named", validation.TierBasic, 1, &calls)})
	result := run(t, p, "")

	var verr *validation.Error
	assert.True(t, errors.As(result.Errors.Errors()[0], &verr))
	assert.Equal(t, "named", verr.Pass)
}

func TestScenarioCleanLedger(t *testing.T) {
	p := New(realParser, validation.Default())
	result := run(t, p, `2024-01-01 open Assets:Cash USD
2024-01-01 open Expenses:Food

2024-01-02 * "Groceries"
  Assets:Cash  -20.00 USD
  Expenses:Food  20.00 USD
`)
	assert.Equal(t, ValidationSucceeded, result.State)
	assert.Equal(t, 0, result.ExitCode())
	assert.Equal(t, 0, result.Errors.Len())
	assert.NoError(t, result.Errors.Err())
	assert.Equal(t, len(validation.Default()), len(result.Errors.Counts()))
	assert.Equal(t, 3, len(result.AST.Directives))
}

func TestScenarioUnknownAccount(t *testing.T) {
	p := New(realParser, validation.Default())
	result := run(t, p, `2024-01-01 open Assets:Cash

2024-01-02 * "Groceries"
  Assets:Cash  -20.00 USD
  Expenses:Food  20.00 USD
`)
	assert.Equal(t, ValidationFailed, result.State)
	assert.Equal(t, 1, result.Errors.Len())
	assert.Equal(t, 1, result.Errors.CountOf("active_accounts"))

	var verr *validation.Error
	assert.True(t, errors.As(result.Errors.Errors()[0], &verr))
	assert.Contains(t, verr.Message, "Expenses:Food")
	txn, ok := verr.GetDirective().(*ast.Transaction)
	assert.True(t, ok)
	assert.Equal(t, "Groceries", txn.Narration)
}

func TestScenarioUnbalancedTransaction(t *testing.T) {
	p := New(realParser, validation.Default())
	result := run(t, p, `2024-01-01 open Assets:Cash
2024-01-01 open Expenses:Food

2024-01-02 * "Groceries"
  Assets:Cash  -20.00 USD
  Expenses:Food  19.00 USD
`)
	assert.Equal(t, ValidationFailed, result.State)
	assert.Equal(t, 1, result.Errors.CountOf("transaction_balances"))
	assert.Equal(t, len(validation.Default()), len(result.Errors.Counts()))
	assert.Equal(t, 1, result.ExitCode())
}

func TestParallelPreservesOrder(t *testing.T) {
	var calls int32
	var passes []validation.Pass
	for i := 0; i < 8; i++ {
		pass := countingPass(fmt.Sprintf("p%d", i), validation.TierBasic, i%3, &calls)
		inner := pass.Run
		delay := time.Duration(8-i) * time.Millisecond
		pass.Run = func(entries []ast.Directive, opts *ast.Options) []*validation.Error {
			time.Sleep(delay)
			return inner(entries, opts)
		}
		passes = append(passes, pass)
	}

	var order []string
	observer := ObserverFuncs{Finished: func(e PassEvent) { order = append(order, e.Pass.Name) }}

	sequential := run(t, New(realParser, passes), "")
	parallel := run(t, New(realParser, passes, WithParallelism(4), WithObserver(observer)), "")

	assert.Equal(t, messages(sequential.Errors.Errors()), messages(parallel.Errors.Errors()))
	assert.Equal(t, sequential.Errors.Counts(), parallel.Errors.Counts())
	assert.Equal(t, []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}, order)
	assert.Equal(t, int32(16), atomic.LoadInt32(&calls))
}

func panickingPass() validation.Pass {
	return validation.Pass{
		Name: "broken",
		Run: func([]ast.Directive, *ast.Options) []*validation.Error {
			panic("index out of range")
		},
	}
}

func TestPanickingPassPropagates(t *testing.T) {
	p := New(realParser, []validation.Pass{panickingPass()})
	assert.Panics(t, func() {
		_, _ = p.Run(context.Background(), "main.beancount", nil)
	})
}

func TestPanickingPassPropagatesInParallel(t *testing.T) {
	var calls int32
	p := New(realParser, []validation.Pass{
		countingPass("fine", validation.TierBasic, 0, &calls),
		panickingPass(),
	}, WithParallelism(2))

	defer func() {
		v := recover()
		pp, ok := v.(*PassPanic)
		assert.True(t, ok, "unexpected panic value %v", v)
		assert.Equal(t, "broken", pp.Pass)
		assert.Equal(t, "index out of range", pp.Value)
	}()
	_, _ = p.Run(context.Background(), "main.beancount", nil)
	t.Fatal("expected a panic")
}

func TestCancelledContext(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, n := range []int{1, 4} {
		p := New(realParser, []validation.Pass{countingPass("never", validation.TierBasic, 0, &calls)}, WithParallelism(n))
		result, err := p.Run(ctx, "main.beancount", nil)
		assert.Zero(t, result)
		assert.True(t, errors.Is(err, context.Canceled))
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "parse failed", ParseFailed.String())
	assert.Equal(t, "validation succeeded", ValidationSucceeded.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.False(t, Validating.Terminal())
	assert.True(t, ParseFailed.Terminal())
}

func TestPassesIsACopy(t *testing.T) {
	p := New(realParser, validation.Default())
	passes := p.Passes()
	passes[0].Name = "changed"
	assert.Equal(t, "dates", p.Passes()[0].Name)
}
