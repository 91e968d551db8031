package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/robinvdvleuten/beancount-validate/ast"
	"github.com/robinvdvleuten/beancount-validate/logging"
	"github.com/robinvdvleuten/beancount-validate/telemetry"
	"github.com/robinvdvleuten/beancount-validate/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errPassPanicked = errors.New("validation pass panicked")

// PassPanic is re-raised on the calling goroutine when a pass panics in
// parallel mode.
type PassPanic struct {
	Pass  string
	Value any
	Stack []byte
}

func (p *PassPanic) Error() string {
	return fmt.Sprintf("validation pass %s panicked: %v", p.Pass, p.Value)
}

type passOutcome struct {
	errs     []*validation.Error
	duration time.Duration
	panic    *PassPanic
}

// runParallel runs the passes on up to p.parallelism goroutines. The entries
// are shared read-only. Errors are merged and observers notified in
// registration order once every pass is done, so the report is the same as
// a sequential run.
func (p *Pipeline) runParallel(ctx context.Context, timer telemetry.Timer, tree *ast.AST, agg *Aggregator) error {
	logger := logging.FromContext(ctx)
	outcomes := make([]passOutcome, len(p.passes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, pass := range p.passes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if v := recover(); v != nil {
					outcomes[i].panic = &PassPanic{Pass: pass.Name, Value: v, Stack: debug.Stack()}
					err = errPassPanicked
				}
			}()

			passTimer := timer.Child(pass.Name)
			defer passTimer.End()
			start := time.Now()
			outcomes[i].errs = pass.Exec(tree.Directives, tree.Options)
			outcomes[i].duration = time.Since(start)
			return nil
		})
	}
	err := g.Wait()

	for _, outcome := range outcomes {
		if outcome.panic != nil {
			logger.Error("validation pass panicked", zap.String("pass", outcome.panic.Pass), zap.Any("value", outcome.panic.Value))
			panic(outcome.panic)
		}
	}
	if err != nil {
		return fmt.Errorf("validation interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("validation interrupted: %w", err)
	}

	observer := p.observer()
	for i, pass := range p.passes {
		event := PassEvent{Index: i, Total: len(p.passes), Pass: pass}
		observer.PassStarted(event)
		event.Errors = outcomes[i].errs
		event.Duration = outcomes[i].duration
		record(agg, pass, event.Errors)
		logger.Debug("pass finished", zap.String("pass", pass.Name), zap.Int("errors", len(event.Errors)), zap.Duration("took", event.Duration))
		observer.PassFinished(event)
	}
	return nil
}
