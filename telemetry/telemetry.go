// Package telemetry records how long the stages of a validation run take.
//
// A Collector travels in the context so the parser, the pipeline and the CLI
// can be instrumented without threading it through their signatures. When no
// collector is installed every timer is a no-op.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	root := collector.Start("validate main.beancount")
//	ctx = telemetry.WithTimer(ctx, root)
//
//	timer := telemetry.StartTimer(ctx, "parser.parse") // nested under root
//	timer.End()
//
//	root.End()
//	collector.Report(os.Stderr, nil)
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/beancount-validate/output"
)

type contextKey int

const (
	collectorKey contextKey = iota
	timerKey
)

// Collector gathers timings.
type Collector interface {
	// Start begins timing an operation. End the returned timer when the
	// operation completes.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for
	// plain output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	End()

	// Child starts a timer nested under this one. Children may be started
	// from several goroutines at once.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithTimer makes timer the parent of timers started with StartTimer on the
// returned context.
func WithTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, timerKey, timer)
}

// StartTimer starts a timer nested under the context's timer, or a top
// level one on the context's collector.
func StartTimer(ctx context.Context, name string) Timer {
	if parent, ok := ctx.Value(timerKey).(Timer); ok {
		return parent.Child(name)
	}
	return FromContext(ctx).Start(name)
}
