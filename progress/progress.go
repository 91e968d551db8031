// Package progress shows validation passes as they run.
//
// A Reporter is a pipeline observer: it writes one line per finished pass to
// a diagnostic writer and never touches the run itself.
//
//	[ 1/15] Checking dates ............................ ok
//	[ 4/15] Checking amounts .......................... 2 errors
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize/english"
	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/beancount-validate/output"
	"github.com/robinvdvleuten/beancount-validate/pipeline"
)

// labelWidth is the column the status of a pass starts on.
const labelWidth = 44

// Reporter prints a line for every finished pass.
type Reporter struct {
	mu      sync.Mutex
	w       io.Writer
	styles  *output.Styles
	timings bool
}

var _ pipeline.Observer = (*Reporter)(nil)

// Option configures a Reporter.
type Option func(*Reporter)

// WithStyles colors the status of each pass.
func WithStyles(styles *output.Styles) Option {
	return func(r *Reporter) {
		r.styles = styles
	}
}

// WithTimings appends how long each pass took.
func WithTimings() Option {
	return func(r *Reporter) {
		r.timings = true
	}
}

// New creates a reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w, styles: output.Plain(w)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PassStarted implements pipeline.Observer.
func (r *Reporter) PassStarted(pipeline.PassEvent) {}

// PassFinished implements pipeline.Observer.
func (r *Reporter) PassFinished(e pipeline.PassEvent) {
	label := e.Pass.Label
	if label == "" {
		label = e.Pass.Name
	}

	digits := len(fmt.Sprint(e.Total))
	counter := fmt.Sprintf("[%*d/%d]", digits, e.Index+1, e.Total)

	dots := labelWidth - runewidth.StringWidth(label)
	if dots < 3 {
		dots = 3
	}
	leader := " " + strings.Repeat(".", dots-2) + " "

	status := r.styles.Success("ok")
	if n := len(e.Errors); n > 0 {
		status = r.styles.Error(english.Plural(n, "error", ""))
	}

	line := counter + " " + label + r.styles.Dim(leader) + status
	if r.timings {
		line += " " + r.styles.Dim("("+e.Duration.String()+")")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.w, line)
}
