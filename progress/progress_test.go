package progress

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-validate/parser"
	"github.com/robinvdvleuten/beancount-validate/pipeline"
	"github.com/robinvdvleuten/beancount-validate/validation"
)

func TestPassFinished(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	pass := validation.Pass{Name: "dates", Label: "Checking dates"}
	r.PassStarted(pipeline.PassEvent{Index: 0, Total: 15, Pass: pass})
	assert.Equal(t, "", buf.String())

	r.PassFinished(pipeline.PassEvent{Index: 0, Total: 15, Pass: pass})
	assert.Equal(t, "[ 1/15] Checking dates "+strings.Repeat(".", 28)+" ok\n", buf.String())
}

func TestPassFinishedWithErrors(t *testing.T) {
	tests := []struct {
		name   string
		errors int
		want   string
	}{
		{"One", 1, "1 error"},
		{"Several", 3, "3 errors"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := New(&buf)
			r.PassFinished(pipeline.PassEvent{
				Index:  3,
				Total:  4,
				Pass:   validation.Pass{Name: "amounts", Label: "Checking amounts"},
				Errors: make([]*validation.Error, test.errors),
			})
			assert.True(t, strings.HasPrefix(buf.String(), "[4/4] Checking amounts ."), "%q", buf.String())
			assert.True(t, strings.HasSuffix(buf.String(), " "+test.want+"\n"), "%q", buf.String())
		})
	}
}

func TestLabelFallsBackToName(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).PassFinished(pipeline.PassEvent{Index: 0, Total: 1, Pass: validation.Pass{Name: "custom"}})
	assert.Contains(t, buf.String(), "[1/1] custom .")
}

func TestWithTimings(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, WithTimings()).PassFinished(pipeline.PassEvent{
		Index:    0,
		Total:    1,
		Pass:     validation.Pass{Name: "dates", Label: "Checking dates"},
		Duration: 1500 * time.Microsecond,
	})
	assert.True(t, strings.HasSuffix(buf.String(), " ok (1.5ms)\n"), "%q", buf.String())
}

func TestReporterObservesPipeline(t *testing.T) {
	var buf bytes.Buffer
	p := pipeline.New(pipeline.ParserFunc(parser.Parse), validation.Default(), pipeline.WithObserver(New(&buf)))

	result, err := p.Run(context.Background(), "", []byte(`2024-01-01 open Assets:Cash
2024-01-02 * "Unbalanced"
  Assets:Cash  10 USD
  Assets:Cash  -5 USD
`))
	assert.NoError(t, err)
	assert.False(t, result.OK())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(validation.Default()), len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "[ 1/15] Checking dates"))

	var failing []string
	for _, line := range lines {
		if !strings.HasSuffix(line, " ok") {
			failing = append(failing, line)
		}
	}
	assert.Equal(t, 1, len(failing))
	assert.Contains(t, failing[0], "Checking transaction balances")
	assert.True(t, strings.HasSuffix(failing[0], " 1 error"))
}
