package telemetry

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestNoOpCollector(t *testing.T) {
	collector := FromContext(context.Background())
	_, ok := collector.(noOpCollector)
	assert.True(t, ok)

	timer := collector.Start("test")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestWithCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	assert.Equal(t, Collector(collector), FromContext(ctx))
}

func TestStartTimerNestsUnderContextTimer(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	root := collector.Start("validate")
	ctx = WithTimer(ctx, root)
	StartTimer(ctx, "parser.lex").End()
	StartTimer(ctx, "parser.parse").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "validate: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ parser.lex: "))
	assert.True(t, strings.HasPrefix(lines[2], "└─ parser.parse: "))
}

func TestStartTimerWithoutParent(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	StartTimer(ctx, "first").End()
	StartTimer(ctx, "second").End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Contains(t, buf.String(), "first: ")
	assert.Contains(t, buf.String(), "second: ")
	assert.NotContains(t, buf.String(), "─")
}

func TestTimingCollectorNested(t *testing.T) {
	collector := NewTimingCollector()

	outer := collector.Start("outer")
	inner := collector.Start("inner")
	inner.Child("leaf").End()
	inner.End()
	outer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	out := buf.String()
	assert.Contains(t, out, "outer: ")
	assert.Contains(t, out, "└─ inner: ")
	assert.Contains(t, out, "   └─ leaf: ")
}

func TestChildrenFromGoroutines(t *testing.T) {
	collector := NewTimingCollector()
	root := collector.Start("validation")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			root.Child("pass").End()
		}()
	}
	wg.Wait()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, 8, strings.Count(buf.String(), "pass: "))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "12ms", formatDuration(12*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
}
