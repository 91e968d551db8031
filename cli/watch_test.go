package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beancount-validate/config"
	"github.com/robinvdvleuten/beancount-validate/validation"
)

// syncBuffer is written by the watch loop while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, b *syncBuffer, substr string, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Count(b.String(), substr) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d x %q in:\n%s", n, substr, b.String())
}

func TestWatch(t *testing.T) {
	path := writeLedger(t, "main.beancount", validLedger)

	var stdout, stderr syncBuffer
	app := newApp(Streams{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr})
	r := &runner{
		app:    app,
		path:   path,
		passes: validation.Default(),
		config: config.Default(),
		format: "text",
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- r.watch(ctx) }()

	waitFor(t, &stderr, "Watching "+path+" for changes", 1)
	assert.Contains(t, stderr.String(), "Found 7 entries")

	assert.NoError(t, os.WriteFile(path, []byte(unknownAccountLedger), 0o644))
	waitFor(t, &stderr, "Watching "+path+" for changes", 2)
	assert.Contains(t, stderr.String(), "Invalid reference to unknown account 'Expenses:Food'")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
