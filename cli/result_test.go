package cli

import (
	"fmt"
	"io"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCommandError(t *testing.T) {
	t.Run("implements error interface", func(t *testing.T) {
		err := NewCommandError(1)
		assert.Error(t, err)
	})

	t.Run("returns exit code", func(t *testing.T) {
		err := NewCommandError(42)
		assert.Equal(t, err.ExitCode(), 42)
	})

	t.Run("supports type assertion", func(t *testing.T) {
		var err error = NewCommandError(1)
		cmdErr, ok := err.(*CommandError)
		assert.True(t, ok)
		assert.Equal(t, cmdErr.ExitCode(), 1)
	})

	t.Run("maps wrapped errors to their code", func(t *testing.T) {
		app := newApp(Streams{Stdout: io.Discard, Stderr: io.Discard})
		assert.Equal(t, 3, app.exitCode(fmt.Errorf("watch: %w", NewCommandError(3))))
		assert.Equal(t, 0, app.exitCode(nil))
	})
}
