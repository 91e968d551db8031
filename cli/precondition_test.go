package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/beancount-validate/config"
)

func TestJoinSuffixes(t *testing.T) {
	assert.Equal(t, "ledger", joinSuffixes(nil))
	assert.Equal(t, ".bean", joinSuffixes([]string{".bean"}))
	assert.Equal(t, ".beancount or .bean", joinSuffixes([]string{".beancount", ".bean"}))
	assert.Equal(t, ".a, .b or .c", joinSuffixes([]string{".a", ".b", ".c"}))
}

func TestCheckLedgerPath(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(dir, "main.beancount")
	assert.NoError(t, os.WriteFile(ledger, nil, 0o644))
	upper := filepath.Join(dir, "MAIN.BEAN")
	assert.NoError(t, os.WriteFile(upper, nil, 0o644))
	text := filepath.Join(dir, "main.txt")
	assert.NoError(t, os.WriteFile(text, nil, 0o644))

	cfg := config.Default()

	assert.NoError(t, checkLedgerPath(ledger, cfg))
	assert.NoError(t, checkLedgerPath(upper, cfg))

	tests := []struct {
		name    string
		path    string
		reason  Reason
		message string
	}{
		{
			name:    "NotFound",
			path:    filepath.Join(dir, "missing.beancount"),
			reason:  NotFound,
			message: "Provided ledger file path " + filepath.Join(dir, "missing.beancount") + " not found",
		},
		{
			name:    "NotAFile",
			path:    dir,
			reason:  NotAFile,
			message: "Provided ledger file at " + dir + " is not a file",
		},
		{
			name:    "BadSuffix",
			path:    text,
			reason:  BadSuffix,
			message: "Provided file at " + text + " is not a .beancount or .bean file",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := checkLedgerPath(test.path, cfg)
			var precondition *PreconditionError
			assert.True(t, errors.As(err, &precondition))
			assert.Equal(t, test.reason, precondition.Reason)
			assert.EqualError(t, err, test.message)
		})
	}
}
