package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/robinvdvleuten/beancount-validate/config"
)

// Reason tells why a ledger path was refused.
type Reason int

const (
	NotFound Reason = iota + 1
	NotAFile
	BadSuffix
)

func (r Reason) String() string {
	switch r {
	case NotFound:
		return "not found"
	case NotAFile:
		return "not a file"
	case BadSuffix:
		return "bad suffix"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// PreconditionError rejects a ledger path before anything is parsed.
type PreconditionError struct {
	Path     string
	Reason   Reason
	Suffixes []string
}

func (e *PreconditionError) Error() string {
	switch e.Reason {
	case NotFound:
		return fmt.Sprintf("Provided ledger file path %s not found", e.Path)
	case NotAFile:
		return fmt.Sprintf("Provided ledger file at %s is not a file", e.Path)
	case BadSuffix:
		return fmt.Sprintf("Provided file at %s is not a %s file", e.Path, joinSuffixes(e.Suffixes))
	default:
		return fmt.Sprintf("Provided ledger file %s cannot be used", e.Path)
	}
}

// joinSuffixes renders ".beancount or .bean", ".a, .b or .c".
func joinSuffixes(suffixes []string) string {
	switch len(suffixes) {
	case 0:
		return "ledger"
	case 1:
		return suffixes[0]
	}
	last := len(suffixes) - 1
	return strings.Join(suffixes[:last], ", ") + " or " + suffixes[last]
}

// checkLedgerPath checks that path names an existing regular file with one
// of the accepted suffixes.
func checkLedgerPath(path string, cfg *config.Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PreconditionError{Path: path, Reason: NotFound}
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return &PreconditionError{Path: path, Reason: NotAFile}
	}
	if !cfg.AcceptsFile(path) {
		return &PreconditionError{Path: path, Reason: BadSuffix, Suffixes: cfg.Suffixes}
	}
	return nil
}
