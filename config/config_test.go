package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{".beancount", ".bean"}, cfg.Suffixes)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Zero(t, cfg.Progress)

	cfg.Suffixes[0] = ".changed"
	assert.Equal(t, ".beancount", DefaultSuffixes[0])
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validate.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(`suffixes: [.Ledger, txt]
disabled_passes: [document_paths]
parallelism: 4
progress: false
log_level: debug
currency_column: 60
`), 0o600))

	cfg, err := Load(path)
	assert.NoError(t, err)

	progress := false
	assert.Equal(t, &Config{
		Suffixes:       []string{".ledger", ".txt"},
		DisabledPasses: []string{"document_paths"},
		Parallelism:    4,
		Progress:       &progress,
		LogLevel:       "debug",
		CurrencyColumn: 60,
	}, cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "Empty", input: ""},
		{name: "OnlyComment", input: "# nothing here\n"},
		{name: "UnknownKey", input: "colour: red\n", wantErr: "field colour not found"},
		{name: "NegativeParallelism", input: "parallelism: -1\n", wantErr: "parallelism must not be negative"},
		{name: "NegativeColumn", input: "currency_column: -3\n", wantErr: "currency_column must not be negative"},
		{name: "EmptySuffix", input: "suffixes: ['']\n", wantErr: "suffixes must not contain empty entries"},
		{name: "BadLogLevel", input: "log_level: loud\n", wantErr: `invalid log level "loud"`},
		{name: "WrongType", input: "parallelism: many\n", wantErr: "parse config"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.input))
			if test.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	on := true
	base := Default()
	base.DisabledPasses = []string{"dates"}

	merged := base.Merge(&Config{
		Suffixes:       []string{"LEDGER"},
		DisabledPasses: []string{"dates", "options"},
		Parallelism:    2,
		Progress:       &on,
	})

	assert.Equal(t, []string{".ledger"}, merged.Suffixes)
	assert.Equal(t, []string{"dates", "options"}, merged.DisabledPasses)
	assert.Equal(t, 2, merged.Parallelism)
	assert.True(t, *merged.Progress)
	assert.Equal(t, "warn", merged.LogLevel)

	on = false
	assert.True(t, *merged.Progress)
	assert.Equal(t, []string{"dates"}, base.DisabledPasses)

	t.Run("Nil", func(t *testing.T) {
		assert.Equal(t, base, base.Merge(nil))
	})
}

func TestAcceptsFile(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.AcceptsFile("main.beancount"))
	assert.True(t, cfg.AcceptsFile("/ledgers/MAIN.BEAN"))
	assert.False(t, cfg.AcceptsFile("main.txt"))
	assert.False(t, cfg.AcceptsFile("beancount"))
}
