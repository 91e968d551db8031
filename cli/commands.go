package cli

import "github.com/alecthomas/kong"

var (
	Version   = ""
	CommitSHA = ""
)

func versionString() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if CommitSHA != "" {
		v += " (" + CommitSHA + ")"
	}
	return v
}

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"YAML config file." env:"BEANCOUNT_VALIDATE_CONFIG" placeholder:"PATH"`
	LogLevel  string `help:"Log level: debug, info, warn or error." env:"BEANCOUNT_VALIDATE_LOG_LEVEL" placeholder:"LEVEL"`
	Telemetry bool   `help:"Show timing telemetry for operations."`

	Version kong.VersionFlag `help:"Print the version and exit."`
}

type Commands struct {
	Globals

	Validate ValidateCmd `cmd:"" default:"withargs" help:"Validate a ledger and print it in canonical form."`
	Passes   PassesCmd   `cmd:"" help:"List the validation passes."`
	Doctor   DoctorCmd   `cmd:"" help:"Doctor utilities for debugging beancount files."`
}
