// Package cli implements the beancount-validate command line.
package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/beancount-validate/logging"
	"github.com/robinvdvleuten/beancount-validate/output"
)

const (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
)

// Streams are the process streams a command works with. The terminal flags
// are decided by the caller so tests can run without one.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is set when stdin is a terminal; only then is the user
	// asked for confirmation.
	Interactive bool
	// StderrTerminal turns progress on by default.
	StderrTerminal bool
}

// App is bound into every command's Run method.
type App struct {
	Streams
	Logger *zap.Logger

	ui     *ui
	styles *output.Styles
}

func newApp(streams Streams) *App {
	return &App{
		Streams: streams,
		Logger:  zap.NewNop(),
		ui:      newUI(streams.Stderr),
		styles:  output.NewStyles(streams.Stderr),
	}
}

// exitRequest carries the exit code kong asks for after printing help or
// the version.
type exitRequest int

// Execute parses args, runs the selected command and returns the process
// exit code: 0 on success, 1 when the ledger has errors, 2 on usage and
// precondition failures.
func Execute(ctx context.Context, args []string, streams Streams) int {
	var cmds Commands
	parser, err := kong.New(&cmds,
		kong.Name("beancount-validate"),
		kong.Description("Validate a beancount ledger and print it back in canonical form."),
		kong.UsageOnError(),
		kong.Writers(streams.Stdout, streams.Stderr),
		kong.Exit(func(code int) { panic(exitRequest(code)) }),
		kong.Vars{"version": versionString()},
	)
	if err != nil {
		panic(err)
	}

	app := newApp(streams)

	kctx, exit, err := parse(parser, args)
	if exit != nil {
		return int(*exit)
	}
	if err != nil {
		app.ui.failure(err.Error())
		return 2
	}

	logger, err := logging.New(cmds.LogLevel, streams.Stderr)
	if err != nil {
		app.ui.failure(err.Error())
		return 2
	}
	defer func() { _ = logger.Sync() }()
	app.Logger = logger
	ctx = logging.WithLogger(ctx, logger)

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(app, &cmds.Globals)
	return app.exitCode(err)
}

// parse runs the kong parser, turning an exit requested by --help or
// --version into a returned code.
func parse(parser *kong.Kong, args []string) (kctx *kong.Context, exit *exitRequest, err error) {
	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			exit = &req
		}
	}()
	kctx, err = parser.Parse(args)
	return kctx, nil, err
}

func (a *App) exitCode(err error) int {
	if err == nil {
		return 0
	}

	var cmdErr *CommandError
	if stdErrors.As(err, &cmdErr) {
		return cmdErr.ExitCode()
	}

	var precondition *PreconditionError
	if stdErrors.As(err, &precondition) {
		a.ui.failure(precondition.Error())
		return 2
	}

	a.ui.failure(err.Error())
	return 1
}

// ui prints the status lines on the diagnostic stream.
type ui struct {
	w       io.Writer
	success lipgloss.Style
	failed  lipgloss.Style
	info    lipgloss.Style
}

func newUI(w io.Writer) *ui {
	r := lipgloss.NewRenderer(w)
	return &ui{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"}),
		failed:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}),
		info:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"}),
	}
}

func (u *ui) successf(format string, args ...any) {
	_, _ = fmt.Fprintf(u.w, "%s %s\n", u.success.Render(successSymbol), fmt.Sprintf(format, args...))
}

func (u *ui) failure(message string) {
	_, _ = fmt.Fprintf(u.w, "%s %s\n", u.failed.Render(errorSymbol), u.failed.Render(message))
}

func (u *ui) infof(format string, args ...any) {
	_, _ = fmt.Fprintf(u.w, "%s %s\n", u.info.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// confirm asks a yes/no question. Without a terminal the answer is yes:
// non-interactive runs are not blocked on a prompt.
func (a *App) confirm(question string) (bool, error) {
	if !a.Interactive {
		return true, nil
	}

	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			WithButtonAlignment(lipgloss.Left).
			Value(&confirmed),
	)).WithInput(a.Stdin).WithOutput(a.Stderr)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return confirmed, nil
}
