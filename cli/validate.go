package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/beancount-validate/config"
	"github.com/robinvdvleuten/beancount-validate/errors"
	"github.com/robinvdvleuten/beancount-validate/logging"
	"github.com/robinvdvleuten/beancount-validate/parser"
	"github.com/robinvdvleuten/beancount-validate/pipeline"
	"github.com/robinvdvleuten/beancount-validate/printer"
	"github.com/robinvdvleuten/beancount-validate/progress"
	"github.com/robinvdvleuten/beancount-validate/telemetry"
	"github.com/robinvdvleuten/beancount-validate/validation"
)

type ValidateCmd struct {
	FilePath         string   `short:"f" name:"file-path" required:"" placeholder:"PATH" help:"Ledger file to validate."`
	ReexportIntoFile bool     `short:"r" name:"reexport-into-file" xor:"watch" help:"Rewrite the ledger file with the validated entries instead of printing them."`
	Yes              bool     `help:"Rewrite without asking for confirmation."`
	Watch            bool     `xor:"watch" help:"Validate again whenever the file changes."`
	Progress         string   `enum:"auto,on,off" default:"auto" help:"Show a line per validation pass (${enum}); auto shows them when stderr is a terminal."`
	DisablePass      []string `name:"disable-pass" placeholder:"NAME" help:"Skip a validation pass. Can be repeated."`
	Parallel         int      `placeholder:"N" help:"Run up to N validation passes at the same time."`
	Format           string   `enum:"text,json" default:"text" help:"Error report format (${enum})."`
	CurrencyColumn   int      `placeholder:"COL" help:"Column amounts are aligned on (derived from the entries if 0)."`
}

func (cmd *ValidateCmd) Run(ctx context.Context, app *App, globals *Globals) error {
	cfg, err := cmd.config(globals)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, app.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx = logging.WithLogger(ctx, logger)

	if err := checkLedgerPath(cmd.FilePath, cfg); err != nil {
		return err
	}

	passes, err := validation.Select(validation.Default(), cfg.DisabledPasses)
	if err != nil {
		return err
	}

	r := &runner{
		app:       app,
		path:      cmd.FilePath,
		passes:    passes,
		config:    cfg,
		format:    cmd.Format,
		reexport:  cmd.ReexportIntoFile,
		yes:       cmd.Yes,
		telemetry: globals.Telemetry,
	}

	if cmd.Watch {
		return r.watch(ctx)
	}

	code, err := r.run(ctx)
	if err != nil {
		return err
	}
	if code != 0 {
		return NewCommandError(code)
	}
	return nil
}

// config layers the config file and the flags over the defaults.
func (cmd *ValidateCmd) config(globals *Globals) (*config.Config, error) {
	cfg := config.Default()
	if globals.Config != "" {
		fileCfg, err := config.Load(globals.Config)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(fileCfg)
	}

	flags := &config.Config{
		DisabledPasses: cmd.DisablePass,
		Parallelism:    cmd.Parallel,
		LogLevel:       globals.LogLevel,
		CurrencyColumn: cmd.CurrencyColumn,
	}
	switch cmd.Progress {
	case "on":
		on := true
		flags.Progress = &on
	case "off":
		off := false
		flags.Progress = &off
	}
	cfg = cfg.Merge(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// runner validates one ledger file, once or on every change.
type runner struct {
	app       *App
	path      string
	passes    []validation.Pass
	config    *config.Config
	format    string
	reexport  bool
	yes       bool
	telemetry bool
}

func (r *runner) showProgress() bool {
	if r.config.Progress != nil {
		return *r.config.Progress
	}
	return r.app.StderrTerminal
}

func (r *runner) pipeline() *pipeline.Pipeline {
	opts := []pipeline.Option{pipeline.WithParallelism(r.config.Parallelism)}
	if r.showProgress() {
		opts = append(opts, pipeline.WithObserver(progress.New(r.app.Stderr, progress.WithStyles(r.app.styles))))
	}
	return pipeline.New(pipeline.ParserFunc(parser.Parse), r.passes, opts...)
}

func (r *runner) printer() *printer.Printer {
	return printer.New(printer.WithCurrencyColumn(r.config.CurrencyColumn))
}

// run validates the file and reports the outcome. The returned code is the
// exit code of the run; err is only set when the run could not complete.
func (r *runner) run(ctx context.Context) (int, error) {
	source, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("read ledger: %w", err)
	}

	if r.telemetry {
		collector := telemetry.NewTimingCollector()
		ctx = telemetry.WithCollector(ctx, collector)
		root := collector.Start("validate " + filepath.Base(r.path))
		ctx = telemetry.WithTimer(ctx, root)
		defer func() {
			root.End()
			_, _ = fmt.Fprintln(r.app.Stderr)
			collector.Report(r.app.Stderr, r.app.styles)
		}()
	}

	result, err := r.pipeline().Run(ctx, r.path, source)
	if err != nil {
		return 0, err
	}

	if !result.OK() {
		r.reportErrors(result, source)
		return result.ExitCode(), nil
	}
	return r.emit(ctx, result)
}

func (r *runner) reportErrors(result *pipeline.Result, source []byte) {
	errs := result.Errors.Errors()

	var formatter errors.Formatter
	if r.format == "json" {
		formatter = errors.NewJSONFormatter()
	} else {
		formatter = errors.NewTextFormatter(r.printer(), errors.WithSource(source))
	}
	_, _ = fmt.Fprintln(r.app.Stderr, strings.TrimRight(formatter.FormatAll(errs), "\n"))
	_, _ = fmt.Fprintln(r.app.Stderr)

	r.app.ui.failure("Found " + count(len(errs), "error", "errors"))
}

// emit writes the validated entries to stdout, or back into the file.
func (r *runner) emit(ctx context.Context, result *pipeline.Result) (int, error) {
	p := r.printer()
	summary := "Found " + count(len(result.AST.Directives), "entry", "entries")

	if !r.reexport {
		if err := p.PrintEntries(r.app.Stdout, result.AST); err != nil {
			return 0, fmt.Errorf("write entries: %w", err)
		}
		r.app.ui.successf("%s", summary)
		return 0, nil
	}

	r.app.ui.successf("%s", summary)
	if !r.yes {
		ok, err := r.app.confirm(fmt.Sprintf("Rewrite %s with the validated entries?", r.path))
		if err != nil {
			return 0, err
		}
		if !ok {
			r.app.ui.infof("Left %s unchanged", r.app.styles.FilePath(r.path))
			return 0, nil
		}
	}

	if err := writeFileAtomic(r.path, func(w *os.File) error {
		return p.PrintEntries(w, result.AST)
	}); err != nil {
		return 0, fmt.Errorf("re-export into %s: %w", r.path, err)
	}

	logging.FromContext(ctx).Info("re-exported ledger",
		zap.String("file", r.path),
		zap.Int("entries", len(result.AST.Directives)))
	r.app.ui.infof("Rewrote %s", r.app.styles.FilePath(r.path))
	return 0, nil
}

// count renders "1 entry" and "1,234 entries".
func count(n int, singular, plural string) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, singular, plural)
}
