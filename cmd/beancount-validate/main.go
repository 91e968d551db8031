package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/robinvdvleuten/beancount-validate/cli"
)

var (
	version = ""
	commit  = ""
)

func main() {
	cli.Version = version
	cli.CommitSHA = commit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], cli.Streams{
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		Interactive:    term.IsTerminal(int(os.Stdin.Fd())),
		StderrTerminal: term.IsTerminal(int(os.Stderr.Fd())),
	})
	stop()
	os.Exit(code)
}
