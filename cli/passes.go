package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/robinvdvleuten/beancount-validate/validation"
)

// PassesCmd lists the registered validation passes in the order they run.
type PassesCmd struct{}

func (cmd *PassesCmd) Run(app *App) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "TIER", "LABEL")
	for _, pass := range validation.Default() {
		t.Row(pass.Name, pass.Tier.String(), pass.Label)
	}
	_, _ = fmt.Fprintln(app.Stdout, t.Render())
	return nil
}
