package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/instance"
	"github.com/julianstephens/termplan/internal/storage/sqlite"
	"github.com/julianstephens/termplan/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); ok {
		release, err := instance.Acquire(ctx.Store.GetConfigPath())
		if err != nil {
			return err
		}
		defer release()
	}

	// Perform automatic backup on TUI startup
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Planner()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
