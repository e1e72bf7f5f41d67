package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timeledger/internal/lock"
	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	// The dashboard is the single writer for as long as it is open.
	l, err := lock.Acquire(ctx.ConfigDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}()

	model := tui.NewModel(ctx.Engine, ctx.Store, ctx.Clock, ctx.Location, ctx.Config.StoreTimeout)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
