package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	// Toasts on stderr would tear the alt screen; the TUI shows them itself.
	flash := tui.NewFlash()
	app := ctx.WithNotifier(notify.Multi{flash, notify.NewTray()}, optimistic.WithPatchHook(flash.Patched))

	m := tui.NewModel(app.Ctx, tui.Services{
		Auth:    app.Auth,
		Dreams:  app.Dreams,
		Routine: app.Routine,
		Reads:   app.Reads,
	}, flash)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(app.Ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
