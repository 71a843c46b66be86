package monitor

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// Run shows the dashboard full-screen until the operator quits or ctx is
// cancelled. The caller owns src and closes it afterwards.
func Run(ctx context.Context, src Source, opts Options) error {
	m := NewModel(ctx, src, opts)
	defer m.bridge.close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrStream,
			"Monitor dashboard stopped unexpectedly",
			"Check that the terminal supports full-screen output")
	}
	return nil
}
