package monitor

import tea "github.com/charmbracelet/bubbletea"

const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyReconnect  = "r"
	KeyToggleHelp = "?"
	KeyClose      = "esc"
)

// HandleKeyMsg applies dashboard shortcuts. It reports false for keys it
// does not own so the viewport can scroll on them.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyClose {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		m.bridge.close()
		return true, tea.Quit
	case KeyReconnect:
		m.lastErr = nil
		return true, m.connectCmd()
	}
	return false, nil
}
