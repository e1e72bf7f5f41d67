package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Help     key.Binding
	Up       key.Binding
	Down     key.Binding
	Start    key.Binding
	Pause    key.Binding
	Resume   key.Binding
	End      key.Binding
	Refresh  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start work"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Resume: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resume"),
		),
		End: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end day"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
	}
}

// syncEnabled enables exactly the actions the current state allows and
// disables all of them while an action is in flight or the log is corrupted.
func (m *Model) syncEnabled() {
	idle := !m.busy && !m.halted
	m.keys.Start.SetEnabled(idle && m.session.CanStart())
	m.keys.Pause.SetEnabled(idle && m.session.CanPause())
	m.keys.Resume.SetEnabled(idle && m.session.CanResume())
	m.keys.End.SetEnabled(idle && m.session.CanEnd())
	m.keys.Refresh.SetEnabled(!m.busy)
}
