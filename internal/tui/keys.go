package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Step     key.Binding
	Episode  key.Binding
	Finish   key.Binding
	Autoplay key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Step, k.Episode, k.Finish, k.Autoplay, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Step: key.NewBinding(
		key.WithKeys(" ", "n"),
		key.WithHelp("space/n", "step"),
	),
	Episode: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "episode"),
	),
	Finish: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "finish"),
	),
	Autoplay: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "autoplay"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}
