package ui

import "github.com/charmbracelet/bubbles/key"

// volumeStep is how far one key press moves the volume slider.
const volumeStep = 0.1

type keyMap struct {
	playPause  key.Binding
	forward    key.Binding
	backward   key.Binding
	volumeUp   key.Binding
	volumeDown key.Binding
	help       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		playPause: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "play/pause"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", "next"),
		),
		backward: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←/p", "previous"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "=", "up"),
			key.WithHelp("+", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-", "down"),
			key.WithHelp("-", "volume down"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.backward, k.forward, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.backward, k.forward},
		{k.volumeUp, k.volumeDown},
		{k.help, k.quit},
	}
}
