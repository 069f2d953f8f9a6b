package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/feedview/feedview/color"
	"github.com/feedview/feedview/style"
)

// keymap defines the keyboard interactions of the feed screen.
type keymap struct {
	prompting bool

	quit, forceQuit,
	up, down, pageUp, pageDown,
	top, bottom,
	loadMore, filter, timeline, reload,
	play, pause,
	remove, refresh, openURL,
	confirm, back,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "page up"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdn", "page down"),
		),
		top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		loadMore: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "load more"),
		),
		filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		timeline: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "jump to date"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		play: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play")),
		),
		pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause all"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh item"),
		),
		openURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open video"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	if k.prompting {
		return []key.Binding{k.confirm, k.back}
	}
	return []key.Binding{k.play, k.pause, k.loadMore, k.showHelp, k.quit}
}

func (k *keymap) FullHelp() [][]key.Binding {
	if k.prompting {
		return [][]key.Binding{k.ShortHelp()}
	}
	return [][]key.Binding{
		{k.up, k.down, k.pageUp, k.pageDown, k.top, k.bottom},
		{k.play, k.pause, k.loadMore, k.reload},
		{k.filter, k.timeline, k.remove, k.refresh, k.openURL},
		{k.showHelp, k.quit},
	}
}
