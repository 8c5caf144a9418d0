package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	tab       key.Binding
	search    key.Binding
	toggle    key.Binding
	next      key.Binding
	previous  key.Binding
	queueNext key.Binding
	queueLast key.Binding
	save      key.Binding
	volumeUp  key.Binding
	volumeDn  key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys("right", ">"), key.WithHelp("→", "next")),
		previous:  key.NewBinding(key.WithKeys("left", "<"), key.WithHelp("←", "previous")),
		queueNext: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "play next")),
		queueLast: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "queue")),
		save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to library")),
		volumeUp:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volumeDn:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.tab, k.toggle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.tab, k.search, k.save},
		{k.toggle, k.next, k.previous},
		{k.queueNext, k.queueLast, k.volumeUp, k.volumeDn},
		{k.quit},
	}
}
