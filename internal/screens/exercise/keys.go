package exercise

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Switch   key.Binding
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	Check    key.Binding
	Reset    key.Binding
	Shuffle  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "questions"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "answers"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch column"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", "space"),
			key.WithHelp("enter", "connect"),
		),
		Check: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "check"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Shuffle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "new order"),
		),
	}
}
