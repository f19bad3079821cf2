package components

import (
	"github.com/benewagner/musicmapping/internal/ui/theme"
)

// Button is a toolbar button showing its key and whether its mode is on.
type Button struct {
	Key    string
	Label  string
	Active bool
}

// NewButton creates a new button.
func NewButton(key, label string, active bool) Button {
	return Button{Key: key, Label: label, Active: active}
}

// View renders the button.
func (b Button) View() string {
	label := "[" + b.Key + "] " + b.Label
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
