package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput for single-line prompts such as the
// library filter.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a new text input. It starts blurred.
func NewTextInput(prompt, placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.Reset()
}
