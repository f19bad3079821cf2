// Package screen defines what the router stacks: the library, the exercise
// board and anything pushed on top of them.
package screen

import (
	"slices"

	tea "charm.land/bubbletea/v2"

	"github.com/benewagner/musicmapping/internal/ui/layout"
)

// Screen is one full-height view between the header and the footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// BackDescription labels the hint for the key that pops a screen.
const BackDescription = "Back"

var (
	backHint = layout.KeyHint{Key: "Esc", Description: BackDescription}
	quitHint = layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}
)

// FooterHints returns the footer hints for s. The root screen has no
// screen below it, so its Back hint gives way to Quit.
func FooterHints(s Screen, root bool) []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := s.(KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	if len(hints) == 0 {
		hints = []layout.KeyHint{backHint, quitHint}
	}
	if root {
		hints = slices.DeleteFunc(slices.Clone(hints), func(h layout.KeyHint) bool {
			return h.Description == BackDescription
		})
		if !slices.Contains(hints, quitHint) {
			hints = append(hints, quitHint)
		}
	}
	return hints
}
