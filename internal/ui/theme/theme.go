package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, tuned for dark terminals.
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Missed    = lipgloss.Color("#60A5FA") // Sky
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Cards. A card's border shows whether the cursor is on it, whether it is
// the pending endpoint of a connection, or neither.
var (
	CardIdle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	CardFocused = CardIdle.
			BorderForeground(Text)

	CardPending = CardIdle.
			Border(lipgloss.ThickBorder()).
			BorderForeground(Accent)

	CardBadge = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)
)

// Connection line colors, one per evaluation class.
var (
	LineNeutral   = lipgloss.NewStyle().Foreground(Primary)
	LineCorrect   = lipgloss.NewStyle().Foreground(Success)
	LineIncorrect = lipgloss.NewStyle().Foreground(Error)
	LineMissed    = lipgloss.NewStyle().Foreground(Missed)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MissedText = lipgloss.NewStyle().
			Foreground(Missed).
			Bold(true)
)

// Components
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
