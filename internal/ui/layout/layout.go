package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/benewagner/musicmapping/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	msg := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
	return msg
}

// RenderHeader renders the application header bar: app name on the left,
// the screen title centered and an optional status on the right.
func RenderHeader(title, status string, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  ♪ musicmapping")

	center := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(title)

	right := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Render(status)

	leftLen := lipgloss.Width(left)
	centerLen := lipgloss.Width(center)
	rightLen := lipgloss.Width(right)

	innerWidth := max(width-4, 0) // account for border padding

	leftGap := max((innerWidth-centerLen)/2-leftLen, 1)
	rightGap := max(innerWidth-leftLen-leftGap-centerLen-rightLen, 1)

	content := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right

	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderFooter renders the footer with key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
			" " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		parts = append(parts, part)
	}

	content := "  " + strings.Join(parts, "   ")

	box := lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)

	return box
}

// RenderFrame composes the full frame: header + content + footer.
func RenderFrame(header, content, footer string, width, height int) string {
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	styledContent := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return header + "\n" + styledContent + "\n" + footer
}
