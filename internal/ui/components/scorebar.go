package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/benewagner/musicmapping/internal/ui/theme"
)

// ScoreBar shows the result of a check as a segmented bar: correct,
// incorrect and missed connections side by side, followed by counts.
type ScoreBar struct {
	Correct   int
	Incorrect int
	Missed    int
	Width     int
}

// NewScoreBar creates a score bar of the given total width.
func NewScoreBar(correct, incorrect, missed, width int) ScoreBar {
	return ScoreBar{Correct: correct, Incorrect: incorrect, Missed: missed, Width: width}
}

// View renders the bar.
func (b ScoreBar) View() string {
	counts := lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("✓ %d", b.Correct)) + "  " +
		lipgloss.NewStyle().Foreground(theme.Error).Render(fmt.Sprintf("✗ %d", b.Incorrect)) + "  " +
		lipgloss.NewStyle().Foreground(theme.Missed).Render(fmt.Sprintf("○ %d", b.Missed))

	barWidth := max(b.Width-lipgloss.Width(counts)-2, 4)
	total := b.Correct + b.Incorrect + b.Missed
	if total == 0 {
		return lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth)) + "  " + counts
	}

	segments := []struct {
		n     int
		color lipgloss.Style
	}{
		{b.Correct, lipgloss.NewStyle().Background(theme.Success)},
		{b.Incorrect, lipgloss.NewStyle().Background(theme.Error)},
		{b.Missed, lipgloss.NewStyle().Background(theme.Missed)},
	}

	var out strings.Builder
	used := 0
	for i, seg := range segments {
		w := barWidth * seg.n / total
		if i == len(segments)-1 {
			w = barWidth - used
		}
		used += w
		out.WriteString(seg.color.Render(strings.Repeat(" ", w)))
	}
	return out.String() + "  " + counts
}
