package exercise

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/ui/components"
	"github.com/benewagner/musicmapping/internal/ui/theme"
)

const (
	minColumnWidth = 16
	maxScoreWidth  = 60
)

// renderedColumn is one column of cards split into lines. anchors maps an
// element key to the row its connectors attach to; spans holds the first
// and last row of every card.
type renderedColumn struct {
	lines   []string
	anchors map[string]int
	spans   [][2]int
}

func (s *ExerciseScreen) View(width, height int) string {
	if !s.session.Ready() {
		return renderError(width, "this exercise cannot be played: its content is malformed")
	}

	status := s.renderStatus(width)
	boardHeight := max(height-lipgloss.Height(status)-1, 1)

	lines, top, bottom := s.renderBoard(width)
	offset := 0
	if bottom >= boardHeight {
		offset = min(bottom-boardHeight+1, top)
	}
	end := min(offset+boardHeight, len(lines))
	board := strings.Join(lines[offset:end], "\n")

	return lipgloss.NewStyle().Height(boardHeight).Render(board) + "\n" + status
}

// renderBoard lays out both columns with the connector gutter between them.
// It returns the board lines and the rows spanned by the focused card.
func (s *ExerciseScreen) renderBoard(width int) ([]string, int, int) {
	conns := s.session.Connections()
	gutter := components.GutterWidth(len(conns), width-2-2*minColumnWidth)
	colWidth := max((width-gutter-2)/2, minColumnWidth)

	left := s.renderColumn(questionColumn, colWidth)
	right := s.renderColumn(answerColumn, colWidth)
	rows := max(len(left.lines), len(right.lines))

	links := make([]components.Link, 0, len(conns))
	for _, c := range conns {
		from, ok := left.anchors[c.From]
		if !ok {
			continue
		}
		to, ok := right.anchors[c.To]
		if !ok {
			continue
		}
		links = append(links, components.Link{FromRow: from, ToRow: to, Class: c.Class})
	}
	gutterLines := strings.Split(components.RenderGutter(links, gutter, rows), "\n")

	heading := lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true)
	lines := make([]string, 0, rows+1)
	lines = append(lines, " "+pad(heading.Render("Questions"), colWidth)+strings.Repeat(" ", gutter)+heading.Render("Answers"))
	for r := 0; r < rows; r++ {
		lines = append(lines, " "+pad(lineAt(left.lines, r), colWidth)+gutterLines[r]+pad(lineAt(right.lines, r), colWidth))
	}

	var span [2]int
	col := left
	if s.col == answerColumn {
		col = right
	}
	if i := s.cursor[s.col]; i < len(col.spans) {
		span = col.spans[i]
	}
	// +1 for the heading row.
	return lines, span[0] + 1, span[1] + 1
}

func (s *ExerciseScreen) renderColumn(c column, width int) renderedColumn {
	cards := s.columnCards(c)
	out := renderedColumn{anchors: make(map[string]int, len(cards))}
	if len(cards) == 0 {
		out.lines = []string{lipgloss.NewStyle().Foreground(theme.TextDim).Render("  (none)")}
		return out
	}

	for i, e := range cards {
		if i > 0 {
			out.lines = append(out.lines, "")
		}
		card := components.RenderCard(e, components.CardOptions{
			Width:   width,
			Focused: c == s.col && i == s.cursor[c],
			Pending: s.session.Highlighted(e.Key),
			CDNRoot: s.cdnRoot,
		})
		cardLines := strings.Split(card, "\n")
		top := len(out.lines)
		out.anchors[e.Key] = top + len(cardLines)/2
		out.spans = append(out.spans, [2]int{top, top + len(cardLines) - 1})
		out.lines = append(out.lines, cardLines...)
	}
	return out
}

func (s *ExerciseScreen) renderStatus(width int) string {
	describe := lipgloss.NewStyle().Foreground(theme.Text).Render(s.session.Describe())

	buttons := components.NewButton("c", "Check", s.session.Checking()).View() + "  " +
		components.NewButton("r", "Reset", false).View()

	parts := []string{"  " + describe, "  " + buttons}
	if s.session.Checking() {
		st := s.session.Stats()
		bar := components.NewScoreBar(st.Correct, st.Incorrect, st.Missed, min(width-4, maxScoreWidth))
		parts = append(parts, "  "+bar.View())
	}
	return strings.Join(parts, "\n")
}

// Cursor returns the element under the cursor, if any.
func (s *ExerciseScreen) Cursor() (content.Element, bool) {
	return s.focused()
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

// pad right-fills s with spaces to width cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func renderError(width int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  %s\n\n  Press Esc to go back.", msg))
}
