package components

import (
	"cmp"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/benewagner/musicmapping/internal/matching"
	"github.com/benewagner/musicmapping/internal/ui/theme"
)

// Link is one connection to draw in the gutter between the question and
// answer columns. Rows are relative to the top of the gutter and may lie
// outside it when the card is scrolled out of view.
type Link struct {
	FromRow int
	ToRow   int
	Class   matching.Class
}

// MinGutterWidth is the narrowest gutter drawn. Every lane takes two
// columns; the outer columns hold the line stubs and the arrow head.
const MinGutterWidth = 7

// GutterWidth returns a width giving each of n links its own lane. The
// result never exceeds budget unless budget is below MinGutterWidth.
func GutterWidth(n, budget int) int {
	return min(max(2*n+3, MinGutterWidth), max(budget, MinGutterWidth))
}

const (
	up uint8 = 1 << iota
	down
	left
	right
)

var boxRunes = map[uint8]rune{
	left:                     '─',
	right:                    '─',
	left | right:             '─',
	up:                       '│',
	down:                     '│',
	up | down:                '│',
	down | right:             '┌',
	down | left:              '┐',
	up | right:               '└',
	up | left:                '┘',
	up | down | right:        '├',
	up | down | left:         '┤',
	left | right | down:      '┬',
	left | right | up:        '┴',
	up | down | left | right: '┼',
}

// gutterCell is one character position of the gutter.
type gutterCell struct {
	mask  uint8
	arrow bool
	class matching.Class
	drawn bool
	// shared marks a lane carrying more than one overlapping link.
	shared bool
}

// gutterGrid is the routed gutter before styling.
type gutterGrid struct {
	width, height int
	cells         [][]gutterCell
}

// classPriority decides which color wins where lines cross.
func classPriority(c matching.Class) int {
	switch c {
	case matching.Incorrect:
		return 3
	case matching.Missed:
		return 2
	case matching.Correct:
		return 1
	}
	return 0
}

// routeLinks lays the links out on a grid. Each link runs right from the
// question row to its lane, along the lane to the answer row, and on to
// an arrow head at the right edge. Links whose row spans overlap get
// different lanes; when lanes run out the one freed earliest is shared and
// its vertical run is drawn dashed.
func routeLinks(links []Link, width, height int) gutterGrid {
	width = max(width, 3)
	height = max(height, 0)
	g := gutterGrid{width: width, height: height, cells: make([][]gutterCell, height)}
	for r := range g.cells {
		g.cells[r] = make([]gutterCell, width)
	}

	order := make([]int, len(links))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		la, lb := links[a], links[b]
		return cmp.Or(
			cmp.Compare(min(la.FromRow, la.ToRow), min(lb.FromRow, lb.ToRow)),
			cmp.Compare(max(la.FromRow, la.ToRow), max(lb.FromRow, lb.ToRow)),
		)
	})

	lanes := max((width-1)/2, 1)
	laneEnd := make([]int, lanes)
	for i := range laneEnd {
		laneEnd[i] = -1 << 31
	}

	lane := make([]int, len(links))
	shared := make([]bool, len(links))
	for _, i := range order {
		l := links[i]
		if l.FromRow == l.ToRow {
			continue
		}
		lo, hi := min(l.FromRow, l.ToRow), max(l.FromRow, l.ToRow)
		pick := -1
		for j, end := range laneEnd {
			if end < lo {
				pick = j
				break
			}
		}
		if pick < 0 {
			pick = 0
			for j, end := range laneEnd {
				if end < laneEnd[pick] {
					pick = j
				}
			}
			shared[i] = true
		}
		lane[i] = pick
		laneEnd[pick] = hi
	}

	for _, i := range order {
		l := links[i]
		if l.FromRow == l.ToRow {
			g.hline(l.FromRow, 0, width-1, l.Class)
		} else {
			x := 1 + 2*lane[i]
			g.hline(l.FromRow, 0, x, l.Class)
			g.vline(x, l.FromRow, l.ToRow, l.Class)
			if shared[i] {
				g.markShared(x, l.FromRow, l.ToRow)
			}
			g.hline(l.ToRow, x, width-1, l.Class)
		}
		if c := g.at(l.ToRow, width-1); c != nil {
			c.arrow = true
			g.paint(c, l.Class)
		}
	}
	return g
}

func (g *gutterGrid) at(row, col int) *gutterCell {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return nil
	}
	return &g.cells[row][col]
}

func (g *gutterGrid) paint(c *gutterCell, class matching.Class) {
	if !c.drawn || classPriority(class) >= classPriority(c.class) {
		c.class = class
	}
	c.drawn = true
}

func (g *gutterGrid) set(row, col int, bits uint8, class matching.Class) {
	if c := g.at(row, col); c != nil {
		c.mask |= bits
		g.paint(c, class)
	}
}

// hline draws from column x0 to x1 (x0 < x1) on row. The segment starting
// at the left edge gets a stub coming out of the card.
func (g *gutterGrid) hline(row, x0, x1 int, class matching.Class) {
	if x0 == 0 {
		g.set(row, 0, left, class)
	}
	for x := x0; x < x1; x++ {
		g.set(row, x, right, class)
		g.set(row, x+1, left, class)
	}
}

func (g *gutterGrid) vline(col, y0, y1 int, class matching.Class) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y < y1; y++ {
		g.set(y, col, down, class)
		g.set(y+1, col, up, class)
	}
}

func (g *gutterGrid) markShared(col, y0, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		if c := g.at(y, col); c != nil {
			c.shared = true
		}
	}
}

// glyph returns the character for one cell.
func (c gutterCell) glyph() rune {
	if c.arrow {
		return '▶'
	}
	if c.shared && c.mask == up|down {
		return '┆'
	}
	if r, ok := boxRunes[c.mask]; ok {
		return r
	}
	return ' '
}

// String renders the grid without colors.
func (g gutterGrid) String() string {
	lines := make([]string, g.height)
	for r, row := range g.cells {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.glyph())
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// LineStyle returns the color used for connections of the given class.
func LineStyle(c matching.Class) lipgloss.Style {
	switch c {
	case matching.Correct:
		return theme.LineCorrect
	case matching.Incorrect:
		return theme.LineIncorrect
	case matching.Missed:
		return theme.LineMissed
	}
	return theme.LineNeutral
}

// RenderGutter draws links in a width x height block, colored by class.
func RenderGutter(links []Link, width, height int) string {
	g := routeLinks(links, width, height)
	lines := make([]string, g.height)
	for r, row := range g.cells {
		var b strings.Builder
		for x := 0; x < len(row); {
			c := row[x]
			if !c.drawn {
				b.WriteRune(' ')
				x++
				continue
			}
			// Style runs of equally classed cells in one call.
			var run strings.Builder
			for x < len(row) && row[x].drawn && row[x].class == c.class {
				run.WriteRune(row[x].glyph())
				x++
			}
			b.WriteString(LineStyle(c.class).Render(run.String()))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}
