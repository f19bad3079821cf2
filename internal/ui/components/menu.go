package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/benewagner/musicmapping/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Detail   string // dimmed text after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the given items.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// View renders at most height items, scrolled so the selection is visible.
// A height of zero or less renders every item.
func (m Menu) View(height int) string {
	start, end := 0, len(m.Items)
	if height > 0 && len(m.Items) > height {
		start = min(max(m.Selected-height/2, 0), len(m.Items)-height)
		end = start + height
	}

	var s string
	for i := start; i < end; i++ {
		item := m.Items[i]
		detail := ""
		if item.Detail != "" {
			detail = "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Detail)
		}
		switch {
		case i == m.Selected:
			s += theme.Selected.Render("  ▸ "+item.Label) + detail + "\n"
		case item.Disabled:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+item.Label) + "\n"
		default:
			s += theme.Unselected.Render("    "+item.Label) + detail + "\n"
		}
	}
	return s
}
