package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/router"
	"github.com/benewagner/musicmapping/internal/screen"
	"github.com/benewagner/musicmapping/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	log    *zap.Logger
	width  int
	height int
}

// newAppModel creates a new AppModel showing initial.
func newAppModel(initial screen.Screen, log *zap.Logger) AppModel {
	if log == nil {
		log = zap.NewNop()
	}
	return AppModel{
		router: router.New(initial),
		log:    log,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}

	case router.PushScreenMsg:
		m.log.Debug("push screen", zap.String("title", msg.Screen.Title()))
	case router.PopScreenMsg:
		m.log.Debug("pop screen", zap.Int("depth", m.router.Depth()))
	case router.ReplaceScreenMsg:
		m.log.Debug("replace screen", zap.String("title", msg.Screen.Title()))
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	status := ""
	if m.router.Depth() > 1 {
		status = fmt.Sprintf("depth %d", m.router.Depth())
	}
	header := layout.RenderHeader(title, status, m.width)

	footer := layout.RenderFooter(m.footerHints(), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints() []layout.KeyHint {
	return screen.FooterHints(m.router.Active(), m.router.Depth() <= 1)
}

// Run starts the Bubble Tea program on the initial screen.
func Run(initial screen.Screen, log *zap.Logger) error {
	p := tea.NewProgram(newAppModel(initial, log))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
