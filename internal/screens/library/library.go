// Package library implements the start screen listing the stored exercises.
package library

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/router"
	"github.com/benewagner/musicmapping/internal/screen"
	"github.com/benewagner/musicmapping/internal/screens/exercise"
	"github.com/benewagner/musicmapping/internal/store"
	"github.com/benewagner/musicmapping/internal/ui/components"
	"github.com/benewagner/musicmapping/internal/ui/layout"
	"github.com/benewagner/musicmapping/internal/ui/theme"
)

// exercisesLoadedMsg carries the result of listing the library.
type exercisesLoadedMsg struct {
	Exercises []store.Exercise
	Err       error
}

// LibraryScreen implements screen.Screen for the exercise library.
type LibraryScreen struct {
	repo   store.ExerciseRepo
	opts   exercise.Options
	log    *zap.Logger
	loaded bool
	err    error

	exercises []store.Exercise
	menu      components.Menu
	filter    components.TextInput
}

var _ screen.Screen = (*LibraryScreen)(nil)
var _ screen.KeyHintProvider = (*LibraryScreen)(nil)

// New creates a library screen. Exercises opened from it use opts.
func New(repo store.ExerciseRepo, opts exercise.Options) *LibraryScreen {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &LibraryScreen{
		repo:   repo,
		opts:   opts,
		log:    log.Named("library"),
		filter: components.NewTextInput("/ ", "filter by title", 64),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *LibraryScreen) Title() string {
	return "Library"
}

func (s *LibraryScreen) KeyHints() []layout.KeyHint {
	if s.filter.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Clear"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "/", Description: "Filter"},
		{Key: "Ctrl+R", Description: "Reload"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LibraryScreen) load() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		list, err := repo.List(context.Background())
		return exercisesLoadedMsg{Exercises: list, Err: err}
	}
}

func (s *LibraryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exercisesLoadedMsg:
		s.loaded = true
		s.err = msg.Err
		if msg.Err != nil {
			s.log.Error("list exercises", zap.Error(msg.Err))
			return s, nil
		}
		s.exercises = msg.Exercises
		s.log.Debug("library loaded", zap.Int("exercises", len(msg.Exercises)))
		s.rebuildMenu()
		return s, nil

	case tea.KeyPressMsg:
		if s.filter.Focused() {
			return s.handleFilterKey(msg)
		}
		switch msg.String() {
		case "/":
			return s, s.filter.Focus()
		case "esc":
			if s.filter.Value() != "" {
				s.filter.Reset()
				s.rebuildMenu()
			}
			return s, nil
		case "ctrl+r":
			return s, s.load()
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}

	if s.filter.Focused() {
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LibraryScreen) handleFilterKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		s.filter.Blur()
		return s, nil
	case "esc":
		s.filter.Blur()
		s.filter.Reset()
		s.rebuildMenu()
		return s, nil
	}
	before := s.filter.Value()
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	if s.filter.Value() != before {
		s.rebuildMenu()
	}
	return s, cmd
}

// rebuildMenu lists the exercises matching the filter.
func (s *LibraryScreen) rebuildMenu() {
	query := strings.ToLower(strings.TrimSpace(s.filter.Value()))
	var items []components.MenuItem
	for _, ex := range s.exercises {
		if query != "" && !strings.Contains(strings.ToLower(ex.Title), query) && !strings.Contains(ex.Slug, query) {
			continue
		}
		items = append(items, components.MenuItem{
			Label:  ex.Title,
			Detail: fmt.Sprintf("%s · %d cards · %s", ex.Slug, len(ex.Content.Elements), ex.UpdatedAt.Format("2006-01-02")),
			Action: s.open(ex),
		})
	}
	s.menu = components.NewMenu(items)
}

func (s *LibraryScreen) open(ex store.Exercise) func() tea.Cmd {
	return func() tea.Cmd {
		s.log.Info("open exercise", zap.String("slug", ex.Slug))
		scr := exercise.New(ex.Title, ex.Content, s.opts)
		return func() tea.Msg { return router.PushScreenMsg{Screen: scr} }
	}
}

func (s *LibraryScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	switch {
	case !s.loaded:
		return dim.Render("\n  Loading library...")
	case s.err != nil:
		return lipgloss.NewStyle().Foreground(theme.Error).Render(fmt.Sprintf("\n  Could not load the library: %v", s.err))
	case len(s.exercises) == 0:
		return dim.Render("\n  The library is empty.\n\n  Add an exercise with `musicmapping import <file>` or `musicmapping generate --topic <topic>`.")
	}

	var b strings.Builder
	b.WriteString("\n")
	if s.filter.Focused() || s.filter.Value() != "" {
		b.WriteString("  " + s.filter.View() + "\n\n")
	}
	if len(s.menu.Items) == 0 {
		b.WriteString(dim.Render("  No exercise matches the filter."))
		return b.String()
	}
	b.WriteString(s.menu.View(max(height-lipgloss.Height(b.String())-1, 1)))
	return b.String()
}
