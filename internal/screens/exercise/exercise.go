// Package exercise implements the screen on which a matching exercise is
// played: questions on the left, answers on the right and the learner's
// connections drawn between them.
package exercise

import (
	"math/rand/v2"
	"slices"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/matching"
	"github.com/benewagner/musicmapping/internal/router"
	"github.com/benewagner/musicmapping/internal/screen"
	"github.com/benewagner/musicmapping/internal/ui/layout"
)

type column int

const (
	questionColumn column = iota
	answerColumn
)

// Options configures an exercise screen.
type Options struct {
	CDNRoot string
	Logger  *zap.Logger
	Session []matching.Option
}

// ExerciseScreen implements screen.Screen for one exercise.
type ExerciseScreen struct {
	title   string
	session *matching.Session
	opts    Options
	cdnRoot string
	log     *zap.Logger
	keys    keyMap

	col    column
	cursor [2]int
}

var _ screen.Screen = (*ExerciseScreen)(nil)
var _ screen.KeyHintProvider = (*ExerciseScreen)(nil)

// New creates an exercise screen playing c.
func New(title string, c content.Content, opts Options) *ExerciseScreen {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &ExerciseScreen{
		title:   title,
		session: matching.NewSession(c, opts.Session...),
		opts:    opts,
		cdnRoot: opts.CDNRoot,
		log:     log.Named("exercise"),
		keys:    defaultKeys(),
	}
	if len(s.session.Questions()) == 0 && len(s.session.Answers()) > 0 {
		s.col = answerColumn
	}
	return s
}

// Session returns the session driven by the screen.
func (s *ExerciseScreen) Session() *matching.Session { return s.session }

func (s *ExerciseScreen) Init() tea.Cmd {
	if !s.session.Ready() {
		s.log.Warn("exercise content is malformed", zap.String("title", s.title))
		return nil
	}
	s.log.Debug("exercise opened",
		zap.String("title", s.title),
		zap.Int("questions", len(s.session.Questions())),
		zap.Int("answers", len(s.session.Answers())),
		zap.Int("pairs", s.session.GroundTruth().Len()),
	)
	return nil
}

func (s *ExerciseScreen) Title() string {
	return s.title
}

func (s *ExerciseScreen) KeyHints() []layout.KeyHint {
	if !s.session.Ready() {
		return []layout.KeyHint{{Key: "Esc", Description: screen.BackDescription}}
	}
	check := "Check"
	if s.session.Checking() {
		check = "Hide check"
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Column"},
		{Key: "↑↓", Description: "Card"},
		{Key: "Enter", Description: "Connect"},
		{Key: "C", Description: check},
		{Key: "R", Description: "Reset"},
		{Key: "S", Description: "New order"},
		{Key: "Esc", Description: screen.BackDescription},
	}
}

func (s *ExerciseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !s.session.Ready() {
		return s, nil
	}

	switch {
	case key.Matches(kmsg, s.keys.Left):
		s.focusColumn(questionColumn)
	case key.Matches(kmsg, s.keys.Right):
		s.focusColumn(answerColumn)
	case key.Matches(kmsg, s.keys.Switch):
		s.focusColumn(1 - s.col)
	case key.Matches(kmsg, s.keys.Up):
		s.moveCursor(-1)
	case key.Matches(kmsg, s.keys.Down):
		s.moveCursor(1)
	case key.Matches(kmsg, s.keys.Activate):
		s.activate()
	case key.Matches(kmsg, s.keys.Check):
		checking := s.session.ToggleCheck()
		st := s.session.Stats()
		s.log.Debug("check toggled",
			zap.Bool("checking", checking),
			zap.Int("correct", st.Correct),
			zap.Int("incorrect", st.Incorrect),
			zap.Int("missed", st.Missed),
		)
	case key.Matches(kmsg, s.keys.Reset):
		s.session.Reset()
		s.log.Debug("exercise reset")
	case key.Matches(kmsg, s.keys.Shuffle):
		return s, s.shuffle()
	}
	return s, nil
}

// shuffle replaces the screen with a fresh one over the same content, dealt
// in a new display order. Connections are not carried over.
func (s *ExerciseScreen) shuffle() tea.Cmd {
	opts := s.opts
	opts.Session = append(slices.Clone(s.opts.Session), matching.WithSeed(rand.Uint64()))
	next := New(s.title, s.session.Content(), opts)
	s.log.Debug("exercise reshuffled", zap.Int("dropped", len(s.session.Pairs())))
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// activate clicks the card under the cursor.
func (s *ExerciseScreen) activate() {
	e, ok := s.focused()
	if !ok {
		return
	}
	res := s.session.Click(e.Key)
	s.log.Debug("click",
		zap.String("key", e.Key),
		zap.String("label", e.Label),
		zap.Stringer("result", res),
		zap.Stringer("state", s.session.State()),
		zap.Int("pairs", len(s.session.Pairs())),
	)
}

func (s *ExerciseScreen) columnCards(c column) []content.Element {
	if c == questionColumn {
		return s.session.Questions()
	}
	return s.session.Answers()
}

func (s *ExerciseScreen) focusColumn(c column) {
	if len(s.columnCards(c)) == 0 {
		return
	}
	s.col = c
}

func (s *ExerciseScreen) moveCursor(delta int) {
	n := len(s.columnCards(s.col))
	if n == 0 {
		return
	}
	s.cursor[s.col] = min(max(s.cursor[s.col]+delta, 0), n-1)
}

// focused returns the element under the cursor.
func (s *ExerciseScreen) focused() (content.Element, bool) {
	cards := s.columnCards(s.col)
	i := s.cursor[s.col]
	if i < 0 || i >= len(cards) {
		return content.Element{}, false
	}
	return cards[i], true
}
