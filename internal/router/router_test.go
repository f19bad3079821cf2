package router_test

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/matching"
	"github.com/benewagner/musicmapping/internal/router"
	"github.com/benewagner/musicmapping/internal/screens/exercise"
)

func scales() content.Content {
	elems := []content.Element{
		{Key: "Q1", Label: "Q1", Type: content.TypeQuestion, CardType: content.CardText, Text: "W W H W W W H", Answers: []string{"A1"}},
		{Key: "Q2", Label: "Q2", Type: content.TypeQuestion, CardType: content.CardText, Text: "W H W W H W W", Answers: []string{"A2"}},
		{Key: "A1", Label: "A1", Type: content.TypeAnswer, CardType: content.CardText, Text: "Major"},
		{Key: "A2", Label: "A2", Type: content.TypeAnswer, CardType: content.CardText, Text: "Natural minor"},
	}
	return content.Content{Elements: elems, Answers: content.ProjectAnswerKey(elems)}
}

// newExercise returns an exercise screen and the log it writes "exercise
// opened" to when its Init runs.
func newExercise(title string) (*exercise.ExerciseScreen, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := exercise.New(title, scales(), exercise.Options{
		Logger:  zap.New(core),
		Session: []matching.Option{matching.WithSeed(3)},
	})
	return s, logs
}

func opened(logs *observer.ObservedLogs) bool {
	return logs.FilterMessage("exercise opened").Len() > 0
}

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func TestPushInitsExercise(t *testing.T) {
	first, _ := newExercise("Intervals")
	r := router.New(first)

	second, logs := newExercise("Scales")
	r.Push(second)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "Scales" {
		t.Errorf("expected active 'Scales', got %q", r.Active().Title())
	}
	if !opened(logs) {
		t.Error("expected the pushed exercise to be opened")
	}
}

func TestPopReturnsToPreviousExercise(t *testing.T) {
	first, _ := newExercise("Intervals")
	r := router.New(first)
	second, _ := newExercise("Scales")
	r.Update(router.PushScreenMsg{Screen: second})
	r.Update(router.PopScreenMsg{})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active() != first {
		t.Errorf("expected 'Intervals' active, got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	first, _ := newExercise("Intervals")
	r := router.New(first)

	r.Pop()

	if r.Depth() != 1 || r.Active() != first {
		t.Errorf("pop at bottom changed the stack: depth %d", r.Depth())
	}
}

func TestKeysReachActiveExercise(t *testing.T) {
	first, _ := newExercise("Intervals")
	r := router.New(first)
	second, _ := newExercise("Scales")
	r.Push(second)

	r.Update(key('c'))

	if !second.Session().Checking() {
		t.Error("expected the active exercise to receive the check key")
	}
	if first.Session().Checking() {
		t.Error("the covered exercise must not receive keys")
	}
}

func TestShuffleReplacesExerciseInPlace(t *testing.T) {
	library, _ := newExercise("Library")
	r := router.New(library)
	board, _ := newExercise("Scales")
	r.Push(board)

	cmd := r.Update(key('s'))
	if cmd == nil {
		t.Fatal("expected the shuffle key to return a command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	r.Update(msg)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2 after replace, got %d", r.Depth())
	}
	next, ok := r.Active().(*exercise.ExerciseScreen)
	if !ok || next == board {
		t.Fatalf("expected a new exercise screen, got %T", r.Active())
	}
	if next.Title() != "Scales" {
		t.Errorf("expected title kept, got %q", next.Title())
	}
	if got := next.Session().GroundTruth().Len(); got != 2 {
		t.Errorf("expected the same two pairs, got %d", got)
	}

	r.Update(router.PopScreenMsg{})
	if r.Active() != library {
		t.Error("expected pop after replace to reveal the library")
	}
}

func TestReplaceAtRootInitsScreen(t *testing.T) {
	first, _ := newExercise("Intervals")
	r := router.New(first)

	second, logs := newExercise("Scales")
	r.Replace(second)

	if r.Depth() != 1 || r.Active() != second {
		t.Errorf("expected 'Scales' alone on the stack, depth %d", r.Depth())
	}
	if !opened(logs) {
		t.Error("expected the replacement to be opened")
	}
}
