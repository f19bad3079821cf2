package matching

import "github.com/benewagner/musicmapping/internal/content"

// State is the phase of the selection state machine.
type State int

const (
	Idle            State = iota // nothing pending
	PendingQuestion              // a question waits for an answer
	PendingAnswer                // an answer waits for a question
)

func (s State) String() string {
	switch s {
	case PendingQuestion:
		return "pending-question"
	case PendingAnswer:
		return "pending-answer"
	default:
		return "idle"
	}
}

// ClickResult is the outcome of one click.
type ClickResult int

const (
	Ignored    ClickResult = iota // unknown key or session not ready
	Selected                      // card became the pending endpoint of its side
	Deselected                    // pending card clicked again
	Moved                         // pending endpoint moved to another card on the same side
	Paired                        // a new pair was registered
	Unpaired                      // an existing pair was removed
)

func (r ClickResult) String() string {
	switch r {
	case Selected:
		return "selected"
	case Deselected:
		return "deselected"
	case Moved:
		return "moved"
	case Paired:
		return "paired"
	case Unpaired:
		return "unpaired"
	default:
		return "ignored"
	}
}

// ChangesRegistry reports whether the click inserted or removed a pair.
func (r ClickResult) ChangesRegistry() bool {
	return r == Paired || r == Unpaired
}

// Selection holds at most one pending key per side. Highlighting derives
// from it alone.
type Selection struct {
	Question string
	Answer   string
}

// State returns the machine state the selection represents.
func (s Selection) State() State {
	switch {
	case s.Question != "":
		return PendingQuestion
	case s.Answer != "":
		return PendingAnswer
	default:
		return Idle
	}
}

// Holds reports whether key is pending on either side.
func (s Selection) Holds(key string) bool {
	return key != "" && (s.Question == key || s.Answer == key)
}

func (s Selection) side(t content.ElementType) string {
	if t == content.TypeQuestion {
		return s.Question
	}
	return s.Answer
}

func (s *Selection) set(t content.ElementType, key string) {
	if t == content.TypeQuestion {
		s.Question = key
	} else {
		s.Answer = key
	}
}

// click applies one activation of the card (t, key) and, when it completes
// a pair, toggles that pair in reg.
func (s *Selection) click(reg *Registry, t content.ElementType, key string) ClickResult {
	own := s.side(t)
	switch {
	case own == key:
		s.set(t, "")
		return Deselected
	case own != "":
		s.set(t, key)
		return Moved
	}

	other := s.side(t.Opposite())
	if other == "" {
		s.set(t, key)
		return Selected
	}

	p := Pair{Question: key, Answer: other}
	if t == content.TypeAnswer {
		p = Pair{Question: other, Answer: key}
	}
	*s = Selection{}
	if reg.Toggle(p) {
		return Paired
	}
	return Unpaired
}
