package matching

import (
	"fmt"
	"math/rand/v2"

	"github.com/benewagner/musicmapping/internal/content"
)

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for the display order.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithSeed makes the display order deterministic.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Session is the state of one exercise being played: the display order,
// the ground truth, the pending selection, the user's pairs and the check
// flag.
type Session struct {
	rng *rand.Rand

	ready       bool
	fingerprint string
	doc         content.Content
	byKey       map[string]content.Element
	order       []content.Element
	truth       GroundTruth

	registry  *Registry
	selection Selection
	checking  bool
}

// NewSession creates a session and loads c into it.
func NewSession(c content.Content, opts ...Option) *Session {
	s := &Session{registry: NewRegistry()}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.Load(c)
	return s
}

// Load replaces the content. Malformed content leaves the session not
// ready: nothing renders and clicks are ignored until a well-formed
// document arrives. Reloading a document with an unchanged fingerprint is a
// no-op, so the display order stays stable while the learner works. Any
// real change reshuffles and resets the session. Load reports whether the
// session was rebuilt.
func (s *Session) Load(c content.Content) bool {
	if !c.WellFormed() {
		changed := s.ready
		s.ready = false
		s.fingerprint = ""
		s.doc = content.Content{}
		s.byKey = nil
		s.order = nil
		s.truth = GroundTruth{}
		s.clear()
		return changed
	}

	fp := content.Fingerprint(c)
	if s.ready && fp == s.fingerprint {
		return false
	}

	s.doc = content.Clone(c)
	s.fingerprint = fp
	s.byKey = make(map[string]content.Element, len(s.doc.Elements))
	for _, e := range s.doc.Elements {
		if _, dup := s.byKey[e.Key]; !dup {
			s.byKey[e.Key] = e
		}
	}
	s.order = Shuffle(s.doc.Elements, s.rng)
	s.truth = Resolve(s.doc.Elements, s.doc.Answers)
	s.ready = true
	s.clear()
	return true
}

// Ready reports whether a well-formed document is loaded.
func (s *Session) Ready() bool { return s.ready }

// Content returns the loaded document.
func (s *Session) Content() content.Content { return content.Clone(s.doc) }

// Click activates the card with the given key. Every accepted click turns
// the check overlay off.
func (s *Session) Click(key string) ClickResult {
	if !s.ready {
		return Ignored
	}
	e, ok := s.byKey[key]
	if !ok || !e.Type.Valid() || key == "" {
		return Ignored
	}
	s.checking = false
	return s.selection.click(s.registry, e.Type, key)
}

// ToggleCheck turns the check overlay on or off and returns the new state.
// It never changes the user's pairs.
func (s *Session) ToggleCheck() bool {
	if !s.ready {
		return false
	}
	s.checking = !s.checking
	return s.checking
}

// Checking reports whether the check overlay is on.
func (s *Session) Checking() bool { return s.checking }

// Reset removes all pairs, the pending selection and the check overlay in
// one step. The display order is kept.
func (s *Session) Reset() { s.clear() }

func (s *Session) clear() {
	s.registry.Clear()
	s.selection = Selection{}
	s.checking = false
}

// Pairs returns the user's pairs in the order they were drawn.
func (s *Session) Pairs() []Pair { return s.registry.Pairs() }

// Connections returns what the connection renderer should draw: the user's
// pairs followed by missed pairs while checking.
func (s *Session) Connections() []Connection {
	if !s.ready {
		return nil
	}
	return Evaluate(s.registry.Pairs(), s.truth, s.checking)
}

// Stats counts correct, incorrect and missed pairs. All zero unless
// checking.
func (s *Session) Stats() Stats {
	if !s.checking {
		return Stats{}
	}
	return Tally(s.Connections())
}

// GroundTruth returns the correct pairs of the loaded document.
func (s *Session) GroundTruth() GroundTruth { return s.truth }

// Pending returns the pending selection.
func (s *Session) Pending() Selection { return s.selection }

// State returns the selection state.
func (s *Session) State() State { return s.selection.State() }

// Highlighted reports whether the card with the given key is pending.
func (s *Session) Highlighted(key string) bool { return s.selection.Holds(key) }

// Order returns every element in display order.
func (s *Session) Order() []content.Element {
	return append([]content.Element(nil), s.order...)
}

// Questions returns the question cards in display order.
func (s *Session) Questions() []content.Element { return s.column(content.TypeQuestion) }

// Answers returns the answer cards in display order.
func (s *Session) Answers() []content.Element { return s.column(content.TypeAnswer) }

func (s *Session) column(t content.ElementType) []content.Element {
	var out []content.Element
	for _, e := range s.order {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Element looks up a card by key.
func (s *Session) Element(key string) (content.Element, bool) {
	e, ok := s.byKey[key]
	return e, ok
}

// Describe summarises the selection state in one sentence for status lines
// and screen readers.
func (s *Session) Describe() string {
	if !s.ready {
		return "No exercise loaded."
	}
	n := s.registry.Len()
	pairs := fmt.Sprintf("%d connection", n)
	if n != 1 {
		pairs += "s"
	}
	switch s.State() {
	case PendingQuestion:
		return fmt.Sprintf("Question %q selected, choose an answer. %s.", s.name(s.selection.Question), pairs)
	case PendingAnswer:
		return fmt.Sprintf("Answer %q selected, choose a question. %s.", s.name(s.selection.Answer), pairs)
	default:
		return fmt.Sprintf("No card selected. %s.", pairs)
	}
}

func (s *Session) name(key string) string {
	if e, ok := s.byKey[key]; ok {
		return e.DisplayName()
	}
	return key
}
