package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benewagner/musicmapping/internal/content"
)

func scenario() content.Content {
	elems := []content.Element{q("Q1", "A1"), a("A1")}
	elems[1].Label = "Answer label"
	return content.Content{
		Elements: elems,
		Answers:  []content.AnswerKeyEntry{{Key: "A1", Label: "Answer label"}},
	}
}

func fourCards() content.Content {
	return doc(q("Q1", "A1"), q("Q2", "A2"), a("A1"), a("A2"))
}

func TestScenarioCheckAndMissed(t *testing.T) {
	s := NewSession(scenario(), WithSeed(1))

	assert.Equal(t, Selected, s.Click("Q1"))
	assert.Equal(t, Paired, s.Click("A1"))
	require.Equal(t, []Pair{{"Q1", "A1"}}, s.Pairs())

	require.True(t, s.ToggleCheck())
	conns := s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, Correct, conns[0].Class)
	assert.Equal(t, Stats{Correct: 1}, s.Stats())

	assert.Equal(t, Selected, s.Click("Q1"))
	assert.False(t, s.Checking(), "a click must clear the check overlay")
	assert.Equal(t, Unpaired, s.Click("A1"))
	assert.Empty(t, s.Pairs())

	require.True(t, s.ToggleCheck())
	conns = s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, Connection{From: "Q1", To: "A1", ID: Pair{"Q1", "A1"}.CompositeKey(), Class: Missed}, conns[0])
	assert.Equal(t, Stats{Missed: 1}, s.Stats())
}

func TestScenarioDeselect(t *testing.T) {
	s := NewSession(scenario(), WithSeed(1))

	assert.Equal(t, Selected, s.Click("Q1"))
	assert.True(t, s.Highlighted("Q1"))
	assert.Equal(t, Deselected, s.Click("Q1"))

	assert.Equal(t, Selection{}, s.Pending())
	assert.Equal(t, Idle, s.State())
	assert.False(t, s.Highlighted("Q1"))
	assert.Empty(t, s.Pairs())
}

func TestThreeClickCycle(t *testing.T) {
	c := fourCards()
	for _, qe := range []string{"Q1", "Q2"} {
		for _, ae := range []string{"A1", "A2"} {
			s := NewSession(c, WithSeed(3))
			want := []ClickResult{Paired, Unpaired, Paired}
			for i, res := range want {
				s.Click(qe)
				if got := s.Click(ae); got != res {
					t.Fatalf("%s/%s round %d: got %v, want %v", qe, ae, i, got, res)
				}
			}
			s.Click(qe)
			s.Click(ae)
			if s.registry.Len() != 0 {
				t.Errorf("%s/%s: registry not empty after two toggles: %v", qe, ae, s.Pairs())
			}
		}
	}
}

func TestAnswerFirstPairs(t *testing.T) {
	s := NewSession(fourCards(), WithSeed(1))
	assert.Equal(t, Selected, s.Click("A2"))
	assert.Equal(t, PendingAnswer, s.State())
	assert.Equal(t, Paired, s.Click("Q1"))
	assert.Equal(t, []Pair{{"Q1", "A2"}}, s.Pairs())
}

func TestMoveOnSameSide(t *testing.T) {
	s := NewSession(fourCards(), WithSeed(1))
	s.Click("Q1")
	assert.Equal(t, Moved, s.Click("Q2"))
	assert.Equal(t, Selection{Question: "Q2"}, s.Pending())
	assert.False(t, s.Highlighted("Q1"))
	assert.True(t, s.Highlighted("Q2"))

	assert.Equal(t, Paired, s.Click("A1"))
	assert.Equal(t, []Pair{{"Q2", "A1"}}, s.Pairs())
	assert.Equal(t, Selection{}, s.Pending())
}

func TestSinglePendingInvariant(t *testing.T) {
	s := NewSession(fourCards(), WithSeed(9))
	keys := []string{"Q1", "Q2", "A1", "A2", "missing"}
	r := s.rng
	for i := range 2000 {
		before := s.registry.Len()
		res := s.Click(keys[r.IntN(len(keys))])

		p := s.Pending()
		if p.Question != "" && p.Answer != "" {
			t.Fatalf("step %d: both sides pending: %+v", i, p)
		}
		delta := s.registry.Len() - before
		switch res {
		case Paired:
			if delta != 1 {
				t.Fatalf("step %d: Paired changed registry by %d", i, delta)
			}
		case Unpaired:
			if delta != -1 {
				t.Fatalf("step %d: Unpaired changed registry by %d", i, delta)
			}
		default:
			if delta != 0 {
				t.Fatalf("step %d: %v changed registry by %d", i, res, delta)
			}
		}
	}
}

func TestUnknownKeyIgnored(t *testing.T) {
	s := NewSession(fourCards(), WithSeed(1))
	s.Click("Q1")
	s.ToggleCheck()

	assert.Equal(t, Ignored, s.Click("nope"))
	assert.True(t, s.Checking())
	assert.Equal(t, Selection{Question: "Q1"}, s.Pending())
}

func TestCorrectnessPartition(t *testing.T) {
	s := NewSession(fourCards(), WithSeed(5))
	s.Click("Q1")
	s.Click("A1") // correct
	s.Click("Q1")
	s.Click("A2") // incorrect
	s.ToggleCheck()

	conns := s.Connections()
	classes := make(map[string]Class)
	for _, c := range conns {
		_, dup := classes[c.ID]
		require.False(t, dup, "connection %s rendered twice", c.ID)
		classes[c.ID] = c.Class
	}
	assert.Equal(t, Correct, classes[Pair{"Q1", "A1"}.CompositeKey()])
	assert.Equal(t, Incorrect, classes[Pair{"Q1", "A2"}.CompositeKey()])
	assert.Equal(t, Missed, classes[Pair{"Q2", "A2"}.CompositeKey()])
	assert.Len(t, conns, 3)
	assert.Equal(t, Stats{Correct: 1, Incorrect: 1, Missed: 1}, s.Stats())

	// Turning the overlay off keeps pairs and hides missed connectors.
	assert.False(t, s.ToggleCheck())
	conns = s.Connections()
	assert.Len(t, conns, 2)
	for _, c := range conns {
		assert.Equal(t, Neutral, c.Class)
	}
	assert.Equal(t, Stats{}, s.Stats())
}

func TestResetIsAtomic(t *testing.T) {
	s := NewSession(fourCards(), WithSeed(2))
	order := s.Order()
	s.Click("Q1")
	s.Click("A1")
	s.Click("Q2")
	s.ToggleCheck()

	s.Reset()
	assert.Empty(t, s.Pairs())
	assert.Equal(t, Selection{}, s.Pending())
	assert.False(t, s.Checking())
	for _, e := range s.Order() {
		assert.False(t, s.Highlighted(e.Key))
	}
	assert.Equal(t, order, s.Order(), "reset must keep the display order")
}

func TestMalformedContent(t *testing.T) {
	s := NewSession(content.Content{Elements: scenario().Elements}, WithSeed(1))
	assert.False(t, s.Ready())
	assert.Equal(t, Ignored, s.Click("Q1"))
	assert.False(t, s.ToggleCheck())
	assert.Nil(t, s.Connections())
	assert.Empty(t, s.Order())

	require.True(t, s.Load(scenario()))
	assert.True(t, s.Ready())
	assert.Equal(t, Selected, s.Click("Q1"))

	// Losing the document again clears everything.
	require.True(t, s.Load(content.Content{}))
	assert.False(t, s.Ready())
	assert.Equal(t, Selection{}, s.Pending())
}

func TestLoadKeepsOrderForSameContent(t *testing.T) {
	c := doc(q("Q1", "A1"), q("Q2"), q("Q3"), q("Q4"), a("A1"), a("A2"), a("A3"))
	s := NewSession(c, WithSeed(11))
	order := s.Order()
	s.Click("Q1")
	s.Click("A1")

	assert.False(t, s.Load(content.Clone(c)))
	assert.Equal(t, order, s.Order())
	assert.Len(t, s.Pairs(), 1)

	changed := content.Clone(c)
	changed.Elements[0].Text = "new"
	assert.True(t, s.Load(changed))
	assert.Empty(t, s.Pairs())
}

func TestColumns(t *testing.T) {
	s := NewSession(fourCards(), WithSeed(4))
	for _, e := range s.Questions() {
		assert.True(t, e.IsQuestion())
	}
	for _, e := range s.Answers() {
		assert.True(t, e.IsAnswer())
	}
	assert.Len(t, s.Questions(), 2)
	assert.Len(t, s.Answers(), 2)
	assert.Len(t, s.Order(), 4)
}

func TestSeedIsDeterministic(t *testing.T) {
	c := doc(q("Q1"), q("Q2"), q("Q3"), a("A1"), a("A2"), a("A3"))
	assert.Equal(t, NewSession(c, WithSeed(42)).Order(), NewSession(c, WithSeed(42)).Order())
}

func TestDescribe(t *testing.T) {
	s := NewSession(scenario(), WithSeed(1))
	assert.Equal(t, "No card selected. 0 connections.", s.Describe())

	s.Click("Q1")
	assert.Equal(t, `Question "Q1" selected, choose an answer. 0 connections.`, s.Describe())

	s.Click("A1")
	assert.Equal(t, "No card selected. 1 connection.", s.Describe())

	s.Click("A1")
	assert.True(t, strings.HasPrefix(s.Describe(), `Answer "Answer label" selected`))

	assert.Equal(t, "No exercise loaded.", NewSession(content.Content{}).Describe())
}
