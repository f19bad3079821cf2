package exercisegen

import (
	"testing"

	"github.com/benewagner/musicmapping/internal/content"
)

func TestDraftToContent(t *testing.T) {
	d := &Draft{
		Title: "Cadences",
		Questions: []DraftQuestion{
			{Text: " V to I ", CardType: "text", Answers: []string{"a", " A ", "Z"}},
			{Text: "IV to I", CardType: "abc", ABCCode: " X:1\nK:C\nF2 C2| ", Answers: []string{"B"}},
		},
		Answers: []DraftAnswer{
			{Label: "A", Text: "Authentic"},
			{Label: "B", Text: " Plagal "},
			{Label: "C", Text: "Deceptive"},
		},
	}

	c, err := d.ToContent()
	if err != nil {
		t.Fatalf("ToContent: %v", err)
	}
	if err := content.Validate(c); err != nil {
		t.Fatalf("content does not validate: %v", err)
	}
	if len(c.Elements) != 5 {
		t.Fatalf("expected 5 elements, got %d", len(c.Elements))
	}

	q1, q2 := c.Elements[0], c.Elements[1]
	if q1.Label != "Q1" || q2.Label != "Q2" || !q1.IsQuestion() || !q2.IsQuestion() {
		t.Errorf("questions = %q/%q, want Q1/Q2 questions", q1.Label, q2.Label)
	}
	if q1.Text != "V to I" || q1.CardType != content.CardText {
		t.Errorf("q1 = %+v", q1)
	}
	if q2.CardType != content.CardABC || q2.ABCCode != "X:1\nK:C\nF2 C2|" || !q2.PlayMIDI {
		t.Errorf("q2 notation not carried over: %+v", q2)
	}

	authentic, plagal := c.Elements[2], c.Elements[3]
	if !authentic.IsAnswer() || authentic.Label != "A" || plagal.Text != "Plagal" {
		t.Errorf("answers = %+v, %+v", authentic, plagal)
	}

	// Duplicate and unknown labels are dropped; matching ignores case.
	if len(q1.Answers) != 1 || q1.Answers[0] != authentic.Key {
		t.Errorf("q1 answers = %v, want [%s]", q1.Answers, authentic.Key)
	}
	if len(q2.Answers) != 1 || q2.Answers[0] != plagal.Key {
		t.Errorf("q2 answers = %v, want [%s]", q2.Answers, plagal.Key)
	}

	if len(c.Answers) != 3 || c.Answers[2].Label != "C" || c.Answers[2].Key != c.Elements[4].Key {
		t.Errorf("answer key = %+v", c.Answers)
	}

	seen := map[string]bool{}
	for _, e := range c.Elements {
		if seen[e.Key] {
			t.Errorf("duplicate key %s", e.Key)
		}
		seen[e.Key] = true
	}
}
