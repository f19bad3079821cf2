package exercisegen

import (
	"fmt"
	"strings"

	"github.com/benewagner/musicmapping/internal/content"
)

// Draft is the raw LLM output before validation.
type Draft struct {
	Title     string          `json:"title"`
	Questions []DraftQuestion `json:"questions"`
	Answers   []DraftAnswer   `json:"answers"`
}

// DraftQuestion is a question card as the LLM describes it.
type DraftQuestion struct {
	Text     string   `json:"text"`
	CardType string   `json:"card_type"`
	ABCCode  string   `json:"abc_code"`
	Answers  []string `json:"answers"`
}

// DraftAnswer is an answer card as the LLM describes it.
type DraftAnswer struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// normalizeLabel makes label references tolerant of case and padding.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ToContent converts a validated draft into exercise content. Answer cards
// keep the draft's labels; question cards are labelled Q1, Q2, ... in draft
// order. The document is assembled with the same edits an author makes by
// hand, so every element gets a fresh key and the answer key is projected
// from the answer labels.
func (d *Draft) ToContent() (content.Content, error) {
	var c content.Content
	var err error

	for i, q := range d.Questions {
		c, _ = content.AddElement(c)
		at := len(c.Elements) - 1
		if c, err = content.SetLabel(c, at, fmt.Sprintf("Q%d", i+1)); err != nil {
			return content.Content{}, err
		}
		if c, err = content.SetText(c, at, strings.TrimSpace(q.Text)); err != nil {
			return content.Content{}, err
		}
		if content.CardType(q.CardType) != content.CardABC {
			continue
		}
		if c, err = content.SetCardType(c, at, content.CardABC); err != nil {
			return content.Content{}, err
		}
		if c, err = content.SetNotation(c, at, strings.TrimSpace(q.ABCCode), true); err != nil {
			return content.Content{}, err
		}
	}

	keyByLabel := make(map[string]string, len(d.Answers))
	for _, a := range d.Answers {
		var key string
		c, key = content.AddElement(c)
		at := len(c.Elements) - 1
		keyByLabel[normalizeLabel(a.Label)] = key
		if c, err = content.SetType(c, at, content.TypeAnswer); err != nil {
			return content.Content{}, err
		}
		if c, err = content.SetLabel(c, at, strings.TrimSpace(a.Label)); err != nil {
			return content.Content{}, err
		}
		if c, err = content.SetText(c, at, strings.TrimSpace(a.Text)); err != nil {
			return content.Content{}, err
		}
	}

	for i, q := range d.Questions {
		keys := make([]string, 0, len(q.Answers))
		for _, label := range q.Answers {
			if key, ok := keyByLabel[normalizeLabel(label)]; ok {
				keys = append(keys, key)
			}
		}
		if c, err = content.SetAnswers(c, i, keys); err != nil {
			return content.Content{}, err
		}
	}

	c.Answers = content.ProjectAnswerKey(c.Elements)
	return c, nil
}
