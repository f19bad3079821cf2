package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// AnswerKeyEntry maps an answer element key to its display label.
// It is serialised as a two-element JSON array: ["<key>", "<label>"].
type AnswerKeyEntry struct {
	Key   string
	Label string
}

func (a AnswerKeyEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{a.Key, a.Label})
}

func (a *AnswerKeyEntry) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("answer key entry: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("answer key entry: want 2 items, got %d", len(raw))
	}
	a.Key, a.Label = raw[0], raw[1]
	return nil
}

// Content is the exercise document supplied by the host: the ordered cards
// and the answer key table.
//
// A nil Elements or Answers slice means the field was missing from the
// document; such content is not well-formed and is never played.
type Content struct {
	Elements []Element        `json:"elements"`
	Answers  []AnswerKeyEntry `json:"answers"`
}

// DefaultContent returns a document holding a single empty question.
func DefaultContent() Content {
	return Content{
		Elements: []Element{DefaultElement()},
		Answers:  []AnswerKeyEntry{},
	}
}

// WellFormed reports whether both top-level fields are present.
func (c Content) WellFormed() bool {
	return c.Elements != nil && c.Answers != nil
}

// Clone returns a deep copy of c. Nil slices stay nil.
func Clone(c Content) Content {
	var out Content
	if c.Elements != nil {
		out.Elements = make([]Element, len(c.Elements))
		for i, e := range c.Elements {
			out.Elements[i] = e.clone()
		}
	}
	if c.Answers != nil {
		out.Answers = append([]AnswerKeyEntry{}, c.Answers...)
	}
	return out
}

// Fingerprint returns a stable digest of c. Two documents with the same
// fingerprint render identically, so callers use it to detect real changes.
func Fingerprint(c Content) string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Find returns the element with the given key.
func (c Content) Find(key string) (Element, bool) {
	if i := c.IndexOf(key); i >= 0 {
		return c.Elements[i], true
	}
	return Element{}, false
}

// IndexOf returns the position of the element with the given key, or -1.
func (c Content) IndexOf(key string) int {
	for i, e := range c.Elements {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// ProjectAnswerKey derives the answer key table from the answer elements.
// The element label is the single source of truth for the entry label.
func ProjectAnswerKey(elements []Element) []AnswerKeyEntry {
	out := []AnswerKeyEntry{}
	for _, e := range elements {
		if e.IsAnswer() {
			out = append(out, AnswerKeyEntry{Key: e.Key, Label: e.Label})
		}
	}
	return out
}

// AnswerLabel returns the label of an answer element as shown in the
// answer key, reading it from the element itself.
func (c Content) AnswerLabel(key string) string {
	if e, ok := c.Find(key); ok && e.IsAnswer() {
		return e.Label
	}
	return ""
}

// Decode parses a JSON document into Content without validating it.
func Decode(data []byte) (Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, fmt.Errorf("decode content: %w", err)
	}
	return c, nil
}

// Encode renders c as indented JSON.
func Encode(c Content) ([]byte, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	return b, nil
}
