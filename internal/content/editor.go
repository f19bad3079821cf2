package content

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when an edit addresses a missing element.
	ErrIndexOutOfRange = errors.New("element index out of range")

	// ErrLastElement is returned when deleting the only remaining element.
	ErrLastElement = errors.New("cannot delete the last element")

	// ErrNotQuestion is returned when answers are assigned to a non-question.
	ErrNotQuestion = errors.New("element is not a question")
)

// Every edit below is pure: the input is left untouched and a new document
// is returned. Edits that can change which elements are answers or what
// they are called rebuild the answer key from the elements.

// AddElement appends a default element and returns the new document along
// with the key of the added element.
func AddElement(c Content) (Content, string) {
	out := Clone(c)
	e := DefaultElement()
	out.Elements = append(out.Elements, e)
	if out.Answers == nil {
		out.Answers = []AnswerKeyEntry{}
	}
	return out, e.Key
}

// DeleteElement removes the element at index together with its answer key
// entry and every question reference to it.
func DeleteElement(c Content, index int) (Content, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	if len(c.Elements) <= 1 {
		return c, ErrLastElement
	}

	out := Clone(c)
	removed := out.Elements[index].Key
	out.Elements = append(out.Elements[:index], out.Elements[index+1:]...)
	for i := range out.Elements {
		out.Elements[i].Answers = without(out.Elements[i].Answers, removed)
	}
	out.Answers = ProjectAnswerKey(out.Elements)
	return out, nil
}

// SetType changes which column an element belongs to.
//
// A type change invalidates every reference to the element: its key is
// dropped from all questions' answer lists, an element that stops being a
// question loses its own answer list, and the answer key is re-projected.
func SetType(c Content, index int, t ElementType) (Content, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	if !t.Valid() {
		return c, fmt.Errorf("unknown element type %q", t)
	}
	if c.Elements[index].Type == t {
		return c, nil
	}

	out := Clone(c)
	key := out.Elements[index].Key
	out.Elements[index].Type = t
	if t == TypeAnswer {
		out.Elements[index].Answers = nil
	}
	for i := range out.Elements {
		out.Elements[i].Answers = without(out.Elements[i].Answers, key)
	}
	out.Answers = ProjectAnswerKey(out.Elements)
	return out, nil
}

// SetCardType changes how a card renders. Text cards carry no media, so
// switching to text clears the copyright notice.
func SetCardType(c Content, index int, ct CardType) (Content, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	out := Clone(c)
	out.Elements[index].CardType = ct
	if ct == CardText {
		out.Elements[index].CopyrightNotice = ""
	}
	return out, nil
}

// SetLabel renames an element. The answer key picks the new label up.
func SetLabel(c Content, index int, label string) (Content, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	out := Clone(c)
	out.Elements[index].Label = label
	out.Answers = ProjectAnswerKey(out.Elements)
	return out, nil
}

// SetText changes the card text.
func SetText(c Content, index int, text string) (Content, error) {
	return editElement(c, index, func(e *Element) { e.Text = text })
}

// SetCopyrightNotice changes the markdown copyright notice.
func SetCopyrightNotice(c Content, index int, notice string) (Content, error) {
	return editElement(c, index, func(e *Element) { e.CopyrightNotice = notice })
}

// SetNotation changes the ABC notation and MIDI playback flag.
func SetNotation(c Content, index int, abcCode string, playMIDI bool) (Content, error) {
	return editElement(c, index, func(e *Element) {
		e.ABCCode = abcCode
		e.PlayMIDI = playMIDI
	})
}

// SetSourceURL changes a media card's source. The copyright notice follows
// the source, see CopyrightForSource.
func SetSourceURL(c Content, index int, url string, meta SourceMetadata) (Content, error) {
	return editElement(c, index, func(e *Element) {
		e.CopyrightNotice = CopyrightForSource(e.SourceURL, e.CopyrightNotice, url, meta)
		e.SourceURL = url
	})
}

// SetAnswers replaces the correct answers of a question. Keys that do not
// name an answer element are dropped, as are duplicates.
func SetAnswers(c Content, index int, keys []string) (Content, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	if !c.Elements[index].IsQuestion() {
		return c, ErrNotQuestion
	}

	answerKeys := make(map[string]bool)
	for _, e := range c.Elements {
		if e.IsAnswer() {
			answerKeys[e.Key] = true
		}
	}

	filtered := []string{}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !answerKeys[k] || seen[k] {
			continue
		}
		seen[k] = true
		filtered = append(filtered, k)
	}

	out := Clone(c)
	out.Elements[index].Answers = filtered
	return out, nil
}

// MoveElement moves the element at from to position to.
func MoveElement(c Content, from, to int) (Content, error) {
	if err := checkIndex(c, from); err != nil {
		return c, err
	}
	if err := checkIndex(c, to); err != nil {
		return c, err
	}
	out := Clone(c)
	e := out.Elements[from]
	out.Elements = append(out.Elements[:from], out.Elements[from+1:]...)
	out.Elements = append(out.Elements[:to], append([]Element{e}, out.Elements[to:]...)...)
	return out, nil
}

// MoveUp swaps the element with its predecessor.
func MoveUp(c Content, index int) (Content, error) {
	return swap(c, index, index-1)
}

// MoveDown swaps the element with its successor.
func MoveDown(c Content, index int) (Content, error) {
	return swap(c, index, index+1)
}

func swap(c Content, i, j int) (Content, error) {
	if err := checkIndex(c, i); err != nil {
		return c, err
	}
	if err := checkIndex(c, j); err != nil {
		return c, err
	}
	out := Clone(c)
	out.Elements[i], out.Elements[j] = out.Elements[j], out.Elements[i]
	return out, nil
}

func editElement(c Content, index int, fn func(e *Element)) (Content, error) {
	if err := checkIndex(c, index); err != nil {
		return c, err
	}
	out := Clone(c)
	fn(&out.Elements[index])
	return out, nil
}

func checkIndex(c Content, index int) error {
	if index < 0 || index >= len(c.Elements) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(c.Elements))
	}
	return nil
}

func without(keys []string, key string) []string {
	if keys == nil {
		return nil
	}
	out := keys[:0:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
