package content

import (
	"github.com/google/uuid"
)

// ElementType decides which column a card renders in and which side of a
// pair it can occupy.
type ElementType string

const (
	TypeQuestion ElementType = "question"
	TypeAnswer   ElementType = "answer"
)

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	return t == TypeQuestion || t == TypeAnswer
}

// Opposite returns the other side of a pair.
func (t ElementType) Opposite() ElementType {
	if t == TypeQuestion {
		return TypeAnswer
	}
	return TypeQuestion
}

// CardType is the rendering flavour of a card. It never affects pairing.
type CardType string

const (
	CardText  CardType = "text"
	CardImage CardType = "image"
	CardAudio CardType = "audio"
	CardVideo CardType = "video"
	CardABC   CardType = "abc" // music notation in ABC format
)

// CardTypes lists every card type in display order.
var CardTypes = []CardType{CardText, CardImage, CardAudio, CardVideo, CardABC}

// IsMedia reports whether the card carries a source URL instead of text.
func (c CardType) IsMedia() bool {
	return c == CardImage || c == CardAudio || c == CardVideo
}

// Element is one question or answer card.
type Element struct {
	Key             string      `json:"key" validate:"required"`
	Label           string      `json:"label"`
	Type            ElementType `json:"type" validate:"required,oneof=question answer"`
	SourceURL       string      `json:"sourceUrl"`
	Text            string      `json:"text"`
	CardType        CardType    `json:"cardType" validate:"required,oneof=text image audio video abc"`
	ABCCode         string      `json:"abcCode,omitempty"`
	PlayMIDI        bool        `json:"playMidi,omitempty"`
	CopyrightNotice string      `json:"copyrightNotice"`

	// Answers holds the keys of the answer elements this question may be
	// matched with. Only meaningful for questions.
	Answers []string `json:"answers,omitempty" validate:"omitempty,dive,required"`
}

// IsQuestion reports whether the element belongs to the question column.
func (e Element) IsQuestion() bool { return e.Type == TypeQuestion }

// IsAnswer reports whether the element belongs to the answer column.
func (e Element) IsAnswer() bool { return e.Type == TypeAnswer }

// DisplayName is the label, falling back to the card text.
func (e Element) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	if e.Text != "" {
		return e.Text
	}
	return "—"
}

// NewKey returns a fresh element key. Keys are UUIDs, so they never contain
// the characters used by matching.CompositeKey framing.
func NewKey() string {
	return uuid.NewString()
}

// DefaultElement returns an empty text question with a fresh key.
func DefaultElement() Element {
	return Element{
		Key:             NewKey(),
		Label:           "",
		Type:            TypeQuestion,
		SourceURL:       "",
		Text:            "",
		CardType:        CardText,
		ABCCode:         "",
		PlayMIDI:        false,
		CopyrightNotice: "",
	}
}

func (e Element) clone() Element {
	out := e
	if e.Answers != nil {
		out.Answers = append([]string(nil), e.Answers...)
	}
	return out
}
