package exercisegen

import (
	"fmt"
	"strings"

	"github.com/benewagner/musicmapping/internal/content"
)

// StructuralValidator checks required fields, counts, lengths and enums.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(d *Draft, input GenerateInput) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return fail("title is empty")
	}
	if len(title) > maxTitleLen {
		return fail("title exceeds %d characters", maxTitleLen)
	}
	if input.Pairs > 0 && len(d.Questions) != input.Pairs {
		return fail("expected %d questions, got %d", input.Pairs, len(d.Questions))
	}
	if len(d.Questions) < MinPairs || len(d.Questions) > MaxPairs {
		return fail("question count must be between %d and %d", MinPairs, MaxPairs)
	}
	if len(d.Answers) < len(d.Questions) {
		return fail("expected at least %d answers, got %d", len(d.Questions), len(d.Answers))
	}
	if len(d.Answers) > len(d.Questions)+MaxDistractors {
		return fail("at most %d distractor answers are allowed", MaxDistractors)
	}

	for i, q := range d.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fail("question %d has no text", i+1)
		}
		if len(q.Text) > maxCardTextLen {
			return fail("question %d text exceeds %d characters", i+1, maxCardTextLen)
		}
		switch content.CardType(q.CardType) {
		case content.CardText:
		case content.CardABC:
			if !input.Notation {
				return fail("question %d uses notation, which was not requested", i+1)
			}
			if len(q.ABCCode) > maxABCCodeLen {
				return fail("question %d abc_code exceeds %d characters", i+1, maxABCCodeLen)
			}
		default:
			return fail("question %d card_type must be \"text\" or \"abc\"", i+1)
		}
	}

	for i, a := range d.Answers {
		label := strings.TrimSpace(a.Label)
		if label == "" {
			return fail("answer %d has no label", i+1)
		}
		if len(label) > maxLabelLen {
			return fail("answer %d label exceeds %d characters", i+1, maxLabelLen)
		}
		if strings.TrimSpace(a.Text) == "" {
			return fail("answer %q has no text", label)
		}
		if len(a.Text) > maxCardTextLen {
			return fail("answer %q text exceeds %d characters", label, maxCardTextLen)
		}
	}
	return nil
}
