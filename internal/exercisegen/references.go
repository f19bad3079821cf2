package exercisegen

import (
	"fmt"
	"strings"
)

// ReferenceValidator checks that answer labels are unique and that every
// question points at existing answers. Answers no question references are
// distractors and are allowed.
type ReferenceValidator struct{}

func (v *ReferenceValidator) Name() string { return "references" }

func (v *ReferenceValidator) Validate(d *Draft, _ GenerateInput) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	labels := make(map[string]bool, len(d.Answers))
	for _, a := range d.Answers {
		l := normalizeLabel(a.Label)
		if labels[l] {
			return fail("answer label %q is used more than once", a.Label)
		}
		labels[l] = true
	}

	texts := make(map[string]bool, len(d.Questions))
	for i, q := range d.Questions {
		t := strings.ToLower(strings.TrimSpace(q.Text)) + "\x00" + strings.TrimSpace(q.ABCCode)
		if texts[t] {
			return fail("question %d duplicates an earlier question", i+1)
		}
		texts[t] = true

		if len(q.Answers) == 0 {
			return fail("question %d has no answers", i+1)
		}
		for _, ref := range q.Answers {
			if !labels[normalizeLabel(ref)] {
				return fail("question %d references unknown answer label %q", i+1, ref)
			}
		}
	}
	return nil
}
