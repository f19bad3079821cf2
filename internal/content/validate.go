package content

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one problem found in a document.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a document.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid content: " + strings.Join(msgs, "; ")
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func elementValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// Validate checks the document shape and the rules every playable exercise
// must satisfy. It returns ValidationErrors listing all failures.
//
// Reference problems that the pairing core tolerates (stale answer keys,
// missing answer key entries) are not errors; see Warnings.
func Validate(c Content) error {
	var errs ValidationErrors

	if c.Elements == nil {
		errs = append(errs, FieldError{Field: "elements", Message: "is required"})
	}
	if c.Answers == nil {
		errs = append(errs, FieldError{Field: "answers", Message: "is required"})
	}

	seen := make(map[string]int, len(c.Elements))
	for i, e := range c.Elements {
		path := fmt.Sprintf("elements[%d]", i)
		if err := elementValidator().Struct(e); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					errs = append(errs, FieldError{
						Field:   path + "." + jsonFieldName(fe.StructField()),
						Message: describeTag(fe),
					})
				}
			} else {
				errs = append(errs, FieldError{Field: path, Message: err.Error()})
			}
		}
		if e.Key == "" {
			continue
		}
		if prev, dup := seen[e.Key]; dup {
			errs = append(errs, FieldError{
				Field:   path + ".key",
				Message: fmt.Sprintf("duplicates elements[%d].key %q", prev, e.Key),
			})
			continue
		}
		seen[e.Key] = i
	}

	entries := make(map[string]int, len(c.Answers))
	for i, a := range c.Answers {
		path := fmt.Sprintf("answers[%d]", i)
		if a.Key == "" {
			errs = append(errs, FieldError{Field: path, Message: "answer key is empty"})
			continue
		}
		if prev, dup := entries[a.Key]; dup {
			errs = append(errs, FieldError{
				Field:   path,
				Message: fmt.Sprintf("duplicates answers[%d] for key %q", prev, a.Key),
			})
			continue
		}
		entries[a.Key] = i
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Warnings lists reference problems that do not stop an exercise from being
// played but usually indicate an authoring mistake.
func Warnings(c Content) []string {
	var out []string

	entries := make(map[string]AnswerKeyEntry, len(c.Answers))
	for _, a := range c.Answers {
		entries[a.Key] = a
	}

	for i, e := range c.Elements {
		switch e.Type {
		case TypeQuestion:
			if len(e.Answers) == 0 {
				out = append(out, fmt.Sprintf("elements[%d]: question %q has no correct answer", i, e.DisplayName()))
			}
			for _, k := range e.Answers {
				if _, ok := entries[k]; !ok {
					out = append(out, fmt.Sprintf("elements[%d]: answer %q is not in the answer key and will be ignored", i, k))
				}
			}
		case TypeAnswer:
			if len(e.Answers) > 0 {
				out = append(out, fmt.Sprintf("elements[%d]: answer %q lists answers of its own", i, e.DisplayName()))
			}
			entry, ok := entries[e.Key]
			if !ok {
				out = append(out, fmt.Sprintf("elements[%d]: answer %q has no answer key entry", i, e.DisplayName()))
			} else if entry.Label != e.Label {
				out = append(out, fmt.Sprintf("elements[%d]: answer key label %q differs from element label %q", i, entry.Label, e.Label))
			}
		}
	}

	for i, a := range c.Answers {
		e, ok := c.Find(a.Key)
		if !ok || !e.IsAnswer() {
			out = append(out, fmt.Sprintf("answers[%d]: %q does not refer to an answer element", i, a.Key))
		}
	}

	return out
}

func jsonFieldName(structField string) string {
	switch structField {
	case "SourceURL":
		return "sourceUrl"
	case "CardType":
		return "cardType"
	case "ABCCode":
		return "abcCode"
	case "PlayMIDI":
		return "playMidi"
	case "CopyrightNotice":
		return "copyrightNotice"
	}
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
