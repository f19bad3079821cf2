package exercisegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benewagner/musicmapping/internal/content"
)

var (
	abcHeader = regexp.MustCompile(`^([A-Za-z]):(.*)$`)
	abcNote   = regexp.MustCompile(`[A-Ga-gz]`)
)

// NotationValidator performs a light syntax check of ABC notation cards:
// the tune needs a K: (key) header, and at least one note or rest must
// follow it.
type NotationValidator struct{}

func (v *NotationValidator) Name() string { return "notation" }

func (v *NotationValidator) Validate(d *Draft, _ GenerateInput) *ValidationError {
	for i, q := range d.Questions {
		if content.CardType(q.CardType) != content.CardABC {
			continue
		}
		if msg := checkABC(q.ABCCode); msg != "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %d: %s", i+1, msg),
				Retryable: true,
			}
		}
	}
	return nil
}

// checkABC returns a description of the first problem found, or "".
func checkABC(code string) string {
	if strings.TrimSpace(code) == "" {
		return "abc_code is empty"
	}

	var sawKey, sawBody bool
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if m := abcHeader.FindStringSubmatch(line); m != nil && !sawBody {
			if m[1] == "K" {
				if strings.TrimSpace(m[2]) == "" {
					return "K: header has no key"
				}
				sawKey = true
			}
			continue
		}
		if !sawKey {
			return "tune body starts before the K: header"
		}
		if abcNote.MatchString(line) {
			sawBody = true
		}
	}

	switch {
	case !sawKey:
		return "missing K: header"
	case !sawBody:
		return "tune has no notes"
	}
	return ""
}
