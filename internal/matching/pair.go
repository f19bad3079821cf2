package matching

import (
	"strconv"
	"strings"
)

// Pair is a user or ground-truth connection from a question to an answer.
// Pair is comparable and can be used as a map key directly.
type Pair struct {
	Question string
	Answer   string
}

// CompositeKey returns an identifier for p that is unique per pair. Each
// key is length-prefixed, so no two distinct pairs can produce the same
// string regardless of the characters their keys contain.
func (p Pair) CompositeKey() string {
	var b strings.Builder
	b.Grow(len(p.Question) + len(p.Answer) + 8)
	b.WriteString(strconv.Itoa(len(p.Question)))
	b.WriteByte(':')
	b.WriteString(p.Question)
	b.WriteString(strconv.Itoa(len(p.Answer)))
	b.WriteByte(':')
	b.WriteString(p.Answer)
	return b.String()
}

// ParseCompositeKey is the inverse of CompositeKey.
func ParseCompositeKey(id string) (Pair, bool) {
	q, rest, ok := readPrefixed(id)
	if !ok {
		return Pair{}, false
	}
	a, rest, ok := readPrefixed(rest)
	if !ok || rest != "" {
		return Pair{}, false
	}
	return Pair{Question: q, Answer: a}, true
}

func readPrefixed(s string) (value, rest string, ok bool) {
	head, tail, found := strings.Cut(s, ":")
	if !found {
		return "", "", false
	}
	n, err := strconv.Atoi(head)
	if err != nil || n < 0 || n > len(tail) {
		return "", "", false
	}
	return tail[:n], tail[n:], true
}

func (p Pair) String() string {
	return p.Question + " -> " + p.Answer
}
