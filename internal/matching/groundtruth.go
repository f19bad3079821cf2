package matching

import "github.com/benewagner/musicmapping/internal/content"

// GroundTruth is the set of pairs the author declared correct. It is
// derived from content and never mutated.
type GroundTruth struct {
	pairs []Pair
	ids   map[string]struct{}
}

// Resolve derives the ground truth from the elements and the answer key
// table. A question's answer reference only counts when the answer key has
// an entry for it; stale references left behind by deleted answers are
// dropped.
func Resolve(elements []content.Element, answers []content.AnswerKeyEntry) GroundTruth {
	known := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if a.Key != "" {
			known[a.Key] = struct{}{}
		}
	}

	gt := GroundTruth{ids: make(map[string]struct{})}
	for _, e := range elements {
		if !e.IsQuestion() {
			continue
		}
		for _, key := range e.Answers {
			if _, ok := known[key]; !ok {
				continue
			}
			p := Pair{Question: e.Key, Answer: key}
			id := p.CompositeKey()
			if _, dup := gt.ids[id]; dup {
				continue
			}
			gt.ids[id] = struct{}{}
			gt.pairs = append(gt.pairs, p)
		}
	}
	return gt
}

// Pairs returns the correct pairs in element order.
func (g GroundTruth) Pairs() []Pair {
	return append([]Pair(nil), g.pairs...)
}

// Contains reports whether p is a correct pair.
func (g GroundTruth) Contains(p Pair) bool {
	_, ok := g.ids[p.CompositeKey()]
	return ok
}

// Len returns the number of correct pairs.
func (g GroundTruth) Len() int { return len(g.pairs) }
