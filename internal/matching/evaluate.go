package matching

// Class is the rendering class of a connection.
type Class int

const (
	Neutral   Class = iota // not checking
	Correct                // user pair found in the ground truth
	Incorrect              // user pair not in the ground truth
	Missed                 // ground-truth pair the user did not draw
)

func (c Class) String() string {
	switch c {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Missed:
		return "missed"
	default:
		return "neutral"
	}
}

// Connection is one connector the renderer should draw between the cards
// identified by From and To.
type Connection struct {
	From  string
	To    string
	ID    string
	Class Class
}

// Stats counts connections per class while checking.
type Stats struct {
	Correct   int
	Incorrect int
	Missed    int
}

// Total returns the number of ground-truth pairs the counts cover.
func (s Stats) Total() int { return s.Correct + s.Missed }

// Evaluate turns user pairs into connections. When checking is false every
// user pair is neutral and no missed pairs are reported. Otherwise user
// pairs are classified against truth and the ground-truth pairs the user
// did not draw follow as missed.
func Evaluate(user []Pair, truth GroundTruth, checking bool) []Connection {
	out := make([]Connection, 0, len(user))
	drawn := make(map[string]struct{}, len(user))
	for _, p := range user {
		id := p.CompositeKey()
		drawn[id] = struct{}{}
		class := Neutral
		if checking {
			class = Incorrect
			if truth.Contains(p) {
				class = Correct
			}
		}
		out = append(out, Connection{From: p.Question, To: p.Answer, ID: id, Class: class})
	}
	if !checking {
		return out
	}
	for _, p := range truth.pairs {
		id := p.CompositeKey()
		if _, ok := drawn[id]; ok {
			continue
		}
		out = append(out, Connection{From: p.Question, To: p.Answer, ID: id, Class: Missed})
	}
	return out
}

// Tally counts connections by class.
func Tally(conns []Connection) Stats {
	var s Stats
	for _, c := range conns {
		switch c.Class {
		case Correct:
			s.Correct++
		case Incorrect:
			s.Incorrect++
		case Missed:
			s.Missed++
		}
	}
	return s
}
