package matching

// Registry is the de-duplicated set of pairs the learner has drawn. It keeps
// insertion order so connectors render deterministically.
type Registry struct {
	order []Pair
	ids   map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]struct{})}
}

// Has reports whether p is registered.
func (r *Registry) Has(p Pair) bool {
	return r.HasID(p.CompositeKey())
}

// HasID reports whether the pair with the given composite key is registered.
func (r *Registry) HasID(id string) bool {
	_, ok := r.ids[id]
	return ok
}

// Add inserts p. It returns false if p was already present.
func (r *Registry) Add(p Pair) bool {
	id := p.CompositeKey()
	if r.HasID(id) {
		return false
	}
	if r.ids == nil {
		r.ids = make(map[string]struct{})
	}
	r.ids[id] = struct{}{}
	r.order = append(r.order, p)
	return true
}

// Remove deletes p. It returns false if p was not present.
func (r *Registry) Remove(p Pair) bool {
	id := p.CompositeKey()
	if !r.HasID(id) {
		return false
	}
	delete(r.ids, id)
	for i, q := range r.order {
		if q == p {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Toggle removes p if present and adds it otherwise. It reports whether p
// is registered afterwards.
func (r *Registry) Toggle(p Pair) bool {
	if r.Remove(p) {
		return false
	}
	return r.Add(p)
}

// Pairs returns the registered pairs in insertion order.
func (r *Registry) Pairs() []Pair {
	return append([]Pair(nil), r.order...)
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int { return len(r.order) }

// Clear removes every pair.
func (r *Registry) Clear() {
	r.order = nil
	r.ids = make(map[string]struct{})
}
