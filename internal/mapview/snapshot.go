package mapview

// IDSet is an immutable snapshot of rendered entry identifiers. The
// reconciler compares the previous and next snapshots to decide
// between the fast path and a full rebuild.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Equal reports whether both sets hold exactly the same identifiers.
// Count first, then membership; values are never compared.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if _, ok := other[id]; !ok {
			return false
		}
	}
	return true
}
