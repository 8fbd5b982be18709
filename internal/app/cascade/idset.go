package cascade

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDSet is an insertion-ordered set of record ids.
type IDSet struct {
	ids  []primitive.ObjectID
	seen map[primitive.ObjectID]struct{}
}

// Add inserts id and reports whether it was new.
func (s *IDSet) Add(id primitive.ObjectID) bool {
	if s.seen == nil {
		s.seen = make(map[primitive.ObjectID]struct{})
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *IDSet) Contains(id primitive.ObjectID) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[id]
	return ok
}

func (s *IDSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns a copy of the ids in insertion order.
func (s *IDSet) IDs() []primitive.ObjectID {
	if s == nil {
		return nil
	}
	return append([]primitive.ObjectID(nil), s.ids...)
}

// CascadeSet holds the dependents discovered for one batch, per category.
type CascadeSet struct {
	sets map[string]*IDSet
}

func newCascadeSet() CascadeSet {
	return CascadeSet{sets: make(map[string]*IDSet)}
}

// Of returns the set for a category; an unknown category yields an empty set.
func (c CascadeSet) Of(category string) *IDSet {
	if s, ok := c.sets[category]; ok {
		return s
	}
	return &IDSet{}
}

func (c CascadeSet) add(category string, id primitive.ObjectID) bool {
	s, ok := c.sets[category]
	if !ok {
		s = &IDSet{}
		c.sets[category] = s
	}
	return s.Add(id)
}

// Total is the number of dependents across all categories.
func (c CascadeSet) Total() int {
	n := 0
	for _, s := range c.sets {
		n += s.Len()
	}
	return n
}

// objectIDs pulls ObjectIDs out of a decoded document value. Scalars, driver
// arrays and plain slices are accepted; anything else yields nothing.
func objectIDs(v any) []primitive.ObjectID {
	switch t := v.(type) {
	case primitive.ObjectID:
		return []primitive.ObjectID{t}
	case []primitive.ObjectID:
		return t
	case primitive.A:
		return objectIDsFrom(t)
	case []any:
		return objectIDsFrom(t)
	}
	return nil
}

func objectIDsFrom(vals []any) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(vals))
	for _, x := range vals {
		if id, ok := x.(primitive.ObjectID); ok {
			out = append(out, id)
		}
	}
	return out
}

func toAny[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
