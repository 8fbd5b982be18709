package cascade

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PhaseCount records one delete phase.
type PhaseCount struct {
	Category  string
	Requested int64
	Deleted   int64
	Skipped   bool // empty phase, no store call was made
}

// Counts is the ordered list of executed phases. It is a value; with returns
// a new Counts rather than changing the receiver.
type Counts struct {
	phases []PhaseCount
}

func (c Counts) with(p PhaseCount) Counts {
	out := make([]PhaseCount, len(c.phases), len(c.phases)+1)
	copy(out, c.phases)
	return Counts{phases: append(out, p)}
}

// Phases returns the phases in execution order.
func (c Counts) Phases() []PhaseCount {
	return append([]PhaseCount(nil), c.phases...)
}

// Deleted returns the store-reported count for a category.
func (c Counts) Deleted(category string) int64 {
	var n int64
	for _, p := range c.phases {
		if p.Category == category {
			n += p.Deleted
		}
	}
	return n
}

func (c Counts) deletedMap() map[string]int64 {
	m := make(map[string]int64, len(c.phases))
	for _, p := range c.phases {
		m[p.Category] += p.Deleted
	}
	return m
}

func (c Counts) requestedMap() map[string]int64 {
	m := make(map[string]int64, len(c.phases))
	for _, p := range c.phases {
		m[p.Category] += p.Requested
	}
	return m
}

// Total is the number of records deleted across all phases.
func (c Counts) Total() int64 {
	var n int64
	for _, p := range c.phases {
		n += p.Deleted
	}
	return n
}

// Executor deletes a cascade set and its roots.
type Executor struct {
	store RecordStore
	graph *Graph
	log   *zap.Logger
}

func NewExecutor(store RecordStore, graph *Graph, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{store: store, graph: graph, log: logger}
}

// Execute deletes dependents deepest first, then the roots by their display
// keys. It stops at the first store error and returns what it has counted.
func (x *Executor) Execute(ctx context.Context, set CascadeSet, roots []ResolvedEntity) (Counts, error) {
	var counts Counts

	for _, name := range x.graph.DeletionOrder() {
		cat, _ := x.graph.Category(name)
		ids := set.Of(name).IDs()
		var err error
		counts, err = x.phase(ctx, counts, cat, toAny(ids))
		if err != nil {
			return counts, err
		}
	}

	root := x.graph.Root()
	keys := make([]any, 0, len(roots))
	for _, r := range roots {
		if root.deleteField() == root.Key {
			keys = append(keys, r.ID)
		} else {
			keys = append(keys, r.Identifier)
		}
	}
	return x.phase(ctx, counts, root, keys)
}

func (x *Executor) phase(ctx context.Context, counts Counts, cat Category, values []any) (Counts, error) {
	if len(values) == 0 {
		return counts.with(PhaseCount{Category: cat.Name, Skipped: true}), nil
	}

	n, err := x.store.DeleteIn(ctx, cat.Collection, cat.deleteField(), values)
	if err != nil {
		return counts, &StoreError{Phase: PhaseDelete, Category: cat.Name, Err: err}
	}
	p := PhaseCount{Category: cat.Name, Requested: int64(len(values)), Deleted: n}
	if n != p.Requested {
		x.log.Warn("cascade delete count mismatch",
			zap.String("category", cat.Name),
			zap.Int64("requested", p.Requested),
			zap.Int64("deleted", n))
	} else {
		x.log.Info("cascade deleted",
			zap.String("category", cat.Name),
			zap.Int64("count", n))
	}
	return counts.with(p), nil
}

// rootIDs extracts the internal ids of resolved roots.
func rootIDs(roots []ResolvedEntity) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(roots))
	for i, r := range roots {
		ids[i] = r.ID
	}
	return ids
}
