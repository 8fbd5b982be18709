package cascade

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Aggregator discovers every dependent of a set of roots.
type Aggregator struct {
	store RecordStore
	graph *Graph
	log   *zap.Logger
}

func NewAggregator(store RecordStore, graph *Graph, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, graph: graph, log: logger}
}

// embedded holds ParentRef values read from newly discovered records,
// keyed category -> field.
type embedded map[string]map[string][]primitive.ObjectID

func (e embedded) add(category, field string, ids []primitive.ObjectID) {
	if len(ids) == 0 {
		return
	}
	if e[category] == nil {
		e[category] = make(map[string][]primitive.ObjectID)
	}
	e[category][field] = append(e[category][field], ids...)
}

// Aggregate walks the graph level by level from rootIDs. Each level issues at
// most one query per child category; only ids not seen before move on to the
// next level, so shared dependents are counted once.
func (a *Aggregator) Aggregate(ctx context.Context, rootIDs []primitive.ObjectID) (CascadeSet, error) {
	set := newCascadeSet()
	root := a.graph.Root()

	frontier := map[string][]primitive.ObjectID{}
	for _, id := range rootIDs {
		if set.add(root.Name, id) {
			frontier[root.Name] = append(frontier[root.Name], id)
		}
	}
	if len(frontier) == 0 {
		return set, nil
	}

	refs := embedded{}
	if fields := a.graph.embeddedFields(root.Name); len(fields) > 0 {
		docs, err := a.store.Find(ctx, root.Collection,
			[]FieldIn{{Field: root.Key, Values: toAny(frontier[root.Name])}}, fields)
		if err != nil {
			return set, &StoreError{Phase: PhaseAggregate, Category: root.Name, Err: err}
		}
		for _, d := range docs {
			for _, f := range fields {
				refs.add(root.Name, f, objectIDs(d[f]))
			}
		}
	}

	for level := 1; len(frontier) > 0; level++ {
		next := map[string][]primitive.ObjectID{}
		nextRefs := embedded{}

		for _, name := range a.graph.Dependents() {
			cat, _ := a.graph.Category(name)
			var match []FieldIn
			var found []primitive.ObjectID
			for _, e := range a.graph.edgesInto(name) {
				parents := frontier[e.Parent]
				if len(parents) == 0 {
					continue
				}
				switch e.Link {
				case ChildRef:
					match = append(match, FieldIn{Field: e.Field, Values: toAny(parents)})
				case ParentRef:
					found = append(found, refs[e.Parent][e.Field]...)
				}
			}

			fields := append([]string{cat.Key}, a.graph.embeddedFields(name)...)
			read := map[primitive.ObjectID]bool{}

			if len(match) > 0 {
				docs, err := a.store.Find(ctx, cat.Collection, match, fields)
				if err != nil {
					return set, &StoreError{Phase: PhaseAggregate, Category: name, Err: err}
				}
				for _, d := range docs {
					ids := objectIDs(d[cat.Key])
					if len(ids) != 1 {
						continue
					}
					if !set.Of(name).Contains(ids[0]) && !read[ids[0]] {
						read[ids[0]] = true
						for _, f := range fields[1:] {
							nextRefs.add(name, f, objectIDs(d[f]))
						}
					}
					found = append(found, ids[0])
				}
			}

			// Ids reached only through a ParentRef have not been read; fetch
			// them when this category embeds references of its own.
			if len(fields) > 1 {
				var unread []primitive.ObjectID
				for _, id := range found {
					if !set.Of(name).Contains(id) && !read[id] {
						read[id] = true
						unread = append(unread, id)
					}
				}
				if len(unread) > 0 {
					docs, err := a.store.Find(ctx, cat.Collection,
						[]FieldIn{{Field: cat.Key, Values: toAny(unread)}}, fields)
					if err != nil {
						return set, &StoreError{Phase: PhaseAggregate, Category: name, Err: err}
					}
					for _, d := range docs {
						for _, f := range fields[1:] {
							nextRefs.add(name, f, objectIDs(d[f]))
						}
					}
				}
			}

			added := 0
			for _, id := range found {
				if set.add(name, id) {
					next[name] = append(next[name], id)
					added++
				}
			}
			if added > 0 {
				a.log.Debug("cascade dependents found",
					zap.String("category", name),
					zap.Int("level", level),
					zap.Int("new", added))
			}
		}

		frontier = next
		refs = nextRefs
	}
	return set, nil
}
