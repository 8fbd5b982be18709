package cascade

import (
	"fmt"
)

// Category is one kind of record the cascade can reach.
type Category struct {
	Name       string // bucket name used in results, e.g. "tasks"
	Collection string // backing collection
	Key        string // field holding the record's identity
	// DeleteBy is the field used when deleting records of this category.
	// Empty means Key. Roots are deleted by their display key (email).
	DeleteBy string
}

func (c Category) deleteField() string {
	if c.DeleteBy != "" {
		return c.DeleteBy
	}
	return c.Key
}

// LinkKind says which side of an edge stores the reference.
type LinkKind int

const (
	// ChildRef: the child's Field holds the parent's key (projects.created_by).
	ChildRef LinkKind = iota
	// ParentRef: the parent's Field lists child keys (assignments.task_ids).
	ParentRef
)

// Edge is one row of the dependency table: Child records cease to be
// meaningful once their Parent is removed.
type Edge struct {
	Parent string
	Child  string
	Field  string
	Link   LinkKind
}

// Graph is a validated, acyclic dependency table rooted at one category.
type Graph struct {
	root       Category
	categories map[string]Category
	declared   []string // root first, then dependents in declaration order
	edges      []Edge
	deletion   []string
}

// NewGraph validates the table and precomputes the deletion order.
func NewGraph(root Category, dependents []Category, edges []Edge) (*Graph, error) {
	g := &Graph{
		root:       root,
		categories: make(map[string]Category, len(dependents)+1),
		edges:      append([]Edge(nil), edges...),
	}
	for _, c := range append([]Category{root}, dependents...) {
		if c.Name == "" || c.Collection == "" || c.Key == "" {
			return nil, fmt.Errorf("category %q: name, collection and key are required", c.Name)
		}
		if _, dup := g.categories[c.Name]; dup {
			return nil, fmt.Errorf("category %q declared twice", c.Name)
		}
		g.categories[c.Name] = c
		g.declared = append(g.declared, c.Name)
	}
	for _, e := range edges {
		if _, ok := g.categories[e.Parent]; !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown parent", e.Parent, e.Child)
		}
		if _, ok := g.categories[e.Child]; !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown child", e.Parent, e.Child)
		}
		if e.Child == root.Name {
			return nil, fmt.Errorf("edge %s->%s: root cannot be a dependent", e.Parent, e.Child)
		}
		if e.Field == "" {
			return nil, fmt.Errorf("edge %s->%s: field is required", e.Parent, e.Child)
		}
	}

	topo, err := g.topoOrder()
	if err != nil {
		return nil, err
	}
	// Reverse topological order, root excluded: deepest dependents first.
	for i := len(topo) - 1; i >= 0; i-- {
		if topo[i] != root.Name {
			g.deletion = append(g.deletion, topo[i])
		}
	}
	return g, nil
}

// MustGraph is NewGraph for static tables; it panics on an invalid table.
func MustGraph(root Category, dependents []Category, edges []Edge) *Graph {
	g, err := NewGraph(root, dependents, edges)
	if err != nil {
		panic(err)
	}
	return g
}

// topoOrder is Kahn's algorithm; ties go to the earliest declared category
// so the order is stable across runs.
func (g *Graph) topoOrder() ([]string, error) {
	indeg := make(map[string]int, len(g.declared))
	for _, e := range g.edges {
		indeg[e.Child]++
	}
	done := make(map[string]bool, len(g.declared))
	order := make([]string, 0, len(g.declared))

	for len(order) < len(g.declared) {
		next := ""
		for _, name := range g.declared {
			if !done[name] && indeg[name] == 0 {
				next = name
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("dependency graph has a cycle")
		}
		done[next] = true
		order = append(order, next)
		for _, e := range g.edges {
			if e.Parent == next {
				indeg[e.Child]--
			}
		}
	}
	return order, nil
}

// Root returns the root category.
func (g *Graph) Root() Category { return g.root }

// Category looks up a category by name.
func (g *Graph) Category(name string) (Category, bool) {
	c, ok := g.categories[name]
	return c, ok
}

// Dependents returns every non-root category in declaration order.
func (g *Graph) Dependents() []string {
	return append([]string(nil), g.declared[1:]...)
}

// DeletionOrder returns the dependent categories, deepest first. A category
// always appears before every category it depends on.
func (g *Graph) DeletionOrder() []string {
	return append([]string(nil), g.deletion...)
}

// edgesInto returns the edges whose child is name, in table order.
func (g *Graph) edgesInto(name string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Child == name {
			out = append(out, e)
		}
	}
	return out
}

// embeddedFields lists the ParentRef fields stored on records of name; they
// are fetched together with the record's key.
func (g *Graph) embeddedFields(name string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Parent == name && e.Link == ParentRef {
			out = append(out, e.Field)
		}
	}
	return out
}
