// Package graph wires the foreign keys of a generated entity model into
// bidirectional relationship edges, each tagged with an explicit ownership
// policy. Building the graph is phase two of the model build; it runs after
// every entity exists, which is what makes forward FK references legal.
package graph

import (
	"fmt"

	"github.com/ephyslab/synapdb/internal/model"
	"github.com/ephyslab/synapdb/pkg/schema"
)

// Edge is one relationship derived from a foreign-key column. The parent
// side exposes an ordered collection of children; the child side exposes a
// single parent reference.
type Edge struct {
	Child      string
	Column     string
	Parent     string
	Policy     schema.Policy
	Collection string
	Ref        string
}

// Owning reports whether deleting the parent cascades to the child.
func (e Edge) Owning() bool {
	return e.Policy == schema.Owning
}

// LinkError reports a relationship whose endpoints do not both exist in the
// generated entity set. Link errors are fatal at startup.
type LinkError struct {
	Child  string
	Parent string
	Column string
	Msg    string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("graph: %s.%s -> %s: %s", e.Child, e.Column, e.Parent, e.Msg)
}

// Graph is the complete relationship graph over a model. Immutable after
// Build and safe for concurrent use.
type Graph struct {
	Model *model.Model
	Edges []Edge

	fromChild map[string][]Edge
	toParent  map[string][]Edge
	order     []string
}

// Build scans every foreign-key field of the model and creates one edge per
// FK column, resolving the ownership policy from the descriptor set's
// explicit relationship list.
func Build(m *model.Model) (*Graph, error) {
	policies := make(map[[2]string]schema.Relationship, len(m.Set.Relationships))
	for _, rel := range m.Set.Relationships {
		if _, ok := m.Entity(rel.Child); !ok {
			return nil, &LinkError{Child: rel.Child, Column: rel.Column, Msg: "child entity does not exist"}
		}
		policies[[2]string{rel.Child, rel.Column}] = rel
	}

	g := &Graph{
		Model:     m,
		fromChild: make(map[string][]Edge),
		toParent:  make(map[string][]Edge),
	}
	for _, e := range m.Entities {
		for i := range e.Fields {
			f := &e.Fields[i]
			if !f.IsForeignKey() {
				continue
			}
			if _, ok := m.Entity(f.FKTarget); !ok {
				return nil, &LinkError{Child: e.Name, Column: f.Name, Parent: f.FKTarget, Msg: "parent entity does not exist"}
			}
			rel, ok := policies[[2]string{e.Name, f.Name}]
			if !ok {
				return nil, &LinkError{Child: e.Name, Column: f.Name, Parent: f.FKTarget, Msg: "no relationship policy declared"}
			}
			edge := Edge{
				Child:      e.Name,
				Column:     f.Name,
				Parent:     f.FKTarget,
				Policy:     rel.Policy,
				Collection: rel.Collection,
				Ref:        rel.Ref,
			}
			g.Edges = append(g.Edges, edge)
			g.fromChild[edge.Child] = append(g.fromChild[edge.Child], edge)
			g.toParent[edge.Parent] = append(g.toParent[edge.Parent], edge)
		}
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

// EdgesFrom returns the edges whose FK column lives on the named entity.
func (g *Graph) EdgesFrom(child string) []Edge {
	return g.fromChild[child]
}

// ChildrenOf returns the edges pointing at the named entity as parent.
func (g *Graph) ChildrenOf(parent string) []Edge {
	return g.toParent[parent]
}

// Edge returns the edge for a child table's FK column.
func (g *Graph) Edge(child, column string) (Edge, bool) {
	for _, e := range g.fromChild[child] {
		if e.Column == column {
			return e, true
		}
	}
	return Edge{}, false
}

// RefEdge returns the edge named by its child-side navigation property.
func (g *Graph) RefEdge(child, ref string) (Edge, bool) {
	for _, e := range g.fromChild[child] {
		if e.Ref == ref {
			return e, true
		}
	}
	return Edge{}, false
}

// CollectionEdge returns the edge named by its parent-side collection.
func (g *Graph) CollectionEdge(parent, collection string) (Edge, bool) {
	for _, e := range g.toParent[parent] {
		if e.Collection == collection {
			return e, true
		}
	}
	return Edge{}, false
}

// TableOrder returns the tables sorted so that every parent precedes its
// children. DDL creation uses this order; drops use the reverse.
func (g *Graph) TableOrder() []string {
	return g.order
}

// topoSort orders tables parents-first. The descriptor declaration order is
// used to break ties, keeping generation deterministic.
func (g *Graph) topoSort() ([]string, error) {
	indeg := make(map[string]int, len(g.Model.Entities))
	names := make([]string, 0, len(g.Model.Entities))
	for _, e := range g.Model.Entities {
		names = append(names, e.Name)
		indeg[e.Name] = 0
	}
	for _, edge := range g.Edges {
		if edge.Child != edge.Parent {
			indeg[edge.Child]++
		}
	}

	var order []string
	ready := true
	for ready {
		ready = false
		for _, n := range names {
			if deg, ok := indeg[n]; ok && deg == 0 {
				order = append(order, n)
				delete(indeg, n)
				for _, edge := range g.toParent[n] {
					if edge.Child != n {
						indeg[edge.Child]--
					}
				}
				ready = true
			}
		}
	}
	if len(order) != len(names) {
		for n := range indeg {
			return nil, &LinkError{Child: n, Msg: "relationship cycle involving table"}
		}
	}
	return order, nil
}
