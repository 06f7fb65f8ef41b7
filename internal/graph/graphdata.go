package graph

import (
	"fmt"
	"sort"

	"snaudit/prism/internal/schema"
)

// EdgeKind distinguishes the three connection semantics between tables.
type EdgeKind string

const (
	EdgeInheritance  EdgeKind = "inheritance"  // extends
	EdgeReference    EdgeKind = "reference"    // reference field
	EdgeRelationship EdgeKind = "relationship" // instance-data relationship
)

// GraphEdge is one typed connection between two tables, keyed by name.
type GraphEdge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
	Label  string   `json:"label,omitempty"`
	Count  int      `json:"count,omitempty"`
}

// GraphData is the table graph with precomputed adjacency, the input to the
// force layout and to neighborhood expansion.
type GraphData struct {
	Hierarchy *Hierarchy
	Edges     []GraphEdge

	// Adjacency as edge indices into Edges.
	Adj    map[string][]int // undirected
	OutAdj map[string][]int // source -> edges
	InAdj  map[string][]int // target -> edges
}

// BuildGraph assembles the table graph from the hierarchy plus the reference
// and relationship edge sets. Edges naming unknown tables, and self loops,
// are skipped. When includeInheritance is set, extends links appear as edges
// too, so the force view keeps families together.
func BuildGraph(h *Hierarchy, refs []schema.ReferenceField, rels []schema.Relationship, includeInheritance bool) *GraphData {
	g := &GraphData{
		Hierarchy: h,
		Adj:       make(map[string][]int, h.NodeCount),
		OutAdj:    make(map[string][]int, h.NodeCount),
		InAdj:     make(map[string][]int, h.NodeCount),
	}
	for name := range h.ByName {
		g.Adj[name] = nil
		g.OutAdj[name] = nil
		g.InAdj[name] = nil
	}

	add := func(e GraphEdge) {
		if e.Source == e.Target {
			return
		}
		if _, ok := h.ByName[e.Source]; !ok {
			return
		}
		if _, ok := h.ByName[e.Target]; !ok {
			return
		}
		idx := len(g.Edges)
		g.Edges = append(g.Edges, e)
		g.Adj[e.Source] = append(g.Adj[e.Source], idx)
		g.Adj[e.Target] = append(g.Adj[e.Target], idx)
		g.OutAdj[e.Source] = append(g.OutAdj[e.Source], idx)
		g.InAdj[e.Target] = append(g.InAdj[e.Target], idx)
	}

	if includeInheritance {
		h.Walk(func(n *TableNode) {
			if n.Parent == nil {
				return
			}
			add(GraphEdge{
				ID:     "inh:" + n.Record.Name,
				Source: n.Record.Name,
				Target: n.Parent.Record.Name,
				Kind:   EdgeInheritance,
				Label:  "extends",
			})
		})
	}

	for _, r := range refs {
		add(GraphEdge{
			ID:     r.ID,
			Source: r.SourceTable,
			Target: r.TargetTable,
			Kind:   EdgeReference,
			Label:  r.Column,
		})
	}

	// Relationships arrive row-per-pair but may repeat; merge by pair+type.
	type relKey struct{ parent, child, relType string }
	merged := make(map[relKey]*schema.Relationship)
	var keys []relKey
	for i := range rels {
		r := rels[i]
		k := relKey{r.ParentTable, r.ChildTable, r.Type}
		if prev, ok := merged[k]; ok {
			prev.Count += r.Count
			continue
		}
		cp := r
		merged[k] = &cp
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.parent != b.parent {
			return a.parent < b.parent
		}
		if a.child != b.child {
			return a.child < b.child
		}
		return a.relType < b.relType
	})
	for _, k := range keys {
		r := merged[k]
		add(GraphEdge{
			ID:     fmt.Sprintf("rel:%s:%s:%s", k.parent, k.relType, k.child),
			Source: r.ParentTable,
			Target: r.ChildTable,
			Kind:   EdgeRelationship,
			Label:  r.Type,
			Count:  r.Count,
		})
	}

	return g
}

// Neighbor returns the endpoint of e opposite to the given table.
func (g *GraphData) Neighbor(e *GraphEdge, from string) string {
	if e.Source == from {
		return e.Target
	}
	return e.Source
}

// Degree returns the undirected edge count touching a table.
func (g *GraphData) Degree(name string) int {
	return len(g.Adj[name])
}
