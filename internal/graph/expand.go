package graph

import (
	"container/heap"
	"fmt"
)

// RelatedTable is a table reached by expansion from a source, with the path
// that reached it.
type RelatedTable struct {
	Rank     int        `json:"rank"`
	Name     string     `json:"name"`
	Label    string     `json:"label"`
	Distance float64    `json:"distance"`
	Hops     int        `json:"hops"`
	Path     []PathStep `json:"path"`
}

// PathStep is one hop in a path from the source table.
type PathStep struct {
	Kind  string `json:"kind"`
	Label string `json:"label,omitempty"`
	Table string `json:"table"`
}

// ExpandConfig holds parameters for the Dijkstra expansion.
type ExpandConfig struct {
	Budget  int
	MaxHops int
	MaxCost float64
	Kinds   []EdgeKind // allowlist; nil means all
}

// DefaultExpandConfig returns the defaults used by the CLI.
func DefaultExpandConfig() *ExpandConfig {
	return &ExpandConfig{
		Budget:  15,
		MaxHops: 4,
		MaxCost: 3.0,
	}
}

// Inheritance binds tighter than data linkage, so it costs the least to
// traverse; relationships are the loosest coupling.
func kindCost(kind EdgeKind) float64 {
	switch kind {
	case EdgeInheritance:
		return 0.25
	case EdgeReference:
		return 0.5
	default:
		return 0.75
	}
}

// prevEntry tracks how a table was reached, for path reconstruction.
type prevEntry struct {
	prevName string
	edgeIdx  int
}

// expandEntry is a min-heap entry. Ties broken by name for determinism.
type expandEntry struct {
	distance float64
	name     string
	hops     int
}

type expandHeap []expandEntry

func (h expandHeap) Len() int { return len(h) }
func (h expandHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	return h[i].name < h[j].name
}
func (h expandHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *expandHeap) Push(x any)   { *h = append(*h, x.(expandEntry)) }
func (h *expandHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Expand performs Dijkstra expansion from a source table over the typed edge
// set. Returns up to cfg.Budget related tables sorted by distance ascending.
func Expand(g *GraphData, source string, cfg *ExpandConfig) ([]RelatedTable, error) {
	if cfg == nil {
		cfg = DefaultExpandConfig()
	}
	budget := cfg.Budget
	if budget <= 0 {
		budget = 15
	}
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = 4
	}
	maxCost := cfg.MaxCost
	if maxCost <= 0 {
		maxCost = 3.0
	}

	src := g.Hierarchy.Lookup(source)
	if src == nil {
		return nil, fmt.Errorf("table not found: %s", source)
	}
	sourceName := src.Record.Name

	var allowSet map[EdgeKind]bool
	if cfg.Kinds != nil {
		allowSet = make(map[EdgeKind]bool, len(cfg.Kinds))
		for _, k := range cfg.Kinds {
			allowSet[k] = true
		}
	}

	dist := map[string]float64{sourceName: 0.0}
	prev := map[string]prevEntry{}
	visited := map[string]bool{}

	h := &expandHeap{{distance: 0.0, name: sourceName, hops: 0}}
	heap.Init(h)

	var results []RelatedTable

	for h.Len() > 0 {
		entry := heap.Pop(h).(expandEntry)
		current := entry.name
		if visited[current] {
			continue
		}
		visited[current] = true

		if current != sourceName {
			node := g.Hierarchy.ByName[current]
			results = append(results, RelatedTable{
				Name:     current,
				Label:    node.Record.Label,
				Distance: entry.distance,
				Hops:     entry.hops,
				Path:     reconstructPath(g, prev, sourceName, current),
			})
			if len(results) >= budget {
				break
			}
		}

		if entry.hops >= maxHops {
			continue
		}

		for _, idx := range g.Adj[current] {
			e := &g.Edges[idx]
			if allowSet != nil && !allowSet[e.Kind] {
				continue
			}
			neighbor := g.Neighbor(e, current)
			if visited[neighbor] {
				continue
			}
			newDist := entry.distance + kindCost(e.Kind)
			if newDist > maxCost {
				continue
			}
			prevDist, exists := dist[neighbor]
			if !exists || newDist < prevDist {
				dist[neighbor] = newDist
				prev[neighbor] = prevEntry{prevName: current, edgeIdx: idx}
				heap.Push(h, expandEntry{
					distance: newDist,
					name:     neighbor,
					hops:     entry.hops + 1,
				})
			}
		}
	}

	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// reconstructPath walks the prev map backwards from target to source.
func reconstructPath(g *GraphData, prev map[string]prevEntry, source, target string) []PathStep {
	var path []PathStep
	current := target
	for current != source {
		entry, ok := prev[current]
		if !ok {
			break
		}
		e := &g.Edges[entry.edgeIdx]
		path = append(path, PathStep{
			Kind:  string(e.Kind),
			Label: e.Label,
			Table: current,
		})
		current = entry.prevName
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
