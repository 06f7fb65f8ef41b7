package graph

import "sort"

// CutTable is a table whose removal disconnects part of the reference web.
type CutTable struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Degree int    `json:"degree"`
}

// BridgeRef is a reference edge whose removal disconnects the reference web.
type BridgeRef struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// ThinSeam is a pair of top-level families held together by very few
// references.
type ThinSeam struct {
	FamilyA   string `json:"family_a"`
	FamilyB   string `json:"family_b"`
	CrossRefs int    `json:"cross_refs"`
}

// CutReport contains structural-fragility analysis of the reference web.
type CutReport struct {
	CutTables   []CutTable  `json:"cut_tables"`
	BridgeRefs  []BridgeRef `json:"bridge_refs"`
	ThinSeams   []ThinSeam  `json:"thin_seams"`
	CutCount    int         `json:"cut_count"`
	BridgeCount int         `json:"bridge_count"`
}

// ComputeCuts finds articulation tables, bridge references and thin seams
// between families. Inheritance edges are left out: tree links are trivially
// bridges and would drown the signal.
func ComputeCuts(g *GraphData) *CutReport {
	h := g.Hierarchy
	if h.NodeCount == 0 {
		return &CutReport{}
	}

	names := h.Names()
	nameToIdx := make(map[string]int, len(names))
	for i, name := range names {
		nameToIdx[name] = i
	}
	n := len(names)

	// Deduplicated undirected adjacency over non-inheritance edges, with the
	// edge label kept for reporting.
	adjIdx := make([][]int, n)
	type edgePair struct{ u, v int }
	seen := make(map[edgePair]string)
	for _, e := range g.Edges {
		if e.Kind == EdgeInheritance {
			continue
		}
		u, okU := nameToIdx[e.Source]
		v, okV := nameToIdx[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		key := edgePair{u, v}
		if u > v {
			key = edgePair{v, u}
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = e.Label
		adjIdx[u] = append(adjIdx[u], v)
		adjIdx[v] = append(adjIdx[v], u)
	}

	disc := make([]int, n)
	low := make([]int, n)
	visited := make([]bool, n)
	isCut := make([]bool, n)
	var bridgePairs [][2]int
	counter := 1

	const noParent = -1
	type frame struct {
		node, parent, ni int
	}

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		disc[start] = counter
		low[start] = counter
		counter++

		stack := []frame{{start, noParent, 0}}
		rootChildren := 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := top.node
			parent := top.parent

			if top.ni < len(adjIdx[node]) {
				child := adjIdx[node][top.ni]
				top.ni++

				if child == parent {
					continue
				}
				if visited[child] {
					if disc[child] < low[node] {
						low[node] = disc[child]
					}
				} else {
					visited[child] = true
					disc[child] = counter
					low[child] = counter
					counter++
					if node == start {
						rootChildren++
					}
					stack = append(stack, frame{child, node, 0})
				}
			} else {
				stack = stack[:len(stack)-1]
				if len(stack) > 0 {
					parentFrame := &stack[len(stack)-1]
					pn := parentFrame.node
					if low[node] < low[pn] {
						low[pn] = low[node]
					}
					if low[node] > disc[pn] {
						bridgePairs = append(bridgePairs, [2]int{pn, node})
					}
					if pn != start && low[node] >= disc[pn] {
						isCut[pn] = true
					}
				}
			}
		}

		if rootChildren >= 2 {
			isCut[start] = true
		}
	}

	report := &CutReport{}
	for i := 0; i < n; i++ {
		if isCut[i] {
			name := names[i]
			report.CutTables = append(report.CutTables, CutTable{
				Name:   name,
				Label:  h.ByName[name].Record.Label,
				Degree: len(adjIdx[i]),
			})
		}
	}
	for _, pair := range bridgePairs {
		u, v := pair[0], pair[1]
		key := edgePair{u, v}
		if u > v {
			key = edgePair{v, u}
		}
		report.BridgeRefs = append(report.BridgeRefs, BridgeRef{
			Source: names[u],
			Target: names[v],
			Label:  seen[key],
		})
	}
	report.CutCount = len(report.CutTables)
	report.BridgeCount = len(report.BridgeRefs)

	// Thin seams: families joined by at most two references.
	families := computeFamilies(h)
	type familyPair struct{ a, b string }
	pairCounts := make(map[familyPair]int)
	for _, e := range g.Edges {
		if e.Kind == EdgeInheritance {
			continue
		}
		fa := families[e.Source]
		fb := families[e.Target]
		if fa == "" || fb == "" || fa == fb {
			continue
		}
		key := familyPair{fa, fb}
		if fa > fb {
			key = familyPair{fb, fa}
		}
		pairCounts[key]++
	}
	for pair, count := range pairCounts {
		if count <= 2 {
			report.ThinSeams = append(report.ThinSeams, ThinSeam{
				FamilyA:   pair.a,
				FamilyB:   pair.b,
				CrossRefs: count,
			})
		}
	}
	sort.Slice(report.ThinSeams, func(i, j int) bool {
		a, b := report.ThinSeams[i], report.ThinSeams[j]
		if a.CrossRefs != b.CrossRefs {
			return a.CrossRefs < b.CrossRefs
		}
		if a.FamilyA != b.FamilyA {
			return a.FamilyA < b.FamilyA
		}
		return a.FamilyB < b.FamilyB
	})

	return report
}

// computeFamilies maps each table to its depth-1 ancestor's name. Tables at
// depth 0 or 1 are their own family.
func computeFamilies(h *Hierarchy) map[string]string {
	families := make(map[string]string, h.NodeCount)
	h.Walk(func(n *TableNode) {
		if n.Depth <= 1 {
			families[n.Record.Name] = n.Record.Name
			return
		}
		cur := n
		for cur.Parent != nil && cur.Depth > 1 {
			cur = cur.Parent
		}
		families[n.Record.Name] = cur.Record.Name
	})
	return families
}
