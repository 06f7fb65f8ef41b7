package graph

import (
	"sort"

	"snaudit/prism/internal/schema"
)

// HubTable is a table with many reference connections.
type HubTable struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Degree    int    `json:"degree"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// CategoryCount tallies tables per category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DepthBucket is one bucket in the inheritance-depth histogram.
type DepthBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsReport summarizes the shape of the schema.
type StatsReport struct {
	TotalTables      int             `json:"total_tables"`
	TotalReferences  int             `json:"total_references"`
	TotalRels        int             `json:"total_relationships"`
	MaxDepth         int             `json:"max_depth"`
	ExtraRootCount   int             `json:"extra_root_count"`
	ExtraRoots       []string        `json:"extra_roots,omitempty"`
	CustomTables     int             `json:"custom_tables"`
	CustomRatio      float64         `json:"custom_ratio"`
	Categories       []CategoryCount `json:"categories"`
	DepthHistogram   []DepthBucket   `json:"depth_histogram"`
	Hubs             []HubTable      `json:"hubs,omitempty"`
	NumComponents    int             `json:"num_components"`
	LargestComponent int             `json:"largest_component"`
}

// StatsConfig holds reporting parameters.
type StatsConfig struct {
	HubThreshold int
	TopN         int
}

// DefaultStatsConfig returns the defaults used by the CLI.
func DefaultStatsConfig() *StatsConfig {
	return &StatsConfig{HubThreshold: 8, TopN: 10}
}

// ComputeStats analyzes the schema graph: category mix, depth distribution,
// reference hubs and connectivity. Inheritance edges are excluded from degree
// counts so parent tables are not hubs merely for having children.
func ComputeStats(g *GraphData, cfg *StatsConfig) *StatsReport {
	if cfg == nil {
		cfg = DefaultStatsConfig()
	}
	h := g.Hierarchy
	report := &StatsReport{
		TotalTables:    h.NodeCount,
		MaxDepth:       h.MaxDepth,
		DepthHistogram: defaultDepthHistogram(),
	}
	if h.NodeCount == 0 {
		return report
	}

	names := h.Names()

	// Category mix and depth distribution.
	catCounts := make(map[schema.Category]int)
	for _, name := range names {
		n := h.ByName[name]
		catCounts[n.Record.Category]++
		report.DepthHistogram[depthBucket(n.Depth)].Count++
		if n.Record.IsCustom() {
			report.CustomTables++
		}
	}
	for cat, count := range catCounts {
		report.Categories = append(report.Categories, CategoryCount{Category: string(cat), Count: count})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})
	report.CustomRatio = float64(report.CustomTables) / float64(h.NodeCount)

	// Extra roots beyond the designated one.
	for _, r := range h.Roots {
		if r != h.Root {
			report.ExtraRoots = append(report.ExtraRoots, r.Record.Name)
		}
	}
	report.ExtraRootCount = len(report.ExtraRoots)
	if len(report.ExtraRoots) > cfg.TopN {
		report.ExtraRoots = report.ExtraRoots[:cfg.TopN]
	}

	// Edge tallies and per-table degrees over non-inheritance edges.
	degree := make(map[string]int, len(names))
	inDeg := make(map[string]int, len(names))
	outDeg := make(map[string]int, len(names))
	for _, e := range g.Edges {
		switch e.Kind {
		case EdgeReference:
			report.TotalReferences++
		case EdgeRelationship:
			report.TotalRels++
		default:
			continue
		}
		degree[e.Source]++
		degree[e.Target]++
		outDeg[e.Source]++
		inDeg[e.Target]++
	}

	// Hubs above threshold, by degree.
	var hubs []HubTable
	for _, name := range names {
		if d := degree[name]; d > cfg.HubThreshold {
			hubs = append(hubs, HubTable{
				Name:      name,
				Label:     h.ByName[name].Record.Label,
				Degree:    d,
				InDegree:  inDeg[name],
				OutDegree: outDeg[name],
			})
		}
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].Name < hubs[j].Name
	})
	if len(hubs) > cfg.TopN {
		hubs = hubs[:cfg.TopN]
	}
	report.Hubs = hubs

	// Connectivity across every edge kind.
	uf := NewUnionFind(names)
	for _, e := range g.Edges {
		uf.Union(e.Source, e.Target)
	}
	report.NumComponents = len(uf.Components())
	report.LargestComponent = uf.Largest()

	return report
}

func defaultDepthHistogram() []DepthBucket {
	return []DepthBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2"},
		{Label: "3"}, {Label: "4-5"}, {Label: "6-9"}, {Label: "10+"},
	}
}

func depthBucket(depth int) int {
	switch {
	case depth <= 0:
		return 0
	case depth == 1:
		return 1
	case depth == 2:
		return 2
	case depth == 3:
		return 3
	case depth <= 5:
		return 4
	case depth <= 9:
		return 5
	default:
		return 6
	}
}
