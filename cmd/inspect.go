package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/ui"
)

var (
	inspectJSON         bool
	inspectTopN         int
	inspectHubThreshold int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build the hierarchy and report schema structure, hubs, fragility and score",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ds, err := loadDataset()
		if err != nil {
			return err
		}

		h, err := buildHierarchy(ds, cfg)
		if err != nil {
			return fmt.Errorf("building hierarchy: %w", err)
		}

		g := graph.BuildGraph(h, ds.References, ds.Relationships, true)
		report := graph.Audit(g, &graph.AuditConfig{
			HubThreshold: inspectHubThreshold,
			TopN:         inspectTopN,
		})

		if inspectJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printAudit(report, h)
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")
	inspectCmd.Flags().IntVar(&inspectTopN, "top-n", 10, "Number of top items to show per section")
	inspectCmd.Flags().IntVar(&inspectHubThreshold, "hub-threshold", 8, "Minimum reference degree to consider a table a hub")
	rootCmd.AddCommand(inspectCmd)
}

func printAudit(report *graph.AuditReport, h *graph.Hierarchy) {
	// Score bar
	fmt.Printf("\n  Schema Score: %s  [%s]\n", ui.Score(report.Score), ui.Bar(report.Score, 20))
	fmt.Printf("  breakdown: connectivity=%.2f cohesion=%.2f sprawl=%.2f fragility=%.2f\n\n",
		report.Breakdown.Connectivity,
		report.Breakdown.Cohesion,
		report.Breakdown.Sprawl,
		report.Breakdown.Fragility)

	s := report.Stats
	ui.Title.Println("  SCHEMA")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Tables: %s  References: %s  Relationships: %s\n",
		humanize.Comma(int64(s.TotalTables)),
		humanize.Comma(int64(s.TotalReferences)),
		humanize.Comma(int64(s.TotalRels)))
	fmt.Printf("  Max depth: %d  Components: %d  Largest: %d\n",
		s.MaxDepth, s.NumComponents, s.LargestComponent)
	fmt.Printf("  Custom tables: %s (%.0f%%)\n",
		humanize.Comma(int64(s.CustomTables)), s.CustomRatio*100)

	if s.ExtraRootCount > 0 {
		fmt.Printf("  Orphan roots: %d tables with unresolved parents\n", s.ExtraRootCount)
		limit := 5
		if len(s.ExtraRoots) < limit {
			limit = len(s.ExtraRoots)
		}
		for _, name := range s.ExtraRoots[:limit] {
			label := "?"
			if n := h.ByName[name]; n != nil {
				label = truncLabel(n.Record.Label, 50)
			}
			fmt.Printf("    - %s (%s)\n", name, label)
		}
		if s.ExtraRootCount > 5 {
			fmt.Printf("    ... and %d more\n", s.ExtraRootCount-5)
		}
	}

	fmt.Println("\n  Category mix:")
	for _, c := range s.Categories {
		fmt.Printf("    %-8s %5d\n", c.Category, c.Count)
	}

	fmt.Println("\n  Depth distribution:")
	for _, b := range s.DepthHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			if barWidth < 1 {
				barWidth = 1
			}
			fmt.Printf("    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	if len(s.Hubs) > 0 {
		fmt.Println("\n  Top reference hubs:")
		for _, hub := range s.Hubs {
			fmt.Printf("    %-28s degree=%d (in=%d, out=%d)  %s\n",
				hub.Name, hub.Degree, hub.InDegree, hub.OutDegree, truncLabel(hub.Label, 40))
		}
	}

	c := report.Cuts
	if c.CutCount > 0 || c.BridgeCount > 0 || len(c.ThinSeams) > 0 {
		fmt.Println()
		ui.Title.Println("  STRUCTURAL FRAGILITY")
		fmt.Println("  ────────────────────────────────────────")
		if c.CutCount > 0 {
			fmt.Printf("  %d cut tables (removal splits the reference web):\n", c.CutCount)
			limit := 10
			if len(c.CutTables) < limit {
				limit = len(c.CutTables)
			}
			for _, ct := range c.CutTables[:limit] {
				fmt.Printf("    %s (degree %d)  %s\n", ct.Name, ct.Degree, truncLabel(ct.Label, 40))
			}
		}
		if c.BridgeCount > 0 {
			fmt.Printf("  %d bridge references (removal disconnects tables):\n", c.BridgeCount)
			limit := 10
			if len(c.BridgeRefs) < limit {
				limit = len(c.BridgeRefs)
			}
			for _, br := range c.BridgeRefs[:limit] {
				fmt.Printf("    %s -> %s\n", br.Source, br.Target)
			}
		}
		if len(c.ThinSeams) > 0 {
			fmt.Printf("  %d thin seams between families (<=2 references):\n", len(c.ThinSeams))
			limit := 10
			if len(c.ThinSeams) < limit {
				limit = len(c.ThinSeams)
			}
			for _, ts := range c.ThinSeams[:limit] {
				plural := ""
				if ts.CrossRefs != 1 {
					plural = "s"
				}
				fmt.Printf("    %s <-> %s (%d reference%s)\n",
					truncLabel(ts.FamilyA, 25), truncLabel(ts.FamilyB, 25), ts.CrossRefs, plural)
			}
		}
	}

	fmt.Println()
}

func truncLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && truncated[len(truncated)-1]>>6 == 2 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}
