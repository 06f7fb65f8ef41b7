package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/ui"
)

var (
	relatedBudget  int
	relatedMaxHops int
	relatedMaxCost float64
	relatedKinds   string
	relatedJSON    bool
)

var relatedCmd = &cobra.Command{
	Use:   "related <table>",
	Short: "Expand the neighborhood of a table across typed edges",
	Args:  cobra.ExactArgs(1),
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

		source := h.Lookup(args[0])
		if source == nil {
			return fmt.Errorf("table not found: %s", args[0])
		}

		g := graph.BuildGraph(h, ds.References, ds.Relationships, true)

		expCfg := &graph.ExpandConfig{
			Budget:  relatedBudget,
			MaxHops: relatedMaxHops,
			MaxCost: relatedMaxCost,
		}
		if relatedKinds != "" {
			for _, k := range strings.Split(relatedKinds, ",") {
				expCfg.Kinds = append(expCfg.Kinds, graph.EdgeKind(strings.TrimSpace(k)))
			}
		}

		results, err := graph.Expand(g, source.Name(), expCfg)
		if err != nil {
			return fmt.Errorf("expansion: %w", err)
		}

		if relatedJSON {
			output := struct {
				Source  string               `json:"source"`
				Budget  int                  `json:"budget"`
				Results []graph.RelatedTable `json:"results"`
				Count   int                  `json:"count"`
			}{source.Name(), relatedBudget, results, len(results)}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(output)
		}

		fmt.Printf("\n  Tables related to %s (%s):\n\n",
			ui.Category(source.Record.Category, source.Name()), source.Record.Label)
		for _, r := range results {
			fmt.Printf("  %2d. %-28s cost=%.2f hops=%d\n", r.Rank, r.Name, r.Distance, r.Hops)
			fmt.Printf("      %s\n", formatPath(source.Name(), r.Path))
		}
		if len(results) == 0 {
			ui.Subtle.Println("  nothing within reach")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	relatedCmd.Flags().IntVar(&relatedBudget, "budget", 15, "Maximum number of tables to return")
	relatedCmd.Flags().IntVar(&relatedMaxHops, "max-hops", 4, "Maximum path length in edges")
	relatedCmd.Flags().Float64Var(&relatedMaxCost, "max-cost", 3.0, "Maximum accumulated path cost")
	relatedCmd.Flags().StringVar(&relatedKinds, "kinds", "", "Comma-separated edge kinds to traverse (inheritance,reference,relationship)")
	relatedCmd.Flags().BoolVar(&relatedJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(relatedCmd)
}

func formatPath(source string, path []graph.PathStep) string {
	var b strings.Builder
	b.WriteString(source)
	for _, step := range path {
		b.WriteString(" -")
		b.WriteString(shortKind(step.Kind))
		b.WriteString("-> ")
		b.WriteString(step.Table)
	}
	return b.String()
}

func shortKind(kind string) string {
	switch kind {
	case string(graph.EdgeInheritance):
		return "inh"
	case string(graph.EdgeReference):
		return "ref"
	default:
		return "rel"
	}
}
