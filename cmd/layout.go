package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"snaudit/prism/internal/config"
	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/layout"
	"snaudit/prism/internal/schema"
)

var (
	layoutEngine     string
	layoutWidth      float64
	layoutHeight     float64
	layoutPerf       string
	layoutSearch     string
	layoutCustomOnly bool
	layoutHide       string
	layoutOut        string
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Compute node positions for the schema map or relationship graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		applyLayoutFlags(cfg)

		ds, err := loadDataset()
		if err != nil {
			return err
		}
		h, err := buildHierarchy(ds, cfg)
		if err != nil {
			return fmt.Errorf("building hierarchy: %w", err)
		}

		filtered := graph.ApplyFilter(h, filterFromFlags(layoutSearch, layoutCustomOnly, layoutHide))

		engine := cfg.Engine(layoutEngine)
		var g *layout.Graph
		if engine.Name() == "force" {
			g = layout.FromGraphData(graph.BuildGraph(filtered, ds.References, ds.Relationships, true))
		} else {
			g = layout.FromHierarchy(filtered)
		}

		res, err := engine.Calculate(g, cfg.Canvas(), cfg.Hint())
		if err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		for _, n := range res.Notices {
			fmt.Fprintf(os.Stderr, "[layout] notice: %s\n", n.Detail)
		}

		out := os.Stdout
		if layoutOut != "" {
			f, err := os.Create(layoutOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	layoutCmd.Flags().StringVar(&layoutEngine, "engine", "", "Layout engine: tree or force")
	layoutCmd.Flags().Float64Var(&layoutWidth, "width", 0, "Canvas width")
	layoutCmd.Flags().Float64Var(&layoutHeight, "height", 0, "Canvas height")
	layoutCmd.Flags().StringVar(&layoutPerf, "performance", "", "Performance hint: auto, high or maximum")
	layoutCmd.Flags().StringVar(&layoutSearch, "search", "", "Dim tables not matching this term")
	layoutCmd.Flags().BoolVar(&layoutCustomOnly, "custom-only", false, "Dim everything but custom tables and their ancestors")
	layoutCmd.Flags().StringVar(&layoutHide, "hide", "", "Comma-separated categories to dim")
	layoutCmd.Flags().StringVarP(&layoutOut, "out", "o", "", "Write result JSON to a file instead of stdout")
	rootCmd.AddCommand(layoutCmd)
}

// applyLayoutFlags folds the layout command flags into the config, so flag >
// file > default holds for every knob.
func applyLayoutFlags(cfg *config.Config) {
	if layoutWidth > 0 {
		cfg.Layout.CanvasWidth = layoutWidth
	}
	if layoutHeight > 0 {
		cfg.Layout.CanvasHeight = layoutHeight
	}
	if layoutPerf != "" {
		cfg.Layout.Performance = layoutPerf
	}
}

// filterFromFlags assembles a FilterState from the shared filter flags.
func filterFromFlags(search string, customOnly bool, hide string) *graph.FilterState {
	fs := &graph.FilterState{Search: search, CustomOnly: customOnly}
	if hide != "" {
		fs.Categories = make(map[schema.Category]bool)
		for _, c := range strings.Split(hide, ",") {
			fs.Categories[schema.Category(strings.TrimSpace(c))] = false
		}
	}
	return fs
}
