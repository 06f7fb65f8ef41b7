package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snaudit/prism/internal/export"
	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/layout"
)

var (
	exportEngine     string
	exportOut        string
	exportSearch     string
	exportCustomOnly bool
	exportHide       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the schema layout to an SVG file",
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

		filtered := graph.ApplyFilter(h, filterFromFlags(exportSearch, exportCustomOnly, exportHide))

		engine := cfg.Engine(exportEngine)
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

		if err := export.SaveSVG(exportOut, res, export.SVGOptions{}); err != nil {
			return fmt.Errorf("writing svg: %w", err)
		}
		fmt.Printf("wrote %s (%d tables, %d links)\n", exportOut, res.NodeCount, len(res.Links))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportEngine, "engine", "", "Layout engine: tree or force")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "schema.svg", "Output SVG path")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "Dim tables not matching this term")
	exportCmd.Flags().BoolVar(&exportCustomOnly, "custom-only", false, "Dim everything but custom tables and their ancestors")
	exportCmd.Flags().StringVar(&exportHide, "hide", "", "Comma-separated categories to dim")
	rootCmd.AddCommand(exportCmd)
}
