package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"snaudit/prism/internal/view"
)

var viewEngine string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Explore the schema interactively in the terminal",
	Long: `Opens a full-screen viewer over the schema map. Pan with the arrow
keys or hjkl, zoom with + and -, press / to search, c for custom-only, t and
f to switch between the tree and force layouts, and q to quit. In the force
layout, tables can be dragged with the mouse.`,
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
		return view.Run(ds, h, cfg, viewEngine)
	},
}

func init() {
	viewCmd.Flags().StringVar(&viewEngine, "engine", "", "Initial layout engine: tree or force")
	rootCmd.AddCommand(viewCmd)
}
