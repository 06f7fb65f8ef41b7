package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"snaudit/prism/internal/config"
	"snaudit/prism/internal/db"
	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/schema"
)

var (
	dbPath     string
	inputPath  string
	configPath string
	rootName   string
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Schema hierarchy and adaptive graph rendering for CMDB exports",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .prism.db snapshot database")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "Raw JSON export to load instead of a snapshot")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to prism.toml")
	rootCmd.PersistentFlags().StringVar(&rootName, "root", "", "Canonical root table name (default cmdb_ci)")
}

// loadConfig resolves the config file and applies persistent-flag overrides.
func loadConfig() *config.Config {
	cfg := config.Load(config.Discover(configPath))
	if rootName != "" {
		cfg.Hierarchy.Root = rootName
	}
	return cfg
}

// DiscoverDB finds the snapshot path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("PRISM_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("snapshot not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".prism.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "prism", "prism.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .prism.db found (set PRISM_DB, use --db, or run from a directory containing .prism.db)")
}

// OpenDatabase discovers and opens the snapshot database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return db.Open(path)
}

// loadDataset reads the schema records from --input JSON when given,
// otherwise from the discovered snapshot. Normalization diagnostics go to
// stderr; they never fail the load.
func loadDataset() (*schema.Dataset, error) {
	if inputPath != "" {
		ds, diags, err := schema.LoadJSON(inputPath)
		if err != nil {
			return nil, err
		}
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "[normalize] warning: %s\n", d)
		}
		return ds, nil
	}
	d, err := OpenDatabase()
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.LoadDataset()
}

// buildHierarchy runs the hierarchy builder and prints its recovered
// anomalies. Only a missing canonical root comes back as an error.
func buildHierarchy(ds *schema.Dataset, cfg *config.Config) (*graph.Hierarchy, error) {
	h, err := graph.Build(ds.Tables, cfg.BuildConfig())
	if err != nil {
		return nil, err
	}
	for _, d := range h.Diagnostics {
		fmt.Fprintf(os.Stderr, "[hierarchy] warning: %s\n", d)
	}
	return h, nil
}
