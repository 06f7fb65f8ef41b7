package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/layout"
	"snaudit/prism/internal/render"
)

// Config holds prism tuning. Every knob has a default so a missing or
// partial file is fine.
type Config struct {
	Hierarchy HierarchyConfig `toml:"hierarchy"`
	Layout    LayoutConfig    `toml:"layout"`
	Tree      TreeConfig      `toml:"tree"`
	Force     ForceConfig     `toml:"force"`
	Render    RenderConfig    `toml:"render"`
	View      ViewConfig      `toml:"view"`
}

// HierarchyConfig controls how the inheritance forest is built.
type HierarchyConfig struct {
	Root         string `toml:"root"`
	DepthCeiling int    `toml:"depth_ceiling"`
}

// LayoutConfig selects the engine and its effort.
type LayoutConfig struct {
	Engine       string  `toml:"engine"` // "tree" or "force"
	Performance  string  `toml:"performance"`
	CanvasWidth  float64 `toml:"canvas_width"`
	CanvasHeight float64 `toml:"canvas_height"`
}

// TreeConfig tunes the tree engine.
type TreeConfig struct {
	LevelGap   float64 `toml:"level_gap"`
	SiblingGap float64 `toml:"sibling_gap"`
	FamilyGap  float64 `toml:"family_gap"`
}

// ForceConfig tunes the force engine.
type ForceConfig struct {
	Iterations      int     `toml:"iterations"`
	Repulsion       float64 `toml:"repulsion"`
	CustomRepulsion float64 `toml:"custom_repulsion"`
	Gravity         float64 `toml:"gravity"`
	Damping         float64 `toml:"damping"`
}

// RenderConfig tunes culling and detail.
type RenderConfig struct {
	NodeBuffer   float64 `toml:"node_buffer"`
	PreserveZoom float64 `toml:"preserve_zoom"`
	UltraCount   int     `toml:"ultra_count"`
	HubDegree    int     `toml:"hub_degree"`
}

// ViewConfig tunes the interactive viewer.
type ViewConfig struct {
	CoalesceMillis int `toml:"coalesce_ms"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Hierarchy: HierarchyConfig{Root: "cmdb_ci", DepthCeiling: graph.DefaultDepthCeiling},
		Layout:    LayoutConfig{Engine: "tree", Performance: "auto", CanvasWidth: 1600, CanvasHeight: 1000},
		View:      ViewConfig{CoalesceMillis: 16},
	}
}

// ConfigDir returns the prism config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "prism")
}

// Discover finds a config file: explicit path first, then prism.toml walking
// up from the working directory, then the user config dir. Empty when none
// exists.
func Discover(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if dir, err := os.Getwd(); err == nil {
		for {
			candidate := filepath.Join(dir, "prism.toml")
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	fallback := filepath.Join(ConfigDir(), "config.toml")
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return ""
}

// Load reads the config file at path, falling back to defaults for anything
// missing or unreadable.
func Load(path string) *Config {
	cfg := Default()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// BuildConfig maps the hierarchy section onto builder options.
func (c *Config) BuildConfig() *graph.BuildConfig {
	bc := graph.DefaultBuildConfig()
	if c.Hierarchy.Root != "" {
		bc.RootName = c.Hierarchy.Root
	}
	if c.Hierarchy.DepthCeiling > 0 {
		bc.DepthCeiling = c.Hierarchy.DepthCeiling
	}
	return bc
}

// TreeOptions maps the tree section onto engine options.
func (c *Config) TreeOptions() layout.TreeOptions {
	return layout.TreeOptions{
		LevelGap:   c.Tree.LevelGap,
		SiblingGap: c.Tree.SiblingGap,
		FamilyGap:  c.Tree.FamilyGap,
	}
}

// ForceOptions maps the force section onto engine options.
func (c *Config) ForceOptions() layout.ForceOptions {
	return layout.ForceOptions{
		Iterations:      c.Force.Iterations,
		Repulsion:       c.Force.Repulsion,
		CustomRepulsion: c.Force.CustomRepulsion,
		Gravity:         c.Force.Gravity,
		Damping:         c.Force.Damping,
	}
}

// VirtualizeOptions maps the render section onto virtualizer options.
func (c *Config) VirtualizeOptions() render.VirtualizeOptions {
	return render.VirtualizeOptions{
		NodeBuffer:   c.Render.NodeBuffer,
		PreserveZoom: c.Render.PreserveZoom,
		UltraCount:   c.Render.UltraCount,
		HubDegree:    c.Render.HubDegree,
	}
}

// Canvas returns the configured layout canvas.
func (c *Config) Canvas() layout.Size {
	return layout.Size{Width: c.Layout.CanvasWidth, Height: c.Layout.CanvasHeight}
}

// Hint returns the configured performance hint.
func (c *Config) Hint() layout.Hint {
	switch c.Layout.Performance {
	case "high":
		return layout.HintHigh
	case "maximum":
		return layout.HintMaximum
	default:
		return layout.HintAuto
	}
}

// Engine builds the configured layout engine.
func (c *Config) Engine(name string) layout.Engine {
	if name == "" {
		name = c.Layout.Engine
	}
	if name == "force" {
		return layout.NewForceEngine(c.ForceOptions())
	}
	return layout.NewTreeEngine(c.TreeOptions())
}
