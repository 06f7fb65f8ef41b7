package graph

import (
	"strings"

	"snaudit/prism/internal/schema"
)

// FilterState captures what the user is narrowing the view to. A nil map
// entry means the category is enabled.
type FilterState struct {
	Categories map[schema.Category]bool `json:"categories,omitempty"`
	Search     string                   `json:"search,omitempty"`
	CustomOnly bool                     `json:"custom_only,omitempty"`
}

// Active reports whether any constraint is set.
func (fs *FilterState) Active() bool {
	if fs == nil {
		return false
	}
	if fs.Search != "" || fs.CustomOnly {
		return true
	}
	for _, enabled := range fs.Categories {
		if !enabled {
			return true
		}
	}
	return false
}

// ApplyFilter returns a structurally identical copy of the hierarchy with
// Dimmed set on every table the filter excludes. Nothing is pruned: every
// node and child slot of the input reappears in the copy, so layouts remain
// stable while filters change. The input is never mutated.
//
// The base category and the designated root are exempt from dimming, and any
// ancestor of a surviving table stays lit so the path from the root remains
// renderable.
func ApplyFilter(h *Hierarchy, fs *FilterState) *Hierarchy {
	copies := make(map[*TableNode]*TableNode, h.NodeCount)
	var clone func(n *TableNode) *TableNode
	clone = func(n *TableNode) *TableNode {
		c := &TableNode{
			Record:         n.Record,
			Depth:          n.Depth,
			SubtreeSize:    n.SubtreeSize,
			SubtreeRecords: n.SubtreeRecords,
		}
		copies[n] = c
		for _, child := range n.Children {
			cc := clone(child)
			cc.Parent = c
			c.Children = append(c.Children, cc)
		}
		return c
	}

	out := &Hierarchy{
		ByID:        make(map[string]*TableNode, len(h.ByID)),
		ByName:      make(map[string]*TableNode, len(h.ByName)),
		Diagnostics: h.Diagnostics,
		NodeCount:   h.NodeCount,
		MaxDepth:    h.MaxDepth,
	}
	for _, r := range h.Roots {
		out.Roots = append(out.Roots, clone(r))
	}
	if h.Root != nil {
		if c, ok := copies[h.Root]; ok {
			out.Root = c
		} else {
			out.Root = clone(h.Root)
		}
	}
	for id, n := range h.ByID {
		if c, ok := copies[n]; ok {
			out.ByID[id] = c
		}
	}
	for name, n := range h.ByName {
		if c, ok := copies[n]; ok {
			out.ByName[name] = c
		}
	}

	if !fs.Active() {
		return out
	}

	search := strings.ToLower(fs.Search)
	passes := func(n *TableNode) bool {
		if n == out.Root || n.Record.Category == schema.CategoryBase {
			return true
		}
		if fs.Categories != nil {
			if enabled, ok := fs.Categories[n.Record.Category]; ok && !enabled {
				return false
			}
		}
		if fs.CustomOnly && !n.Record.IsCustom() {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Record.Name), search) &&
			!strings.Contains(strings.ToLower(n.Record.Label), search) {
			return false
		}
		return true
	}

	// A table stays lit if it passes or any descendant does.
	var mark func(n *TableNode) bool
	mark = func(n *TableNode) bool {
		lit := passes(n)
		for _, c := range n.Children {
			if mark(c) {
				lit = true
			}
		}
		n.Dimmed = !lit
		return lit
	}
	for _, r := range out.Roots {
		mark(r)
	}
	return out
}
