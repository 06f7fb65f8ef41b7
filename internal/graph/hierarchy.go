package graph

import (
	"fmt"
	"sort"

	"snaudit/prism/internal/schema"
)

// DefaultDepthCeiling caps inheritance depth even if cycle severing were to
// miss a malformed chain.
const DefaultDepthCeiling = 20

// TableNode is one table in the inheritance tree.
type TableNode struct {
	Record   schema.TableRecord `json:"record"`
	Parent   *TableNode         `json:"-"`
	Children []*TableNode       `json:"children,omitempty"`
	Depth    int                `json:"depth"`

	// Subtree rollups, computed once at build time.
	SubtreeSize    int `json:"subtree_size"`
	SubtreeRecords int `json:"subtree_records"`

	// Dimmed is set on filtered copies, never on the built tree.
	Dimmed bool `json:"dimmed,omitempty"`
}

// Name returns the table's internal name.
func (n *TableNode) Name() string { return n.Record.Name }

// Hierarchy is the built inheritance structure plus its lookup indices.
type Hierarchy struct {
	Root        *TableNode             // designated canonical root
	Roots       []*TableNode           // forest tops: canonical first, orphans after
	ByID        map[string]*TableNode
	ByName      map[string]*TableNode
	Diagnostics []schema.Diagnostic
	NodeCount   int
	MaxDepth    int
}

// RootNotFoundError reports that the canonical root table is absent from the
// record set. Nothing can be anchored without it.
type RootNotFoundError struct {
	RootName string
	Records  int
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("root table %q not found among %d records", e.RootName, e.Records)
}

// BuildConfig holds parameters for hierarchy construction.
type BuildConfig struct {
	RootName     string
	DepthCeiling int
}

// DefaultBuildConfig returns the defaults used by the CLI.
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		RootName:     "cmdb_ci",
		DepthCeiling: DefaultDepthCeiling,
	}
}

// Build assembles the inheritance hierarchy from normalized records.
// Malformed linkage never aborts the build; every recovered anomaly lands in
// Diagnostics. The only fatal condition is a missing canonical root.
func Build(records []schema.TableRecord, cfg *BuildConfig) (*Hierarchy, error) {
	if cfg == nil {
		cfg = DefaultBuildConfig()
	}
	ceiling := cfg.DepthCeiling
	if ceiling <= 0 {
		ceiling = DefaultDepthCeiling
	}

	var diags []schema.Diagnostic

	// Index pass. Later records override earlier ones with the same id.
	byID := make(map[string]*TableNode, len(records))
	for i := range records {
		rec := records[i]
		if prev, ok := byID[rec.ID]; ok {
			diags = append(diags, schema.Diagnostic{
				Code:   schema.DiagDuplicateID,
				Table:  rec.Name,
				Detail: fmt.Sprintf("sys_id %s appears again; keeping the later record", rec.ID),
			})
			prev.Record = rec
			continue
		}
		byID[rec.ID] = &TableNode{Record: rec}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	byName := make(map[string]*TableNode, len(byID))
	for _, id := range ids {
		if n := byID[id]; n.Record.Name != "" {
			byName[n.Record.Name] = n
		}
	}

	// Parent resolution: id first, display name second, then the value slot
	// reinterpreted as a name (some exports put the name there).
	for _, id := range ids {
		n := byID[id]
		rec := n.Record
		var parent *TableNode
		if rec.ParentID != "" {
			parent = byID[rec.ParentID]
		}
		if parent == nil && rec.ParentName != "" {
			parent = byName[rec.ParentName]
		}
		if parent == nil && rec.ParentID != "" {
			parent = byName[rec.ParentID]
		}

		if parent == n && parent != nil {
			diags = append(diags, schema.Diagnostic{
				Code:   schema.DiagSelfParent,
				Table:  rec.Name,
				Detail: "table lists itself as its parent; treated as a root",
			})
			parent = nil
		} else if parent == nil && (rec.ParentID != "" || rec.ParentName != "") {
			ref := rec.ParentName
			if ref == "" {
				ref = rec.ParentID
			}
			diags = append(diags, schema.Diagnostic{
				Code:   schema.DiagUnresolvedParent,
				Table:  rec.Name,
				Detail: fmt.Sprintf("parent %q not in the record set; kept as an extra root", ref),
			})
		}
		n.Parent = parent
	}

	// Depth pass. Memoized walk up the parent chain; a chain that revisits a
	// node in progress is severed at the revisited node, which becomes a root.
	const (
		stateVisiting = 1
		stateDone     = 2
	)
	state := make(map[*TableNode]uint8, len(byID))
	var resolve func(n *TableNode) int
	resolve = func(n *TableNode) int {
		switch state[n] {
		case stateDone:
			return n.Depth
		case stateVisiting:
			diags = append(diags, schema.Diagnostic{
				Code:   schema.DiagCycle,
				Table:  n.Record.Name,
				Detail: "inheritance chain loops back to this table; parent link dropped",
			})
			n.Parent = nil
			n.Depth = 0
			state[n] = stateDone
			return 0
		}
		state[n] = stateVisiting
		d := 0
		if p := n.Parent; p != nil {
			pd := resolve(p)
			if state[n] == stateDone {
				// The walk looped back through this node and severed it.
				return n.Depth
			}
			d = pd + 1
		}
		if d > ceiling {
			diags = append(diags, schema.Diagnostic{
				Code:   schema.DiagDepthCeiling,
				Table:  n.Record.Name,
				Detail: fmt.Sprintf("depth %d exceeds ceiling %d; clamped", d, ceiling),
			})
			d = ceiling
		}
		n.Depth = d
		state[n] = stateDone
		return d
	}
	for _, id := range ids {
		resolve(byID[id])
	}

	// Children in deterministic name order.
	for _, id := range ids {
		n := byID[id]
		if n.Parent != nil {
			n.Parent.Children = append(n.Parent.Children, n)
		}
	}
	for _, id := range ids {
		c := byID[id].Children
		sort.Slice(c, func(i, j int) bool { return c[i].Record.Name < c[j].Record.Name })
	}

	root := byName[cfg.RootName]
	if root == nil {
		return nil, &RootNotFoundError{RootName: cfg.RootName, Records: len(byID)}
	}

	var extras []*TableNode
	for _, id := range ids {
		n := byID[id]
		if n.Parent == nil && n != root {
			extras = append(extras, n)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].Record.Name < extras[j].Record.Name })
	roots := extras
	if root.Parent == nil {
		roots = append([]*TableNode{root}, extras...)
	}

	h := &Hierarchy{
		Root:        root,
		Roots:       roots,
		ByID:        byID,
		ByName:      byName,
		Diagnostics: diags,
		NodeCount:   len(byID),
	}
	for _, r := range roots {
		aggregate(r)
	}
	for _, id := range ids {
		if d := byID[id].Depth; d > h.MaxDepth {
			h.MaxDepth = d
		}
	}
	return h, nil
}

// aggregate fills subtree rollups bottom-up.
func aggregate(n *TableNode) (size, records int) {
	size, records = 1, n.Record.RecordCount
	for _, c := range n.Children {
		cs, cr := aggregate(c)
		size += cs
		records += cr
	}
	n.SubtreeSize = size
	n.SubtreeRecords = records
	return size, records
}

// Lookup finds a table by name, falling back to sys_id.
func (h *Hierarchy) Lookup(ref string) *TableNode {
	if n := h.ByName[ref]; n != nil {
		return n
	}
	return h.ByID[ref]
}

// Walk visits every node reachable from the forest tops in preorder,
// deterministic across runs.
func (h *Hierarchy) Walk(fn func(n *TableNode)) {
	var visit func(n *TableNode)
	visit = func(n *TableNode) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range h.Roots {
		visit(r)
	}
}

// Names returns all table names sorted, for deterministic reporting.
func (h *Hierarchy) Names() []string {
	names := make([]string, 0, len(h.ByName))
	for name := range h.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
