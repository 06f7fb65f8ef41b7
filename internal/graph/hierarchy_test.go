package graph

import (
	"errors"
	"fmt"
	"testing"

	"snaudit/prism/internal/schema"
)

func rec(id, name, parentID string) schema.TableRecord {
	return schema.TableRecord{
		ID:       id,
		Name:     name,
		Label:    "Label " + name,
		ParentID: parentID,
		Category: schema.DeriveCategory(name, parentID),
	}
}

func build(t *testing.T, rootName string, records []schema.TableRecord) *Hierarchy {
	t.Helper()
	h, err := Build(records, &BuildConfig{RootName: rootName})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return h
}

func hasDiag(h *Hierarchy, code string) bool {
	for _, d := range h.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

// --- Build Tests ---

func TestBuild_DepthFollowsParent(t *testing.T) {
	h := build(t, "root", []schema.TableRecord{
		rec("1", "root", ""),
		rec("2", "mid", "1"),
		rec("3", "leaf_a", "2"),
		rec("4", "leaf_b", "2"),
	})
	if h.Root.Depth != 0 {
		t.Errorf("root depth = %d, want 0", h.Root.Depth)
	}
	h.Walk(func(n *TableNode) {
		if n.Parent == nil {
			return
		}
		if n.Depth != n.Parent.Depth+1 {
			t.Errorf("%s depth = %d, parent depth = %d", n.Record.Name, n.Depth, n.Parent.Depth)
		}
	})
	if h.MaxDepth != 2 {
		t.Errorf("max depth = %d, want 2", h.MaxDepth)
	}
}

func TestBuild_RootNotFound(t *testing.T) {
	_, err := Build([]schema.TableRecord{rec("1", "something", "")}, &BuildConfig{RootName: "cmdb_ci"})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	var rnf *RootNotFoundError
	if !errors.As(err, &rnf) {
		t.Fatalf("expected RootNotFoundError, got %T", err)
	}
	if rnf.RootName != "cmdb_ci" {
		t.Errorf("error names root %q", rnf.RootName)
	}
}

func TestBuild_NameFallback(t *testing.T) {
	records := []schema.TableRecord{
		rec("1", "root", ""),
		{ID: "2", Name: "child", Label: "Child", ParentID: "nope", ParentName: "root"},
	}
	h := build(t, "root", records)
	child := h.ByName["child"]
	if child.Parent != h.Root {
		t.Error("parent should resolve by name when the id misses")
	}
}

func TestBuild_NameInValueSlot(t *testing.T) {
	records := []schema.TableRecord{
		rec("1", "root", ""),
		{ID: "2", Name: "child", Label: "Child", ParentID: "root"},
	}
	h := build(t, "root", records)
	if h.ByName["child"].Parent != h.Root {
		t.Error("a table name in the parent value slot should still resolve")
	}
}

func TestBuild_SelfParent(t *testing.T) {
	h := build(t, "root", []schema.TableRecord{
		rec("1", "root", ""),
		rec("2", "narcissus", "2"),
	})
	n := h.ByName["narcissus"]
	if n.Parent != nil {
		t.Error("self-parent should be cleared")
	}
	if n.Depth != 0 {
		t.Errorf("self-parent depth = %d, want 0", n.Depth)
	}
	if !hasDiag(h, schema.DiagSelfParent) {
		t.Error("expected self_parent diagnostic")
	}
	if len(h.Roots) != 2 {
		t.Errorf("expected 2 roots, got %d", len(h.Roots))
	}
}

func TestBuild_TwoNodeCycle(t *testing.T) {
	h := build(t, "root", []schema.TableRecord{
		rec("1", "root", ""),
		rec("2", "ying", "3"),
		rec("3", "yang", "2"),
	})
	ying, yang := h.ByName["ying"], h.ByName["yang"]
	if ying.Depth > 1 || yang.Depth > 1 {
		t.Errorf("cycle depths should clamp near zero, got %d and %d", ying.Depth, yang.Depth)
	}
	if !hasDiag(h, schema.DiagCycle) {
		t.Error("expected cycle diagnostic")
	}
	severed := 0
	if ying.Parent == nil {
		severed++
	}
	if yang.Parent == nil {
		severed++
	}
	if severed != 1 {
		t.Errorf("exactly one cycle member should lose its parent, got %d", severed)
	}
}

func TestBuild_ThreeNodeCycle(t *testing.T) {
	h := build(t, "root", []schema.TableRecord{
		rec("1", "root", ""),
		rec("2", "a", "4"),
		rec("3", "b", "2"),
		rec("4", "c", "3"),
	})
	for _, name := range []string{"a", "b", "c"} {
		n := h.ByName[name]
		if n.Depth > 2 {
			t.Errorf("%s depth = %d after severing, want <= 2", name, n.Depth)
		}
	}
	if !hasDiag(h, schema.DiagCycle) {
		t.Error("expected cycle diagnostic")
	}
}

func TestBuild_DepthCeiling(t *testing.T) {
	var records []schema.TableRecord
	records = append(records, rec("t0", "root", ""))
	for i := 1; i <= 25; i++ {
		records = append(records, rec(
			fmt.Sprintf("t%02d", i),
			fmt.Sprintf("table_%02d", i),
			fmt.Sprintf("t%02d", i-1),
		))
	}
	// fix the first child's parent id to the root's unpadded id
	records[1].ParentID = "t0"

	h := build(t, "root", records)
	if h.MaxDepth != DefaultDepthCeiling {
		t.Errorf("max depth = %d, want ceiling %d", h.MaxDepth, DefaultDepthCeiling)
	}
	if !hasDiag(h, schema.DiagDepthCeiling) {
		t.Error("expected depth_ceiling diagnostic")
	}
}

func TestBuild_DuplicateIDLastWins(t *testing.T) {
	records := []schema.TableRecord{
		rec("1", "root", ""),
		{ID: "2", Name: "thing", Label: "First"},
		{ID: "2", Name: "thing", Label: "Second"},
	}
	h := build(t, "root", records)
	if got := h.ByID["2"].Record.Label; got != "Second" {
		t.Errorf("duplicate id should keep the later record, got label %q", got)
	}
	if !hasDiag(h, schema.DiagDuplicateID) {
		t.Error("expected duplicate_id diagnostic")
	}
	if h.NodeCount != 2 {
		t.Errorf("node count = %d, want 2", h.NodeCount)
	}
}

func TestBuild_UnresolvedParentBecomesRoot(t *testing.T) {
	h := build(t, "root", []schema.TableRecord{
		rec("1", "root", ""),
		rec("2", "stray", "missing_table"),
	})
	stray := h.ByName["stray"]
	if stray.Parent != nil {
		t.Error("unresolved parent should leave the table parentless")
	}
	if !hasDiag(h, schema.DiagUnresolvedParent) {
		t.Error("expected unresolved_parent diagnostic")
	}
	if len(h.Roots) != 2 || h.Roots[0] != h.Root {
		t.Errorf("expected canonical root first of 2 roots, got %d", len(h.Roots))
	}
}

func TestBuild_ChildrenSortedByName(t *testing.T) {
	h := build(t, "root", []schema.TableRecord{
		rec("1", "root", ""),
		rec("4", "zebra", "1"),
		rec("3", "mantis", "1"),
		rec("2", "aardvark", "1"),
	})
	var got []string
	for _, c := range h.Root.Children {
		got = append(got, c.Record.Name)
	}
	want := []string{"aardvark", "mantis", "zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children order %v, want %v", got, want)
		}
	}
}

func TestBuild_SubtreeRollups(t *testing.T) {
	records := []schema.TableRecord{
		rec("1", "root", ""),
		rec("2", "a", "1"),
		rec("3", "b", "1"),
		rec("4", "a_kid", "2"),
	}
	records[0].RecordCount = 10
	records[1].RecordCount = 5
	records[2].RecordCount = 2
	records[3].RecordCount = 1
	h := build(t, "root", records)
	if h.Root.SubtreeRecords != 18 {
		t.Errorf("root subtree records = %d, want 18", h.Root.SubtreeRecords)
	}
	if h.ByName["a"].SubtreeRecords != 6 {
		t.Errorf("a subtree records = %d, want 6", h.ByName["a"].SubtreeRecords)
	}
	if h.Root.SubtreeSize != 4 {
		t.Errorf("root subtree size = %d, want 4", h.Root.SubtreeSize)
	}
}

func TestLookup_NameThenID(t *testing.T) {
	h := build(t, "root", []schema.TableRecord{
		rec("abc", "root", ""),
		rec("def", "child", "abc"),
	})
	if h.Lookup("child") == nil {
		t.Error("lookup by name failed")
	}
	if h.Lookup("def") == nil {
		t.Error("lookup by id failed")
	}
	if h.Lookup("ghost") != nil {
		t.Error("lookup of unknown ref should be nil")
	}
}
