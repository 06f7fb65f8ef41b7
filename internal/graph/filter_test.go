package graph

import (
	"testing"

	"snaudit/prism/internal/schema"
)

// A small two-family tree: base root, extended servers, one custom leaf
// under each family.
func filterFixture(t *testing.T) *Hierarchy {
	t.Helper()
	records := []schema.TableRecord{
		rec("1", "cmdb_ci", ""),
		rec("2", "cmdb_ci_server", "1"),
		rec("3", "cmdb_ci_service", "1"),
		rec("4", "u_custom_server", "2"),
		rec("5", "u_custom_service", "3"),
		rec("6", "cmdb_ci_linux", "2"),
	}
	return build(t, "cmdb_ci", records)
}

func sameShape(t *testing.T, a, b *TableNode) {
	t.Helper()
	if a.Record.Name != b.Record.Name {
		t.Fatalf("node mismatch: %s vs %s", a.Record.Name, b.Record.Name)
	}
	if len(a.Children) != len(b.Children) {
		t.Fatalf("%s children count %d vs %d", a.Record.Name, len(a.Children), len(b.Children))
	}
	for i := range a.Children {
		sameShape(t, a.Children[i], b.Children[i])
	}
}

// --- Filter Tests ---

func TestFilter_PreservesStructure(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{Search: "linux"})
	if out.NodeCount != h.NodeCount {
		t.Errorf("node count changed: %d vs %d", out.NodeCount, h.NodeCount)
	}
	for i := range h.Roots {
		sameShape(t, h.Roots[i], out.Roots[i])
	}
}

func TestFilter_InputNotMutated(t *testing.T) {
	h := filterFixture(t)
	ApplyFilter(h, &FilterState{Search: "nothing_matches_this"})
	h.Walk(func(n *TableNode) {
		if n.Dimmed {
			t.Fatalf("input node %s was dimmed", n.Record.Name)
		}
	})
}

func TestFilter_SearchDimsNonMatches(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{Search: "linux"})
	if out.ByName["cmdb_ci_linux"].Dimmed {
		t.Error("matching table should stay lit")
	}
	if !out.ByName["u_custom_service"].Dimmed {
		t.Error("non-matching table should dim")
	}
}

func TestFilter_SearchMatchesLabels(t *testing.T) {
	h := filterFixture(t)
	// labels are "Label <name>"; search by a label fragment
	out := ApplyFilter(h, &FilterState{Search: "label u_custom_server"})
	if out.ByName["u_custom_server"].Dimmed {
		t.Error("label match should keep the table lit")
	}
}

func TestFilter_AncestorsOfMatchStayLit(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{Search: "u_custom_server"})
	for n := out.ByName["u_custom_server"]; n != nil; n = n.Parent {
		if n.Dimmed {
			t.Errorf("ancestor %s of a match is dimmed", n.Record.Name)
		}
	}
}

func TestFilter_CustomOnly(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{CustomOnly: true})
	if out.ByName["u_custom_server"].Dimmed || out.ByName["u_custom_service"].Dimmed {
		t.Error("custom tables should stay lit in custom-only mode")
	}
	// extended ancestors of customs stay renderable
	if out.ByName["cmdb_ci_server"].Dimmed {
		t.Error("ancestor of a custom table should stay lit")
	}
	if !out.ByName["cmdb_ci_linux"].Dimmed {
		t.Error("non-custom leaf should dim in custom-only mode")
	}
}

func TestFilter_BaseNeverDims(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{Search: "zzz_no_match", CustomOnly: true})
	if out.ByName["cmdb_ci"].Dimmed {
		t.Error("base root must never dim")
	}
}

func TestFilter_CategoryToggle(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{
		Categories: map[schema.Category]bool{schema.CategoryCustom: false},
	})
	if !out.ByName["u_custom_server"].Dimmed {
		t.Error("disabled category should dim")
	}
	if out.ByName["cmdb_ci_server"].Dimmed {
		t.Error("enabled category should stay lit")
	}
}

func TestFilter_InactiveKeepsEverythingLit(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{})
	out.Walk(func(n *TableNode) {
		if n.Dimmed {
			t.Errorf("%s dimmed with no filter active", n.Record.Name)
		}
	})
}

func TestFilter_CopyIsIndependent(t *testing.T) {
	h := filterFixture(t)
	out := ApplyFilter(h, &FilterState{})
	out.ByName["cmdb_ci_server"].Dimmed = true
	if h.ByName["cmdb_ci_server"].Dimmed {
		t.Error("mutating the copy reached the input tree")
	}
}
