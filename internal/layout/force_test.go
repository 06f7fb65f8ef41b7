package layout

import (
	"math"
	"reflect"
	"testing"

	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/schema"
)

func forceFixture(t *testing.T) *Graph {
	t.Helper()
	h := buildHierarchy(t, []schema.TableRecord{
		rec("r1", "cmdb_ci", ""),
		rec("r2", "cmdb_ci_child", "r1"),
		rec("r3", "standalone", ""),
	})
	refs := []schema.ReferenceField{
		{ID: "f1", SourceTable: "cmdb_ci", Column: "linked", TargetTable: "standalone"},
	}
	return FromGraphData(graph.BuildGraph(h, refs, nil, true))
}

func dist(a, b PositionedNode) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// --- Force Layout Tests ---

func TestForce_Deterministic(t *testing.T) {
	canvas := Size{Width: 1200, Height: 800}
	opts := ForceOptions{Iterations: 60}

	a, err := NewForceEngine(opts).Calculate(forceFixture(t), canvas, HintAuto)
	if err != nil {
		t.Fatalf("first Calculate: %v", err)
	}
	b, err := NewForceEngine(opts).Calculate(forceFixture(t), canvas, HintAuto)
	if err != nil {
		t.Fatalf("second Calculate: %v", err)
	}

	if !reflect.DeepEqual(a.Nodes, b.Nodes) {
		t.Fatal("same input should settle to identical positions")
	}
}

func TestForce_InheritanceTighterThanReference(t *testing.T) {
	res, err := NewForceEngine(ForceOptions{}).Calculate(forceFixture(t), Size{Width: 1200, Height: 800}, HintAuto)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	hub := posOf(t, res, "cmdb_ci")
	child := posOf(t, res, "cmdb_ci_child")
	ref := posOf(t, res, "standalone")
	if dist(hub, child) >= dist(hub, ref) {
		t.Fatalf("inheritance springs should pull tighter than references: inherit=%v ref=%v",
			dist(hub, child), dist(hub, ref))
	}
}

func TestForce_CustomTablesPushHarder(t *testing.T) {
	canvas := Size{Width: 1200, Height: 800}
	plainRes, err := NewForceEngine(ForceOptions{}).Calculate(buildGraph(t, []schema.TableRecord{
		rec("r1", "cmdb_ci", ""),
		rec("r2", "cmdb_ci_plain", "r1"),
	}), canvas, HintAuto)
	if err != nil {
		t.Fatalf("plain Calculate: %v", err)
	}
	customRes, err := NewForceEngine(ForceOptions{}).Calculate(buildGraph(t, []schema.TableRecord{
		rec("r1", "cmdb_ci", ""),
		rec("r2", "u_custom_thing", "r1"),
	}), canvas, HintAuto)
	if err != nil {
		t.Fatalf("custom Calculate: %v", err)
	}

	plainGap := dist(posOf(t, plainRes, "cmdb_ci"), posOf(t, plainRes, "cmdb_ci_plain"))
	customGap := dist(posOf(t, customRes, "cmdb_ci"), posOf(t, customRes, "u_custom_thing"))
	if customGap <= plainGap {
		t.Fatalf("custom tables should claim more room: plain=%v custom=%v", plainGap, customGap)
	}
}

func TestForce_SingleNodeSitsAtCenter(t *testing.T) {
	g := buildGraph(t, []schema.TableRecord{rec("r1", "cmdb_ci", "")})
	res, err := NewForceEngine(ForceOptions{Iterations: 40}).Calculate(g, Size{Width: 1200, Height: 800}, HintAuto)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	only := posOf(t, res, "cmdb_ci")
	approx(t, only.X, 600)
	approx(t, only.Y, 400)
}

func TestForce_PinHoldsPosition(t *testing.T) {
	e := NewForceEngine(ForceOptions{Iterations: 60})
	if _, err := e.Calculate(forceFixture(t), Size{Width: 1200, Height: 800}, HintAuto); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	e.Pin("cmdb_ci_child", 900, 100)
	e.Reheat()
	e.Tick(40)

	snap := e.Snapshot()
	pinned := posOf(t, snap, "cmdb_ci_child")
	if pinned.X != 900 || pinned.Y != 100 {
		t.Fatalf("pinned table moved to (%v, %v)", pinned.X, pinned.Y)
	}
}

func TestForce_UnpinResumesMotion(t *testing.T) {
	e := NewForceEngine(ForceOptions{Iterations: 60})
	if _, err := e.Calculate(forceFixture(t), Size{Width: 1200, Height: 800}, HintAuto); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	e.Pin("cmdb_ci_child", 300, 300)
	e.Tick(5)
	e.Unpin("cmdb_ci_child")
	e.Reheat()
	e.Tick(10)

	freed := posOf(t, e.Snapshot(), "cmdb_ci_child")
	if math.Hypot(freed.X-300, freed.Y-300) < 0.01 {
		t.Fatal("unpinned table should rejoin the simulation")
	}
}

func TestForce_ReheatRestoresTemperature(t *testing.T) {
	e := NewForceEngine(ForceOptions{Iterations: 80})
	if _, err := e.Calculate(forceFixture(t), Size{Width: 1200, Height: 800}, HintAuto); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if e.Alpha() >= 0.3 {
		t.Fatalf("simulation should have cooled below the reheat level, alpha=%v", e.Alpha())
	}
	e.Reheat()
	if e.Alpha() != 0.3 {
		t.Fatalf("reheat should restore a mild temperature, alpha=%v", e.Alpha())
	}
	if e.Settled() {
		t.Fatal("reheated simulation should not report settled")
	}
	e.Tick(1)
	if e.Alpha() >= 0.3 {
		t.Fatal("ticking should cool the simulation again")
	}
}

func TestForce_AutoEscalatesLargeGraphs(t *testing.T) {
	g := buildGraph(t, flatRecords(600))
	res, err := NewForceEngine(ForceOptions{Iterations: 30}).Calculate(g, Size{Width: 1600, Height: 1200}, HintAuto)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if !res.HighPerformance {
		t.Fatal("601 tables under auto should run the high-performance path")
	}
	if !hasNotice(res, NoticeLayoutDegraded) {
		t.Fatal("escalation should surface a degradation notice")
	}
	if res.Engine != "force" {
		t.Fatalf("engine name = %q", res.Engine)
	}
}

func TestForce_SnapshotMatchesCalculate(t *testing.T) {
	e := NewForceEngine(ForceOptions{Iterations: 40})
	res, err := e.Calculate(forceFixture(t), Size{Width: 1200, Height: 800}, HintAuto)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if !reflect.DeepEqual(res, e.Snapshot()) {
		t.Fatal("snapshot should reproduce the last calculated result")
	}
}

func TestForce_EmptyGraph(t *testing.T) {
	res, err := NewForceEngine(ForceOptions{}).Calculate(&Graph{}, Size{Width: 800, Height: 600}, HintAuto)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.NodeCount != 0 {
		t.Fatalf("empty input should produce an empty result, got %d", res.NodeCount)
	}
}
