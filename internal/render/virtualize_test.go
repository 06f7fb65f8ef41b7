package render

import (
	"fmt"
	"testing"

	"snaudit/prism/internal/layout"
)

func pnode(id string, x, y float64, depth, degree int, custom bool) layout.PositionedNode {
	return layout.PositionedNode{ID: id, Label: "label " + id, X: x, Y: y, Depth: depth, Degree: degree, Custom: custom}
}

func plink(id string, a, b layout.PositionedNode) layout.PositionedLink {
	return layout.PositionedLink{
		ID: id, Source: a.ID, Target: b.ID, Kind: "reference",
		X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
	}
}

func resultOf(nodes []layout.PositionedNode, links []layout.PositionedLink) *layout.Result {
	return &layout.Result{Engine: "tree", Nodes: nodes, Links: links, NodeCount: len(nodes)}
}

func frameNode(t *testing.T, f *Frame, id string) FrameNode {
	t.Helper()
	for _, n := range f.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not in frame", id)
	return FrameNode{}
}

func frameHas(f *Frame, id string) bool {
	for _, n := range f.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func frameHasLink(f *Frame, id string) bool {
	for _, l := range f.Links {
		if l.ID == id {
			return true
		}
	}
	return false
}

func detailRank(d Detail) int {
	switch d {
	case DetailFull:
		return 2
	case DetailSimplified:
		return 1
	default:
		return 0
	}
}

// --- Virtualizer Tests ---

func TestView_CullsOffscreenNodes(t *testing.T) {
	v := NewVirtualizer(resultOf([]layout.PositionedNode{
		pnode("near", 100, 100, 3, 0, false),
		pnode("far", 5000, 5000, 3, 0, false),
	}, nil), VirtualizeOptions{})

	f := v.View(Viewport{Zoom: 1, Width: 800, Height: 600})
	if !frameHas(f, "near") || frameHas(f, "far") {
		t.Fatal("only the on-screen table should survive culling")
	}
	if f.VisibleCount != 1 || f.TotalCount != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", f.VisibleCount, f.TotalCount)
	}
}

func TestView_BufferKeepsNearEdgeNodes(t *testing.T) {
	v := NewVirtualizer(resultOf([]layout.PositionedNode{
		pnode("just_outside", 850, 300, 3, 0, false),
		pnode("well_outside", 1200, 300, 3, 0, false),
	}, nil), VirtualizeOptions{})

	// Default 80px buffer stretches the 800px view to x=880.
	f := v.View(Viewport{Zoom: 1, Width: 800, Height: 600})
	if !frameHas(f, "just_outside") {
		t.Fatal("table inside the buffer band should render")
	}
	if frameHas(f, "well_outside") {
		t.Fatal("table beyond the buffer band should not render")
	}
}

func TestView_PreservesImportantWhenZoomedIn(t *testing.T) {
	v := NewVirtualizer(resultOf([]layout.PositionedNode{
		pnode("anchor", 5000, 5000, 0, 0, false),
		pnode("leaf", 100, 100, 3, 0, false),
	}, nil), VirtualizeOptions{})

	zoomedIn := v.View(Viewport{Zoom: 1, Width: 800, Height: 600})
	if !frameHas(zoomedIn, "anchor") {
		t.Fatal("important table should survive culling once zoomed past the preserve threshold")
	}

	zoomedOut := v.View(Viewport{Zoom: 0.2, Width: 800, Height: 600})
	if frameHas(zoomedOut, "anchor") {
		t.Fatal("below the preserve threshold distance culling applies to everyone")
	}
}

func TestView_DetailGrowsWithZoom(t *testing.T) {
	v := NewVirtualizer(resultOf([]layout.PositionedNode{
		pnode("ordinary", 10, 10, 3, 0, false),
	}, nil), VirtualizeOptions{})

	zooms := []float64{0.1, 0.2, 0.35, 0.5, 0.8, 1.0, 2.0}
	prev := -1
	for _, z := range zooms {
		f := v.View(Viewport{Zoom: z, Width: 800, Height: 600})
		rank := detailRank(frameNode(t, f, "ordinary").Detail)
		if rank < prev {
			t.Fatalf("detail dropped while zooming in at %v", z)
		}
		prev = rank
	}

	low := v.View(Viewport{Zoom: 0.1, Width: 800, Height: 600})
	high := v.View(Viewport{Zoom: 1.0, Width: 800, Height: 600})
	if frameNode(t, low, "ordinary").Detail != DetailMinimal {
		t.Fatal("far zoom should draw dots")
	}
	if frameNode(t, high, "ordinary").Detail != DetailFull {
		t.Fatal("close zoom should draw full detail")
	}
}

func TestView_ImportantKeepsMoreDetail(t *testing.T) {
	v := NewVirtualizer(resultOf([]layout.PositionedNode{
		pnode("hub", 10, 10, 2, 9, false),
		pnode("ordinary", 20, 20, 3, 0, false),
	}, nil), VirtualizeOptions{})

	for _, z := range []float64{0.1, 0.3, 0.5, 0.8, 1.5} {
		f := v.View(Viewport{Zoom: z, Width: 800, Height: 600})
		hub := detailRank(frameNode(t, f, "hub").Detail)
		ord := detailRank(frameNode(t, f, "ordinary").Detail)
		if hub < ord {
			t.Fatalf("at zoom %v the hub drew with less detail than the crowd", z)
		}
	}

	f := v.View(Viewport{Zoom: 0.5, Width: 800, Height: 600})
	if frameNode(t, f, "hub").Detail != DetailFull {
		t.Fatal("important tables should reach full detail earlier")
	}
	if frameNode(t, f, "ordinary").Detail == DetailFull {
		t.Fatal("ordinary tables should still be simplified at mid zoom")
	}
}

func TestView_LargeDatasetBacksOffOrdinaryDetail(t *testing.T) {
	nodes := []layout.PositionedNode{
		pnode("anchor", 10, 10, 0, 0, false),
		pnode("watched", 20, 20, 3, 0, false),
	}
	for i := 0; i < 1600; i++ {
		nodes = append(nodes, pnode(fmt.Sprintf("bulk_%04d", i), float64(i)*30, 4000, 4, 0, false))
	}
	v := NewVirtualizer(resultOf(nodes, nil), VirtualizeOptions{})

	f := v.View(Viewport{Zoom: 1, Width: 800, Height: 600})
	if !f.Degraded {
		t.Fatal("very large datasets should report degraded detail")
	}
	found := false
	for _, n := range f.Notices {
		if n.Code == layout.NoticeDetailReduced {
			found = true
		}
	}
	if !found {
		t.Fatal("degraded frames should carry a detail notice")
	}
	if got := frameNode(t, f, "watched").Detail; got != DetailSimplified {
		t.Fatalf("ordinary detail should back off on huge datasets, got %q", got)
	}
	if got := frameNode(t, f, "anchor").Detail; got != DetailFull {
		t.Fatalf("important detail should hold on huge datasets, got %q", got)
	}
	if f.VisibleCount >= f.TotalCount {
		t.Fatal("culling should drop the off-screen bulk")
	}
}

func TestView_LinkCulling(t *testing.T) {
	inView := pnode("in_view", 100, 100, 3, 0, false)
	offRight := pnode("off_right", 1500, 100, 3, 0, false)
	passA := pnode("pass_a", -500, 300, 5, 0, false)
	passB := pnode("pass_b", 1500, 300, 5, 0, false)
	missA := pnode("miss_a", -500, 5000, 5, 0, false)
	missB := pnode("miss_b", 1500, 5000, 5, 0, false)

	v := NewVirtualizer(resultOf(
		[]layout.PositionedNode{inView, offRight, passA, passB, missA, missB},
		[]layout.PositionedLink{
			plink("endpoint_visible", inView, offRight),
			plink("passes_through", passA, passB),
			plink("misses", missA, missB),
		},
	), VirtualizeOptions{})

	f := v.View(Viewport{Zoom: 1, Width: 800, Height: 600})
	if !frameHasLink(f, "endpoint_visible") {
		t.Fatal("link with a visible endpoint should render")
	}
	if !frameHasLink(f, "passes_through") {
		t.Fatal("link crossing the view should render even with both endpoints culled")
	}
	if frameHasLink(f, "misses") {
		t.Fatal("link far from the view should be culled")
	}
	if frameHas(f, "pass_a") || frameHas(f, "pass_b") {
		t.Fatal("link endpoints themselves stay culled")
	}
}

func TestView_PriorityOrdersImportantFirst(t *testing.T) {
	v := NewVirtualizer(resultOf([]layout.PositionedNode{
		pnode("zz_leaf", 10, 10, 3, 0, false),
		pnode("root", 50, 50, 0, 2, false),
		pnode("middling", 30, 30, 3, 3, false),
	}, nil), VirtualizeOptions{})

	f := v.View(Viewport{Zoom: 1, Width: 800, Height: 600})
	if len(f.Nodes) != 3 {
		t.Fatalf("expected all 3 visible, got %d", len(f.Nodes))
	}
	if f.Nodes[0].ID != "root" || f.Nodes[0].Priority != PriorityHigh {
		t.Fatalf("important table should sort first, got %q", f.Nodes[0].ID)
	}
	if f.Nodes[1].ID != "middling" || f.Nodes[1].Priority != PriorityMedium {
		t.Fatalf("connected table should sort next, got %q", f.Nodes[1].ID)
	}
	if f.Nodes[2].ID != "zz_leaf" {
		t.Fatalf("leaf should sort last, got %q", f.Nodes[2].ID)
	}
}

func TestVirtualizer_ImportanceClasses(t *testing.T) {
	v := NewVirtualizer(resultOf([]layout.PositionedNode{
		pnode("root", 0, 0, 0, 1, false),
		pnode("family", 0, 0, 1, 1, false),
		pnode("hub", 0, 0, 4, 6, false),
		pnode("custom", 0, 0, 4, 0, true),
		pnode("plain", 0, 0, 3, 1, false),
	}, nil), VirtualizeOptions{})

	for _, id := range []string{"root", "family", "hub", "custom"} {
		if !v.Important(id) {
			t.Fatalf("%q should be important", id)
		}
	}
	if v.Important("plain") {
		t.Fatal("mid-tree leaf should not be important")
	}
	if v.Important("missing") {
		t.Fatal("unknown ids are never important")
	}
}
