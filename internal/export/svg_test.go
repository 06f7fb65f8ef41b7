package export

import (
	"bytes"
	"strings"
	"testing"

	"snaudit/prism/internal/graph"
	"snaudit/prism/internal/layout"
	"snaudit/prism/internal/schema"
)

func sampleResult(t *testing.T) *layout.Result {
	t.Helper()
	records := []schema.TableRecord{
		{ID: "r1", Name: "cmdb_ci", Label: "Configuration Item", Category: schema.CategoryBase},
		{ID: "r2", Name: "cmdb_ci_server", Label: "Server", ParentID: "r1", Category: schema.CategoryExtended},
		{ID: "r3", Name: "u_custom_app", Label: "Custom App", ParentID: "r1", Category: schema.CategoryCustom},
	}
	h, err := graph.Build(records, graph.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	res, err := layout.NewTreeEngine(layout.TreeOptions{}).Calculate(
		layout.FromHierarchy(h), layout.Size{Width: 800, Height: 600}, layout.HintAuto)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return res
}

// --- SVG Export Tests ---

func TestWriteSVG_Document(t *testing.T) {
	var buf bytes.Buffer
	WriteSVG(&buf, sampleResult(t), SVGOptions{})
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("output should be a complete SVG document")
	}
	if got := strings.Count(out, "<circle"); got != 3 {
		t.Fatalf("expected 3 node circles, got %d", got)
	}
	if got := strings.Count(out, "<line"); got != 2 {
		t.Fatalf("expected 2 inheritance lines, got %d", got)
	}
	for _, name := range []string{"cmdb_ci", "cmdb_ci_server", "u_custom_app"} {
		if !strings.Contains(out, name) {
			t.Fatalf("label %q missing from small export", name)
		}
	}
}

func TestWriteSVG_CategoryFills(t *testing.T) {
	var buf bytes.Buffer
	WriteSVG(&buf, sampleResult(t), SVGOptions{})
	out := buf.String()

	for _, fill := range []string{"#2a7fb8", "#3fa45b", "#e0a400"} {
		if !strings.Contains(out, fill) {
			t.Fatalf("category fill %s missing", fill)
		}
	}
}

func TestWriteSVG_DimmedStyling(t *testing.T) {
	res := sampleResult(t)
	for i := range res.Nodes {
		if res.Nodes[i].ID == "u_custom_app" {
			res.Nodes[i].Dimmed = true
		}
	}

	var buf bytes.Buffer
	WriteSVG(&buf, res, SVGOptions{})
	if !strings.Contains(buf.String(), "fill-opacity:0.35") {
		t.Fatal("dimmed tables should render washed out")
	}
}

func TestWriteSVG_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	WriteSVG(&buf, &layout.Result{Engine: "tree"}, SVGOptions{})
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("empty layouts should still produce a valid document")
	}
	if strings.Contains(out, "<circle") {
		t.Fatal("no nodes, no circles")
	}
}
