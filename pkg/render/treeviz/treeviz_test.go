package treeviz

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/studio/pkg/build"
)

func sample() *build.Build {
	b := build.NewWithRoot("root", build.ComponentBody)
	b.Instances["root"].Children = []build.InstanceChild{build.IDChild("frag"), build.IDChild("heading")}
	b.Instances["frag"] = &build.Instance{ID: "frag", Component: build.ComponentFragment, Children: []build.InstanceChild{build.IDChild("box")}}
	b.Instances["box"] = &build.Instance{ID: "box", Component: "Box", Label: "Card", Children: []build.InstanceChild{}}
	b.Instances["heading"] = &build.Instance{ID: "heading", Component: "Heading", Children: []build.InstanceChild{build.TextChild("Welcome")}}
	b.Props["p1"] = &build.Prop{ID: "p1", InstanceID: "heading", Name: "tag", Type: build.PropString, Value: "h1"}
	b.StyleSources["brand"] = &build.StyleSource{ID: "brand", Type: build.StyleSourceToken, Name: "Brand"}
	b.StyleSourceSelections["box"] = &build.StyleSourceSelection{InstanceID: "box", Values: []string{"brand"}}
	return b
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), "root", Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"root" -> "frag";`,
		`"frag" -> "box";`,
		`"root" -> "heading";`,
		`"heading" -> "heading#0" [style=dotted, arrowhead=none];`,
		`label="Welcome"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "tag=h1") {
		t.Error("props rendered without Detailed")
	}
}

func TestToDOTFragmentDashed(t *testing.T) {
	dot := ToDOT(sample(), "root", Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `"frag" [`) && !strings.Contains(line, "dashed") {
			t.Errorf("fragment node not dashed: %s", line)
		}
	}
}

func TestToDOTDetailedAndHighlight(t *testing.T) {
	dot := ToDOT(sample(), "root", Options{Detailed: true, Highlight: []string{"box"}})

	if !strings.Contains(dot, "tag=h1") {
		t.Error("Detailed label missing prop")
	}
	if !strings.Contains(dot, "styles: Brand") {
		t.Error("Detailed label missing style source")
	}
	if !strings.Contains(dot, "penwidth=3") {
		t.Error("highlighted node missing emphasis")
	}
}

func TestToDOTSubtree(t *testing.T) {
	dot := ToDOT(sample(), "frag", Options{})
	if strings.Contains(dot, `"heading"`) {
		t.Error("subtree render includes sibling")
	}
	if !strings.Contains(dot, `"frag" -> "box";`) {
		t.Error("subtree render missing child edge")
	}
}

func TestOutline(t *testing.T) {
	got := Outline(sample(), "root", Options{Highlight: []string{"heading"}})
	want := strings.Join([]string{
		"Body [root]",
		"├── Fragment [frag]",
		`│   └── Box "Card" [box]`,
		"└── * Heading [heading]",
		`    └── "Welcome"`,
		"",
	}, "\n")
	if got != want {
		t.Errorf("Outline() =\n%s\nwant\n%s", got, want)
	}
}

func TestOutlineDetailed(t *testing.T) {
	got := Outline(sample(), "root", Options{Detailed: true})
	if !strings.Contains(got, `Box "Card" [box] {Brand}`) {
		t.Errorf("Outline missing style sources:\n%s", got)
	}
	if !strings.Contains(got, "Heading [heading] tag=h1") {
		t.Errorf("Outline missing props:\n%s", got)
	}
}

func TestOutlineMissingRoot(t *testing.T) {
	if got := Outline(sample(), "nope", Options{}); got != "" {
		t.Errorf("Outline(missing) = %q, want empty", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox changed SVG without viewBox")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), "root", Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
