package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/studio/pkg/build"
)

// Options configures tree rendering.
type Options struct {
	// Detailed includes props and style sources in node labels.
	// When false, only component, label and id are shown.
	Detailed bool

	// Highlight lists instance ids drawn emphasised.
	Highlight []string
}

func (o Options) highlighted(id string) bool {
	for _, h := range o.Highlight {
		if h == id {
			return true
		}
	}
	return false
}

// ToDOT converts the tree under rootID to Graphviz DOT. Instances reached
// twice (slot content) are drawn once with an edge from each parent.
func ToDOT(b *build.Build, rootID string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	seen := build.NewIDSet()
	walk(b, rootID, seen, func(inst *build.Instance) {
		label := fmtLabel(b, inst, opts.Detailed)
		attrs := fmtAttrs(inst, label, opts.highlighted(inst.ID))
		fmt.Fprintf(&buf, "  %q [%s];\n", inst.ID, strings.Join(attrs, ", "))

		for i, child := range inst.Children {
			switch child.Type {
			case build.ChildID:
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", inst.ID, child.Value))
			case build.ChildText, build.ChildExpression:
				noteID := fmt.Sprintf("%s#%d", inst.ID, i)
				fmt.Fprintf(&buf, "  %q [label=%q, shape=note, style=filled, fillcolor=lightyellow, fontsize=11];\n",
					noteID, truncate(child.Value, 40))
				edges = append(edges, fmt.Sprintf("  %q -> %q [style=dotted, arrowhead=none];\n", inst.ID, noteID))
			}
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// walk visits instances depth-first in child order, each once.
func walk(b *build.Build, id string, seen build.IDSet, visit func(*build.Instance)) {
	inst, ok := b.Instances[id]
	if !ok || !seen.Add(id) {
		return
	}
	visit(inst)
	for _, childID := range inst.ChildIDs() {
		walk(b, childID, seen, visit)
	}
}

func title(inst *build.Instance) string {
	if inst.Label != "" {
		return inst.Component + " \"" + inst.Label + "\""
	}
	return inst.Component
}

func fmtLabel(b *build.Build, inst *build.Instance, detailed bool) string {
	lines := []string{title(inst), inst.ID}
	if !detailed {
		return strings.Join(lines, "\n")
	}

	for _, p := range propsOf(b, inst.ID) {
		lines = append(lines, fmt.Sprintf("%s=%v", p.Name, p.Value))
	}
	if sel, ok := b.StyleSourceSelections[inst.ID]; ok {
		names := make([]string, 0, len(sel.Values))
		for _, id := range sel.Values {
			names = append(names, sourceName(b, id))
		}
		lines = append(lines, "styles: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(inst *build.Instance, label string, highlight bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch inst.Component {
	case build.ComponentFragment:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=white")
	case build.ComponentSlot:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if highlight {
		attrs = append(attrs, "color=\"#2563eb\"", "penwidth=3")
	}
	return attrs
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the SVG scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
