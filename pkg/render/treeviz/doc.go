// Package treeviz renders the instance tree of a build.
//
// # Usage
//
// Convert a build to DOT, then render to SVG:
//
//	dot := treeviz.ToDOT(b, "root", treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// Or print it for the terminal:
//
//	fmt.Print(treeviz.Outline(b, "root", treeviz.Options{}))
//
// # Options
//
//   - Detailed: labels include props and style source names
//   - Highlight: ids drawn emphasised, typically the current selection
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes. Fragments are dashed and Slots are grey so wrappers stand out from
// content. Text children appear as plain notes under their instance.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package treeviz
