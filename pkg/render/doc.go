// Package render groups the renderers for builds.
//
// The [treeviz] subpackage draws the instance tree with Graphviz and prints
// it as a text outline for the terminal.
//
// [treeviz]: github.com/matzehuels/studio/pkg/render/treeviz
package render
