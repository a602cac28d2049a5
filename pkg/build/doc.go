// Package build provides the in-memory document edited by the builder: a tree
// of component instances together with the side tables that hang off it.
//
// # Overview
//
// A [Build] is an arena of entities keyed by stable ids:
//
//   - [Instances]: component nodes with ordered children
//   - [Props]: named values owned by an instance
//   - [StyleSources]: local or token bundles of declarations
//   - [StyleSourceSelections]: per-instance ordered list of applied sources
//   - [Styles]: declarations keyed by source, breakpoint, property and state
//   - [Breakpoints]: minimum-width thresholds that scope declarations
//
// Every prop, selection and declaration must reference a live instance or
// style source. [Build.Validate] reports every violation at once.
//
// # Serialization
//
// Builds are exchanged as JSON objects holding one array per collection,
// sorted by id so that output is stable:
//
//	b, err := build.ImportJSON("site.json")
//	if err != nil {
//	    return err
//	}
//	if err := b.Validate(); err != nil {
//	    return err
//	}
//
// A Build is not safe for concurrent use; wrap it in a store.Store to share it.
package build
