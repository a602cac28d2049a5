// Package pkg provides the core libraries of Studio, an editor for the
// instance tree of website builds.
//
// # Overview
//
// A build is a tree of component instances plus the props, style sources and
// style declarations attached to them. Every edit runs as a transaction on a
// copy of the build, so a failed or discarded edit never leaves a partial
// state behind. The pkg directory is organized into four areas:
//
//  1. [build] - The document model and the pure tree algorithms
//  2. [store], [editor] - Transactions, undo history and selection
//  3. [storage], [session], [asset], [cache] - Persistence and infrastructure
//  4. [render/treeviz] - Outlines and Graphviz diagrams of the tree
//
// # Architecture
//
// The flow of an edit:
//
//	editor.Session operation (insert, reparent, delete, ...)
//	         ↓
//	    [store] transaction on a cloned build
//	         ↓
//	    [build/tree] mutation (fragment insert, reparent, cascade delete)
//	         ↓
//	    commit → subscribers (persistence, publishing)
//
// # Quick Start
//
// Insert a component and delete it again:
//
//	b := build.NewWithRoot("body", build.ComponentBody)
//	st := store.New(b)
//	ed := editor.New(st)
//
//	target := tree.DropTarget{ParentSelector: tree.InstanceSelector{"body"}, Position: tree.PositionEnd}
//	ed.InsertNewComponentInstance("Box", target)
//	ed.DeleteSelectedInstance()
//	ed.Undo()
//
// # Main Packages
//
// ## Document Model
//
// [build] - Instances, props, style sources, selections, declarations and
// breakpoints, with cloning, validation and JSON import/export.
//
// [build/tree] - Selectors, drop targets, fragment copy and insert, reparent
// and cascading delete. All functions mutate a build passed in by the caller
// and never touch shared state.
//
// [css] - Style values, units and the unit selector options of CSS
// properties.
//
// ## Editing
//
// [store] - The transaction coordinator: clone, mutate, swap, notify. Keeps a
// bounded undo history.
//
// [editor] - User-level operations on a store with selection tracking.
//
// ## Infrastructure
//
// [storage] - Build and asset metadata persistence (memory, MongoDB) with
// optimistic versioning.
//
// [session] - Editing sessions holding a selection (memory, file, Redis).
//
// [asset] - Upload validation and blob backends (filesystem, S3, GridFS).
//
// [cache] - Render cache (file, Redis) with content-hash keys.
//
// [config], [errors], [observability], [buildinfo] - Shared plumbing.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/build/tree/...         # Specific package
//	go test -tags integration ./pkg/...  # Include integration tests (MongoDB, Redis)
//
// [build]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/build
// [build/tree]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/build/tree
// [css]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/css
// [store]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/store
// [editor]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/editor
// [storage]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/storage
// [session]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/session
// [asset]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/asset
// [cache]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/cache
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/render/treeviz
// [config]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/studio/pkg/buildinfo
package pkg
