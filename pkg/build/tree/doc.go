// Package tree implements the structural edits of a build: inserting a
// subtree, moving a subtree and deleting a subtree with cascading cleanup.
//
// # Addressing
//
// Instances are addressed by an [InstanceSelector]: the target id followed by
// its ancestors up to the root. The same instance may appear under several
// slots, so the path, not the id, identifies a position on the canvas.
// Destinations are expressed as a [DropTarget]: the selector of the new parent
// and a child position.
//
// # Mutations
//
// The *Mutable functions edit a [build.Build] in place and report whether
// anything changed. Precondition failures (unknown parent, deleting the root,
// moving an instance into itself) leave the build untouched and report false
// rather than returning an error. Callers that need atomicity run them inside
// a store transaction on a private copy.
//
// # Delete Cascade
//
// [DeleteInstanceMutable] first collects the transitive closure of the target
// (not descending into slot content, which is shared), then purges every
// table that depends on it: props, selections, and the local style sources
// and declarations no instance outside the closure still selects. Tokens are
// never removed. When the target is the only child of a Fragment, the Fragment
// is removed with it.
package tree
