// Package editor holds the selection state of one editing session and the
// operations that edit a build through it.
//
// A [Session] wraps a [store.Store]. Every tree edit runs as one transaction:
// the build change and the resulting selection are decided together, and the
// selection is only updated after the store commits. Operations whose
// preconditions do not hold are silent no-ops and return false.
//
//	s := editor.New(st)
//	s.Select(tree.InstanceSelector{"box", "root"})
//	s.DeleteSelectedInstance() // selection becomes [root]
//
// The session is safe for concurrent use, though edits from one user are
// expected to arrive one at a time.
package editor
