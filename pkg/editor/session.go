package editor

import (
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/build/tree"
	"github.com/matzehuels/studio/pkg/observability"
	"github.com/matzehuels/studio/pkg/store"
)

// Operation names reported to observability hooks and used as commit names.
const (
	OpInsertComponent = "insert-component"
	OpInsertInstances = "insert-instances"
	OpDuplicate       = "duplicate"
	OpReparent        = "reparent"
	OpDelete          = "delete"
	OpEscape          = "escape"
	OpSelect          = "select"
	OpUndo            = "undo"
	OpRedo            = "redo"
)

// Session is one user's editing context over a shared store.
type Session struct {
	store  *store.Store
	metas  tree.Metas
	logger *log.Logger

	mu  sync.Mutex
	sel Selection
}

// Option configures a Session.
type Option func(*Session)

// WithMetas replaces the component registry used for new instances.
func WithMetas(m tree.Metas) Option {
	return func(s *Session) { s.metas = m }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSelection restores a previously saved selection. Parts that no longer
// resolve against the store are dropped.
func WithSelection(sel Selection) Option {
	return func(s *Session) { s.sel = sel.Clone() }
}

// New returns a session editing st.
func New(st *store.Store, opts ...Option) *Session {
	s := &Session{
		store:  st,
		metas:  tree.DefaultMetas(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	st.View(func(b *build.Build) { s.sel = reconcile(b, s.sel) })
	return s
}

// Store returns the underlying store.
func (s *Session) Store() *store.Store { return s.store }

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Clone()
}

func (s *Session) report(op string, applied bool, start time.Time) bool {
	observability.Editor().OnMutation(op, applied, time.Since(start))
	if applied {
		s.logger.Debug("edit applied", "op", op)
	} else {
		s.logger.Debug("edit skipped", "op", op)
	}
	return applied
}

// InsertNewComponentInstance creates an instance of component, with its
// preset styles on the base breakpoint, and inserts it at target. Nothing
// happens when the build has no breakpoints.
func (s *Session) InsertNewComponentInstance(component string, target tree.DropTarget) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var rootID string
	ok := s.store.RunInTransaction(OpInsertComponent, func(tx *store.Tx) {
		base := tx.Build.Breakpoints.Base()
		if base == nil {
			tx.Discard()
			return
		}
		f := tree.CreateComponentInstance(component, base.ID, s.metas)
		id, inserted := tree.InsertFragmentMutable(tx.Build, f, target)
		if !inserted {
			tx.Discard()
			return
		}
		rootID = id
	})
	if ok {
		s.selectInserted(rootID, target)
	}
	return s.report(OpInsertComponent, ok, start)
}

// InsertInstances pastes a fresh-id copy of f at target and selects it.
func (s *Session) InsertInstances(f tree.Fragment, target tree.DropTarget) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	rootID, ok := s.insert(OpInsertInstances, f, target)
	if ok {
		s.selectInserted(rootID, target)
	}
	return s.report(OpInsertInstances, ok, start)
}

func (s *Session) insert(name string, f tree.Fragment, target tree.DropTarget) (string, bool) {
	var rootID string
	ok := s.store.RunInTransaction(name, func(tx *store.Tx) {
		id, inserted := tree.InsertFragmentMutable(tx.Build, f, target)
		if !inserted {
			tx.Discard()
			return
		}
		rootID = id
	})
	return rootID, ok
}

func (s *Session) selectInserted(rootID string, target tree.DropTarget) {
	s.sel = Selection{Instance: target.ParentSelector.Child(rootID)}
}

// DuplicateInstance inserts a copy of the instance addressed by selector
// right after it and selects the copy. Roots cannot be duplicated.
func (s *Session) DuplicateInstance(selector tree.InstanceSelector) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(selector) < 2 {
		return s.report(OpDuplicate, false, start)
	}
	parentSelector := slices.Clone(selector[1:])
	var rootID string
	ok := s.store.RunInTransaction(OpDuplicate, func(tx *store.Tx) {
		parent, found := tx.Build.Instances[selector.Parent()]
		if !found {
			tx.Discard()
			return
		}
		index := parent.ChildIndex(selector.Target())
		f, found := tree.ExtractFragment(tx.Build, selector.Target())
		if index < 0 || !found {
			tx.Discard()
			return
		}
		target := tree.DropTarget{ParentSelector: parentSelector, Position: index + 1}
		id, inserted := tree.InsertFragmentMutable(tx.Build, f, target)
		if !inserted {
			tx.Discard()
			return
		}
		rootID = id
	})
	if ok {
		s.sel = Selection{Instance: parentSelector.Child(rootID)}
	}
	return s.report(OpDuplicate, ok, start)
}

// ReparentInstance moves the instance addressed by selector to target and
// selects it at its new place. The style source selection is cleared.
func (s *Session) ReparentInstance(selector tree.InstanceSelector, target tree.DropTarget) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.store.RunInTransaction(OpReparent, func(tx *store.Tx) {
		if !tree.ReparentInstanceMutable(tx.Build.Instances, selector, target) {
			tx.Discard()
		}
	})
	if ok {
		moved := selector.Target()
		s.sel.Instance = target.ParentSelector.Child(moved)
		s.sel.StyleSource = ""
		if s.sel.TextEditing.Contains(moved) {
			s.sel.TextEditing = nil
		}
	}
	return s.report(OpReparent, ok, start)
}

// DeleteInstance removes the instance addressed by selector and everything
// it owns, then selects the instance it was removed from. When the deletion
// collapsed a single-child Fragment the selection moves to the Fragment's
// parent. Roots are never deleted.
func (s *Session) DeleteInstance(selector tree.InstanceSelector) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.deleteLocked(selector)
	return s.report(OpDelete, ok, start)
}

func (s *Session) deleteLocked(selector tree.InstanceSelector) bool {
	var res tree.DeleteResult
	ok := s.store.RunInTransaction(OpDelete, func(tx *store.Tx) {
		r, deleted := tree.DeleteInstanceMutable(tx.Build, selector)
		if !deleted {
			tx.Discard()
			return
		}
		res = r
	})
	if !ok {
		return false
	}

	s.sel.Instance = tree.GetAncestorInstanceSelector(selector, res.ParentID)
	s.sel.StyleSource = ""
	for _, id := range s.sel.TextEditing {
		if res.Instances.Has(id) {
			s.sel.TextEditing = nil
			break
		}
	}
	return true
}

// DeleteSelectedInstance deletes the selected instance. Nothing happens
// without a selection or when the root is selected.
func (s *Session) DeleteSelectedInstance() bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sel.Instance) == 0 || s.sel.Instance.IsRoot() {
		return s.report(OpDelete, false, start)
	}
	ok := s.deleteLocked(slices.Clone(s.sel.Instance))
	return s.report(OpDelete, ok, start)
}

// EscapeSelection leaves text editing if active, otherwise clears the
// selection. It reports false when there was nothing to escape from.
func (s *Session) EscapeSelection() bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(s.sel.TextEditing) > 0:
		s.sel.TextEditing = nil
	case len(s.sel.Instance) > 0:
		s.sel = Selection{}
	default:
		return s.report(OpEscape, false, start)
	}
	return s.report(OpEscape, true, start)
}

// Select points the selection at selector, or clears it for an empty
// selector. Text editing stops unless it is the same instance. A selector
// that does not resolve is ignored.
func (s *Session) Select(selector tree.InstanceSelector) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(selector) == 0 {
		s.sel = Selection{}
		return s.report(OpSelect, true, start)
	}
	ok := s.resolves(selector)
	if ok {
		next := Selection{Instance: slices.Clone(selector)}
		if s.sel.TextEditing.Equal(selector) {
			next.TextEditing = slices.Clone(selector)
		}
		s.sel = next
	}
	return s.report(OpSelect, ok, start)
}

// SelectStyleSource picks one of the style sources the selected instance
// uses. An empty id clears the pick.
func (s *Session) SelectStyleSource(id string) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.sel.StyleSource = ""
		return s.report(OpSelect, true, start)
	}
	ok := false
	if len(s.sel.Instance) > 0 {
		s.store.View(func(b *build.Build) { ok = selects(b, s.sel.Instance.Target(), id) })
	}
	if ok {
		s.sel.StyleSource = id
	}
	return s.report(OpSelect, ok, start)
}

// StartTextEditing selects the instance and enters inline text editing.
func (s *Session) StartTextEditing(selector tree.InstanceSelector) bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.resolves(selector)
	if ok {
		s.sel = Selection{Instance: slices.Clone(selector), TextEditing: slices.Clone(selector)}
	}
	return s.report(OpSelect, ok, start)
}

// Undo reverts the last commit on the store and repairs the selection.
func (s *Session) Undo() bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.store.Undo()
	if ok {
		s.reconcileLocked()
	}
	return s.report(OpUndo, ok, start)
}

// Redo reapplies the last undone commit and repairs the selection.
func (s *Session) Redo() bool {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.store.Redo()
	if ok {
		s.reconcileLocked()
	}
	return s.report(OpRedo, ok, start)
}

// Refresh repairs the selection after another session changed the build.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
}

func (s *Session) reconcileLocked() {
	s.store.View(func(b *build.Build) { s.sel = reconcile(b, s.sel) })
}

func (s *Session) resolves(selector tree.InstanceSelector) bool {
	ok := false
	s.store.View(func(b *build.Build) { ok = Resolves(b, selector) })
	return ok
}
