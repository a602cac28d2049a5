// Package store wraps a build in a unit of work: every edit runs against a
// private copy that is swapped in whole or not at all, and subscribers hear
// about it only after the swap.
//
// # Transactions
//
//	s := store.New(b)
//	s.RunInTransaction("delete", func(tx *store.Tx) {
//	    if _, ok := tree.DeleteInstanceMutable(tx.Build, selector); !ok {
//	        tx.Discard()
//	    }
//	})
//
// A discarded transaction leaves no trace: no history entry, no sequence bump
// and no notification.
//
// # History
//
// Each commit pushes the previous state onto a bounded undo stack. [Store.Undo]
// and [Store.Redo] swap states and notify subscribers like any other commit.
//
// Store is safe for concurrent use. Commits are serialised and subscribers
// are called in commit order from the committing goroutine.
package store

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/observability"
)

// DefaultHistoryLimit bounds the undo stack.
const DefaultHistoryLimit = 100

// CommitKind tells how a state became current.
type CommitKind string

const (
	KindTransaction CommitKind = "transaction"
	KindUndo        CommitKind = "undo"
	KindRedo        CommitKind = "redo"
	KindReplace     CommitKind = "replace"
)

// Commit describes a state change delivered to subscribers. Build is the
// committed state and must be treated as read-only.
type Commit struct {
	Seq   uint64
	Name  string
	Kind  CommitKind
	Build *build.Build
}

// Tx is the working copy handed to a transaction function.
type Tx struct {
	Build     *build.Build
	discarded bool
}

// Discard drops the transaction; nothing will be committed.
func (tx *Tx) Discard() { tx.discarded = true }

type entry struct {
	name  string
	state *build.Build
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit bounds the undo stack; n <= 0 disables history.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store holds the committed state of one build.
type Store struct {
	mu      sync.Mutex
	state   *build.Build
	seq     uint64
	undo    []entry
	redo    []entry
	limit   int
	pending []Commit

	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[int]func(Commit)
	nextSub  int

	logger *log.Logger
}

// New returns a store whose initial state is b. The store takes ownership
// of b; callers must not modify it afterwards.
func New(b *build.Build, opts ...Option) *Store {
	if b == nil {
		b = build.New()
	}
	s := &Store{
		state:  b,
		limit:  DefaultHistoryLimit,
		subs:   make(map[int]func(Commit)),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seq returns the number of commits so far.
func (s *Store) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Snapshot returns a private copy of the committed state.
func (s *Store) Snapshot() *build.Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View calls fn with the committed state without copying it. fn must not
// modify the build or retain it.
func (s *Store) View(fn func(*build.Build)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// CanUndo reports whether there is a state to go back to.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether an undone state can be restored.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Subscribe registers fn to be called after every commit and returns a
// function that removes it. fn must not start a transaction on the same store
// synchronously.
func (s *Store) Subscribe(fn func(Commit)) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// RunInTransaction runs fn against a private copy of the state and commits
// the copy unless fn calls [Tx.Discard]. It reports whether a commit happened.
func (s *Store) RunInTransaction(name string, fn func(tx *Tx)) bool {
	committed := s.apply(name, fn)
	if committed {
		s.flush()
	}
	return committed
}

func (s *Store) apply(name string, fn func(tx *Tx)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{Build: s.state.Clone()}
	fn(tx)
	if tx.discarded {
		s.logger.Debug("transaction discarded", "name", name)
		return false
	}
	s.pushUndo(entry{name: name, state: s.state})
	s.redo = nil
	s.commitLocked(name, KindTransaction, tx.Build)
	return true
}

// Replace makes b the current state as one undoable commit.
func (s *Store) Replace(name string, b *build.Build) {
	s.mu.Lock()
	s.pushUndo(entry{name: name, state: s.state})
	s.redo = nil
	s.commitLocked(name, KindReplace, b)
	s.mu.Unlock()
	s.flush()
}

// Undo restores the state before the last commit.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		observability.Editor().OnUndo(false, false)
		return false
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, entry{name: last.name, state: s.state})
	s.commitLocked(last.name, KindUndo, last.state)
	s.mu.Unlock()

	observability.Editor().OnUndo(false, true)
	s.flush()
	return true
}

// Redo reapplies the last undone commit.
func (s *Store) Redo() bool {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		observability.Editor().OnUndo(true, false)
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.pushUndo(entry{name: next.name, state: s.state})
	s.commitLocked(next.name, KindRedo, next.state)
	s.mu.Unlock()

	observability.Editor().OnUndo(true, true)
	s.flush()
	return true
}

func (s *Store) pushUndo(e entry) {
	if s.limit <= 0 {
		return
	}
	s.undo = append(s.undo, e)
	if over := len(s.undo) - s.limit; over > 0 {
		s.undo = append(s.undo[:0:0], s.undo[over:]...)
	}
}

func (s *Store) commitLocked(name string, kind CommitKind, next *build.Build) {
	s.state = next
	s.seq++
	s.pending = append(s.pending, Commit{Seq: s.seq, Name: name, Kind: kind, Build: next})
	s.logger.Debug("committed", "name", name, "kind", kind, "seq", s.seq)
	observability.Editor().OnCommit(name, s.seq)
}

// flush delivers pending commits in order. Holding notifyMu across delivery
// keeps concurrent committers from interleaving notifications.
func (s *Store) flush() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(pending) == 0 {
		return
	}

	s.subsMu.Lock()
	subs := make([]func(Commit), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.subsMu.Unlock()

	for _, c := range pending {
		for _, fn := range subs {
			fn(c)
		}
	}
}
