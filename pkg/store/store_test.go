package store

import (
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/build/tree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(opts ...Option) *Store {
	b := build.NewWithRoot("root", build.ComponentBody)
	b.Instances["root"].Children = []build.InstanceChild{build.IDChild("box")}
	b.Instances["box"] = &build.Instance{ID: "box", Component: "Box", Children: []build.InstanceChild{}}
	return New(b, opts...)
}

func addChild(id string) func(*Tx) {
	return func(tx *Tx) {
		tx.Build.Instances[id] = &build.Instance{ID: id, Component: "Box", Children: []build.InstanceChild{}}
		root := tx.Build.Instances["root"]
		root.Children = append(root.Children, build.IDChild(id))
	}
}

func TestRunInTransactionCommits(t *testing.T) {
	s := newTestStore()

	var got []Commit
	cancel := s.Subscribe(func(c Commit) { got = append(got, c) })
	defer cancel()

	if !s.RunInTransaction("add", addChild("new")) {
		t.Fatal("RunInTransaction() = false, want true")
	}
	if s.Seq() != 1 {
		t.Errorf("Seq() = %d, want 1", s.Seq())
	}
	if _, ok := s.Snapshot().Instances["new"]; !ok {
		t.Error("committed instance missing from snapshot")
	}
	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	if got[0].Seq != 1 || got[0].Name != "add" || got[0].Kind != KindTransaction {
		t.Errorf("commit = %+v", got[0])
	}
	if _, ok := got[0].Build.Instances["new"]; !ok {
		t.Error("commit build does not contain the new instance")
	}
}

func TestDiscardLeavesNoTrace(t *testing.T) {
	s := newTestStore()

	notified := false
	defer s.Subscribe(func(Commit) { notified = true })()

	ok := s.RunInTransaction("noop", func(tx *Tx) {
		delete(tx.Build.Instances, "box")
		tx.Discard()
	})
	if ok {
		t.Error("RunInTransaction() = true, want false")
	}
	if notified {
		t.Error("subscriber notified for a discarded transaction")
	}
	if s.Seq() != 0 {
		t.Errorf("Seq() = %d, want 0", s.Seq())
	}
	if s.CanUndo() {
		t.Error("CanUndo() = true after a discarded transaction")
	}
	if _, ok := s.Snapshot().Instances["box"]; !ok {
		t.Error("discarded edit leaked into committed state")
	}
}

func TestSubscriberSeesOnlyCommittedState(t *testing.T) {
	s := newTestStore()

	var during int
	defer s.Subscribe(func(c Commit) {
		s.View(func(b *build.Build) { during = len(b.Instances) })
	})()

	s.RunInTransaction("delete", func(tx *Tx) {
		if _, ok := tree.DeleteInstanceMutable(tx.Build, tree.InstanceSelector{"box", "root"}); !ok {
			tx.Discard()
		}
		if got := len(s.state.Instances); got != 2 {
			t.Errorf("committed state during transaction has %d instances, want 2", got)
		}
	})
	if during != 1 {
		t.Errorf("state seen by subscriber has %d instances, want 1", during)
	}
}

func TestUndoRedo(t *testing.T) {
	s := newTestStore()
	s.RunInTransaction("add a", addChild("a"))
	s.RunInTransaction("add b", addChild("b"))

	var kinds []CommitKind
	defer s.Subscribe(func(c Commit) { kinds = append(kinds, c.Kind) })()

	if !s.Undo() {
		t.Fatal("Undo() = false")
	}
	if _, ok := s.Snapshot().Instances["b"]; ok {
		t.Error("b survived undo")
	}
	if !s.CanRedo() {
		t.Error("CanRedo() = false after undo")
	}
	if !s.Redo() {
		t.Fatal("Redo() = false")
	}
	if _, ok := s.Snapshot().Instances["b"]; !ok {
		t.Error("b missing after redo")
	}
	if s.Redo() {
		t.Error("Redo() = true with empty redo stack")
	}

	s.Undo()
	s.RunInTransaction("add c", addChild("c"))
	if s.CanRedo() {
		t.Error("new commit did not clear redo stack")
	}

	want := []CommitKind{KindUndo, KindRedo, KindUndo, KindTransaction}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestHistoryLimit(t *testing.T) {
	s := newTestStore(WithHistoryLimit(2))
	for _, id := range []string{"a", "b", "c"} {
		s.RunInTransaction("add "+id, addChild(id))
	}

	undone := 0
	for s.Undo() {
		undone++
	}
	if undone != 2 {
		t.Errorf("undo steps = %d, want 2", undone)
	}
	if _, ok := s.Snapshot().Instances["a"]; !ok {
		t.Error("oldest commit was undone past the limit")
	}
}

func TestHistoryDisabled(t *testing.T) {
	s := newTestStore(WithHistoryLimit(0))
	s.RunInTransaction("add", addChild("a"))
	if s.CanUndo() {
		t.Error("CanUndo() = true with history disabled")
	}
}

func TestReplace(t *testing.T) {
	s := newTestStore()
	next := build.NewWithRoot("other", build.ComponentBody)

	s.Replace("import", next)
	if _, ok := s.Snapshot().Instances["other"]; !ok {
		t.Error("Replace() did not swap state")
	}
	s.Undo()
	if _, ok := s.Snapshot().Instances["box"]; !ok {
		t.Error("Undo() after Replace() did not restore the previous build")
	}
}

func TestSubscribeCancel(t *testing.T) {
	s := newTestStore()
	calls := 0
	cancel := s.Subscribe(func(Commit) { calls++ })
	s.RunInTransaction("a", addChild("a"))
	cancel()
	s.RunInTransaction("b", addChild("b"))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestConcurrentCommitsNotifyInOrder(t *testing.T) {
	s := newTestStore()

	var mu sync.Mutex
	var seqs []uint64
	defer s.Subscribe(func(c Commit) {
		mu.Lock()
		seqs = append(seqs, c.Seq)
		mu.Unlock()
	})()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RunInTransaction("add", addChild(build.NewID()))
		}()
	}
	wg.Wait()

	if len(seqs) != n {
		t.Fatalf("notifications = %d, want %d", len(seqs), n)
	}
	for i, seq := range seqs {
		if seq != uint64(i+1) {
			t.Fatalf("seqs[%d] = %d, want %d", i, seq, i+1)
		}
	}
	if got := len(s.Snapshot().Instances); got != n+2 {
		t.Errorf("instances = %d, want %d", got, n+2)
	}
}
