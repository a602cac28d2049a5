package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/storage"
	"github.com/matzehuels/studio/pkg/store"
)

// persistTimeout bounds one save of a committed build.
const persistTimeout = 10 * time.Second

// Workspace is an open project: its store and the storage version the
// store's current state was saved as.
type Workspace struct {
	ID    string
	store *store.Store

	mu      sync.Mutex
	version uint64
	stale   bool
	saveErr error

	cancel func()
}

// Store returns the project's transactional store.
func (w *Workspace) Store() *store.Store { return w.store }

// Version returns the storage version of the last saved commit.
func (w *Workspace) Version() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// SaveError returns the error of the last save, or nil when it succeeded.
func (w *Workspace) SaveError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveErr
}

// Workspaces opens projects on demand and keeps them in memory.
type Workspaces struct {
	storage   storage.Store
	publisher Publisher
	logger    *log.Logger
	history   int

	mu   sync.Mutex
	open map[string]*Workspace
}

// NewWorkspaces returns a manager over st. publisher may be nil.
func NewWorkspaces(st storage.Store, publisher Publisher, historyLimit int, logger *log.Logger) *Workspaces {
	if logger == nil {
		logger = log.Default()
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Workspaces{
		storage:   st,
		publisher: publisher,
		logger:    logger,
		history:   historyLimit,
		open:      make(map[string]*Workspace),
	}
}

// Get returns the open workspace of projectID, loading it from storage on
// first use. It returns storage.ErrNotFound for unknown projects.
func (m *Workspaces) Get(ctx context.Context, projectID string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.open[projectID]; ok && !w.isStale() {
		return w, nil
	}
	b, version, err := m.storage.LoadBuild(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return m.openLocked(projectID, b, version), nil
}

// Put replaces the build of projectID, creating the project if needed.
// An open workspace records the replacement as an undoable commit.
func (m *Workspaces) Put(ctx context.Context, projectID string, b *build.Build) (*Workspace, error) {
	w, err := m.Get(ctx, projectID)
	if err == nil {
		w.store.Replace("replace", b)
		return w, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	version, err := m.storage.SaveBuild(ctx, projectID, b, 0)
	if err != nil {
		return nil, fmt.Errorf("create project %s: %w", projectID, err)
	}
	m.logger.Info("project created", "project", projectID)
	return m.openLocked(projectID, b, version), nil
}

func (m *Workspaces) openLocked(projectID string, b *build.Build, version uint64) *Workspace {
	if old, ok := m.open[projectID]; ok {
		old.cancel()
	}
	w := &Workspace{
		ID:      projectID,
		store:   store.New(b, store.WithHistoryLimit(m.history), store.WithLogger(m.logger)),
		version: version,
	}
	w.cancel = w.store.Subscribe(func(c store.Commit) { m.persist(w, c) })
	m.open[projectID] = w
	m.logger.Debug("workspace opened", "project", projectID, "version", version)
	return w
}

// persist saves a committed build and announces it. A version conflict means
// another writer changed the project; the workspace is marked stale so the
// next request reloads it from storage.
func (m *Workspaces) persist(w *Workspace, c store.Commit) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	w.mu.Lock()
	version, err := m.storage.SaveBuild(ctx, w.ID, c.Build, w.version)
	w.saveErr = err
	if err != nil {
		w.stale = errors.Is(err, storage.ErrConflict)
		w.mu.Unlock()
		m.logger.Error("save build", "project", w.ID, "seq", c.Seq, "err", err)
		return
	}
	w.version = version
	w.mu.Unlock()

	m.logger.Info("committed", "project", w.ID, "seq", c.Seq, "name", c.Name, "version", version)

	ev := CommitEvent{Project: w.ID, Seq: c.Seq, Name: c.Name, Kind: string(c.Kind), Version: version}
	if err := m.publisher.Publish(ctx, ev); err != nil {
		m.logger.Warn("publish commit", "project", w.ID, "seq", c.Seq, "err", err)
	}
}

func (w *Workspace) isStale() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stale
}

// Forget drops the open workspace of projectID, if any.
func (m *Workspaces) Forget(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.open[projectID]; ok {
		w.cancel()
		delete(m.open, projectID)
	}
}

// Len returns the number of open workspaces.
func (m *Workspaces) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}
