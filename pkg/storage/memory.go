package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/studio/pkg/asset"
	"github.com/matzehuels/studio/pkg/build"
)

type memoryProject struct {
	build   *build.Build
	version uint64
	updated time.Time
}

// MemoryStore keeps builds and asset records in memory. Builds are cloned on
// the way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*memoryProject
	assets   map[string]map[string]asset.Asset // project -> name -> record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*memoryProject),
		assets:   make(map[string]map[string]asset.Asset),
	}
}

// LoadBuild returns a copy of the project's build and its version.
func (s *MemoryStore) LoadBuild(ctx context.Context, projectID string) (*build.Build, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, 0, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return p.build.Clone(), p.version, nil
}

// SaveBuild stores a copy of b when the project is still at version
// expected, zero meaning it must not exist yet, and returns the new version.
// Otherwise it returns the current version with ErrConflict.
func (s *MemoryStore) SaveBuild(ctx context.Context, projectID string, b *build.Build, expected uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current uint64
	if p, ok := s.projects[projectID]; ok {
		current = p.version
	}
	if current != expected {
		return current, fmt.Errorf("project %s at version %d, not %d: %w", projectID, current, expected, ErrConflict)
	}
	s.projects[projectID] = &memoryProject{build: b.Clone(), version: current + 1, updated: time.Now().UTC()}
	return current + 1, nil
}

// ListProjects returns every project sorted by id.
func (s *MemoryStore) ListProjects(ctx context.Context) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Project, 0, len(s.projects))
	for _, id := range slices.Sorted(maps.Keys(s.projects)) {
		p := s.projects[id]
		out = append(out, Project{ID: id, Version: p.version, UpdatedAt: p.updated, Stats: p.build.Stats()})
	}
	return out, nil
}

// PutAsset records a, replacing any record with the same project and name.
func (s *MemoryStore) PutAsset(ctx context.Context, a *asset.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.assets[a.ProjectID]
	if !ok {
		byName = make(map[string]asset.Asset)
		s.assets[a.ProjectID] = byName
	}
	byName[a.Name] = *a
	return nil
}

// ListAssets returns the asset records of a project, newest first.
func (s *MemoryStore) ListAssets(ctx context.Context, projectID string) ([]asset.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Collect(maps.Values(s.assets[projectID]))
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// DeleteAsset removes a record. Unknown names return ErrNotFound.
func (s *MemoryStore) DeleteAsset(ctx context.Context, projectID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[projectID][name]; !ok {
		return fmt.Errorf("asset %s: %w", name, ErrNotFound)
	}
	delete(s.assets[projectID], name)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
