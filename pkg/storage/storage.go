// Package storage persists project builds and asset records.
//
// Builds are versioned: every save states the version it was based on and
// fails with [ErrConflict] when another writer got there first. Version 0
// means the project does not exist yet.
//
// Implementations:
//   - [MemoryStore]: in-process, for tests and single-node development
//   - [mongo.Store]: MongoDB, for production
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/studio/pkg/asset"
	"github.com/matzehuels/studio/pkg/build"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a project or asset does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a save was based on a stale version.
	ErrConflict = errors.New("version conflict")
)

// Project summarises a stored build.
type Project struct {
	ID        string      `json:"id" bson:"_id"`
	Version   uint64      `json:"version" bson:"version"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updated_at"`
	Stats     build.Stats `json:"stats" bson:"stats"`
}

// Store persists builds and asset records.
type Store interface {
	// LoadBuild returns the build of projectID and its version.
	LoadBuild(ctx context.Context, projectID string) (*build.Build, uint64, error)

	// SaveBuild stores b if the stored version equals expected and returns
	// the new version. expected 0 creates the project.
	SaveBuild(ctx context.Context, projectID string, b *build.Build, expected uint64) (uint64, error)

	// ListProjects returns every project sorted by id.
	ListProjects(ctx context.Context) ([]Project, error)

	// PutAsset stores or replaces an asset record.
	PutAsset(ctx context.Context, a *asset.Asset) error

	// ListAssets returns the assets of a project, newest first.
	ListAssets(ctx context.Context, projectID string) ([]asset.Asset, error)

	// DeleteAsset removes the asset record with the given name.
	DeleteAsset(ctx context.Context, projectID, name string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
