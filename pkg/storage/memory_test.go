package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/studio/pkg/asset"
	"github.com/matzehuels/studio/pkg/build"
)

func TestMemoryStoreBuildVersioning(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, _, err := s.LoadBuild(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadBuild(missing) error = %v, want ErrNotFound", err)
	}

	b := build.NewWithRoot("root", build.ComponentBody)
	v, err := s.SaveBuild(ctx, "p1", b, 0)
	if err != nil || v != 1 {
		t.Fatalf("SaveBuild() = %d, %v, want 1, nil", v, err)
	}
	if _, err := s.SaveBuild(ctx, "p1", b, 0); !errors.Is(err, ErrConflict) {
		t.Errorf("SaveBuild(stale) error = %v, want ErrConflict", err)
	}

	// Stored builds do not alias the caller's.
	b.Instances["root"].Label = "changed"
	loaded, version, err := s.LoadBuild(ctx, "p1")
	if err != nil {
		t.Fatalf("LoadBuild() error: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if loaded.Instances["root"].Label != "" {
		t.Error("stored build aliased the saved one")
	}

	if v, err := s.SaveBuild(ctx, "p1", loaded, 1); err != nil || v != 2 {
		t.Errorf("SaveBuild(v1) = %d, %v, want 2, nil", v, err)
	}

	s.SaveBuild(ctx, "a0", build.New(), 0)
	projects, _ := s.ListProjects(ctx)
	if len(projects) != 2 || projects[0].ID != "a0" || projects[1].Version != 2 {
		t.Errorf("ListProjects() = %+v", projects)
	}
	if projects[1].Stats.Instances != 1 {
		t.Errorf("Stats.Instances = %d, want 1", projects[1].Stats.Instances)
	}
}

func TestMemoryStoreAssets(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	s.PutAsset(ctx, &asset.Asset{ID: "1", ProjectID: "p1", Name: "old.png", CreatedAt: now.Add(-time.Hour)})
	s.PutAsset(ctx, &asset.Asset{ID: "2", ProjectID: "p1", Name: "new.png", CreatedAt: now})
	s.PutAsset(ctx, &asset.Asset{ID: "3", ProjectID: "p2", Name: "other.png", CreatedAt: now})

	list, err := s.ListAssets(ctx, "p1")
	if err != nil {
		t.Fatalf("ListAssets() error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "new.png" || list[1].Name != "old.png" {
		t.Errorf("ListAssets() = %+v, want new.png, old.png", list)
	}

	if err := s.DeleteAsset(ctx, "p1", "old.png"); err != nil {
		t.Fatalf("DeleteAsset() error: %v", err)
	}
	if err := s.DeleteAsset(ctx, "p1", "old.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAsset(missing) error = %v, want ErrNotFound", err)
	}
	if list, _ := s.ListAssets(ctx, "nobody"); len(list) != 0 {
		t.Errorf("ListAssets(unknown) = %+v, want empty", list)
	}
}
