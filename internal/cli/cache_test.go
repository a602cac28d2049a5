package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/studio/pkg/cache"
)

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte(key), cache.TTLRender); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "x"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := clearDir(dir)
	if err != nil {
		t.Fatalf("clearDir: %v", err)
	}
	if n != 4 {
		t.Errorf("clearDir() = %d, want 4", n)
	}
	if _, err := os.Stat(nested); !os.IsNotExist(err) {
		t.Errorf("nested dir still exists: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get(a) hit after clear")
	}
}

func TestClearDirMissing(t *testing.T) {
	n, err := clearDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || n != 0 {
		t.Errorf("clearDir(missing) = %d, %v, want 0, nil", n, err)
	}
}
