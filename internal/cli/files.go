package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/build/tree"
	errs "github.com/matzehuels/studio/pkg/errors"
)

// loadBuild reads a build file without checking references.
func loadBuild(path string) (*build.Build, error) {
	b, err := build.ImportJSON(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "build file %s not found", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidBuild, err, "cannot read %s", path)
	}
	return b, nil
}

// loadValidBuild reads a build file and rejects broken references.
func loadValidBuild(path string) (*build.Build, error) {
	b, err := loadBuild(path)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidBuild, err, "%s is not a valid build (run: studio validate %s)", path, path)
	}
	return b, nil
}

// saveBuild replaces path with b through a temporary file in the same
// directory.
func saveBuild(path string, b *build.Build) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".studio-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := build.WriteJSON(b, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// selectorFor resolves an instance id to its selector in b.
func selectorFor(b *build.Build, id string) (tree.InstanceSelector, error) {
	sel := tree.SelectorOf(b.Instances, id)
	if sel == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "instance %q not found", id)
	}
	return sel, nil
}

// defaultRoot returns the first root instance of b or "".
func defaultRoot(b *build.Build) string {
	if roots := b.Roots(); len(roots) > 0 {
		return roots[0]
	}
	return ""
}
