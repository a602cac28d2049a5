package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/studio/pkg/asset"
	errs "github.com/matzehuels/studio/pkg/errors"
	"github.com/matzehuels/studio/pkg/storage"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.storage.ListAssets(r.Context(), chi.URLParam(r, "project"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// handleUploadAsset stores the single file of a multipart request and
// records it. The blob is removed again if the record cannot be saved.
func (s *Server) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := chi.URLParam(r, "project")

	r.Body = http.MaxBytesReader(w, r.Body, s.uploader.MaxSize()+maxBodySize)
	a, err := s.uploader.Upload(ctx, project, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.storage.PutAsset(ctx, a); err != nil {
		if derr := s.uploader.Delete(ctx, a.Name); derr != nil {
			s.logger.Warn("discard orphaned asset", "name", a.Name, "err", derr)
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errs.ValidateAssetFilename(name); err != nil {
		s.writeError(w, r, err)
		return
	}

	rc, err := s.uploader.Backend().Open(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Debug("serve asset", "name", name, "err", err)
	}
}

// handleDeleteAsset removes the record first so a failed blob delete
// leaves an orphaned blob rather than a dangling record.
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	if err := errs.ValidateAssetFilename(name); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.storage.DeleteAsset(ctx, chi.URLParam(r, "project"), name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = fmt.Errorf("asset %s: %w", name, asset.ErrNotFound)
		}
		s.writeError(w, r, err)
		return
	}
	if err := s.uploader.Delete(ctx, name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
