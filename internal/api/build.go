package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/cache"
	errs "github.com/matzehuels/studio/pkg/errors"
	"github.com/matzehuels/studio/pkg/render/treeviz"
)

// Response headers describing the served build.
const (
	headerSeq     = "X-Build-Seq"
	headerVersion = "X-Build-Version"
	headerCache   = "X-Cache"
)

type putBuildResponse struct {
	Project string      `json:"project"`
	Seq     uint64      `json:"seq"`
	Version uint64      `json:"version"`
	Stats   build.Stats `json:"stats"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.storage.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaces.Get(r.Context(), chi.URLParam(r, "project"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var data []byte
	ws.Store().View(func(b *build.Build) { data, err = json.Marshal(b) })
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(headerSeq, strconv.FormatUint(ws.Store().Seq(), 10))
	w.Header().Set(headerVersion, strconv.FormatUint(ws.Version(), 10))
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handlePutBuild(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")

	b, err := build.ReadJSON(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidBuild, err, "cannot decode build"))
		return
	}
	if err := b.Validate(); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidBuild, err, "%s", err.Error()))
		return
	}

	ws, err := s.workspaces.Put(r.Context(), project, b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, putBuildResponse{
		Project: project,
		Seq:     ws.Store().Seq(),
		Version: ws.Version(),
		Stats:   b.Stats(),
	})
}

// handleTreeSVG renders the instance tree. Query parameters: root (default
// the first root instance) and detailed (bool).
func (s *Server) handleTreeSVG(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaces.Get(r.Context(), chi.URLParam(r, "project"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	detailed, _ := strconv.ParseBool(q.Get("detailed"))
	root := q.Get("root")

	var (
		data []byte
		dot  string
	)
	ws.Store().View(func(b *build.Build) {
		if root == "" {
			if roots := b.Roots(); len(roots) > 0 {
				root = roots[0]
			}
		}
		if _, ok := b.Instances[root]; !ok {
			err = errs.New(errs.ErrCodeNotFound, "instance %q not found", root)
			return
		}
		if data, err = json.Marshal(b); err != nil {
			return
		}
		dot = treeviz.ToDOT(b, root, treeviz.Options{Detailed: detailed})
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	key := s.keyer.RenderKey(cache.Hash(data), cache.RenderKeyOpts{Format: "svg", RootID: root, Labels: detailed})
	svg, hit, err := cache.Get(ctx, s.cache, cache.RequestBackoff, key)
	if err != nil {
		s.logger.Warn("render cache get", "err", err)
	}
	if hit {
		w.Header().Set(headerCache, "hit")
	} else {
		if svg, err = treeviz.RenderSVG(ctx, dot); err != nil {
			s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "render tree"))
			return
		}
		if err := cache.Set(ctx, s.cache, cache.RequestBackoff, key, svg, cache.TTLRender); err != nil {
			s.logger.Warn("render cache set", "err", err)
		}
		w.Header().Set(headerCache, "miss")
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
