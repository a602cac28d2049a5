package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/studio/pkg/asset"
	"github.com/matzehuels/studio/pkg/build/tree"
	"github.com/matzehuels/studio/pkg/cache"
	"github.com/matzehuels/studio/pkg/session"
	"github.com/matzehuels/studio/pkg/storage"
)

// maxBodySize bounds JSON request bodies. Builds can be large.
const maxBodySize = 32 << 20

// shutdownTimeout bounds graceful shutdown in [Server.ListenAndServe].
const shutdownTimeout = 10 * time.Second

// Options configures a Server. Storage, Sessions and Uploader are required.
type Options struct {
	Storage  storage.Store
	Sessions session.Store
	Uploader *asset.Uploader

	// Cache stores rendered trees. Nil disables caching.
	Cache cache.Cache
	// Keyer derives render cache keys. Nil uses cache.NewDefaultKeyer.
	Keyer cache.Keyer
	// Publisher announces commits. Nil disables announcements.
	Publisher Publisher

	Metas        tree.Metas
	SessionTTL   time.Duration
	HistoryLimit int
	Logger       *log.Logger
}

// Server is the HTTP API.
type Server struct {
	workspaces *Workspaces
	storage    storage.Store
	sessions   session.Store
	uploader   *asset.Uploader
	cache      cache.Cache
	keyer      cache.Keyer
	metas      tree.Metas
	sessionTTL time.Duration
	logger     *log.Logger

	router chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Metas == nil {
		opts.Metas = tree.DefaultMetas()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}

	s := &Server{
		workspaces: NewWorkspaces(opts.Storage, opts.Publisher, opts.HistoryLimit, opts.Logger),
		storage:    opts.Storage,
		sessions:   opts.Sessions,
		uploader:   opts.Uploader,
		cache:      cache.Instrumented(opts.Cache, "render"),
		keyer:      opts.Keyer,
		metas:      opts.Metas,
		sessionTTL: opts.SessionTTL,
		logger:     opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Workspaces returns the open-project manager.
func (s *Server) Workspaces() *Workspaces { return s.workspaces }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Get("/projects", s.handleListProjects)

	r.Route("/projects/{project}", func(r chi.Router) {
		r.Use(s.validProject)
		r.Get("/build", s.handleGetBuild)
		r.Put("/build", s.handlePutBuild)
		r.Get("/tree.svg", s.handleTreeSVG)
		r.Post("/sessions", s.handleCreateSession)

		r.Get("/assets", s.handleListAssets)
		r.Post("/assets", s.handleUploadAsset)
		r.Get("/assets/{name}", s.handleGetAsset)
		r.Delete("/assets/{name}", s.handleDeleteAsset)
	})

	r.Route("/sessions/{session}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Post("/insert", s.sessionOp(opInsert))
		r.Post("/paste", s.sessionOp(opPaste))
		r.Post("/duplicate", s.sessionOp(opDuplicate))
		r.Post("/reparent", s.sessionOp(opReparent))
		r.Post("/delete", s.sessionOp(opDelete))
		r.Post("/select", s.sessionOp(opSelect))
		r.Post("/escape", s.sessionOp(opEscape))
		r.Post("/undo", s.sessionOp(opUndo))
		r.Post("/redo", s.sessionOp(opRedo))
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "workspaces": s.workspaces.Len()})
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
