package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/studio/pkg/build/tree"
	"github.com/matzehuels/studio/pkg/editor"
	errs "github.com/matzehuels/studio/pkg/errors"
	"github.com/matzehuels/studio/pkg/session"
)

// opRequest is the union of the bodies accepted by session operations.
// Each operation reads only the fields it needs.
type opRequest struct {
	Component   string                `json:"component,omitempty"`
	Fragment    *tree.Fragment        `json:"fragment,omitempty"`
	Target      *tree.DropTarget      `json:"target,omitempty"`
	Selector    tree.InstanceSelector `json:"selector,omitempty"`
	Instance    tree.InstanceSelector `json:"instance,omitempty"`
	Clear       bool                  `json:"clear,omitempty"`
	StyleSource *string               `json:"styleSource,omitempty"`
	TextEditing tree.InstanceSelector `json:"textEditing,omitempty"`
}

// opResponse reports the outcome of a session operation. Applied is false
// when a precondition did not hold and nothing changed. SaveError is set when
// the commit could not be saved; Stale then tells whether the workspace will
// be reloaded from storage, discarding the commit.
type opResponse struct {
	Applied   bool             `json:"applied"`
	Seq       uint64           `json:"seq"`
	Selection editor.Selection `json:"selection"`
	Stale     bool             `json:"stale,omitempty"`
	SaveError string           `json:"saveError,omitempty"`
}

type sessionResponse struct {
	*session.Session
	Seq uint64 `json:"seq"`
}

// sessionOpFunc performs one editor operation.
type sessionOpFunc func(ed *editor.Session, req opRequest) (bool, error)

func opInsert(ed *editor.Session, req opRequest) (bool, error) {
	if req.Component == "" || req.Target == nil {
		return false, errs.New(errs.ErrCodeInvalidInput, "insert needs component and target")
	}
	return ed.InsertNewComponentInstance(req.Component, *req.Target), nil
}

func opPaste(ed *editor.Session, req opRequest) (bool, error) {
	if req.Fragment == nil || req.Target == nil {
		return false, errs.New(errs.ErrCodeInvalidInput, "paste needs fragment and target")
	}
	if err := tree.CheckFragment(ed.Store().Snapshot(), *req.Fragment); err != nil {
		return false, errs.Wrap(errs.ErrCodeInvalidBuild, err, "%s", err.Error())
	}
	return ed.InsertInstances(*req.Fragment, *req.Target), nil
}

func opDuplicate(ed *editor.Session, req opRequest) (bool, error) {
	sel, err := selectorOrSelection(ed, req.Selector)
	if err != nil || sel == nil {
		return false, err
	}
	return ed.DuplicateInstance(sel), nil
}

func opReparent(ed *editor.Session, req opRequest) (bool, error) {
	if req.Target == nil {
		return false, errs.New(errs.ErrCodeInvalidInput, "reparent needs target")
	}
	sel, err := selectorOrSelection(ed, req.Selector)
	if err != nil || sel == nil {
		return false, err
	}
	return ed.ReparentInstance(sel, *req.Target), nil
}

func opDelete(ed *editor.Session, req opRequest) (bool, error) {
	if req.Selector == nil {
		return ed.DeleteSelectedInstance(), nil
	}
	if err := errs.ValidateSelector(req.Selector); err != nil {
		return false, err
	}
	return ed.DeleteInstance(req.Selector), nil
}

// opSelect changes any of the selection fields present in the body. Clear
// drops the instance selection before anything else is applied.
func opSelect(ed *editor.Session, req opRequest) (bool, error) {
	applied := false
	if req.Clear {
		applied = ed.Select(nil)
	}
	if req.Instance != nil {
		if err := errs.ValidateSelector(req.Instance); err != nil {
			return false, err
		}
		applied = ed.Select(req.Instance) || applied
	}
	if req.StyleSource != nil {
		applied = ed.SelectStyleSource(*req.StyleSource) || applied
	}
	if req.TextEditing != nil {
		if err := errs.ValidateSelector(req.TextEditing); err != nil {
			return false, err
		}
		applied = ed.StartTextEditing(req.TextEditing) || applied
	}
	return applied, nil
}

func opEscape(ed *editor.Session, _ opRequest) (bool, error) { return ed.EscapeSelection(), nil }
func opUndo(ed *editor.Session, _ opRequest) (bool, error)   { return ed.Undo(), nil }
func opRedo(ed *editor.Session, _ opRequest) (bool, error)   { return ed.Redo(), nil }

func selectorOrSelection(ed *editor.Session, sel tree.InstanceSelector) (tree.InstanceSelector, error) {
	if sel == nil {
		return ed.Selection().Instance, nil
	}
	if err := errs.ValidateSelector(sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// sessionOp wraps op with session load, editor setup and session save.
func (s *Server) sessionOp(op sessionOpFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req opRequest
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		sess, err := s.sessions.Get(ctx, chi.URLParam(r, "session"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ws, err := s.workspaces.Get(ctx, sess.ProjectID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ed := editor.New(ws.Store(),
			editor.WithMetas(s.metas),
			editor.WithLogger(s.logger),
			editor.WithSelection(sess.Selection),
		)
		applied, err := op(ed, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		sess.Selection = ed.Selection()
		sess.Extend(s.sessionTTL)
		if err := s.sessions.Set(ctx, sess); err != nil {
			s.writeError(w, r, err)
			return
		}
		resp := opResponse{
			Applied:   applied,
			Seq:       ws.Store().Seq(),
			Selection: sess.Selection,
		}
		if applied {
			if err := ws.SaveError(); err != nil {
				resp.SaveError = err.Error()
				resp.Stale = ws.isStale()
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, err := s.workspaces.Get(ctx, chi.URLParam(r, "project"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(ws.ID, s.sessionTTL)
	if err := s.sessions.Set(ctx, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("session created", "session", sess.ID, "project", ws.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess, Seq: ws.Store().Seq()})
}

// handleGetSession returns the session with its selection repaired against
// the current build.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := s.sessions.Get(ctx, chi.URLParam(r, "session"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ws, err := s.workspaces.Get(ctx, sess.ProjectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ed := editor.New(ws.Store(), editor.WithSelection(sess.Selection))
	sess.Selection = ed.Selection()
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Seq: ws.Store().Seq()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "session")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
