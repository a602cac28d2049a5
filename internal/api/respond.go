package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/matzehuels/studio/pkg/asset"
	"github.com/matzehuels/studio/pkg/build"
	errs "github.com/matzehuels/studio/pkg/errors"
	"github.com/matzehuels/studio/pkg/session"
	"github.com/matzehuels/studio/pkg/storage"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code"`
}

// classify maps err to an HTTP status and error code.
func classify(err error) (int, errs.Code) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, errs.ErrCodeProjectNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, errs.ErrCodeConflict
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errs.ErrCodeSessionNotFound
	case errors.Is(err, session.ErrExpired):
		return http.StatusGone, errs.ErrCodeSessionExpired
	case errors.Is(err, asset.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, errs.ErrCodeAssetTooLarge
	case errors.Is(err, asset.ErrNotFound):
		return http.StatusNotFound, errs.ErrCodeAssetNotFound
	case errors.Is(err, asset.ErrNoFile), errors.Is(err, asset.ErrEmptyFile),
		errors.Is(err, asset.ErrUnsupportedType), errors.Is(err, asset.ErrInvalidID):
		return http.StatusBadRequest, errs.ErrCodeInvalidAsset
	case errors.Is(err, build.ErrUnknownInstance), errors.Is(err, build.ErrUnknownStyleSource),
		errors.Is(err, build.ErrUnknownBreakpoint), errors.Is(err, build.ErrMultipleParents),
		errors.Is(err, build.ErrKeyMismatch):
		return http.StatusUnprocessableEntity, errs.ErrCodeInvalidBuild
	}

	switch code := errs.GetCode(err); code {
	case "":
		return http.StatusInternalServerError, errs.ErrCodeInternal
	case errs.ErrCodeNotFound, errs.ErrCodeProjectNotFound, errs.ErrCodeAssetNotFound,
		errs.ErrCodeFileNotFound, errs.ErrCodeSessionNotFound:
		return http.StatusNotFound, code
	case errs.ErrCodeConflict:
		return http.StatusConflict, code
	case errs.ErrCodeSessionExpired:
		return http.StatusGone, code
	case errs.ErrCodeAssetTooLarge:
		return http.StatusRequestEntityTooLarge, code
	case errs.ErrCodeInvalidBuild:
		return http.StatusUnprocessableEntity, code
	case errs.ErrCodeNetwork, errs.ErrCodeTimeout:
		return http.StatusBadGateway, code
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented, code
	case errs.ErrCodeInternal:
		return http.StatusInternalServerError, code
	default:
		return http.StatusBadRequest, code
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := errs.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		if code == errs.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON request body into v. An empty body leaves v unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
