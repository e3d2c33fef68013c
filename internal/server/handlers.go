package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

type templateResponse struct {
	Template template.Template `json:"template"`
}

type listResponse struct {
	Templates []template.Template `json:"templates"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := s.repo.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ts == nil {
		ts = []template.Template{}
	}
	writeJSON(w, http.StatusOK, listResponse{Templates: ts})
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var d template.Draft
	if !s.decode(w, r, &d) {
		return
	}
	t, err := s.repo.Create(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateResponse{Template: t})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponse{Template: t})
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var p template.Patch
	if !s.decode(w, r, &p) {
		return
	}
	t, err := s.repo.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponse{Template: t})
}

func (s *Server) handleArchiveTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Archive(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
		}
		s.writeError(w, r, err)
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	msg := errors.UserMessage(err)
	if code == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// statusFor maps an error code to its HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidName,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidPosition:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeTemplateNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
