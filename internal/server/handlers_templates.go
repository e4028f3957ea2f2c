package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/invoice-lens/internal/domain/template"
)

// templateRequest is the wire shape for template add/update. Columns arrive
// as the raw comma-separated text the user typed.
type templateRequest struct {
	Name      string `json:"name"`
	Columns   string `json:"columns"`
	ForUpload bool   `json:"forUpload"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("forUpload"); raw != "" {
		forUpload, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "forUpload must be a boolean")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"templates": s.templates.ListForUpload(forUpload)})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"templates": s.templates.List()})
}

func (s *Server) handleAddTemplate(w http.ResponseWriter, r *http.Request) {
	candidate, ok := decodeCandidate(w, r)
	if !ok {
		return
	}
	tpl, err := s.templates.Add(candidate)
	if err != nil {
		respondTemplateError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	candidate, ok := decodeCandidate(w, r)
	if !ok {
		return
	}

	tpl, err := s.templates.Update(id, candidate)
	if errors.Is(err, template.ErrNothingChanged) {
		respondJSON(w, http.StatusOK, map[string]any{"template": tpl, "changed": false})
		return
	}
	if err != nil {
		respondTemplateError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"template": tpl, "changed": true})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.templates.Remove(id); err != nil {
		respondTemplateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeCandidate(w http.ResponseWriter, r *http.Request) (template.Candidate, bool) {
	var body templateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return template.Candidate{}, false
	}
	columns, err := template.ParseColumns(body.Columns)
	if err != nil {
		respondTemplateError(w, err)
		return template.Candidate{}, false
	}
	return template.Candidate{
		Name:      body.Name,
		Columns:   columns,
		ForUpload: body.ForUpload,
	}, true
}

func respondTemplateError(w http.ResponseWriter, err error) {
	var validationErr *template.ValidationError
	var protectedErr *template.ProtectedEntityError
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &protectedErr):
		respondError(w, http.StatusConflict, protectedErr.Error())
	case errors.Is(err, template.ErrNotFound):
		respondError(w, http.StatusNotFound, "template not found")
	default:
		respondError(w, http.StatusInternalServerError, "template operation failed")
	}
}
