package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dipanshu.dev/internal/content"
)

// ContentHandler serves the static site content as JSON
type ContentHandler struct {
	content *content.Service
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(cs *content.Service) *ContentHandler {
	return &ContentHandler{content: cs}
}

// ListProjects handles GET /api/projects
func (h *ContentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.content.Projects())
}

// GetProject handles GET /api/projects/{id}
func (h *ContentHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	project, err := h.content.Project(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// ListTech handles GET /api/tech
func (h *ContentHandler) ListTech(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.content.TechStack())
}

// ListTracks handles GET /api/tracks
func (h *ContentHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.content.Tracks())
}
