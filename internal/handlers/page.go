package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"dipanshu.dev/internal/content"
	"dipanshu.dev/internal/logger"
	"dipanshu.dev/internal/models"
	"dipanshu.dev/internal/session"
)

// pageData is what index.html renders
type pageData struct {
	Site *models.Site
	View *session.View
}

// PageHandler renders the portfolio page
type PageHandler struct {
	tmpl     *template.Template
	content  *content.Service
	sessions *session.Service
	log      *logger.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(tmpl *template.Template, cs *content.Service, ss *session.Service, log *logger.Logger) *PageHandler {
	return &PageHandler{tmpl: tmpl, content: cs, sessions: ss, log: log}
}

// Index handles GET / - starts a session and renders the page with it
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Start(r.Context())
	if err != nil {
		h.log.Error(err, "failed to start session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", pageData{Site: h.content.Site(), View: view}); err != nil {
		h.log.Error(err, "failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
