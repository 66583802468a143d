package handlers

import (
	"errors"
	"net/http"

	"dipanshu.dev/internal/contact"
	"dipanshu.dev/internal/logger"
	"dipanshu.dev/internal/session"
)

// ViewHandler handles theme and contact form endpoints
type ViewHandler struct {
	sessions *session.Service
	log      *logger.Logger
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(ss *session.Service, log *logger.Logger) *ViewHandler {
	return &ViewHandler{sessions: ss, log: log}
}

// GetSession handles GET /api/session
func (h *ViewHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.View(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ToggleTheme handles POST /api/theme/toggle
func (h *ViewHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.ToggleTheme(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// UpdateFields handles PUT /api/contact/fields
func (h *ViewHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req session.FieldUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := h.sessions.SetFields(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Submit handles POST /api/contact/submit. Validation, relay and
// transport failures all answer 200 with the form in error status; the
// visitor sees one generic message for all three.
func (h *ViewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.Submit(r.Context(), id)
	if err != nil && !isSubmitFailure(err) {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func isSubmitFailure(err error) bool {
	var (
		ve *contact.ValidationError
		re *contact.RelayError
		te *contact.TransportError
	)
	return errors.As(err, &ve) || errors.As(err, &re) || errors.As(err, &te)
}
