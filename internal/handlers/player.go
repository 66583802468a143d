package handlers

import (
	"net/http"

	"dipanshu.dev/internal/logger"
	"dipanshu.dev/internal/session"
)

// PlayerHandler handles the audio player endpoints
type PlayerHandler struct {
	sessions *session.Service
	log      *logger.Logger
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(ss *session.Service, log *logger.Logger) *PlayerHandler {
	return &PlayerHandler{sessions: ss, log: log}
}

// Select handles POST /api/player/select
func (h *PlayerHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		Index *int `json:"index"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Index == nil {
		respondError(w, http.StatusBadRequest, "index is required")
		return
	}

	view, err := h.sessions.SelectTrack(r.Context(), id, *req.Index)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Ended handles POST /api/player/ended
func (h *PlayerHandler) Ended(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.TrackEnded(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Volume handles POST /api/player/volume
func (h *PlayerHandler) Volume(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		Volume *float64 `json:"volume"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Volume == nil {
		respondError(w, http.StatusBadRequest, "volume is required")
		return
	}

	view, err := h.sessions.SetVolume(r.Context(), id, *req.Volume)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Rejected handles POST /api/player/rejected - the browser refused to play
func (h *PlayerHandler) Rejected(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.PlaybackRejected(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
