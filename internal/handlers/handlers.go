package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dipanshu.dev/internal/config"
	"dipanshu.dev/internal/contact"
	"dipanshu.dev/internal/content"
	"dipanshu.dev/internal/logger"
	"dipanshu.dev/internal/middleware"
	"dipanshu.dev/internal/playback"
	"dipanshu.dev/internal/session"
	"dipanshu.dev/web"
)

// SessionHeader carries the page-load session ID on API calls
const SessionHeader = "X-Session-ID"

// Dependencies are the services the routes are built on
type Dependencies struct {
	Content  *content.Service
	Sessions *session.Service
	Log      *logger.Logger
	Limiter  *middleware.RateLimiter
}

// SetupRoutes configures all routes and returns the router
func SetupRoutes(cfg *config.Config, deps Dependencies) (http.Handler, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	if deps.Limiter == nil {
		deps.Limiter = NewContactLimiter(cfg)
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logger(deps.Log))

	// Initialize handlers
	pageHandler := NewPageHandler(tmpl, deps.Content, deps.Sessions, deps.Log)
	contentHandler := NewContentHandler(deps.Content)
	viewHandler := NewViewHandler(deps.Sessions, deps.Log)
	playerHandler := NewPlayerHandler(deps.Sessions, deps.Log)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// View state of the current page load
		r.Get("/session", viewHandler.GetSession)
		r.Post("/theme/toggle", viewHandler.ToggleTheme)
		r.Put("/contact/fields", viewHandler.UpdateFields)
		r.With(deps.Limiter.Handler).Post("/contact/submit", viewHandler.Submit)

		// Player
		r.Post("/player/select", playerHandler.Select)
		r.Post("/player/ended", playerHandler.Ended)
		r.Post("/player/volume", playerHandler.Volume)
		r.Post("/player/rejected", playerHandler.Rejected)

		// Static content
		r.Get("/projects", contentHandler.ListProjects)
		r.Get("/projects/{id}", contentHandler.GetProject)
		r.Get("/tech", contentHandler.ListTech)
		r.Get("/tracks", contentHandler.ListTracks)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	// Embedded assets
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(web.Static()))))

	// Profile photo and audio files
	if cfg.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media", http.FileServer(http.Dir(cfg.MediaDir))))
	}

	// Each page load gets a fresh session
	r.Get("/", pageHandler.Index)

	return r, nil
}

// NewContactLimiter builds the per-client limit on contact submissions
func NewContactLimiter(cfg *config.Config) *middleware.RateLimiter {
	var opts []middleware.RateLimiterOption
	if cfg.Contact.TrustProxy {
		opts = append(opts, middleware.TrustProxy())
	}
	return middleware.NewRateLimiter(cfg.Contact.RatePerMinute, cfg.Contact.Burst, opts...)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to status codes
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "Session not found, please reload the page")
	case errors.Is(err, contact.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "A message is already being sent")
	case errors.Is(err, contact.ErrUnknownField):
		respondError(w, http.StatusBadRequest, "Unknown form field")
	case errors.Is(err, playback.ErrTrackOutOfRange):
		respondError(w, http.StatusBadRequest, "No such track")
	default:
		log.Error(err, "request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// sessionID reads the session header, answering 400 when it is missing
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		respondError(w, http.StatusBadRequest, "Missing "+SessionHeader+" header")
		return "", false
	}
	return id, true
}

// decodeBody decodes a JSON request body, answering 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
