package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abrezinsky/luckydraw/internal/auth"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.log != nil && h.log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

func (h *Handlers) corsHandler() func(http.Handler) http.Handler {
	origins := h.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(h.corsHandler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.respondError(w, r, NotFound("Route not found"))
	})

	r.Get("/healthz", h.handleHealth)

	// Live viewers; kept outside the request timeout
	r.Get("/ws/t/{tenantID}/events/{eventID}", h.handleViewerSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Public API
		r.Post("/api/auth/login", h.handleLogin)
		r.Post("/api/t/{tenantID}/events/{eventID}/entries", h.handleGuestEntry)

		// Organizer API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)
			r.Use(h.requireRole(auth.RoleOrganizer, auth.RoleAdmin))

			// Events
			r.Get("/api/admin/events", h.handleListEvents)
			r.Post("/api/admin/events", h.handleCreateEvent)
			r.Get("/api/admin/events/{eventID}", h.handleGetEvent)

			// Photos & QR
			r.Post("/api/admin/events/{eventID}/photos", h.handleCreatePhoto)
			r.Put("/api/admin/events/{eventID}/photos/{photoID}", h.handleSetPhotoStatus)
			r.Get("/api/admin/events/{eventID}/entry-qr", h.handleEntryQR)

			// Draw configuration
			r.Get("/api/admin/events/{eventID}/draw/config", h.handleGetDrawConfig)
			r.Put("/api/admin/events/{eventID}/draw/config", h.handleConfigureDraw)
			r.Post("/api/admin/events/{eventID}/draw/config/{configID}/archive", h.handleArchiveDrawConfig)

			// Entries
			r.Get("/api/admin/events/{eventID}/entries", h.handleListEntries)
			r.Post("/api/admin/events/{eventID}/entries", h.handleCreateManualEntry)

			// Draw
			r.Post("/api/admin/events/{eventID}/draw/execute", h.handleExecuteDraw)
			r.Post("/api/admin/events/{eventID}/draw/redraw", h.handleRedraw)
			r.Get("/api/admin/events/{eventID}/draw/config/{configID}/winners", h.handleListWinners)

			// Winners (scoped by ?event=)
			r.Post("/api/admin/winners/{winnerID}/claim", h.handleClaimWinner)
			r.Post("/api/admin/winners/{winnerID}/forfeit", h.handleForfeitWinner)
		})

		// Admin API
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)
			r.Use(h.requireRole(auth.RoleAdmin))

			r.Post("/api/admin/tokens", h.handleCreateToken)
		})
	})

	return r
}
