package handlers

import (
	"net/http"
	"strings"

	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			h.log.Error("Health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}
	respondOK(w, HealthResponse{Status: "ok"})
}

// handleGuestEntry accepts an entry from a guest's device. Guests that do not
// send a fingerprint are identified by their connection.
func (h *Handlers) handleGuestEntry(w http.ResponseWriter, r *http.Request) {
	scope, err := publicScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req EntryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	fingerprint := strings.TrimSpace(req.ParticipantFingerprint)
	if fingerprint == "" && h.Fingerprints != nil {
		fingerprint = h.Fingerprints.Fingerprint(r)
	}
	source := models.EntrySourceManual
	if req.PhotoID != "" {
		source = models.EntrySourcePhoto
	}

	entry, err := h.Entries.CreateEntry(r.Context(), scope, services.EntryInput{
		DisplayName: req.DisplayName,
		Fingerprint: fingerprint,
		PhotoID:     req.PhotoID,
		Contact:     req.Contact,
		Source:      source,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, entry)
}

// handleViewerSocket joins a viewer to the event's live draw room
func (h *Handlers) handleViewerSocket(w http.ResponseWriter, r *http.Request) {
	scope, err := publicScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if _, err := h.Events.GetEvent(r.Context(), scope); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.Hub.ServeWs(w, r, scope)
}
