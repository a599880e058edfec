package handlers

import (
	"net/http"

	"github.com/abrezinsky/luckydraw/internal/auth"
)

// handleCreateEvent creates an event in the caller's tenant
func (h *Handlers) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())

	ev, err := h.Events.CreateEvent(r.Context(), claims.TenantID, req.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, ev)
}

func (h *Handlers) handleListEvents(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	events, err := h.Events.ListEvents(r.Context(), claims.TenantID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, events)
}

func (h *Handlers) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ev, err := h.Events.GetEvent(r.Context(), scope)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, ev)
}

// handleCreatePhoto registers an uploaded photo reference
func (h *Handlers) handleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req PhotoCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	photo, err := h.Events.RegisterPhoto(r.Context(), scope, req.URL, req.Approved)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, photo)
}

// handleSetPhotoStatus approves or rejects a photo
func (h *Handlers) handleSetPhotoStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	photoID, err := requireParam(r, "photoID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req PhotoStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Events.SetPhotoStatus(r.Context(), scope, photoID, req.Status); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondSuccess(w, "Photo status updated")
}

// handleEntryQR serves a PNG QR code pointing at the event's entry page
func (h *Handlers) handleEntryQR(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	png, err := h.Events.EntryQRCode(r.Context(), scope, h.opts.BaseURL)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
