package handlers

import (
	"net/http"
	"strings"

	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

// handleConfigureDraw creates or replaces the event's scheduled configuration
func (h *Handlers) handleConfigureDraw(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req DrawConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	cfg, err := h.Config.CreateOrUpdateConfiguration(r.Context(), scope, services.ConfigInput{
		Tiers:        req.Tiers,
		Rules:        req.Rules,
		Presentation: req.Presentation,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, cfg)
}

func (h *Handlers) handleGetDrawConfig(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cfg, err := h.Config.GetActiveConfiguration(r.Context(), scope)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, cfg)
}

func (h *Handlers) handleArchiveDrawConfig(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	configID, err := requireParam(r, "configID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cfg, err := h.Config.ArchiveConfiguration(r.Context(), scope, configID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, cfg)
}

// handleCreateManualEntry records an entry on a guest's behalf
func (h *Handlers) handleCreateManualEntry(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req EntryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	entry, err := h.Entries.CreateEntry(r.Context(), scope, services.EntryInput{
		DisplayName: req.DisplayName,
		Fingerprint: req.ParticipantFingerprint,
		PhotoID:     req.PhotoID,
		Contact:     req.Contact,
		Source:      models.EntrySourceManual,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, entry)
}

// handleListEntries lists the active configuration's entries, optionally
// without the participants named in ?exclude=a,b
func (h *Handlers) handleListEntries(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var entries []models.Entry
	if exclude := r.URL.Query().Get("exclude"); exclude != "" {
		entries, err = h.Entries.ListEligibleEntries(r.Context(), scope, strings.Split(exclude, ","))
	} else {
		entries, err = h.Entries.ListEntries(r.Context(), scope)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	respondOK(w, entries)
}

// handleExecuteDraw runs the event's scheduled draw and announces the winners
func (h *Handlers) handleExecuteDraw(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.Draw.ExecuteDraw(r.Context(), scope, callerID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.Announcer.AnnounceDraw(scope, result)
	respondOK(w, newDrawResponse(result))
}

// handleRedraw forfeits a winner and draws a replacement in the same tier
func (h *Handlers) handleRedraw(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req RedrawRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.Draw.Redraw(r.Context(), scope, services.RedrawInput{
		ConfigID:         req.ConfigID,
		TierID:           req.TierID,
		PreviousWinnerID: req.PreviousWinnerID,
		Reason:           req.Reason,
	}, callerID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.Announcer.AnnounceRedraw(scope, result)
	respondOK(w, result)
}

func (h *Handlers) handleListWinners(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	configID, err := requireParam(r, "configID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	winners, err := h.Draw.ListWinners(r.Context(), scope, configID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if winners == nil {
		winners = []models.Winner{}
	}
	respondOK(w, winners)
}

func (h *Handlers) handleClaimWinner(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	winnerID, err := requireParam(r, "winnerID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	winner, err := h.Draw.ClaimWinner(r.Context(), scope, winnerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.Announcer.AnnounceWinner(scope, winner)
	respondOK(w, winner)
}

func (h *Handlers) handleForfeitWinner(w http.ResponseWriter, r *http.Request) {
	scope, err := adminScope(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	winnerID, err := requireParam(r, "winnerID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req ForfeitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	winner, err := h.Draw.ForfeitWinner(r.Context(), scope, winnerID, req.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.Announcer.AnnounceWinner(scope, winner)
	respondOK(w, winner)
}
