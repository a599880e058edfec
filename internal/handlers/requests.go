package handlers

import (
	"encoding/json"

	"github.com/abrezinsky/luckydraw/internal/models"
)

// LoginRequest exchanges the admin password for a token scoped to a tenant
type LoginRequest struct {
	Password string `json:"password"`
	TenantID string `json:"tenant_id"`
}

// TokenCreateRequest mints an organizer token
type TokenCreateRequest struct {
	TenantID string `json:"tenant_id"`
	Subject  string `json:"subject"`
}

// EventCreateRequest represents a request to create an event
type EventCreateRequest struct {
	Name string `json:"name"`
}

// PhotoCreateRequest registers an uploaded photo
type PhotoCreateRequest struct {
	URL      string `json:"url"`
	Approved bool   `json:"approved"`
}

// PhotoStatusRequest moderates a photo
type PhotoStatusRequest struct {
	Status models.PhotoStatus `json:"status"`
}

// DrawConfigRequest creates or replaces the scheduled draw configuration
type DrawConfigRequest struct {
	Tiers        []models.PrizeTier `json:"tiers"`
	Rules        models.DrawRules   `json:"rules"`
	Presentation json.RawMessage    `json:"presentation,omitempty"`
}

// EntryCreateRequest represents a guest or organizer entry submission
type EntryCreateRequest struct {
	DisplayName            string `json:"display_name"`
	ParticipantFingerprint string `json:"participant_fingerprint"`
	PhotoID                string `json:"photo_id"`
	Contact                string `json:"contact"`
}

// RedrawRequest replaces one winner
type RedrawRequest struct {
	ConfigID         string `json:"config_id"`
	TierID           string `json:"tier_id"`
	PreviousWinnerID string `json:"previous_winner_id"`
	Reason           string `json:"reason"`
}

// ForfeitRequest forfeits a winner without drawing a replacement
type ForfeitRequest struct {
	Reason string `json:"reason"`
}
