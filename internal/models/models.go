package models

import (
	"encoding/json"
	"time"
)

// Scope identifies the tenant and event every store operation is bound to
type Scope struct {
	TenantID string `json:"tenant_id"`
	EventID  string `json:"event_id"`
}

// Room returns the broadcast room key for the scope
func (s Scope) Room() string {
	return s.TenantID + ":" + s.EventID
}

// Event is the occasion an organizer runs a draw for
type Event struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoStatus is the moderation state of an uploaded photo
type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "pending"
	PhotoApproved PhotoStatus = "approved"
	PhotoRejected PhotoStatus = "rejected"
)

// Valid reports whether s is a known photo status
func (s PhotoStatus) Valid() bool {
	switch s {
	case PhotoPending, PhotoApproved, PhotoRejected:
		return true
	}
	return false
}

// Photo references an uploaded photo that entries may link to
type Photo struct {
	ID        string      `json:"id"`
	TenantID  string      `json:"tenant_id"`
	EventID   string      `json:"event_id"`
	URL       string      `json:"url"`
	Status    PhotoStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ConfigStatus is the lifecycle state of a draw configuration
type ConfigStatus string

const (
	ConfigScheduled  ConfigStatus = "scheduled"
	ConfigInProgress ConfigStatus = "in_progress"
	ConfigCompleted  ConfigStatus = "completed"
	ConfigArchived   ConfigStatus = "archived"
)

// PrizeTier is one tier of the prize schedule
type PrizeTier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Rank  int    `json:"rank"`
}

// DrawRules are the draw-wide rules of a configuration
type DrawRules struct {
	MaxEntriesPerParticipant int  `json:"max_entries_per_participant"`
	PreventDuplicateWinners  bool `json:"prevent_duplicate_winners"`
	RequirePhotoUpload       bool `json:"require_photo_upload"`
}

// DrawConfiguration is the prize schedule and rules for one event's draw
type DrawConfiguration struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	EventID      string          `json:"event_id"`
	Tiers        []PrizeTier     `json:"tiers"`
	Rules        DrawRules       `json:"rules"`
	Presentation json.RawMessage `json:"presentation,omitempty"`
	Status       ConfigStatus    `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// Tier returns the tier with the given id
func (c *DrawConfiguration) Tier(id string) (PrizeTier, bool) {
	for _, t := range c.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return PrizeTier{}, false
}

// EntrySource records how an entry was created
type EntrySource string

const (
	EntrySourcePhoto  EntrySource = "photo"
	EntrySourceManual EntrySource = "manual"
)

// Entry is one ticket in the draw. Participants may hold several.
type Entry struct {
	ID          string      `json:"id"`
	TenantID    string      `json:"tenant_id"`
	EventID     string      `json:"event_id"`
	ConfigID    string      `json:"config_id"`
	Fingerprint string      `json:"participant_fingerprint"`
	DisplayName string      `json:"display_name"`
	PhotoID     string      `json:"photo_id,omitempty"`
	PhotoURL    string      `json:"photo_url,omitempty"`
	Contact     string      `json:"contact,omitempty"`
	Source      EntrySource `json:"source"`
	CreatedAt   time.Time   `json:"created_at"`
}

// WinnerStatus is the claim state of a winner
type WinnerStatus string

const (
	WinnerPending   WinnerStatus = "pending"
	WinnerClaimed   WinnerStatus = "claimed"
	WinnerForfeited WinnerStatus = "forfeited"
)

// Winner records one participant selected for one tier
type Winner struct {
	ID               string       `json:"id"`
	TenantID         string       `json:"tenant_id"`
	EventID          string       `json:"event_id"`
	ConfigID         string       `json:"config_id"`
	ExecutionID      string       `json:"execution_id"`
	EntryID          string       `json:"entry_id"`
	Fingerprint      string       `json:"participant_fingerprint"`
	DisplayName      string       `json:"display_name"`
	PhotoURL         string       `json:"photo_url,omitempty"`
	TierID           string       `json:"tier_id"`
	TierName         string       `json:"tier_name"`
	TierRank         int          `json:"tier_rank"`
	Status           WinnerStatus `json:"status"`
	ForfeitReason    string       `json:"forfeit_reason,omitempty"`
	ReplacesWinnerID string       `json:"replaces_winner_id,omitempty"`
	DrawnBy          string       `json:"drawn_by"`
	DrawnAt          time.Time    `json:"drawn_at"`
	ClaimedAt        *time.Time   `json:"claimed_at,omitempty"`
	ForfeitedAt      *time.Time   `json:"forfeited_at,omitempty"`
}

// TierResult is the per-tier outcome of a draw execution
type TierResult struct {
	TierID    string `json:"tier_id"`
	Requested int    `json:"requested"`
	Selected  int    `json:"selected"`
	PoolSize  int    `json:"pool_size"`
}

// DrawStatistics summarizes a draw execution
type DrawStatistics struct {
	ExecutionID          string       `json:"execution_id"`
	EntriesConsidered    int          `json:"entries_considered"`
	DistinctParticipants int          `json:"distinct_participants"`
	TiersFulfilled       int          `json:"tiers_fulfilled"`
	PartialTiers         []string     `json:"partial_tiers"`
	Tiers                []TierResult `json:"tiers"`
}

// TierWinners groups the winners of one tier
type TierWinners struct {
	Tier    PrizeTier `json:"tier"`
	Winners []Winner  `json:"winners"`
}

// DrawResult is returned by a successful draw execution
type DrawResult struct {
	ConfigID   string         `json:"config_id"`
	Tiers      []TierWinners  `json:"tiers"`
	Statistics DrawStatistics `json:"statistics"`
}

// AllWinners flattens the result in tier order
func (r *DrawResult) AllWinners() []Winner {
	var out []Winner
	for _, t := range r.Tiers {
		out = append(out, t.Winners...)
	}
	return out
}

// RedrawResult is returned by a successful redraw
type RedrawResult struct {
	NewWinner      Winner `json:"new_winner"`
	PreviousWinner Winner `json:"previous_winner"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
