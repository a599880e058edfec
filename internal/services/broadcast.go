package services

import (
	"context"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/models"
)

// Live event types published to draw viewers
const (
	EventDrawStarted = "draw_started"
	EventDrawWinner  = "draw_winner"
)

// DrawStartedEvent announces a draw to viewers
type DrawStartedEvent struct {
	ConfigID string             `json:"config_id"`
	Tiers    []models.PrizeTier `json:"tiers"`
}

// WinnerEvent is the viewer-facing view of a winner
type WinnerEvent struct {
	WinnerID         string `json:"winner_id"`
	DisplayName      string `json:"display_name"`
	PhotoURL         string `json:"photo_url,omitempty"`
	TierID           string `json:"tier_id"`
	TierName         string `json:"tier_name"`
	TierRank         int    `json:"tier_rank"`
	Claimed          bool   `json:"claimed"`
	Forfeited        bool   `json:"forfeited"`
	ReplacesWinnerID string `json:"replaces_winner_id,omitempty"`
}

// NewWinnerEvent builds the broadcast payload for w
func NewWinnerEvent(w models.Winner) WinnerEvent {
	return WinnerEvent{
		WinnerID:         w.ID,
		DisplayName:      w.DisplayName,
		PhotoURL:         w.PhotoURL,
		TierID:           w.TierID,
		TierName:         w.TierName,
		TierRank:         w.TierRank,
		Claimed:          w.Status == models.WinnerClaimed,
		Forfeited:        w.Status == models.WinnerForfeited,
		ReplacesWinnerID: w.ReplacesWinnerID,
	}
}

// DrawAnnouncer publishes draw outcomes to an event's viewers.
// A nil broadcaster turns every call into a no-op.
type DrawAnnouncer struct {
	broadcaster Broadcaster
}

// NewDrawAnnouncer creates a DrawAnnouncer
func NewDrawAnnouncer(b Broadcaster) *DrawAnnouncer {
	return &DrawAnnouncer{broadcaster: b}
}

// AnnounceDraw publishes draw_started followed by one draw_winner per winner in tier order
func (a *DrawAnnouncer) AnnounceDraw(scope models.Scope, result *models.DrawResult) {
	if a == nil || a.broadcaster == nil || result == nil {
		return
	}
	tiers := make([]models.PrizeTier, 0, len(result.Tiers))
	for _, t := range result.Tiers {
		tiers = append(tiers, t.Tier)
	}
	room := scope.Room()
	a.broadcaster.Publish(room, EventDrawStarted, DrawStartedEvent{ConfigID: result.ConfigID, Tiers: tiers})
	for _, w := range result.AllWinners() {
		a.broadcaster.Publish(room, EventDrawWinner, NewWinnerEvent(w))
	}
}

// AnnounceRedraw publishes the forfeited winner and its replacement
func (a *DrawAnnouncer) AnnounceRedraw(scope models.Scope, result *models.RedrawResult) {
	if a == nil || a.broadcaster == nil || result == nil {
		return
	}
	room := scope.Room()
	a.broadcaster.Publish(room, EventDrawWinner, NewWinnerEvent(result.PreviousWinner))
	a.broadcaster.Publish(room, EventDrawWinner, NewWinnerEvent(result.NewWinner))
}

// AnnounceWinner publishes a single winner's updated state
func (a *DrawAnnouncer) AnnounceWinner(scope models.Scope, w *models.Winner) {
	if a == nil || a.broadcaster == nil || w == nil {
		return
	}
	a.broadcaster.Publish(scope.Room(), EventDrawWinner, NewWinnerEvent(*w))
}

// DrawSnapshot is sent to a viewer when it joins a room
type DrawSnapshot struct {
	ConfigID string              `json:"config_id"`
	Status   models.ConfigStatus `json:"status"`
	Tiers    []models.PrizeTier  `json:"tiers"`
	Winners  []WinnerEvent       `json:"winners"`
}

// NewDrawSnapshot returns a function that reports the event's active draw
// state. Events without an active configuration yield a nil snapshot.
func NewDrawSnapshot(configs ConfigServicer, draws DrawServicer) func(context.Context, models.Scope) (interface{}, error) {
	return func(ctx context.Context, scope models.Scope) (interface{}, error) {
		cfg, err := configs.GetActiveConfiguration(ctx, scope)
		if errors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		snap := &DrawSnapshot{
			ConfigID: cfg.ID,
			Status:   cfg.Status,
			Tiers:    OrderedTiers(cfg.Tiers),
			Winners:  []WinnerEvent{},
		}
		if cfg.Status == models.ConfigScheduled {
			return snap, nil
		}
		winners, err := draws.ListWinners(ctx, scope, cfg.ID)
		if err != nil {
			return nil, err
		}
		for _, w := range winners {
			snap.Winners = append(snap.Winners, NewWinnerEvent(w))
		}
		return snap, nil
	}
}
