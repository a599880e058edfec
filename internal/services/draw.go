package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/picker"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// DrawServiceRepository defines the repository methods needed by DrawService
type DrawServiceRepository interface {
	repository.ConfigRepository
	repository.EntryRepository
	repository.WinnerRepository
}

// DrawService executes draws, redraws forfeited prizes and tracks winners.
// It never broadcasts; callers publish results through a DrawAnnouncer.
type DrawService struct {
	log  logger.Logger
	repo DrawServiceRepository
	src  picker.Source
}

// NewDrawService creates a new DrawService. src is the randomness used for
// every selection; pass picker.CryptoSource{} outside tests.
func NewDrawService(log logger.Logger, repo DrawServiceRepository, src picker.Source) *DrawService {
	if src == nil {
		src = picker.CryptoSource{}
	}
	return &DrawService{log: log, repo: repo, src: src}
}

// RedrawInput identifies the winner to replace
type RedrawInput struct {
	ConfigID         string `json:"config_id"`
	TierID           string `json:"tier_id"`
	PreviousWinnerID string `json:"previous_winner_id"`
	Reason           string `json:"reason"`
}

func participantKey(e models.Entry) string { return e.Fingerprint }

func newWinner(cfg *models.DrawConfiguration, tier models.PrizeTier, e models.Entry, executionID, drawnBy string) models.Winner {
	return models.Winner{
		ID:          uuid.NewString(),
		TenantID:    cfg.TenantID,
		EventID:     cfg.EventID,
		ConfigID:    cfg.ID,
		ExecutionID: executionID,
		EntryID:     e.ID,
		Fingerprint: e.Fingerprint,
		DisplayName: e.DisplayName,
		PhotoURL:    e.PhotoURL,
		TierID:      tier.ID,
		TierName:    tier.Name,
		TierRank:    tier.Rank,
		Status:      models.WinnerPending,
		DrawnBy:     drawnBy,
		DrawnAt:     time.Now().UTC(),
	}
}

func distinctParticipants(entries []models.Entry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.Fingerprint] = struct{}{}
	}
	return len(seen)
}

// ExecuteDraw runs the event's scheduled draw once. Tiers are drawn in rank
// order; each entry is one ticket, and a participant wins at most once per
// tier (at most once overall when duplicate prevention is on). A tier with a
// short pool is partially filled and reported in the statistics.
func (s *DrawService) ExecuteDraw(ctx context.Context, scope models.Scope, executedBy string) (*models.DrawResult, error) {
	cfg, err := s.repo.GetActiveConfig(ctx, scope)
	if err != nil {
		return nil, storeErr(err, "no draw configuration for event")
	}
	if cfg.Status != models.ConfigScheduled {
		return nil, errors.InvalidStatef("draw is %s, not scheduled", cfg.Status)
	}

	// Entries close with this transition, so the pool read after it is final.
	if err := s.repo.TransitionConfigStatus(ctx, scope, cfg.ID, models.ConfigScheduled, models.ConfigInProgress); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, errors.InvalidState("draw has already been started")
		}
		return nil, errors.Internal(err)
	}

	entries, err := eligibleEntries(ctx, s.repo, scope, cfg.ID, nil)
	if err != nil {
		s.revert(ctx, scope, cfg.ID, err)
		return nil, err
	}
	if len(entries) == 0 {
		s.restoreScheduled(ctx, scope, cfg.ID)
		return nil, errors.NoEntries("no eligible entries for this draw")
	}

	result, err := s.selectWinners(cfg, entries, executedBy)
	if err != nil {
		s.revert(ctx, scope, cfg.ID, err)
		return nil, errors.Internal(err)
	}
	if err := s.repo.CompleteDraw(ctx, scope, cfg.ID, result.AllWinners()); err != nil {
		s.revert(ctx, scope, cfg.ID, err)
		return nil, errors.Internal(err)
	}

	s.drawLog(scope, cfg.ID).Info("draw executed",
		"execution_id", result.Statistics.ExecutionID,
		"winners", len(result.AllWinners()),
		"partial_tiers", len(result.Statistics.PartialTiers))
	return result, nil
}

// selectWinners draws every tier in order without touching the store
func (s *DrawService) selectWinners(cfg *models.DrawConfiguration, entries []models.Entry, drawnBy string) (*models.DrawResult, error) {
	executionID := uuid.NewString()
	result := &models.DrawResult{
		ConfigID: cfg.ID,
		Statistics: models.DrawStatistics{
			ExecutionID:          executionID,
			EntriesConsidered:    len(entries),
			DistinctParticipants: distinctParticipants(entries),
			PartialTiers:         []string{},
		},
	}

	won := make(map[string]bool)
	for _, tier := range OrderedTiers(cfg.Tiers) {
		pool := entries
		if cfg.Rules.PreventDuplicateWinners && len(won) > 0 {
			pool = make([]models.Entry, 0, len(entries))
			for _, e := range entries {
				if !won[e.Fingerprint] {
					pool = append(pool, e)
				}
			}
		}

		picks, err := picker.Draw(s.src, pool, tier.Count, participantKey)
		if err != nil {
			return nil, err
		}

		group := models.TierWinners{Tier: tier, Winners: make([]models.Winner, 0, len(picks))}
		for _, e := range picks {
			group.Winners = append(group.Winners, newWinner(cfg, tier, e, executionID, drawnBy))
			won[e.Fingerprint] = true
		}
		result.Tiers = append(result.Tiers, group)

		stats := &result.Statistics
		stats.Tiers = append(stats.Tiers, models.TierResult{
			TierID:    tier.ID,
			Requested: tier.Count,
			Selected:  len(picks),
			PoolSize:  len(pool),
		})
		if len(picks) < tier.Count {
			stats.PartialTiers = append(stats.PartialTiers, tier.ID)
		} else {
			stats.TiersFulfilled++
		}
	}
	return result, nil
}

// revert returns an in-progress configuration to scheduled after a failed execution
func (s *DrawService) revert(ctx context.Context, scope models.Scope, configID string, cause error) {
	s.drawLog(scope, configID).Error("draw execution failed, restoring scheduled status", "error", cause)
	s.restoreScheduled(ctx, scope, configID)
}

func (s *DrawService) restoreScheduled(ctx context.Context, scope models.Scope, configID string) {
	err := s.repo.TransitionConfigStatus(context.WithoutCancel(ctx), scope, configID, models.ConfigInProgress, models.ConfigScheduled)
	if err != nil {
		s.drawLog(scope, configID).Error("failed to restore draw status", "error", err)
	}
}

// drawLog scopes log lines to one event's configuration
func (s *DrawService) drawLog(scope models.Scope, configID string) logger.Logger {
	return s.log.With("tenant_id", scope.TenantID, "event_id", scope.EventID, "config_id", configID)
}

// Redraw forfeits one winner and draws a replacement for the same tier.
// The replacement never comes from the forfeited participant or anyone
// holding a live win in the tier, nor from anyone holding a live win in the
// draw when duplicate prevention is on.
func (s *DrawService) Redraw(ctx context.Context, scope models.Scope, input RedrawInput, redrawnBy string) (*models.RedrawResult, error) {
	if input.ConfigID == "" || input.TierID == "" || input.PreviousWinnerID == "" {
		return nil, errors.Validation("config_id, tier_id and previous_winner_id are required")
	}
	input.Reason = strings.TrimSpace(input.Reason)

	cfg, err := s.repo.GetConfig(ctx, scope, input.ConfigID)
	if err != nil {
		return nil, storeErr(err, "draw configuration not found")
	}
	if cfg.Status != models.ConfigCompleted {
		return nil, errors.InvalidStatef("draw is %s; only completed draws can be redrawn", cfg.Status)
	}
	tier, ok := cfg.Tier(input.TierID)
	if !ok {
		return nil, errors.Validationf("tier %q is not part of this draw", input.TierID)
	}

	prev, err := s.repo.GetWinner(ctx, scope, input.PreviousWinnerID)
	if err != nil {
		return nil, storeErr(err, "winner not found")
	}
	if prev.ConfigID != cfg.ID || prev.TierID != tier.ID {
		return nil, errors.Validation("winner does not belong to this draw tier")
	}
	if prev.Status == models.WinnerForfeited {
		return nil, errors.InvalidState("winner has already been forfeited")
	}

	winners, err := s.repo.ListWinners(ctx, scope, cfg.ID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	exclude := map[string]bool{prev.Fingerprint: true}
	for _, w := range winners {
		if w.Status == models.WinnerForfeited {
			continue
		}
		if cfg.Rules.PreventDuplicateWinners || w.TierID == tier.ID {
			exclude[w.Fingerprint] = true
		}
	}

	pool, err := eligibleEntries(ctx, s.repo, scope, cfg.ID, exclude)
	if err != nil {
		return nil, err
	}
	pick, ok, err := picker.DrawOne(s.src, pool)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !ok {
		return nil, errors.NoEntries("no eligible entries remain for a redraw")
	}

	replacement := newWinner(cfg, tier, pick, uuid.NewString(), redrawnBy)
	replacement.ReplacesWinnerID = prev.ID
	if err := s.repo.ReplaceWinner(ctx, scope, prev.ID, input.Reason, &replacement); err != nil {
		switch err {
		case repository.ErrStatusConflict:
			return nil, errors.InvalidState("winner was forfeited or the draw changed concurrently")
		case repository.ErrAlreadyWon:
			return nil, errors.InvalidState("the drawn participant won concurrently; redraw again")
		}
		return nil, storeErr(err, "draw configuration not found")
	}

	forfeitedAt := time.Now().UTC()
	prev.Status = models.WinnerForfeited
	prev.ForfeitReason = input.Reason
	prev.ForfeitedAt = &forfeitedAt

	s.drawLog(scope, cfg.ID).Info("winner redrawn",
		"tier", tier.ID,
		"previous_winner_id", prev.ID,
		"new_winner_id", replacement.ID,
		"pool", len(pool))
	return &models.RedrawResult{NewWinner: replacement, PreviousWinner: *prev}, nil
}

// ListWinners returns a configuration's winner history, forfeited rows included
func (s *DrawService) ListWinners(ctx context.Context, scope models.Scope, configID string) ([]models.Winner, error) {
	if _, err := s.repo.GetConfig(ctx, scope, configID); err != nil {
		return nil, storeErr(err, "draw configuration not found")
	}
	winners, err := s.repo.ListWinners(ctx, scope, configID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return winners, nil
}

// ClaimWinner marks a pending winner as having claimed the prize
func (s *DrawService) ClaimWinner(ctx context.Context, scope models.Scope, winnerID string) (*models.Winner, error) {
	w, err := s.repo.GetWinner(ctx, scope, winnerID)
	if err != nil {
		return nil, storeErr(err, "winner not found")
	}
	if w.Status != models.WinnerPending {
		return nil, errors.InvalidStatef("winner is %s and cannot be claimed", w.Status)
	}
	if err := s.repo.ClaimWinner(ctx, scope, winnerID); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, errors.InvalidState("winner changed concurrently")
		}
		return nil, errors.Internal(err)
	}
	return s.reload(ctx, scope, winnerID)
}

// ForfeitWinner forfeits a winner without drawing a replacement
func (s *DrawService) ForfeitWinner(ctx context.Context, scope models.Scope, winnerID, reason string) (*models.Winner, error) {
	w, err := s.repo.GetWinner(ctx, scope, winnerID)
	if err != nil {
		return nil, storeErr(err, "winner not found")
	}
	if w.Status == models.WinnerForfeited {
		return nil, errors.InvalidState("winner has already been forfeited")
	}
	if err := s.repo.ForfeitWinner(ctx, scope, winnerID, strings.TrimSpace(reason)); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, errors.InvalidState("winner changed concurrently")
		}
		return nil, errors.Internal(err)
	}
	s.log.Info("winner forfeited", "event_id", scope.EventID, "winner_id", winnerID)
	return s.reload(ctx, scope, winnerID)
}

func (s *DrawService) reload(ctx context.Context, scope models.Scope, winnerID string) (*models.Winner, error) {
	w, err := s.repo.GetWinner(ctx, scope, winnerID)
	if err != nil {
		return nil, storeErr(err, "winner not found")
	}
	return w, nil
}
