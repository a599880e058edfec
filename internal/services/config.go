package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// ConfigServiceRepository defines the repository methods needed by ConfigService
type ConfigServiceRepository interface {
	repository.EventRepository
	repository.ConfigRepository
}

// ConfigService manages the prize schedule and rules of an event's draw
type ConfigService struct {
	log  logger.Logger
	repo ConfigServiceRepository
}

// NewConfigService creates a new ConfigService
func NewConfigService(log logger.Logger, repo ConfigServiceRepository) *ConfigService {
	return &ConfigService{log: log, repo: repo}
}

// ConfigInput is the organizer-supplied part of a configuration
type ConfigInput struct {
	Tiers        []models.PrizeTier `json:"tiers"`
	Rules        models.DrawRules   `json:"rules"`
	Presentation json.RawMessage    `json:"presentation,omitempty"`
}

// Tier identifiers accepted in a prize schedule
var recognizedTiers = map[string]bool{
	"grand":       true,
	"first":       true,
	"second":      true,
	"third":       true,
	"fourth":      true,
	"fifth":       true,
	"special":     true,
	"bonus":       true,
	"consolation": true,
}

// RecognizedTier reports whether id may be used as a tier identifier
func RecognizedTier(id string) bool {
	return recognizedTiers[id]
}

// normalizeTiers validates the schedule. Tiers without a rank are ranked
// after every explicitly ranked tier, in list order.
func normalizeTiers(in []models.PrizeTier) ([]models.PrizeTier, error) {
	if len(in) == 0 {
		return nil, errors.Validation("at least one prize tier is required")
	}
	seen := make(map[string]bool, len(in))
	out := make([]models.PrizeTier, len(in))
	maxRank := 0
	for i, t := range in {
		t.ID = strings.ToLower(strings.TrimSpace(t.ID))
		t.Name = strings.TrimSpace(t.Name)
		switch {
		case !RecognizedTier(t.ID):
			return nil, errors.Validationf("tier %d: unrecognized tier id %q", i+1, t.ID)
		case seen[t.ID]:
			return nil, errors.Validationf("tier %q appears more than once", t.ID)
		case t.Name == "":
			return nil, errors.Validationf("tier %q: name is required", t.ID)
		case t.Count < 1:
			return nil, errors.Validationf("tier %q: count must be at least 1", t.ID)
		case t.Rank < 0:
			return nil, errors.Validationf("tier %q: rank must not be negative", t.ID)
		}
		if t.Rank > maxRank {
			maxRank = t.Rank
		}
		seen[t.ID] = true
		out[i] = t
	}
	next := maxRank + 1
	for i := range out {
		if out[i].Rank == 0 {
			out[i].Rank = next
			next++
		}
	}
	return out, nil
}

func validateInput(input ConfigInput) ([]models.PrizeTier, error) {
	tiers, err := normalizeTiers(input.Tiers)
	if err != nil {
		return nil, err
	}
	if input.Rules.MaxEntriesPerParticipant < 1 {
		return nil, errors.Validation("max_entries_per_participant must be at least 1")
	}
	if len(input.Presentation) > 0 && !json.Valid(input.Presentation) {
		return nil, errors.Validation("presentation must be valid JSON")
	}
	return tiers, nil
}

// OrderedTiers returns tiers in processing order: ascending rank, ties keep list order
func OrderedTiers(tiers []models.PrizeTier) []models.PrizeTier {
	out := append([]models.PrizeTier(nil), tiers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// CreateOrUpdateConfiguration upserts the event's single active configuration.
// An existing configuration can only be replaced while it is still scheduled.
func (s *ConfigService) CreateOrUpdateConfiguration(ctx context.Context, scope models.Scope, input ConfigInput) (*models.DrawConfiguration, error) {
	tiers, err := validateInput(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetEvent(ctx, scope); err != nil {
		return nil, storeErr(err, "event not found")
	}

	existing, err := s.repo.GetActiveConfig(ctx, scope)
	if err != nil && err != repository.ErrNotFound {
		return nil, errors.Internal(err)
	}

	if existing == nil {
		cfg := &models.DrawConfiguration{
			ID:           uuid.NewString(),
			TenantID:     scope.TenantID,
			EventID:      scope.EventID,
			Tiers:        tiers,
			Rules:        input.Rules,
			Presentation: input.Presentation,
			Status:       models.ConfigScheduled,
		}
		if err := s.repo.CreateConfig(ctx, cfg); err != nil {
			return nil, errors.Internal(err)
		}
		s.log.Info("draw configuration created", "event_id", scope.EventID, "config_id", cfg.ID, "tiers", len(tiers))
		return cfg, nil
	}

	if existing.Status != models.ConfigScheduled {
		return nil, errors.InvalidStatef("draw configuration is %s and can no longer be edited", existing.Status)
	}
	existing.Tiers = tiers
	existing.Rules = input.Rules
	existing.Presentation = input.Presentation
	if err := s.repo.UpdateScheduledConfig(ctx, existing); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, errors.InvalidState("draw configuration is no longer scheduled")
		}
		return nil, errors.Internal(err)
	}
	s.log.Info("draw configuration updated", "event_id", scope.EventID, "config_id", existing.ID)
	return existing, nil
}

// GetActiveConfiguration returns the scheduled, in-progress or completed configuration
func (s *ConfigService) GetActiveConfiguration(ctx context.Context, scope models.Scope) (*models.DrawConfiguration, error) {
	cfg, err := s.repo.GetActiveConfig(ctx, scope)
	if err != nil {
		return nil, storeErr(err, "no draw configuration for event")
	}
	return cfg, nil
}

// GetConfiguration returns a configuration by id in any status
func (s *ConfigService) GetConfiguration(ctx context.Context, scope models.Scope, configID string) (*models.DrawConfiguration, error) {
	cfg, err := s.repo.GetConfig(ctx, scope, configID)
	if err != nil {
		return nil, storeErr(err, "draw configuration not found")
	}
	return cfg, nil
}

// ArchiveConfiguration retires a scheduled or completed configuration so a
// new one can be created for the event.
func (s *ConfigService) ArchiveConfiguration(ctx context.Context, scope models.Scope, configID string) (*models.DrawConfiguration, error) {
	cfg, err := s.GetConfiguration(ctx, scope, configID)
	if err != nil {
		return nil, err
	}
	if cfg.Status != models.ConfigScheduled && cfg.Status != models.ConfigCompleted {
		return nil, errors.InvalidStatef("cannot archive a draw configuration that is %s", cfg.Status)
	}
	if err := s.repo.TransitionConfigStatus(ctx, scope, configID, cfg.Status, models.ConfigArchived); err != nil {
		return nil, storeErr(err, "draw configuration not found")
	}
	cfg.Status = models.ConfigArchived
	s.log.Info("draw configuration archived", "event_id", scope.EventID, "config_id", configID)
	return cfg, nil
}
