package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// EntryServiceRepository defines the repository methods needed by EntryService
type EntryServiceRepository interface {
	repository.EventRepository
	repository.PhotoRepository
	repository.ConfigRepository
	repository.EntryRepository
}

// EntryService is the entry registry: it accepts entries and answers who is
// eligible for a draw.
type EntryService struct {
	log  logger.Logger
	repo EntryServiceRepository
}

// NewEntryService creates a new EntryService
func NewEntryService(log logger.Logger, repo EntryServiceRepository) *EntryService {
	return &EntryService{log: log, repo: repo}
}

// EntryInput describes a participant entering a draw
type EntryInput struct {
	DisplayName string             `json:"display_name"`
	Fingerprint string             `json:"participant_fingerprint"`
	PhotoID     string             `json:"photo_id,omitempty"`
	Contact     string             `json:"contact,omitempty"`
	Source      models.EntrySource `json:"-"`
}

// CreateEntry validates and records one entry for the event's active configuration
func (s *EntryService) CreateEntry(ctx context.Context, scope models.Scope, input EntryInput) (*models.Entry, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Fingerprint = strings.TrimSpace(input.Fingerprint)
	input.PhotoID = strings.TrimSpace(input.PhotoID)
	if input.DisplayName == "" {
		return nil, errors.Validation("display name is required")
	}
	if input.Fingerprint == "" {
		return nil, errors.Validation("participant fingerprint is required")
	}
	if input.Source == "" {
		input.Source = models.EntrySourceManual
	}

	if _, err := s.repo.GetEvent(ctx, scope); err != nil {
		return nil, storeErr(err, "event not found")
	}
	cfg, err := s.repo.GetActiveConfig(ctx, scope)
	if err != nil {
		return nil, storeErr(err, "no draw configuration for event")
	}
	if cfg.Status != models.ConfigScheduled {
		return nil, errors.InvalidStatef("draw is %s and no longer accepts entries", cfg.Status)
	}

	if cfg.Rules.RequirePhotoUpload && input.PhotoID == "" {
		return nil, errors.Validation("a photo is required to enter this draw")
	}
	if input.PhotoID != "" {
		photo, err := s.repo.GetPhoto(ctx, scope, input.PhotoID)
		if err != nil {
			return nil, storeErr(err, "photo not found for this event")
		}
		if photo.Status == models.PhotoRejected {
			return nil, errors.Validation("photo was rejected")
		}
		if cfg.Rules.RequirePhotoUpload && photo.Status != models.PhotoApproved {
			return nil, errors.Validation("photo has not been approved yet")
		}
	}

	entry := &models.Entry{
		ID:          uuid.NewString(),
		TenantID:    scope.TenantID,
		EventID:     scope.EventID,
		ConfigID:    cfg.ID,
		Fingerprint: input.Fingerprint,
		DisplayName: input.DisplayName,
		PhotoID:     input.PhotoID,
		Contact:     strings.TrimSpace(input.Contact),
		Source:      input.Source,
	}
	if err := s.repo.InsertEntryWithinLimit(ctx, entry, cfg.Rules.MaxEntriesPerParticipant); err != nil {
		switch err {
		case repository.ErrLimitReached:
			return nil, errors.LimitExceededf("participant already holds the maximum of %d entries", cfg.Rules.MaxEntriesPerParticipant)
		case repository.ErrEntriesClosed:
			return nil, errors.InvalidState("draw has started and no longer accepts entries")
		}
		return nil, storeErr(err, "draw configuration not found")
	}

	s.log.Debug("entry created", "event_id", scope.EventID, "entry_id", entry.ID, "source", entry.Source)
	return entry, nil
}

// ListEntries returns every entry of the active configuration
func (s *EntryService) ListEntries(ctx context.Context, scope models.Scope) ([]models.Entry, error) {
	return s.ListEligibleEntries(ctx, scope, nil)
}

// ListEligibleEntries returns the active configuration's entries minus those
// held by the excluded participants, oldest first.
func (s *EntryService) ListEligibleEntries(ctx context.Context, scope models.Scope, excludeParticipants []string) ([]models.Entry, error) {
	cfg, err := s.repo.GetActiveConfig(ctx, scope)
	if err != nil {
		return nil, storeErr(err, "no draw configuration for event")
	}
	exclude := make(map[string]bool, len(excludeParticipants))
	for _, fp := range excludeParticipants {
		exclude[fp] = true
	}
	return eligibleEntries(ctx, s.repo, scope, cfg.ID, exclude)
}

// eligibleEntries lists a configuration's entries minus excluded participants
func eligibleEntries(ctx context.Context, repo repository.EntryRepository, scope models.Scope, configID string, exclude map[string]bool) ([]models.Entry, error) {
	entries, err := repo.ListEntries(ctx, scope, configID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if len(exclude) == 0 {
		return entries, nil
	}
	eligible := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if !exclude[e.Fingerprint] {
			eligible = append(eligible, e)
		}
	}
	return eligible, nil
}
