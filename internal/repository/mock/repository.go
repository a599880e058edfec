package mock

import (
	"context"

	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CompleteDrawError = errors.New("database error")
//	svc := services.NewDrawService(log, mockRepo, picker.CryptoSource{})
//	_, err := svc.ExecuteDraw(ctx, scope, "organizer")
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Event / Photo Errors =====
	CreateEventError    error
	GetEventError       error
	ListEventsError     error
	CreatePhotoError    error
	GetPhotoError       error
	SetPhotoStatusError error

	// ===== Config Errors =====
	GetActiveConfigError        error
	GetConfigError              error
	CreateConfigError           error
	UpdateScheduledConfigError  error
	TransitionConfigStatusError error

	// RevertTransitionError only fails in_progress->scheduled transitions
	RevertTransitionError error

	// ===== Entry Errors =====
	InsertEntryError error
	ListEntriesError error

	// ===== Winner Errors =====
	CompleteDrawError  error
	ReplaceWinnerError error
	GetWinnerError     error
	ListWinnersError   error
	ClaimWinnerError   error
	ForfeitWinnerError error

	// Transitions records every successful status transition, for assertions
	Transitions []models.ConfigStatus

	// BeforeInsertEntry runs before an entry insert reaches the store
	BeforeInsertEntry func()
	// AfterListWinners runs after each successful winner listing and may be
	// called from several goroutines
	AfterListWinners func()
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Event / Photo Methods =====

func (m *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	if m.CreateEventError != nil {
		return m.CreateEventError
	}
	return m.FullRepository.CreateEvent(ctx, event)
}

func (m *Repository) GetEvent(ctx context.Context, scope models.Scope) (*models.Event, error) {
	if m.GetEventError != nil {
		return nil, m.GetEventError
	}
	return m.FullRepository.GetEvent(ctx, scope)
}

func (m *Repository) ListEvents(ctx context.Context, tenantID string) ([]models.Event, error) {
	if m.ListEventsError != nil {
		return nil, m.ListEventsError
	}
	return m.FullRepository.ListEvents(ctx, tenantID)
}

func (m *Repository) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	if m.CreatePhotoError != nil {
		return m.CreatePhotoError
	}
	return m.FullRepository.CreatePhoto(ctx, photo)
}

func (m *Repository) GetPhoto(ctx context.Context, scope models.Scope, photoID string) (*models.Photo, error) {
	if m.GetPhotoError != nil {
		return nil, m.GetPhotoError
	}
	return m.FullRepository.GetPhoto(ctx, scope, photoID)
}

func (m *Repository) SetPhotoStatus(ctx context.Context, scope models.Scope, photoID string, status models.PhotoStatus) error {
	if m.SetPhotoStatusError != nil {
		return m.SetPhotoStatusError
	}
	return m.FullRepository.SetPhotoStatus(ctx, scope, photoID, status)
}

// ===== Config Methods =====

func (m *Repository) GetActiveConfig(ctx context.Context, scope models.Scope) (*models.DrawConfiguration, error) {
	if m.GetActiveConfigError != nil {
		return nil, m.GetActiveConfigError
	}
	return m.FullRepository.GetActiveConfig(ctx, scope)
}

func (m *Repository) GetConfig(ctx context.Context, scope models.Scope, configID string) (*models.DrawConfiguration, error) {
	if m.GetConfigError != nil {
		return nil, m.GetConfigError
	}
	return m.FullRepository.GetConfig(ctx, scope, configID)
}

func (m *Repository) CreateConfig(ctx context.Context, cfg *models.DrawConfiguration) error {
	if m.CreateConfigError != nil {
		return m.CreateConfigError
	}
	return m.FullRepository.CreateConfig(ctx, cfg)
}

func (m *Repository) UpdateScheduledConfig(ctx context.Context, cfg *models.DrawConfiguration) error {
	if m.UpdateScheduledConfigError != nil {
		return m.UpdateScheduledConfigError
	}
	return m.FullRepository.UpdateScheduledConfig(ctx, cfg)
}

func (m *Repository) TransitionConfigStatus(ctx context.Context, scope models.Scope, configID string, from, to models.ConfigStatus) error {
	if m.TransitionConfigStatusError != nil {
		return m.TransitionConfigStatusError
	}
	if m.RevertTransitionError != nil && from == models.ConfigInProgress && to == models.ConfigScheduled {
		return m.RevertTransitionError
	}
	if err := m.FullRepository.TransitionConfigStatus(ctx, scope, configID, from, to); err != nil {
		return err
	}
	m.Transitions = append(m.Transitions, to)
	return nil
}

// ===== Entry Methods =====

func (m *Repository) InsertEntryWithinLimit(ctx context.Context, entry *models.Entry, limit int) error {
	if m.InsertEntryError != nil {
		return m.InsertEntryError
	}
	if m.BeforeInsertEntry != nil {
		m.BeforeInsertEntry()
	}
	return m.FullRepository.InsertEntryWithinLimit(ctx, entry, limit)
}

func (m *Repository) ListEntries(ctx context.Context, scope models.Scope, configID string) ([]models.Entry, error) {
	if m.ListEntriesError != nil {
		return nil, m.ListEntriesError
	}
	return m.FullRepository.ListEntries(ctx, scope, configID)
}

// ===== Winner Methods =====

func (m *Repository) CompleteDraw(ctx context.Context, scope models.Scope, configID string, winners []models.Winner) error {
	if m.CompleteDrawError != nil {
		return m.CompleteDrawError
	}
	return m.FullRepository.CompleteDraw(ctx, scope, configID, winners)
}

func (m *Repository) ReplaceWinner(ctx context.Context, scope models.Scope, previousID, reason string, replacement *models.Winner) error {
	if m.ReplaceWinnerError != nil {
		return m.ReplaceWinnerError
	}
	return m.FullRepository.ReplaceWinner(ctx, scope, previousID, reason, replacement)
}

func (m *Repository) GetWinner(ctx context.Context, scope models.Scope, winnerID string) (*models.Winner, error) {
	if m.GetWinnerError != nil {
		return nil, m.GetWinnerError
	}
	return m.FullRepository.GetWinner(ctx, scope, winnerID)
}

func (m *Repository) ListWinners(ctx context.Context, scope models.Scope, configID string) ([]models.Winner, error) {
	if m.ListWinnersError != nil {
		return nil, m.ListWinnersError
	}
	winners, err := m.FullRepository.ListWinners(ctx, scope, configID)
	if err == nil && m.AfterListWinners != nil {
		m.AfterListWinners()
	}
	return winners, err
}

func (m *Repository) ClaimWinner(ctx context.Context, scope models.Scope, winnerID string) error {
	if m.ClaimWinnerError != nil {
		return m.ClaimWinnerError
	}
	return m.FullRepository.ClaimWinner(ctx, scope, winnerID)
}

func (m *Repository) ForfeitWinner(ctx context.Context, scope models.Scope, winnerID, reason string) error {
	if m.ForfeitWinnerError != nil {
		return m.ForfeitWinnerError
	}
	return m.FullRepository.ForfeitWinner(ctx, scope, winnerID, reason)
}
