package repository

import (
	"context"

	"github.com/abrezinsky/luckydraw/internal/models"
)

// EventRepository defines event data operations
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, scope models.Scope) (*models.Event, error)
	ListEvents(ctx context.Context, tenantID string) ([]models.Event, error)
}

// PhotoRepository defines photo reference operations
type PhotoRepository interface {
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhoto(ctx context.Context, scope models.Scope, photoID string) (*models.Photo, error)
	SetPhotoStatus(ctx context.Context, scope models.Scope, photoID string, status models.PhotoStatus) error
}

// ConfigRepository defines draw configuration operations
type ConfigRepository interface {
	GetActiveConfig(ctx context.Context, scope models.Scope) (*models.DrawConfiguration, error)
	GetConfig(ctx context.Context, scope models.Scope, configID string) (*models.DrawConfiguration, error)
	CreateConfig(ctx context.Context, cfg *models.DrawConfiguration) error
	// UpdateScheduledConfig replaces tiers, rules and presentation only while
	// the configuration is scheduled. Returns ErrStatusConflict otherwise.
	UpdateScheduledConfig(ctx context.Context, cfg *models.DrawConfiguration) error
	// TransitionConfigStatus is an atomic compare-and-swap on status.
	TransitionConfigStatus(ctx context.Context, scope models.Scope, configID string, from, to models.ConfigStatus) error
}

// EntryRepository defines entry operations
type EntryRepository interface {
	// InsertEntryWithinLimit checks the configuration is scheduled, counts the
	// participant's entries and inserts in one transaction. Returns
	// ErrEntriesClosed once the draw has started and ErrLimitReached when the
	// count is already at limit.
	InsertEntryWithinLimit(ctx context.Context, entry *models.Entry, limit int) error
	ListEntries(ctx context.Context, scope models.Scope, configID string) ([]models.Entry, error)
}

// WinnerRepository defines winner operations
type WinnerRepository interface {
	// CompleteDraw inserts all winners and moves the configuration from
	// in_progress to completed in one transaction.
	CompleteDraw(ctx context.Context, scope models.Scope, configID string, winners []models.Winner) error
	// ReplaceWinner forfeits the previous winner and inserts its replacement in
	// one transaction. Returns ErrAlreadyWon when the replacement's participant
	// gained a conflicting live win since the pool was read.
	ReplaceWinner(ctx context.Context, scope models.Scope, previousID, reason string, replacement *models.Winner) error
	GetWinner(ctx context.Context, scope models.Scope, winnerID string) (*models.Winner, error)
	ListWinners(ctx context.Context, scope models.Scope, configID string) ([]models.Winner, error)
	ClaimWinner(ctx context.Context, scope models.Scope, winnerID string) error
	ForfeitWinner(ctx context.Context, scope models.Scope, winnerID, reason string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	EventRepository
	PhotoRepository
	ConfigRepository
	EntryRepository
	WinnerRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
