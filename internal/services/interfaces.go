package services

import (
	"context"

	"github.com/abrezinsky/luckydraw/internal/models"
)

// EventServicer defines the interface for event and photo operations
type EventServicer interface {
	CreateEvent(ctx context.Context, tenantID, name string) (*models.Event, error)
	GetEvent(ctx context.Context, scope models.Scope) (*models.Event, error)
	ListEvents(ctx context.Context, tenantID string) ([]models.Event, error)
	RegisterPhoto(ctx context.Context, scope models.Scope, url string, approved bool) (*models.Photo, error)
	SetPhotoStatus(ctx context.Context, scope models.Scope, photoID string, status models.PhotoStatus) error
	EntryQRCode(ctx context.Context, scope models.Scope, baseURL string) ([]byte, error)
}

// ConfigServicer defines the interface for draw configuration operations
type ConfigServicer interface {
	CreateOrUpdateConfiguration(ctx context.Context, scope models.Scope, input ConfigInput) (*models.DrawConfiguration, error)
	GetActiveConfiguration(ctx context.Context, scope models.Scope) (*models.DrawConfiguration, error)
	GetConfiguration(ctx context.Context, scope models.Scope, configID string) (*models.DrawConfiguration, error)
	ArchiveConfiguration(ctx context.Context, scope models.Scope, configID string) (*models.DrawConfiguration, error)
}

// EntryServicer defines the interface for entry registry operations
type EntryServicer interface {
	CreateEntry(ctx context.Context, scope models.Scope, input EntryInput) (*models.Entry, error)
	ListEntries(ctx context.Context, scope models.Scope) ([]models.Entry, error)
	ListEligibleEntries(ctx context.Context, scope models.Scope, excludeParticipants []string) ([]models.Entry, error)
}

// DrawServicer defines the interface for draw execution and winner operations
type DrawServicer interface {
	ExecuteDraw(ctx context.Context, scope models.Scope, executedBy string) (*models.DrawResult, error)
	Redraw(ctx context.Context, scope models.Scope, input RedrawInput, redrawnBy string) (*models.RedrawResult, error)
	ListWinners(ctx context.Context, scope models.Scope, configID string) ([]models.Winner, error)
	ClaimWinner(ctx context.Context, scope models.Scope, winnerID string) (*models.Winner, error)
	ForfeitWinner(ctx context.Context, scope models.Scope, winnerID, reason string) (*models.Winner, error)
}

// Broadcaster publishes live events to viewers of a room
type Broadcaster interface {
	Publish(room, eventType string, payload interface{})
}

// Ensure concrete types implement interfaces
var (
	_ EventServicer  = (*EventService)(nil)
	_ ConfigServicer = (*ConfigService)(nil)
	_ EntryServicer  = (*EntryService)(nil)
	_ DrawServicer   = (*DrawService)(nil)
)
