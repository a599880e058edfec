package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// EventServiceRepository defines the repository methods needed by EventService
type EventServiceRepository interface {
	repository.EventRepository
	repository.PhotoRepository
}

// EventService handles events and the photo references entries link to
type EventService struct {
	log  logger.Logger
	repo EventServiceRepository
}

// NewEventService creates a new EventService
func NewEventService(log logger.Logger, repo EventServiceRepository) *EventService {
	return &EventService{log: log, repo: repo}
}

// CreateEvent creates an event for a tenant
func (s *EventService) CreateEvent(ctx context.Context, tenantID, name string) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if tenantID == "" {
		return nil, errors.Validation("tenant is required")
	}
	if name == "" {
		return nil, errors.Validation("event name is required")
	}

	ev := &models.Event{ID: uuid.NewString(), TenantID: tenantID, Name: name}
	if err := s.repo.CreateEvent(ctx, ev); err != nil {
		return nil, errors.Internal(err)
	}
	s.log.Info("event created", "tenant_id", tenantID, "event_id", ev.ID)
	return ev, nil
}

// GetEvent returns the scoped event
func (s *EventService) GetEvent(ctx context.Context, scope models.Scope) (*models.Event, error) {
	ev, err := s.repo.GetEvent(ctx, scope)
	if err != nil {
		return nil, storeErr(err, "event not found")
	}
	return ev, nil
}

// ListEvents returns a tenant's events
func (s *EventService) ListEvents(ctx context.Context, tenantID string) ([]models.Event, error) {
	events, err := s.repo.ListEvents(ctx, tenantID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return events, nil
}

// RegisterPhoto records a reference to an uploaded photo
func (s *EventService) RegisterPhoto(ctx context.Context, scope models.Scope, photoURL string, approved bool) (*models.Photo, error) {
	photoURL = strings.TrimSpace(photoURL)
	if photoURL == "" {
		return nil, errors.Validation("photo url is required")
	}
	if _, err := s.GetEvent(ctx, scope); err != nil {
		return nil, err
	}

	status := models.PhotoPending
	if approved {
		status = models.PhotoApproved
	}
	p := &models.Photo{
		ID:       uuid.NewString(),
		TenantID: scope.TenantID,
		EventID:  scope.EventID,
		URL:      photoURL,
		Status:   status,
	}
	if err := s.repo.CreatePhoto(ctx, p); err != nil {
		return nil, errors.Internal(err)
	}
	return p, nil
}

// SetPhotoStatus moderates a photo
func (s *EventService) SetPhotoStatus(ctx context.Context, scope models.Scope, photoID string, status models.PhotoStatus) error {
	if !status.Valid() {
		return errors.Validationf("invalid photo status %q", status)
	}
	if err := s.repo.SetPhotoStatus(ctx, scope, photoID, status); err != nil {
		return storeErr(err, "photo not found")
	}
	return nil
}

// EntryURL is the guest-facing page for entering an event's draw
func EntryURL(baseURL string, scope models.Scope) string {
	return fmt.Sprintf("%s/t/%s/events/%s/enter",
		strings.TrimSuffix(baseURL, "/"), url.PathEscape(scope.TenantID), url.PathEscape(scope.EventID))
}

// EntryQRCode renders a PNG QR code that points guests at the event's entry page
func (s *EventService) EntryQRCode(ctx context.Context, scope models.Scope, baseURL string) ([]byte, error) {
	if baseURL == "" {
		return nil, errors.Validation("base url not configured")
	}
	if _, err := s.GetEvent(ctx, scope); err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(EntryURL(baseURL, scope), qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}
