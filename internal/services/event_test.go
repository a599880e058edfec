package services_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	ev, err := f.events.CreateEvent(ctx, "tenant-a", "  Spring Gala ")
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if ev.Name != "Spring Gala" || ev.ID == "" {
		t.Errorf("unexpected event %+v", ev)
	}

	got, err := f.events.GetEvent(ctx, models.Scope{TenantID: "tenant-a", EventID: ev.ID})
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got.Name != "Spring Gala" {
		t.Errorf("expected Spring Gala, got %s", got.Name)
	}

	events, _ := f.events.ListEvents(ctx, "tenant-a")
	if len(events) != 2 {
		t.Errorf("expected seeded event plus new one, got %d", len(events))
	}
	others, _ := f.events.ListEvents(ctx, "tenant-b")
	if len(others) != 0 {
		t.Errorf("expected no events for another tenant, got %d", len(others))
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.events.CreateEvent(ctx, "", "Gala")
	expectKind(t, err, errors.ErrValidation)
	_, err = f.events.CreateEvent(ctx, "tenant-a", "   ")
	expectKind(t, err, errors.ErrValidation)
}

func TestGetEvent_TenantIsolation(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.events.GetEvent(context.Background(), models.Scope{TenantID: "tenant-b", EventID: scope.EventID})
	expectKind(t, err, errors.ErrNotFound)
}

func TestPhotos(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.events.RegisterPhoto(ctx, scope, " ", true)
	expectKind(t, err, errors.ErrValidation)

	photo, err := f.events.RegisterPhoto(ctx, scope, "https://cdn/a.jpg", false)
	if err != nil {
		t.Fatalf("RegisterPhoto failed: %v", err)
	}
	if photo.Status != models.PhotoPending {
		t.Errorf("expected pending, got %s", photo.Status)
	}

	expectKind(t, f.events.SetPhotoStatus(ctx, scope, photo.ID, "blurry"), errors.ErrValidation)
	expectKind(t, f.events.SetPhotoStatus(ctx, scope, "missing", models.PhotoApproved), errors.ErrNotFound)
	if err := f.events.SetPhotoStatus(ctx, scope, photo.ID, models.PhotoApproved); err != nil {
		t.Fatalf("SetPhotoStatus failed: %v", err)
	}

	_, err = f.events.RegisterPhoto(ctx, models.Scope{TenantID: "tenant-a", EventID: "nope"}, "https://cdn/b.jpg", true)
	expectKind(t, err, errors.ErrNotFound)
}

func TestEntryURL(t *testing.T) {
	got := services.EntryURL("http://10.0.0.5:8080/", models.Scope{TenantID: "acme", EventID: "gala 1"})
	want := "http://10.0.0.5:8080/t/acme/events/gala%201/enter"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestEntryQRCode(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	png, err := f.events.EntryQRCode(ctx, scope, "http://localhost:8080")
	if err != nil {
		t.Fatalf("EntryQRCode failed: %v", err)
	}
	if !bytes.HasPrefix(png, pngHeader) {
		t.Error("expected PNG output")
	}

	_, err = f.events.EntryQRCode(ctx, scope, "")
	expectKind(t, err, errors.ErrValidation)

	_, err = f.events.EntryQRCode(ctx, models.Scope{TenantID: "tenant-a", EventID: "nope"}, "http://localhost:8080")
	expectKind(t, err, errors.ErrNotFound)
}

func TestEventService_StoreErrors(t *testing.T) {
	f, m := newMockFixture(t)
	ctx := context.Background()
	boom := stderrors.New("disk full")

	m.CreateEventError = boom
	_, err := f.events.CreateEvent(ctx, "tenant-a", "Gala")
	expectKind(t, err, errors.ErrInternal)

	m.ListEventsError = boom
	_, err = f.events.ListEvents(ctx, "tenant-a")
	expectKind(t, err, errors.ErrInternal)

	m.CreatePhotoError = boom
	_, err = f.events.RegisterPhoto(ctx, scope, "https://cdn/a.jpg", true)
	expectKind(t, err, errors.ErrInternal)

	m.SetPhotoStatusError = boom
	expectKind(t, f.events.SetPhotoStatus(ctx, scope, "ph", models.PhotoApproved), errors.ErrInternal)

	m.GetEventError = boom
	_, err = f.events.GetEvent(ctx, scope)
	expectKind(t, err, errors.ErrInternal)
}
