package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/picker"
	"github.com/abrezinsky/luckydraw/internal/repository"
	"github.com/abrezinsky/luckydraw/internal/repository/mock"
	"github.com/abrezinsky/luckydraw/internal/services"
	"github.com/abrezinsky/luckydraw/internal/testutil"
)

var scope = models.Scope{TenantID: "tenant-a", EventID: "event-1"}

// fixture wires every service over one repository
type fixture struct {
	repo    repository.FullRepository
	events  *services.EventService
	config  *services.ConfigService
	entries *services.EntryService
	draw    *services.DrawService
}

func buildFixture(repo repository.FullRepository, src picker.Source) *fixture {
	log := logger.New()
	return &fixture{
		repo:    repo,
		events:  services.NewEventService(log, repo),
		config:  services.NewConfigService(log, repo),
		entries: services.NewEntryService(log, repo),
		draw:    services.NewDrawService(log, repo, src),
	}
}

// newFixture creates services over a fresh in-memory store with the test event seeded
func newFixture(t *testing.T, seed uint64) *fixture {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	testutil.SeedEvent(t, repo, scope)
	return buildFixture(repo, picker.NewSeededSource(seed))
}

// newMockFixture is newFixture with an error-injecting repository in front
func newMockFixture(t *testing.T) (*fixture, *mock.Repository) {
	t.Helper()
	realRepo := testutil.NewTestRepository(t)
	testutil.SeedEvent(t, realRepo, scope)
	m := mock.NewRepository(realRepo)
	return buildFixture(m, picker.NewSeededSource(1)), m
}

func tier(id string, count int) models.PrizeTier {
	return models.PrizeTier{ID: id, Name: id + " prize", Count: count}
}

func (f *fixture) configure(t *testing.T, rules models.DrawRules, tiers ...models.PrizeTier) *models.DrawConfiguration {
	t.Helper()
	cfg, err := f.config.CreateOrUpdateConfiguration(context.Background(), scope, services.ConfigInput{Tiers: tiers, Rules: rules})
	if err != nil {
		t.Fatalf("CreateOrUpdateConfiguration failed: %v", err)
	}
	return cfg
}

// enter creates n manual entries for participant fp
func (f *fixture) enter(t *testing.T, fp string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.entries.CreateEntry(context.Background(), scope, services.EntryInput{
			DisplayName: "Guest " + fp,
			Fingerprint: fp,
		})
		if err != nil {
			t.Fatalf("CreateEntry(%s) failed: %v", fp, err)
		}
	}
}

// enterMany creates one entry each for participants p1..pN
func (f *fixture) enterMany(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		f.enter(t, fmt.Sprintf("p%d", i), 1)
	}
}

func expectKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %s error, got %v (%s)", kind, err, errors.KindOf(err))
	}
}

func dedupRules() models.DrawRules {
	return models.DrawRules{MaxEntriesPerParticipant: 5, PreventDuplicateWinners: true}
}
