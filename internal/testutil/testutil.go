package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedEvent creates an event for scope and fails the test on error
func SeedEvent(t *testing.T, repo repository.EventRepository, scope models.Scope) {
	t.Helper()
	ev := &models.Event{ID: scope.EventID, TenantID: scope.TenantID, Name: "Test Event"}
	if err := repo.CreateEvent(context.Background(), ev); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
}

// SeedEntries inserts count manual entries per participant fingerprint.
// counts maps fingerprint to number of entries.
func SeedEntries(t *testing.T, repo repository.EntryRepository, cfg *models.DrawConfiguration, fingerprints []string, counts map[string]int) []models.Entry {
	t.Helper()
	var out []models.Entry
	for _, fp := range fingerprints {
		n := counts[fp]
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			e := models.Entry{
				ID:          fmt.Sprintf("%s-entry-%d", fp, i),
				TenantID:    cfg.TenantID,
				EventID:     cfg.EventID,
				ConfigID:    cfg.ID,
				Fingerprint: fp,
				DisplayName: "Guest " + fp,
				Source:      models.EntrySourceManual,
			}
			if err := repo.InsertEntryWithinLimit(context.Background(), &e, n); err != nil {
				t.Fatalf("failed to seed entry for %s: %v", fp, err)
			}
			out = append(out, e)
		}
	}
	return out
}
