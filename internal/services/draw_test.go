package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/abrezinsky/luckydraw/internal/errors"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/picker"
	"github.com/abrezinsky/luckydraw/internal/repository/mock"
	"github.com/abrezinsky/luckydraw/internal/services"
	"github.com/abrezinsky/luckydraw/internal/testutil"
)

// ============================================================================
// ExecuteDraw
// ============================================================================

func TestExecuteDraw_ExampleScenario(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		f := newFixture(t, seed)
		ctx := context.Background()
		f.configure(t, models.DrawRules{MaxEntriesPerParticipant: 2, PreventDuplicateWinners: true},
			tier("grand", 1), tier("first", 2))

		// 10 entries from 8 participants, two of whom hold 2 entries
		f.enter(t, "p1", 2)
		f.enter(t, "p2", 2)
		for _, fp := range []string{"p3", "p4", "p5", "p6", "p7", "p8"} {
			f.enter(t, fp, 1)
		}

		result, err := f.draw.ExecuteDraw(ctx, scope, "organizer-1")
		if err != nil {
			t.Fatalf("seed %d: ExecuteDraw failed: %v", seed, err)
		}

		if len(result.Tiers) != 2 || result.Tiers[0].Tier.ID != "grand" || result.Tiers[1].Tier.ID != "first" {
			t.Fatalf("seed %d: expected grand then first, got %+v", seed, result.Tiers)
		}
		if len(result.Tiers[0].Winners) != 1 || len(result.Tiers[1].Winners) != 2 {
			t.Fatalf("seed %d: expected 1 grand and 2 first winners", seed)
		}

		all := result.AllWinners()
		seen := map[string]bool{}
		for _, w := range all {
			if seen[w.Fingerprint] {
				t.Fatalf("seed %d: participant %s won twice", seed, w.Fingerprint)
			}
			seen[w.Fingerprint] = true
			if w.DrawnBy != "organizer-1" || w.ExecutionID != result.Statistics.ExecutionID {
				t.Errorf("seed %d: winner metadata not set: %+v", seed, w)
			}
		}
		if len(all) != 3 {
			t.Fatalf("seed %d: expected 3 winners, got %d", seed, len(all))
		}

		stats := result.Statistics
		if stats.EntriesConsidered != 10 || stats.DistinctParticipants != 8 {
			t.Errorf("seed %d: expected 10 entries / 8 participants, got %d / %d", seed, stats.EntriesConsidered, stats.DistinctParticipants)
		}
		if stats.TiersFulfilled != 2 || len(stats.PartialTiers) != 0 {
			t.Errorf("seed %d: expected both tiers fulfilled, got %+v", seed, stats)
		}
		if stats.Tiers[0].PoolSize != 10 {
			t.Errorf("seed %d: expected full pool for grand tier, got %d", seed, stats.Tiers[0].PoolSize)
		}

		cfg, _ := f.config.GetActiveConfiguration(ctx, scope)
		if cfg.Status != models.ConfigCompleted {
			t.Errorf("seed %d: expected completed config, got %s", seed, cfg.Status)
		}
		persisted, _ := f.draw.ListWinners(ctx, scope, cfg.ID)
		if len(persisted) != 3 {
			t.Errorf("seed %d: expected 3 persisted winners, got %d", seed, len(persisted))
		}
	}
}

func TestExecuteDraw_TierOrderFollowsRank(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		f := newFixture(t, seed)
		consolation := tier("consolation", 1)
		consolation.Rank = 3
		grand := tier("grand", 1)
		grand.Rank = 1
		first := tier("first", 1)
		first.Rank = 2
		f.configure(t, dedupRules(), consolation, grand, first)

		// A single participant can only fill the first tier drawn
		f.enter(t, "solo", 3)

		result, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
		if err != nil {
			t.Fatalf("ExecuteDraw failed: %v", err)
		}
		order := []string{result.Tiers[0].Tier.ID, result.Tiers[1].Tier.ID, result.Tiers[2].Tier.ID}
		if order[0] != "grand" || order[1] != "first" || order[2] != "consolation" {
			t.Fatalf("expected rank order, got %v", order)
		}
		if len(result.Tiers[0].Winners) != 1 {
			t.Errorf("expected grand tier to be filled first")
		}
		if got := result.Statistics.PartialTiers; len(got) != 2 || got[0] != "first" || got[1] != "consolation" {
			t.Errorf("expected first and consolation partial, got %v", got)
		}
	}
}

func TestExecuteDraw_PartialFulfillment(t *testing.T) {
	f := newFixture(t, 3)
	f.configure(t, dedupRules(), tier("grand", 5))
	f.enterMany(t, 3)

	result, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
	if err != nil {
		t.Fatalf("ExecuteDraw failed: %v", err)
	}

	if got := len(result.Tiers[0].Winners); got != 3 {
		t.Fatalf("expected 3 winners, got %d", got)
	}
	stats := result.Statistics
	if len(stats.PartialTiers) != 1 || stats.PartialTiers[0] != "grand" {
		t.Errorf("expected grand flagged partial, got %v", stats.PartialTiers)
	}
	if stats.TiersFulfilled != 0 {
		t.Errorf("expected no fulfilled tiers, got %d", stats.TiersFulfilled)
	}
	tr := stats.Tiers[0]
	if tr.Requested != 5 || tr.Selected != 3 || tr.PoolSize != 3 {
		t.Errorf("unexpected tier stats %+v", tr)
	}
}

func TestExecuteDraw_NoDuplicateWinnersAcrossTiers(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		f := newFixture(t, seed)
		f.configure(t, dedupRules(), tier("grand", 2), tier("first", 3), tier("second", 5))
		for _, fp := range []string{"a", "b", "c", "d", "e", "f"} {
			f.enter(t, fp, 2)
		}

		result, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
		if err != nil {
			t.Fatalf("ExecuteDraw failed: %v", err)
		}
		all := result.AllWinners()
		if len(all) != 6 {
			t.Fatalf("expected every participant to win once, got %d winners", len(all))
		}
		seen := map[string]bool{}
		for _, w := range all {
			if seen[w.Fingerprint] {
				t.Fatalf("participant %s won twice", w.Fingerprint)
			}
			seen[w.Fingerprint] = true
		}
		if got := result.Statistics.PartialTiers; len(got) != 1 || got[0] != "second" {
			t.Errorf("expected only second tier partial, got %v", got)
		}
	}
}

func TestExecuteDraw_DuplicatesAllowedWhenDisabled(t *testing.T) {
	f := newFixture(t, 5)
	f.configure(t, models.DrawRules{MaxEntriesPerParticipant: 3},
		tier("grand", 2), tier("first", 2), tier("second", 2))
	f.enter(t, "a", 3)
	f.enter(t, "b", 1)

	result, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
	if err != nil {
		t.Fatalf("ExecuteDraw failed: %v", err)
	}
	if result.Statistics.TiersFulfilled != 3 {
		t.Fatalf("expected every tier filled, got %+v", result.Statistics)
	}
	for _, group := range result.Tiers {
		// Still one win per participant within a tier
		if group.Winners[0].Fingerprint == group.Winners[1].Fingerprint {
			t.Errorf("tier %s: participant picked twice", group.Tier.ID)
		}
	}
}

func TestExecuteDraw_AtMostOnce(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 4)

	if _, err := f.draw.ExecuteDraw(ctx, scope, "organizer"); err != nil {
		t.Fatalf("first ExecuteDraw failed: %v", err)
	}
	_, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
	expectKind(t, err, errors.ErrInvalidState)
}

func TestExecuteDraw_ConcurrentCallsSucceedOnce(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	cfg := f.configure(t, dedupRules(), tier("grand", 1), tier("first", 2))
	f.enterMany(t, 6)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, errors.ErrInvalidState):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || rejected != callers-1 {
		t.Fatalf("expected 1 success and %d rejections, got %d and %d", callers-1, successes, rejected)
	}
	winners, _ := f.draw.ListWinners(ctx, scope, cfg.ID)
	if len(winners) != 3 {
		t.Errorf("expected exactly one execution's winners, got %d", len(winners))
	}
}

func TestExecuteDraw_NoEntries(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.configure(t, dedupRules(), tier("grand", 1))

	_, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
	expectKind(t, err, errors.ErrNoEntries)

	cfg, _ := f.config.GetActiveConfiguration(ctx, scope)
	if cfg.Status != models.ConfigScheduled {
		t.Errorf("expected config left scheduled, got %s", cfg.Status)
	}
}

func TestExecuteDraw_NoConfiguration(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
	expectKind(t, err, errors.ErrNotFound)
}

func TestExecuteDraw_RollsBackOnPersistFailure(t *testing.T) {
	f, m := newMockFixture(t)
	ctx := context.Background()
	cfg := f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 3)

	m.CompleteDrawError = stderrors.New("disk full")
	_, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
	expectKind(t, err, errors.ErrInternal)

	got, _ := f.config.GetConfiguration(ctx, scope, cfg.ID)
	if got.Status != models.ConfigScheduled {
		t.Fatalf("expected status restored to scheduled, got %s", got.Status)
	}
	if len(m.Transitions) != 2 || m.Transitions[0] != models.ConfigInProgress || m.Transitions[1] != models.ConfigScheduled {
		t.Errorf("expected in_progress then scheduled, got %v", m.Transitions)
	}
	winners, _ := f.draw.ListWinners(ctx, scope, cfg.ID)
	if len(winners) != 0 {
		t.Errorf("expected no winners persisted, got %d", len(winners))
	}

	// The draw can be retried once the store recovers
	m.CompleteDrawError = nil
	if _, err := f.draw.ExecuteDraw(ctx, scope, "organizer"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestExecuteDraw_RevertFailureLeavesInProgress(t *testing.T) {
	f, m := newMockFixture(t)
	ctx := context.Background()
	cfg := f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 2)

	m.CompleteDrawError = stderrors.New("disk full")
	m.RevertTransitionError = stderrors.New("database is locked")
	_, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
	expectKind(t, err, errors.ErrInternal)

	got, _ := f.config.GetConfiguration(ctx, scope, cfg.ID)
	if got.Status != models.ConfigInProgress {
		t.Errorf("expected in_progress when revert fails, got %s", got.Status)
	}
}

type brokenSource struct{}

func (brokenSource) Intn(int) (int, error) { return 0, stderrors.New("entropy unavailable") }

func TestExecuteDraw_RandomSourceFailure(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	cfg := f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 2)

	f.draw = buildFixture(f.repo, brokenSource{}).draw
	_, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
	expectKind(t, err, errors.ErrInternal)

	got, _ := f.config.GetConfiguration(ctx, scope, cfg.ID)
	if got.Status != models.ConfigScheduled {
		t.Errorf("expected scheduled after selection failure, got %s", got.Status)
	}
}

func TestExecuteDraw_StoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		inject func(m *mock.Repository)
	}{
		{"config lookup", func(m *mock.Repository) { m.GetActiveConfigError = stderrors.New("boom") }},
		{"entry listing", func(m *mock.Repository) { m.ListEntriesError = stderrors.New("boom") }},
		{"status transition", func(m *mock.Repository) { m.TransitionConfigStatusError = stderrors.New("boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, m := newMockFixture(t)
			f.configure(t, dedupRules(), tier("grand", 1))
			f.enterMany(t, 2)

			tt.inject(m)
			_, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
			expectKind(t, err, errors.ErrInternal)
		})
	}
}

func TestNewDrawService_DefaultsToCryptoSource(t *testing.T) {
	f := newFixture(t, 1)
	f.draw = buildFixture(f.repo, nil).draw
	f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 2)

	if _, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer"); err != nil {
		t.Fatalf("ExecuteDraw with default source failed: %v", err)
	}
}

// ============================================================================
// Redraw
// ============================================================================

// executed returns a fixture whose draw has completed with grand:1, first:2
// over participants p1..pN.
func executed(t *testing.T, seed uint64, participants int, rules models.DrawRules) (*fixture, *models.DrawConfiguration, *models.DrawResult) {
	t.Helper()
	f := newFixture(t, seed)
	cfg := f.configure(t, rules, tier("grand", 1), tier("first", 2))
	f.enterMany(t, participants)
	result, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
	if err != nil {
		t.Fatalf("ExecuteDraw failed: %v", err)
	}
	return f, cfg, result
}

func TestRedraw_ExcludesForfeitedAndPriorWinners(t *testing.T) {
	for seed := uint64(0); seed < 15; seed++ {
		f, cfg, result := executed(t, seed, 5, dedupRules())
		ctx := context.Background()

		prior := map[string]bool{}
		for _, w := range result.AllWinners() {
			prior[w.Fingerprint] = true
		}
		prev := result.Tiers[0].Winners[0]

		out, err := f.draw.Redraw(ctx, scope, redrawOf(cfg, prev, "unreachable"), "organizer-2")
		if err != nil {
			t.Fatalf("seed %d: Redraw failed: %v", seed, err)
		}
		if prior[out.NewWinner.Fingerprint] {
			t.Fatalf("seed %d: redraw picked prior winner %s", seed, out.NewWinner.Fingerprint)
		}
		if out.NewWinner.TierID != "grand" || out.NewWinner.ReplacesWinnerID != prev.ID || out.NewWinner.DrawnBy != "organizer-2" {
			t.Errorf("seed %d: unexpected replacement %+v", seed, out.NewWinner)
		}
		if out.PreviousWinner.Status != models.WinnerForfeited || out.PreviousWinner.ForfeitReason != "unreachable" {
			t.Errorf("seed %d: expected forfeited previous winner, got %+v", seed, out.PreviousWinner)
		}

		history, _ := f.draw.ListWinners(ctx, scope, cfg.ID)
		if len(history) != 4 {
			t.Fatalf("seed %d: expected 4 winner rows, got %d", seed, len(history))
		}
		forfeited := 0
		for _, w := range history {
			if w.Status == models.WinnerForfeited {
				forfeited++
			}
		}
		if forfeited != 1 {
			t.Errorf("seed %d: expected 1 forfeited row, got %d", seed, forfeited)
		}
	}
}

func redrawOf(cfg *models.DrawConfiguration, w models.Winner, reason string) services.RedrawInput {
	return services.RedrawInput{ConfigID: cfg.ID, TierID: w.TierID, PreviousWinnerID: w.ID, Reason: reason}
}

func TestRedraw_EmptyPoolMutatesNothing(t *testing.T) {
	f, cfg, result := executed(t, 2, 3, dedupRules())
	ctx := context.Background()
	prev := result.Tiers[0].Winners[0]

	_, err := f.draw.Redraw(ctx, scope, redrawOf(cfg, prev, "no show"), "organizer")
	expectKind(t, err, errors.ErrNoEntries)

	w, _ := f.repo.GetWinner(ctx, scope, prev.ID)
	if w.Status != models.WinnerPending {
		t.Errorf("expected previous winner untouched, got %s", w.Status)
	}
}

func TestRedraw_WithoutDuplicatePrevention(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		f := newFixture(t, seed)
		ctx := context.Background()
		cfg := f.configure(t, models.DrawRules{MaxEntriesPerParticipant: 1}, tier("grand", 1), tier("first", 1))
		f.enterMany(t, 2)
		result, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
		if err != nil {
			t.Fatalf("ExecuteDraw failed: %v", err)
		}
		prev := result.Tiers[0].Winners[0]

		// The other participant is eligible even if they hold the first-tier prize
		out, err := f.draw.Redraw(ctx, scope, redrawOf(cfg, prev, "declined"), "organizer")
		if err != nil {
			t.Fatalf("seed %d: Redraw failed: %v", seed, err)
		}
		if out.NewWinner.Fingerprint == prev.Fingerprint {
			t.Fatalf("seed %d: forfeited participant redrawn", seed)
		}
	}
}

func TestRedraw_Preconditions(t *testing.T) {
	f, cfg, result := executed(t, 4, 6, dedupRules())
	ctx := context.Background()
	grandWinner := result.Tiers[0].Winners[0]

	tests := []struct {
		name  string
		input services.RedrawInput
		kind  errors.Kind
	}{
		{"missing fields", services.RedrawInput{ConfigID: cfg.ID}, errors.ErrValidation},
		{"unknown config", services.RedrawInput{ConfigID: "nope", TierID: "grand", PreviousWinnerID: grandWinner.ID}, errors.ErrNotFound},
		{"tier not configured", services.RedrawInput{ConfigID: cfg.ID, TierID: "bonus", PreviousWinnerID: grandWinner.ID}, errors.ErrValidation},
		{"winner of another tier", services.RedrawInput{ConfigID: cfg.ID, TierID: "first", PreviousWinnerID: grandWinner.ID}, errors.ErrValidation},
		{"unknown winner", services.RedrawInput{ConfigID: cfg.ID, TierID: "grand", PreviousWinnerID: "nope"}, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.draw.Redraw(ctx, scope, tt.input, "organizer")
			expectKind(t, err, tt.kind)
		})
	}

	if _, err := f.draw.Redraw(ctx, scope, redrawOf(cfg, grandWinner, "first"), "organizer"); err != nil {
		t.Fatalf("Redraw failed: %v", err)
	}
	_, err := f.draw.Redraw(ctx, scope, redrawOf(cfg, grandWinner, "again"), "organizer")
	expectKind(t, err, errors.ErrInvalidState)
}

func TestRedraw_RequiresCompletedDraw(t *testing.T) {
	f := newFixture(t, 1)
	cfg := f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 2)

	input := services.RedrawInput{ConfigID: cfg.ID, TierID: "grand", PreviousWinnerID: "w"}
	_, err := f.draw.Redraw(context.Background(), scope, input, "organizer")
	expectKind(t, err, errors.ErrInvalidState)
}

func TestRedraw_PersistFailure(t *testing.T) {
	f, m := newMockFixture(t)
	ctx := context.Background()
	cfg := f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 3)
	result, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
	if err != nil {
		t.Fatalf("ExecuteDraw failed: %v", err)
	}
	prev := result.Tiers[0].Winners[0]

	m.ReplaceWinnerError = stderrors.New("disk full")
	_, err = f.draw.Redraw(ctx, scope, redrawOf(cfg, prev, "gone"), "organizer")
	expectKind(t, err, errors.ErrInternal)

	w, _ := f.repo.GetWinner(ctx, scope, prev.ID)
	if w.Status != models.WinnerPending {
		t.Errorf("expected previous winner untouched, got %s", w.Status)
	}
}

// ============================================================================
// Winner lifecycle
// ============================================================================

func TestClaimAndForfeitWinner(t *testing.T) {
	f, _, result := executed(t, 1, 4, dedupRules())
	ctx := context.Background()
	w := result.Tiers[1].Winners[0]

	claimed, err := f.draw.ClaimWinner(ctx, scope, w.ID)
	if err != nil {
		t.Fatalf("ClaimWinner failed: %v", err)
	}
	if claimed.Status != models.WinnerClaimed || claimed.ClaimedAt == nil {
		t.Errorf("expected claimed winner, got %+v", claimed)
	}
	_, err = f.draw.ClaimWinner(ctx, scope, w.ID)
	expectKind(t, err, errors.ErrInvalidState)

	forfeited, err := f.draw.ForfeitWinner(ctx, scope, w.ID, " left early ")
	if err != nil {
		t.Fatalf("ForfeitWinner failed: %v", err)
	}
	if forfeited.Status != models.WinnerForfeited || forfeited.ForfeitReason != "left early" {
		t.Errorf("expected forfeited winner, got %+v", forfeited)
	}
	_, err = f.draw.ForfeitWinner(ctx, scope, w.ID, "again")
	expectKind(t, err, errors.ErrInvalidState)
	_, err = f.draw.ClaimWinner(ctx, scope, w.ID)
	expectKind(t, err, errors.ErrInvalidState)

	_, err = f.draw.ClaimWinner(ctx, scope, "missing")
	expectKind(t, err, errors.ErrNotFound)
	_, err = f.draw.ForfeitWinner(ctx, scope, "missing", "")
	expectKind(t, err, errors.ErrNotFound)
}

func TestRedraw_RejectsWinnerForfeitedWithoutRedraw(t *testing.T) {
	f, cfg, result := executed(t, 6, 6, dedupRules())
	ctx := context.Background()
	w := result.Tiers[0].Winners[0]

	if _, err := f.draw.ForfeitWinner(ctx, scope, w.ID, "no show"); err != nil {
		t.Fatalf("ForfeitWinner failed: %v", err)
	}
	// Already forfeited through the lifecycle call, so a redraw of it is rejected
	_, err := f.draw.Redraw(ctx, scope, redrawOf(cfg, w, "again"), "organizer")
	expectKind(t, err, errors.ErrInvalidState)
}

func TestListWinners_UnknownConfig(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.draw.ListWinners(context.Background(), scope, "missing")
	expectKind(t, err, errors.ErrNotFound)
}

func TestDraw_UsesSeededSourceDeterministically(t *testing.T) {
	pick := func() string {
		f := newFixture(t, 77)
		f.configure(t, dedupRules(), tier("grand", 1))
		f.enterMany(t, 8)
		result, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer")
		if err != nil {
			t.Fatalf("ExecuteDraw failed: %v", err)
		}
		return result.Tiers[0].Winners[0].Fingerprint
	}
	if a, b := pick(), pick(); a != b {
		t.Errorf("expected same winner for the same seed, got %s and %s", a, b)
	}
}

var _ picker.Source = brokenSource{}

func TestRedraw_ConcurrentRedrawsCannotShareParticipant(t *testing.T) {
	realRepo := testutil.NewTestRepository(t)
	testutil.SeedEvent(t, realRepo, scope)
	m := mock.NewRepository(realRepo)
	f := buildFixture(m, picker.CryptoSource{})
	ctx := context.Background()
	cfg := f.configure(t, dedupRules(), tier("grand", 1), tier("first", 1))
	f.enterMany(t, 3)
	result, err := f.draw.ExecuteDraw(ctx, scope, "organizer")
	if err != nil {
		t.Fatalf("ExecuteDraw failed: %v", err)
	}

	// Both redraws read the winner list before either writes, so both pools
	// hold only the one participant left over
	var arrived sync.WaitGroup
	arrived.Add(2)
	m.AfterListWinners = func() {
		arrived.Done()
		arrived.Wait()
	}

	prior := result.AllWinners()
	errs := make([]error, len(prior))
	var wg sync.WaitGroup
	for i, w := range prior {
		wg.Add(1)
		go func(i int, w models.Winner) {
			defer wg.Done()
			_, errs[i] = f.draw.Redraw(ctx, scope, redrawOf(cfg, w, "no show"), "organizer")
		}(i, w)
	}
	wg.Wait()
	m.AfterListWinners = nil

	failed := 0
	for _, err := range errs {
		if err != nil {
			expectKind(t, err, errors.ErrInvalidState)
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one redraw to lose the race, got errors %v", errs)
	}

	winners, err := f.draw.ListWinners(ctx, scope, cfg.ID)
	if err != nil {
		t.Fatalf("ListWinners failed: %v", err)
	}
	live := map[string]int{}
	for _, w := range winners {
		if w.Status != models.WinnerForfeited {
			live[w.Fingerprint]++
		}
	}
	for fp, n := range live {
		if n > 1 {
			t.Errorf("participant %s holds %d live wins with duplicate prevention on", fp, n)
		}
	}
	if len(live) != 2 {
		t.Errorf("expected two distinct live winners, got %v", live)
	}
}

func TestExecuteDraw_LogsDrawScope(t *testing.T) {
	f := newFixture(t, 3)
	var buf bytes.Buffer
	f.draw = services.NewDrawService(logger.NewWithOptions(&buf, logger.FormatJSON, logger.ParseLevel("info")), f.repo, picker.NewSeededSource(3))
	cfg := f.configure(t, dedupRules(), tier("grand", 1))
	f.enterMany(t, 2)

	if _, err := f.draw.ExecuteDraw(context.Background(), scope, "organizer"); err != nil {
		t.Fatalf("ExecuteDraw failed: %v", err)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "draw executed" || line["tenant_id"] != scope.TenantID ||
		line["event_id"] != scope.EventID || line["config_id"] != cfg.ID {
		t.Errorf("expected scoped draw log, got %v", line)
	}
}
