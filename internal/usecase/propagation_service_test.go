package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/memory"
)

type propagationFixture struct {
	svc     *PropagationService
	lineups *memory.LineupStore
	clock   *fakeClock
}

// newPropagationFixture locks the first two fixtures and leaves the third
// upcoming.
func newPropagationFixture(t *testing.T) *propagationFixture {
	t.Helper()

	leagueRepo := memory.NewLeagueRepository([]league.League{testLeague()})
	teamRepo := memory.NewTeamRepository(testTeams())
	matchRepo := memory.NewMatchRepository(testMatches(-48*time.Hour, -24*time.Hour, 24*time.Hour))
	store := memory.NewLineupStore()
	clock := &fakeClock{now: testEpoch}

	svc := NewPropagationService(leagueRepo, teamRepo, matchRepo, store)
	svc.now = clock.Now

	return &propagationFixture{svc: svc, lineups: store, clock: clock}
}

func (f *propagationFixture) seedExplicit(t *testing.T, teamID, matchID string, seq int, eleven []string) {
	t.Helper()

	set := lineup.SaveSet{Lineup: lineup.Lineup{
		LeagueID:      testLeagueID,
		TeamID:        teamID,
		MatchID:       matchID,
		MatchSeq:      seq,
		PlayerIDs:     eleven,
		CaptainID:     eleven[1],
		ViceCaptainID: eleven[2],
		Origin:        lineup.OriginExplicit,
		CreatedAt:     testEpoch.Add(-72 * time.Hour),
	}}
	if err := f.lineups.SaveExplicit(context.Background(), set); err != nil {
		t.Fatalf("seed explicit lineup: %v", err)
	}
}

func TestPropagationService_RunForLeague_CarriesLineupsForward(t *testing.T) {
	fx := newPropagationFixture(t)
	fx.seedExplicit(t, testTeamA, "t20-m01", 1, baseEleven("a"))

	report, err := fx.svc.RunForLeague(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("run for league: %v", err)
	}

	// Team A: m01 already resolved, m02 filled from it. Team B has nothing to
	// carry forward for either locked match.
	if report.Propagated != 1 || report.Skipped != 1 || report.Unresolved != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	item, exists, err := fx.lineups.GetByTeamAndMatch(t.Context(), testLeagueID, testTeamA, "t20-m02")
	if err != nil || !exists {
		t.Fatalf("propagated lineup missing: exists=%v err=%v", exists, err)
	}
	if item.Origin != lineup.OriginPropagated {
		t.Fatalf("unexpected origin: %s", item.Origin)
	}
	if item.CaptainID != "a-p03" || item.ViceCaptainID != "a-p04" {
		t.Fatalf("captaincy not carried forward: %+v", item)
	}
}

func TestPropagationService_RunForLeague_ChainsAcrossLockedMatches(t *testing.T) {
	fx := newPropagationFixture(t)
	fx.seedExplicit(t, testTeamA, "t20-m01", 1, baseEleven("a"))
	fx.clock.Advance(48 * time.Hour) // the third fixture locks too

	report, err := fx.svc.RunForLeague(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("run for league: %v", err)
	}
	if report.Propagated != 2 {
		t.Fatalf("expected chain into both later matches, got %+v", report)
	}

	third, exists, err := fx.lineups.GetByTeamAndMatch(t.Context(), testLeagueID, testTeamA, "t20-m03")
	if err != nil || !exists {
		t.Fatalf("third lineup missing: exists=%v err=%v", exists, err)
	}
	if third.MatchSeq != 3 || third.Origin != lineup.OriginPropagated {
		t.Fatalf("unexpected third lineup: %+v", third)
	}
}

func TestPropagationService_RunForLeague_Idempotent(t *testing.T) {
	fx := newPropagationFixture(t)
	fx.seedExplicit(t, testTeamA, "t20-m01", 1, baseEleven("a"))

	if _, err := fx.svc.RunForLeague(t.Context(), testLeagueID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := fx.svc.RunForLeague(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Propagated != 0 || report.Skipped != 2 || report.Unresolved != 2 {
		t.Fatalf("second run not idempotent: %+v", report)
	}
}

func TestPropagationService_RunForMatch_DoesNotOverwriteExplicit(t *testing.T) {
	fx := newPropagationFixture(t)
	fx.seedExplicit(t, testTeamA, "t20-m01", 1, baseEleven("a"))
	fx.seedExplicit(t, testTeamA, "t20-m02", 2, swapPlayers(baseEleven("a"), map[string]string{"a-p12": "a-p13"}))

	report, err := fx.svc.RunForMatch(t.Context(), testLeagueID, "t20-m02")
	if err != nil {
		t.Fatalf("run for match: %v", err)
	}
	if report.Propagated != 0 || report.Skipped != 1 || report.Unresolved != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	item, _, err := fx.lineups.GetByTeamAndMatch(t.Context(), testLeagueID, testTeamA, "t20-m02")
	if err != nil {
		t.Fatalf("get lineup: %v", err)
	}
	if item.Origin != lineup.OriginExplicit {
		t.Fatalf("explicit lineup was overwritten: %+v", item)
	}
}

func TestPropagationService_RunForMatch_RejectsUnlockedMatch(t *testing.T) {
	fx := newPropagationFixture(t)

	_, err := fx.svc.RunForMatch(t.Context(), testLeagueID, "t20-m03")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPropagationService_RunForMatch_UnknownMatch(t *testing.T) {
	fx := newPropagationFixture(t)

	_, err := fx.svc.RunForMatch(t.Context(), testLeagueID, "t20-m99")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
