package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
	"github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/memory"
	idgen "github.com/crickbase/fantasy-cricket/internal/platform/id"
)

const (
	testLeagueID = "t20-test"
	testTeamA    = "team-ashes"
	testTeamB    = "team-breakers"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock lets tests move time past match starts and undo windows.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testLeague() league.League {
	return league.League{
		ID:                     testLeagueID,
		Name:                   "Test T20",
		SquadSize:              14,
		TransferLimit:          2,
		CaptainChangeQuota:     1,
		ViceCaptainChangeQuota: 1,
		CreatedAt:              testEpoch.Add(-30 * 24 * time.Hour),
	}
}

func testTeams() []team.Team {
	return []team.Team{
		{ID: testTeamA, LeagueID: testLeagueID, Name: "Ashes XI", CreatedAt: testEpoch.Add(-20 * 24 * time.Hour)},
		{ID: testTeamB, LeagueID: testLeagueID, Name: "Bay Breakers", CreatedAt: testEpoch.Add(-20*24*time.Hour + time.Hour)},
	}
}

// testMatches lays five fixtures out relative to the epoch; offsets are in
// hours so individual tests can lock matches by advancing the clock.
func testMatches(startOffsets ...time.Duration) []match.Match {
	out := make([]match.Match, 0, len(startOffsets))
	for i, offset := range startOffsets {
		out = append(out, match.Match{
			ID:       fmt.Sprintf("t20-m%02d", i+1),
			LeagueID: testLeagueID,
			Seq:      i + 1,
			StartsAt: testEpoch.Add(offset),
		})
	}
	return out
}

// testSquad builds the same 14-player shape the seeds use: two keepers, four
// batters, two batting allrounders, two bowling allrounders, four bowlers.
func testSquad(teamID, prefix string) squad.Pool {
	roles := []squad.Role{
		squad.RoleKeeper, squad.RoleKeeper,
		squad.RoleBatter, squad.RoleBatter, squad.RoleBatter, squad.RoleBatter,
		squad.RoleBattingAllrounder, squad.RoleBattingAllrounder,
		squad.RoleBowlingAllrounder, squad.RoleBowlingAllrounder,
		squad.RoleBowler, squad.RoleBowler, squad.RoleBowler, squad.RoleBowler,
	}
	players := make([]squad.Player, 0, len(roles))
	for i, role := range roles {
		players = append(players, squad.Player{
			PlayerID: fmt.Sprintf("%s-p%02d", prefix, i+1),
			Name:     fmt.Sprintf("Player %s %02d", prefix, i+1),
			Role:     role,
		})
	}
	return squad.Pool{LeagueID: testLeagueID, TeamID: teamID, Players: players, CreatedAt: testEpoch.Add(-10 * 24 * time.Hour)}
}

// baseEleven satisfies the composition rules: one keeper, four batters, both
// allrounder pairs, and two bowlers cover the twenty-over quota exactly.
func baseEleven(prefix string) []string {
	ids := []string{"p01", "p03", "p04", "p05", "p06", "p07", "p08", "p09", "p10", "p11", "p12"}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, prefix+"-"+id)
	}
	return out
}

// swapPlayers returns a copy of the eleven with each from->to pair applied.
func swapPlayers(eleven []string, swaps map[string]string) []string {
	out := append([]string(nil), eleven...)
	for i, id := range out {
		if to, ok := swaps[id]; ok {
			out[i] = to
		}
	}
	return out
}

type lineupFixture struct {
	svc     *LineupService
	lineups *memory.LineupStore
	matches *memory.MatchRepository
	clock   *fakeClock
}

func newLineupFixture(t *testing.T, startOffsets ...time.Duration) *lineupFixture {
	t.Helper()

	if len(startOffsets) == 0 {
		startOffsets = []time.Duration{1 * time.Hour, 24 * time.Hour, 48 * time.Hour, 72 * time.Hour}
	}

	leagueRepo := memory.NewLeagueRepository([]league.League{testLeague()})
	teamRepo := memory.NewTeamRepository(testTeams())
	matchRepo := memory.NewMatchRepository(testMatches(startOffsets...))
	squadRepo := memory.NewSquadRepository([]squad.Pool{testSquad(testTeamA, "a"), testSquad(testTeamB, "b")})
	store := memory.NewLineupStore()
	clock := &fakeClock{now: testEpoch}

	svc := NewLineupService(
		leagueRepo, teamRepo, matchRepo, squadRepo,
		store, store.TransferLog(), store.CaptaincyLog(),
		idgen.NewRandomGenerator(),
	)
	svc.now = clock.Now

	return &lineupFixture{svc: svc, lineups: store, matches: matchRepo, clock: clock}
}

func (f *lineupFixture) mustSave(t *testing.T, input SaveLineupInput) {
	t.Helper()
	if _, err := f.svc.Save(t.Context(), input); err != nil {
		t.Fatalf("save lineup for %s: %v", input.MatchID, err)
	}
}

func saveInput(teamID, matchID string, eleven []string, captainID, viceID string) SaveLineupInput {
	return SaveLineupInput{
		LeagueID:      testLeagueID,
		TeamID:        teamID,
		MatchID:       matchID,
		PlayerIDs:     eleven,
		CaptainID:     captainID,
		ViceCaptainID: viceID,
	}
}

func TestLineupService_Save_BaselineIsFree(t *testing.T) {
	fx := newLineupFixture(t)
	eleven := baseEleven("a")

	saved, err := fx.svc.Save(t.Context(), saveInput(testTeamA, "t20-m01", eleven, "a-p03", "a-p09"))
	if err != nil {
		t.Fatalf("baseline save: %v", err)
	}
	if saved.Origin != lineup.OriginExplicit {
		t.Fatalf("unexpected origin: %s", saved.Origin)
	}

	budget, err := fx.svc.Budget(t.Context(), testLeagueID, testTeamA)
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	if budget.TransfersUsed != 0 || budget.CaptainChangesUsed != 0 || budget.ViceCaptainChangesUsed != 0 {
		t.Fatalf("baseline save consumed budget: %+v", budget)
	}
	if budget.TransfersRemaining != 2 {
		t.Fatalf("unexpected transfers remaining: %d", budget.TransfersRemaining)
	}
}

func TestLineupService_Save_TransferConsumesBudget(t *testing.T) {
	fx := newLineupFixture(t)
	eleven := baseEleven("a")

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", eleven, "a-p03", "a-p09"))
	changed := swapPlayers(eleven, map[string]string{"a-p12": "a-p13"})
	fx.mustSave(t, saveInput(testTeamA, "t20-m02", changed, "a-p03", "a-p09"))

	budget, err := fx.svc.Budget(t.Context(), testLeagueID, testTeamA)
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	if budget.TransfersUsed != 1 || budget.TransfersRemaining != 1 {
		t.Fatalf("unexpected transfer budget: %+v", budget)
	}

	entries, err := fx.svc.Transfers(t.Context(), testLeagueID, testTeamA)
	if err != nil {
		t.Fatalf("transfers: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected one IN/OUT pair, got %d entries", len(entries))
	}
}

func TestLineupService_Save_ResaveReplacesMatchUsage(t *testing.T) {
	fx := newLineupFixture(t)
	eleven := baseEleven("a")

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", eleven, "a-p03", "a-p09"))
	fx.mustSave(t, saveInput(testTeamA, "t20-m02", swapPlayers(eleven, map[string]string{"a-p12": "a-p13"}), "a-p03", "a-p09"))

	// Re-saving the same match with a different single swap must replace the
	// earlier usage, not stack on top of it.
	fx.mustSave(t, saveInput(testTeamA, "t20-m02", swapPlayers(eleven, map[string]string{"a-p12": "a-p14"}), "a-p03", "a-p09"))

	budget, err := fx.svc.Budget(t.Context(), testLeagueID, testTeamA)
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	if budget.TransfersUsed != 1 {
		t.Fatalf("re-save stacked transfer usage: %+v", budget)
	}
}

func TestLineupService_Save_TransferLimitExceeded(t *testing.T) {
	fx := newLineupFixture(t)
	eleven := baseEleven("a")

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", eleven, "a-p03", "a-p09"))

	// Three incoming players against a limit of two.
	changed := swapPlayers(eleven, map[string]string{"a-p11": "a-p13", "a-p12": "a-p14", "a-p03": "a-p02"})
	_, err := fx.svc.Save(t.Context(), saveInput(testTeamA, "t20-m02", changed, "a-p04", "a-p09"))
	if !errors.Is(err, ErrTransferLimitExceeded) {
		t.Fatalf("expected ErrTransferLimitExceeded, got %v", err)
	}
}

func TestLineupService_Save_CaptainQuotaExceeded(t *testing.T) {
	fx := newLineupFixture(t)
	eleven := baseEleven("a")

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", eleven, "a-p03", "a-p09"))
	fx.mustSave(t, saveInput(testTeamA, "t20-m02", eleven, "a-p04", "a-p09"))

	_, err := fx.svc.Save(t.Context(), saveInput(testTeamA, "t20-m03", eleven, "a-p05", "a-p09"))
	if !errors.Is(err, ErrCaptainQuotaExceeded) {
		t.Fatalf("expected ErrCaptainQuotaExceeded, got %v", err)
	}
}

func TestLineupService_Save_ViceCaptainQuotaExceeded(t *testing.T) {
	fx := newLineupFixture(t)
	eleven := baseEleven("a")

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", eleven, "a-p03", "a-p09"))
	fx.mustSave(t, saveInput(testTeamA, "t20-m02", eleven, "a-p03", "a-p10"))

	_, err := fx.svc.Save(t.Context(), saveInput(testTeamA, "t20-m03", eleven, "a-p03", "a-p11"))
	if !errors.Is(err, ErrViceCaptainQuotaExceeded) {
		t.Fatalf("expected ErrViceCaptainQuotaExceeded, got %v", err)
	}
}

func TestLineupService_Save_LockedMatch(t *testing.T) {
	fx := newLineupFixture(t)
	fx.clock.Advance(2 * time.Hour) // past the first match's start

	_, err := fx.svc.Save(t.Context(), saveInput(testTeamA, "t20-m01", baseEleven("a"), "a-p03", "a-p09"))
	if !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected ErrMatchLocked, got %v", err)
	}
}

func TestLineupService_Save_SequentialLockViolation(t *testing.T) {
	fx := newLineupFixture(t)
	fx.clock.Advance(2 * time.Hour) // first match locked, never resolved

	_, err := fx.svc.Save(t.Context(), saveInput(testTeamA, "t20-m02", baseEleven("a"), "a-p03", "a-p09"))
	if !errors.Is(err, ErrSequentialLockViolation) {
		t.Fatalf("expected ErrSequentialLockViolation, got %v", err)
	}
}

func TestLineupService_Save_InvalidComposition(t *testing.T) {
	fx := newLineupFixture(t)

	// Swap the only keeper out for a second bowler.
	noKeeper := swapPlayers(baseEleven("a"), map[string]string{"a-p01": "a-p13"})
	_, err := fx.svc.Save(t.Context(), saveInput(testTeamA, "t20-m01", noKeeper, "a-p03", "a-p09"))
	if !errors.Is(err, squad.ErrInvalidComposition) {
		t.Fatalf("expected ErrInvalidComposition, got %v", err)
	}
}

func TestLineupService_Undo_RestoresBudgetAndLineup(t *testing.T) {
	fx := newLineupFixture(t)
	eleven := baseEleven("a")

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", eleven, "a-p03", "a-p09"))
	fx.mustSave(t, saveInput(testTeamA, "t20-m02", swapPlayers(eleven, map[string]string{"a-p12": "a-p13"}), "a-p04", "a-p09"))

	cp, err := fx.svc.Undo(t.Context(), testLeagueID, testTeamA)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if cp.MatchID != "t20-m02" {
		t.Fatalf("checkpoint covers wrong match: %s", cp.MatchID)
	}
	if cp.Previous != nil {
		t.Fatalf("first save for the match should restore to empty, got %+v", cp.Previous)
	}

	if _, exists, err := fx.svc.GetLineup(t.Context(), testLeagueID, testTeamA, "t20-m02"); err != nil {
		t.Fatalf("get lineup: %v", err)
	} else if exists {
		t.Fatal("undone lineup still present")
	}

	budget, err := fx.svc.Budget(t.Context(), testLeagueID, testTeamA)
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	if budget.TransfersUsed != 0 || budget.CaptainChangesUsed != 0 {
		t.Fatalf("undo did not credit budget back: %+v", budget)
	}
}

func TestLineupService_Undo_NoCheckpoint(t *testing.T) {
	fx := newLineupFixture(t)

	_, err := fx.svc.Undo(t.Context(), testLeagueID, testTeamA)
	if !errors.Is(err, ErrNoPriorLineup) {
		t.Fatalf("expected ErrNoPriorLineup, got %v", err)
	}
}

func TestLineupService_Undo_WindowClosed(t *testing.T) {
	fx := newLineupFixture(t)

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", baseEleven("a"), "a-p03", "a-p09"))
	fx.clock.Advance(11 * time.Minute)

	_, err := fx.svc.Undo(t.Context(), testLeagueID, testTeamA)
	if !errors.Is(err, ErrUndoWindowClosed) {
		t.Fatalf("expected ErrUndoWindowClosed, got %v", err)
	}
}

func TestLineupService_Undo_LockedMatch(t *testing.T) {
	fx := newLineupFixture(t, 5*time.Minute, 24*time.Hour)
	fx.svc.SetUndoGraceWindow(30 * time.Minute)

	fx.mustSave(t, saveInput(testTeamA, "t20-m01", baseEleven("a"), "a-p03", "a-p09"))
	fx.clock.Advance(10 * time.Minute) // inside the window, but the match started

	_, err := fx.svc.Undo(t.Context(), testLeagueID, testTeamA)
	if !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected ErrMatchLocked, got %v", err)
	}
}

func TestLineupService_Save_UnknownTeam(t *testing.T) {
	fx := newLineupFixture(t)

	_, err := fx.svc.Save(t.Context(), saveInput("team-ghost", "t20-m01", baseEleven("a"), "a-p03", "a-p09"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
