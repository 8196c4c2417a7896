package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/scoring"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
	"github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/memory"
	basecache "github.com/crickbase/fantasy-cricket/internal/platform/cache"
)

type capturingMirror struct {
	published [][]LeaderboardRow
	err       error
}

func (m *capturingMirror) Publish(_ context.Context, _ string, rows []LeaderboardRow) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, rows)
	return nil
}

type leaderboardFixture struct {
	svc    *LeaderboardService
	scores *memory.ScoringRepository
	mirror *capturingMirror
	clock  *fakeClock
}

func newLeaderboardFixture(t *testing.T, cache *basecache.Store, mirror *capturingMirror) *leaderboardFixture {
	t.Helper()

	teams := append(testTeams(), team.Team{
		ID:        "team-cyclones",
		LeagueID:  testLeagueID,
		Name:      "Coast Cyclones",
		CreatedAt: testEpoch.Add(-20*24*time.Hour + 2*time.Hour),
	})

	leagueRepo := memory.NewLeagueRepository([]league.League{testLeague()})
	teamRepo := memory.NewTeamRepository(teams)
	scores := memory.NewScoringRepository()
	clock := &fakeClock{now: testEpoch}

	var m LeaderboardMirror
	if mirror != nil {
		m = mirror
	}
	svc := NewLeaderboardService(leagueRepo, teamRepo, scores, cache, m)
	svc.now = clock.Now

	return &leaderboardFixture{svc: svc, scores: scores, mirror: mirror, clock: clock}
}

func (f *leaderboardFixture) seedScore(t *testing.T, teamID, matchID string, total int) {
	t.Helper()

	err := f.scores.Upsert(context.Background(), scoring.Record{
		LeagueID:    testLeagueID,
		TeamID:      teamID,
		MatchID:     matchID,
		TotalPoints: total,
		UpdatedAt:   testEpoch,
	})
	if err != nil {
		t.Fatalf("seed score record: %v", err)
	}
}

func TestLeaderboardService_Get_RanksAndBreaksTies(t *testing.T) {
	fx := newLeaderboardFixture(t, nil, nil)
	fx.seedScore(t, testTeamA, "t20-m01", 100)
	fx.seedScore(t, testTeamA, "t20-m02", 50)
	fx.seedScore(t, testTeamB, "t20-m01", 150)
	fx.seedScore(t, "team-cyclones", "t20-m01", 200)

	board, err := fx.svc.Get(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(board.Rows) != 3 {
		t.Fatalf("row count=%d want 3", len(board.Rows))
	}

	// Cyclones lead outright; the 150-point tie goes to the earlier-created
	// team.
	wantOrder := []string{"team-cyclones", testTeamA, testTeamB}
	for i, want := range wantOrder {
		row := board.Rows[i]
		if row.TeamID != want {
			t.Fatalf("rank %d: got %s want %s", i+1, row.TeamID, want)
		}
		if row.Rank != i+1 {
			t.Fatalf("rank field=%d want %d", row.Rank, i+1)
		}
	}
	if board.Rows[1].MatchesScored != 2 {
		t.Fatalf("matches scored=%d want 2", board.Rows[1].MatchesScored)
	}
	if board.Rows[1].AveragePoints != 75 {
		t.Fatalf("average points=%v want 75", board.Rows[1].AveragePoints)
	}
}

func TestLeaderboardService_Get_TeamWithoutScoresStillListed(t *testing.T) {
	fx := newLeaderboardFixture(t, nil, nil)
	fx.seedScore(t, testTeamA, "t20-m01", 10)

	board, err := fx.svc.Get(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(board.Rows) != 3 {
		t.Fatalf("row count=%d want 3", len(board.Rows))
	}
	last := board.Rows[len(board.Rows)-1]
	if last.TotalPoints != 0 || last.MatchesScored != 0 {
		t.Fatalf("unexpected zero row: %+v", last)
	}
}

func TestLeaderboardService_Get_ServesFromCacheUntilInvalidated(t *testing.T) {
	fx := newLeaderboardFixture(t, basecache.NewStore(time.Minute), nil)
	fx.seedScore(t, testTeamA, "t20-m01", 10)

	first, err := fx.svc.Get(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}

	fx.clock.Advance(time.Second)
	second, err := fx.svc.Get(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatal("expected cached standings on second read")
	}

	fx.svc.Invalidate(t.Context(), testLeagueID)
	third, err := fx.svc.Get(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("third get: %v", err)
	}
	if third.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatal("expected recomputed standings after invalidation")
	}
}

func TestLeaderboardService_Refresh_PublishesToMirror(t *testing.T) {
	mirror := &capturingMirror{}
	fx := newLeaderboardFixture(t, basecache.NewStore(time.Minute), mirror)
	fx.seedScore(t, testTeamA, "t20-m01", 10)

	board, err := fx.svc.Refresh(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(mirror.published) != 1 {
		t.Fatalf("publish count=%d want 1", len(mirror.published))
	}
	if len(mirror.published[0]) != len(board.Rows) {
		t.Fatalf("published %d rows, board has %d", len(mirror.published[0]), len(board.Rows))
	}
}

func TestLeaderboardService_Refresh_MirrorFailure(t *testing.T) {
	mirror := &capturingMirror{err: fmt.Errorf("connection refused")}
	fx := newLeaderboardFixture(t, nil, mirror)

	_, err := fx.svc.Refresh(t.Context(), testLeagueID)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestLeaderboardService_Get_UnknownLeague(t *testing.T) {
	fx := newLeaderboardFixture(t, nil, nil)

	_, err := fx.svc.Get(t.Context(), "league-ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
