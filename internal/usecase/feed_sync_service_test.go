package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/memory"
)

type stubFeed struct {
	fixtures     []ExternalFixture
	performances []ExternalPerformance
	err          error
}

func (f *stubFeed) Fixtures(_ context.Context, _ string) ([]ExternalFixture, error) {
	return f.fixtures, f.err
}

func (f *stubFeed) MatchPerformances(_ context.Context, _ string) ([]ExternalPerformance, error) {
	return f.performances, f.err
}

type feedSyncFixture struct {
	svc          *FeedSyncService
	matches      *memory.MatchRepository
	performances *memory.PerformanceRepository
	clock        *fakeClock
}

func newFeedSyncFixture(t *testing.T, feed MatchFeed) *feedSyncFixture {
	t.Helper()

	matchRepo := memory.NewMatchRepository(testMatches(-24*time.Hour, 24*time.Hour))
	performances := memory.NewPerformanceRepository()
	clock := &fakeClock{now: testEpoch}

	svc := NewFeedSyncService(feed, matchRepo, performances)
	svc.now = clock.Now

	return &feedSyncFixture{svc: svc, matches: matchRepo, performances: performances, clock: clock}
}

func TestFeedSyncService_SyncFixtures_UpsertsTimeline(t *testing.T) {
	feed := &stubFeed{fixtures: []ExternalFixture{
		{MatchID: "t20-m01", Seq: 1, StartsAt: testEpoch.Add(-24 * time.Hour), Completed: true},
		{MatchID: "t20-m03", Seq: 3, StartsAt: testEpoch.Add(48 * time.Hour)},
		// Provider noise: blank ID and missing order position.
		{MatchID: "", Seq: 4, StartsAt: testEpoch},
		{MatchID: "t20-m05", Seq: 0, StartsAt: testEpoch},
	}}
	fx := newFeedSyncFixture(t, feed)

	count, err := fx.svc.SyncFixtures(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("sync fixtures: %v", err)
	}
	if count != 2 {
		t.Fatalf("synced=%d want 2", count)
	}

	timeline, err := fx.matches.ListByLeague(t.Context(), testLeagueID)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(timeline) != 3 {
		t.Fatalf("timeline length=%d want 3", len(timeline))
	}
	first, _, err := fx.matches.GetByID(t.Context(), testLeagueID, "t20-m01")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !first.Completed {
		t.Fatal("completed flag not upserted")
	}
}

func TestFeedSyncService_SyncFixtures_ProviderError(t *testing.T) {
	fx := newFeedSyncFixture(t, &stubFeed{err: fmt.Errorf("upstream timeout")})

	_, err := fx.svc.SyncFixtures(t.Context(), testLeagueID)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestFeedSyncService_SyncFixtures_NoFeedConfigured(t *testing.T) {
	fx := newFeedSyncFixture(t, nil)

	_, err := fx.svc.SyncFixtures(t.Context(), testLeagueID)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestFeedSyncService_SyncMatchPerformances_StoresFeed(t *testing.T) {
	feed := &stubFeed{performances: []ExternalPerformance{
		{PlayerID: "a-p03", Runs: 55, Balls: 34, Fours: 4, Sixes: 1, StrikeRate: 161.8},
		{PlayerID: "a-p09", Wickets: 3, Overs: 4, Maidens: 1, Economy: 5.5},
		{PlayerID: ""},
	}}
	fx := newFeedSyncFixture(t, feed)

	count, err := fx.svc.SyncMatchPerformances(t.Context(), testLeagueID, "t20-m01")
	if err != nil {
		t.Fatalf("sync performances: %v", err)
	}
	if count != 2 {
		t.Fatalf("ingested=%d want 2", count)
	}

	stored, present, err := fx.performances.GetByMatch(t.Context(), "t20-m01")
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if !present {
		t.Fatal("feed not marked present")
	}
	if stored["a-p09"].Bowling.Overs != 4 {
		t.Fatalf("unexpected stored line: %+v", stored["a-p09"])
	}
}

func TestFeedSyncService_SyncMatchPerformances_ReplacesEarlierFeed(t *testing.T) {
	feed := &stubFeed{performances: []ExternalPerformance{
		{PlayerID: "a-p03", Runs: 55},
		{PlayerID: "a-p05", Runs: 12},
	}}
	fx := newFeedSyncFixture(t, feed)

	if _, err := fx.svc.SyncMatchPerformances(t.Context(), testLeagueID, "t20-m01"); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// The provider corrects the scorecard: one line amended, one withdrawn.
	feed.performances = []ExternalPerformance{{PlayerID: "a-p03", Runs: 57}}
	if _, err := fx.svc.SyncMatchPerformances(t.Context(), testLeagueID, "t20-m01"); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	stored, _, err := fx.performances.GetByMatch(t.Context(), "t20-m01")
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stale lines survived the replace: %d", len(stored))
	}
	if stored["a-p03"].Batting.Runs != 57 {
		t.Fatalf("corrected line not stored: %+v", stored["a-p03"])
	}
}

func TestFeedSyncService_SyncMatchPerformances_UnstartedMatch(t *testing.T) {
	fx := newFeedSyncFixture(t, &stubFeed{})

	_, err := fx.svc.SyncMatchPerformances(t.Context(), testLeagueID, "t20-m02")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFeedSyncService_SyncMatchPerformances_UnknownMatch(t *testing.T) {
	fx := newFeedSyncFixture(t, &stubFeed{})

	_, err := fx.svc.SyncMatchPerformances(t.Context(), testLeagueID, "t20-m99")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
