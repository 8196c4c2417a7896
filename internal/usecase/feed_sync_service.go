package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/performance"
)

// ExternalFixture is one scheduled match as the data provider reports it.
type ExternalFixture struct {
	MatchID   string
	Seq       int
	StartsAt  time.Time
	Completed bool
}

// ExternalPerformance is one player's stat line for a completed match.
type ExternalPerformance struct {
	PlayerID   string
	Runs       int
	Balls      int
	Fours      int
	Sixes      int
	StrikeRate float64
	Out        bool
	Wickets    int
	Overs      float64
	Maidens    int
	Economy    float64
	Catches    int
	Stumpings  int
	RunOuts    int
}

// MatchFeed is the upstream cricket data provider.
type MatchFeed interface {
	Fixtures(ctx context.Context, leagueID string) ([]ExternalFixture, error)
	MatchPerformances(ctx context.Context, matchID string) ([]ExternalPerformance, error)
}

// FeedSyncService pulls fixtures and stat lines from the provider into local
// storage. Performance ingestion replaces the whole match feed so a corrected
// upstream line lands cleanly; scoring picks the rows up on its next run.
type FeedSyncService struct {
	feed         MatchFeed
	matchRepo    match.Repository
	performances performance.Repository
	now          func() time.Time
}

func NewFeedSyncService(feed MatchFeed, matchRepo match.Repository, performances performance.Repository) *FeedSyncService {
	return &FeedSyncService{
		feed:         feed,
		matchRepo:    matchRepo,
		performances: performances,
		now:          time.Now,
	}
}

// SyncFixtures upserts the league's match timeline from the provider.
func (s *FeedSyncService) SyncFixtures(ctx context.Context, leagueID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedSyncService.SyncFixtures")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return 0, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if s.feed == nil {
		return 0, fmt.Errorf("%w: match feed is not configured", ErrDependencyUnavailable)
	}

	fixtures, err := s.feed.Fixtures(ctx, leagueID)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch fixtures: %v", ErrDependencyUnavailable, err)
	}

	count := 0
	for _, fixture := range fixtures {
		if strings.TrimSpace(fixture.MatchID) == "" || fixture.Seq <= 0 {
			continue
		}
		item := match.Match{
			ID:        fixture.MatchID,
			LeagueID:  leagueID,
			Seq:       fixture.Seq,
			StartsAt:  fixture.StartsAt.UTC(),
			Completed: fixture.Completed,
		}
		if err := s.matchRepo.Upsert(ctx, item); err != nil {
			return count, fmt.Errorf("upsert match %s: %w", fixture.MatchID, err)
		}
		count++
	}
	return count, nil
}

// SyncMatchPerformances ingests the stat feed for one match. The match must
// already have started; feeds for unstarted matches are provider noise.
func (s *FeedSyncService) SyncMatchPerformances(ctx context.Context, leagueID, matchID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedSyncService.SyncMatchPerformances")
	defer span.End()

	leagueID, matchID = strings.TrimSpace(leagueID), strings.TrimSpace(matchID)
	if leagueID == "" || matchID == "" {
		return 0, fmt.Errorf("%w: league_id and match_id are required", ErrInvalidInput)
	}
	if s.feed == nil {
		return 0, fmt.Errorf("%w: match feed is not configured", ErrDependencyUnavailable)
	}

	target, exists, err := s.matchRepo.GetByID(ctx, leagueID, matchID)
	if err != nil {
		return 0, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !target.LockedAt(s.now().UTC()) {
		return 0, fmt.Errorf("%w: match=%s has not started", ErrInvalidInput, matchID)
	}

	lines, err := s.feed.MatchPerformances(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch match performances: %v", ErrDependencyUnavailable, err)
	}

	items := make([]performance.Performance, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line.PlayerID) == "" {
			continue
		}
		items = append(items, performance.Performance{
			PlayerID: line.PlayerID,
			MatchID:  matchID,
			Batting: performance.Batting{
				Runs:       line.Runs,
				Balls:      line.Balls,
				Fours:      line.Fours,
				Sixes:      line.Sixes,
				StrikeRate: line.StrikeRate,
				Out:        line.Out,
			},
			Bowling: performance.Bowling{
				Wickets: line.Wickets,
				Overs:   line.Overs,
				Maidens: line.Maidens,
				Economy: line.Economy,
			},
			Fielding: performance.Fielding{
				Catches:   line.Catches,
				Stumpings: line.Stumpings,
				RunOuts:   line.RunOuts,
			},
		})
	}

	if err := s.performances.ReplaceMatch(ctx, matchID, items); err != nil {
		return 0, fmt.Errorf("replace match performances: %w", err)
	}
	return len(items), nil
}
