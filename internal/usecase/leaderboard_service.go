package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/scoring"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
	basecache "github.com/crickbase/fantasy-cricket/internal/platform/cache"
)

type LeaderboardRow struct {
	Rank          int     `json:"rank"`
	TeamID        string  `json:"team_id"`
	TeamName      string  `json:"team_name"`
	TotalPoints   int     `json:"total_points"`
	MatchesScored int     `json:"matches_scored"`
	AveragePoints float64 `json:"average_points"`
}

type Leaderboard struct {
	LeagueID    string           `json:"league_id"`
	Rows        []LeaderboardRow `json:"rows"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// LeaderboardMirror pushes standings to an external ranking store. Publishing
// is a side channel; the authoritative ordering always comes from the score
// records.
type LeaderboardMirror interface {
	Publish(ctx context.Context, leagueID string, rows []LeaderboardRow) error
}

// LeaderboardService is a pure read over score records. It never mutates
// scores; ranking is recomputed from whatever records exist.
type LeaderboardService struct {
	leagueRepo league.Repository
	teamRepo   team.Repository
	scores     scoring.Repository
	cache      *basecache.Store
	mirror     LeaderboardMirror
	now        func() time.Time
}

func NewLeaderboardService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	scores scoring.Repository,
	cache *basecache.Store,
	mirror LeaderboardMirror,
) *LeaderboardService {
	return &LeaderboardService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		scores:     scores,
		cache:      cache,
		mirror:     mirror,
		now:        time.Now,
	}
}

// Get returns the league standings, served from cache when warm. Concurrent
// cold reads collapse into one computation via the cache's singleflight.
func (s *LeaderboardService) Get(ctx context.Context, leagueID string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Get")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return Leaderboard{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	if s.cache == nil {
		return s.compute(ctx, leagueID)
	}

	value, err := s.cache.GetOrLoad(ctx, leaderboardCacheKey(leagueID), func(ctx context.Context) (any, error) {
		board, err := s.compute(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return board, nil
	})
	if err != nil {
		return Leaderboard{}, err
	}
	board, ok := value.(Leaderboard)
	if !ok {
		return Leaderboard{}, fmt.Errorf("unexpected leaderboard cache entry type %T", value)
	}
	return board, nil
}

// Refresh recomputes the standings, replaces the cached copy, and publishes
// to the mirror when one is configured.
func (s *LeaderboardService) Refresh(ctx context.Context, leagueID string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Refresh")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return Leaderboard{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	board, err := s.compute(ctx, leagueID)
	if err != nil {
		return Leaderboard{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, leaderboardCacheKey(leagueID), board)
	}
	if s.mirror != nil {
		if err := s.mirror.Publish(ctx, leagueID, board.Rows); err != nil {
			return Leaderboard{}, fmt.Errorf("%w: publish leaderboard mirror: %v", ErrDependencyUnavailable, err)
		}
	}
	return board, nil
}

// Invalidate drops the cached standings so the next read recomputes.
func (s *LeaderboardService) Invalidate(ctx context.Context, leagueID string) {
	if s.cache != nil {
		s.cache.Delete(ctx, leaderboardCacheKey(leagueID))
	}
}

func (s *LeaderboardService) compute(ctx context.Context, leagueID string) (Leaderboard, error) {
	if _, exists, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return Leaderboard{}, fmt.Errorf("get league: %w", err)
	} else if !exists {
		return Leaderboard{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list teams: %w", err)
	}
	records, err := s.scores.ListByLeague(ctx, leagueID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list score records: %w", err)
	}

	totals := make(map[string]int, len(teams))
	counts := make(map[string]int, len(teams))
	for _, record := range records {
		totals[record.TeamID] += record.TotalPoints
		counts[record.TeamID]++
	}

	rows := make([]LeaderboardRow, 0, len(teams))
	createdAt := make(map[string]time.Time, len(teams))
	for _, t := range teams {
		createdAt[t.ID] = t.CreatedAt
		row := LeaderboardRow{
			TeamID:        t.ID,
			TeamName:      t.Name,
			TotalPoints:   totals[t.ID],
			MatchesScored: counts[t.ID],
		}
		if row.MatchesScored > 0 {
			row.AveragePoints = float64(row.TotalPoints) / float64(row.MatchesScored)
		}
		rows = append(rows, row)
	}

	// Ties go to the team registered earlier; team ID keeps the order total.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		ci, cj := createdAt[rows[i].TeamID], createdAt[rows[j].TeamID]
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return Leaderboard{
		LeagueID:    leagueID,
		Rows:        rows,
		GeneratedAt: s.now().UTC(),
	}, nil
}

func leaderboardCacheKey(leagueID string) string {
	return "leaderboard:" + leagueID
}
