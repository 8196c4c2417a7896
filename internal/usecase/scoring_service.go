package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/performance"
	"github.com/crickbase/fantasy-cricket/internal/domain/scoring"
)

const (
	defaultRecomputeWorkers = 4

	recomputeStatusSuccess = "success"
	recomputeStatusSkipped = "skipped"
	recomputeStatusFailed  = "failed"
)

type RecomputeInput struct {
	LeagueID   string
	MaxWorkers int
}

type RecomputeResult struct {
	LeagueID     string                `json:"league_id"`
	TaskCount    int                   `json:"task_count"`
	SuccessCount int                   `json:"success_count"`
	SkippedCount int                   `json:"skipped_count"`
	FailedCount  int                   `json:"failed_count"`
	WorkerCount  int                   `json:"worker_count"`
	Tasks        []RecomputeTaskResult `json:"tasks"`
}

type RecomputeTaskResult struct {
	MatchID    string `json:"match_id"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// ScoringService turns the performance feed into per-team score records.
// Scoring a match is an idempotent upsert keyed by (team, match): re-running
// with the same feed produces the same points.
type ScoringService struct {
	leagueRepo     league.Repository
	matchRepo      match.Repository
	lineups        lineup.Store
	performances   performance.Repository
	scores         scoring.Repository
	weights        scoring.Weights
	defaultWorkers int
	now            func() time.Time
	submitTask     func(pool *ants.Pool, task func()) error
}

// SetDefaultRecomputeWorkers sets the worker count used when a recompute
// request does not name one; zero or negative keeps the built-in default.
func (s *ScoringService) SetDefaultRecomputeWorkers(workers int) {
	if workers > 0 {
		s.defaultWorkers = workers
	}
}

func NewScoringService(
	leagueRepo league.Repository,
	matchRepo match.Repository,
	lineups lineup.Store,
	performances performance.Repository,
	scores scoring.Repository,
) *ScoringService {
	return &ScoringService{
		leagueRepo:   leagueRepo,
		matchRepo:    matchRepo,
		lineups:      lineups,
		performances: performances,
		scores:       scores,
		weights:      scoring.DefaultWeights(),
		now:          time.Now,
		submitTask: func(pool *ants.Pool, task func()) error {
			return pool.Submit(task)
		},
	}
}

// ScoreMatch computes and upserts score records for every lineup resolved for
// the match. A match whose performance feed has not arrived yet stays in a
// deferred state: no zero records are written.
func (s *ScoringService) ScoreMatch(ctx context.Context, leagueID, matchID string) ([]scoring.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreMatch")
	defer span.End()

	leagueID, matchID = strings.TrimSpace(leagueID), strings.TrimSpace(matchID)
	if leagueID == "" || matchID == "" {
		return nil, fmt.Errorf("%w: league_id and match_id are required", ErrInvalidInput)
	}
	if _, exists, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	target, exists, err := s.matchRepo.GetByID(ctx, leagueID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !target.LockedAt(s.now().UTC()) {
		return nil, fmt.Errorf("%w: match=%s has not started", ErrInvalidInput, matchID)
	}

	feed, present, err := s.performances.GetByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get performance feed: %w", err)
	}
	if !present {
		return nil, fmt.Errorf("%w: match=%s", ErrPerformanceUnavailable, matchID)
	}

	resolved, err := s.lineups.ListByMatch(ctx, leagueID, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match lineups: %w", err)
	}

	now := s.now().UTC()
	records := make([]scoring.Record, 0, len(resolved))
	for _, item := range resolved {
		record := s.computeRecord(item, feed, now)
		if err := s.scores.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("upsert score record: %w", err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].TeamID < records[j].TeamID })
	return records, nil
}

// MatchScores returns the stored records for a match without recomputing.
func (s *ScoringService) MatchScores(ctx context.Context, leagueID, matchID string) ([]scoring.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.MatchScores")
	defer span.End()

	leagueID, matchID = strings.TrimSpace(leagueID), strings.TrimSpace(matchID)
	if leagueID == "" || matchID == "" {
		return nil, fmt.Errorf("%w: league_id and match_id are required", ErrInvalidInput)
	}
	if _, exists, err := s.matchRepo.GetByID(ctx, leagueID, matchID); err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	records, err := s.scores.ListByMatch(ctx, leagueID, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match scores: %w", err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].TeamID < records[j].TeamID })
	return records, nil
}

// TeamScoreBreakdown returns one team's stored record for a match.
func (s *ScoringService) TeamScoreBreakdown(ctx context.Context, leagueID, teamID, matchID string) (scoring.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.TeamScoreBreakdown")
	defer span.End()

	leagueID, teamID, matchID = strings.TrimSpace(leagueID), strings.TrimSpace(teamID), strings.TrimSpace(matchID)
	if leagueID == "" || teamID == "" || matchID == "" {
		return scoring.Record{}, fmt.Errorf("%w: league_id, team_id and match_id are required", ErrInvalidInput)
	}

	record, exists, err := s.scores.GetByTeamAndMatch(ctx, leagueID, teamID, matchID)
	if err != nil {
		return scoring.Record{}, fmt.Errorf("get score record: %w", err)
	}
	if !exists {
		return scoring.Record{}, fmt.Errorf("%w: no score for team=%s match=%s", ErrNotFound, teamID, matchID)
	}
	return record, nil
}

// Recompute rescores every locked match in the league on a worker pool.
// Matches with no performance feed yet are reported skipped, not failed, so a
// sweep over a live season stays clean.
func (s *ScoringService) Recompute(ctx context.Context, input RecomputeInput) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Recompute")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.LeagueID == "" {
		return RecomputeResult{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if _, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID); err != nil {
		return RecomputeResult{}, fmt.Errorf("get league: %w", err)
	} else if !exists {
		return RecomputeResult{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}

	timeline, err := s.matchRepo.ListByLeague(ctx, input.LeagueID)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list matches: %w", err)
	}

	now := s.now().UTC()
	targets := make([]match.Match, 0, len(timeline))
	for _, m := range timeline {
		if m.LockedAt(now) {
			targets = append(targets, m)
		}
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.defaultWorkers
	}
	if workerCount <= 0 {
		workerCount = defaultRecomputeWorkers
	}
	if workerCount > len(targets) && len(targets) > 0 {
		workerCount = len(targets)
	}

	result := RecomputeResult{
		LeagueID:    input.LeagueID,
		TaskCount:   len(targets),
		WorkerCount: workerCount,
	}
	if len(targets) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var successCount, skippedCount, failedCount atomic.Int32
	rows := make(chan RecomputeTaskResult, len(targets))

	var workers sync.WaitGroup
	for i, target := range targets {
		target := target
		workers.Add(1)
		if err := s.submitTask(pool, func() {
			defer workers.Done()

			start := time.Now()
			row := RecomputeTaskResult{MatchID: target.ID}

			records, err := s.ScoreMatch(ctx, input.LeagueID, target.ID)
			row.DurationMs = time.Since(start).Milliseconds()
			switch {
			case err == nil:
				row.Status = recomputeStatusSuccess
				row.Records = len(records)
				successCount.Add(1)
			case errors.Is(err, ErrPerformanceUnavailable):
				row.Status = recomputeStatusSkipped
				row.Message = "performance feed not available"
				skippedCount.Add(1)
			default:
				row.Status = recomputeStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
			}

			rows <- row
		}); err != nil {
			workers.Done()
			// Tasks submitted before the rejection are already running and
			// writing scores; account for every unscheduled match and let
			// the in-flight ones finish so the report stays complete.
			for _, missed := range targets[i:] {
				failedCount.Add(1)
				rows <- RecomputeTaskResult{
					MatchID: missed.ID,
					Status:  recomputeStatusFailed,
					Message: fmt.Sprintf("submit task to worker pool: %v", err),
				}
			}
			break
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].MatchID < result.Tasks[j].MatchID
	})

	result.SuccessCount = int(successCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

func (s *ScoringService) computeRecord(item lineup.Lineup, feed map[string]performance.Performance, now time.Time) scoring.Record {
	record := scoring.Record{
		LeagueID:  item.LeagueID,
		TeamID:    item.TeamID,
		MatchID:   item.MatchID,
		UpdatedAt: now,
	}
	for _, playerID := range item.PlayerIDs {
		// Players missing from a delivered feed contribute zero.
		base := s.weights.PlayerPoints(feed[playerID])
		switch playerID {
		case item.CaptainID:
			record.CaptainPoints = scoring.CaptainPoints(base)
		case item.ViceCaptainID:
			record.ViceCaptainPoints = scoring.ViceCaptainPoints(base)
		default:
			record.RegularPoints += base
		}
	}
	record.TotalPoints = record.RegularPoints + record.CaptainPoints + record.ViceCaptainPoints
	return record
}
