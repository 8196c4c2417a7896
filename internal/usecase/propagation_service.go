package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
)

const defaultPropagationWorkers = 8

const (
	PropagationStatusPropagated = "propagated"
	PropagationStatusSkipped    = "skipped"
	PropagationStatusUnresolved = "unresolved"
	PropagationStatusFailed     = "failed"
)

type PropagationResult struct {
	TeamID  string
	MatchID string
	Status  string
	Reason  string
}

type PropagationReport struct {
	LeagueID   string
	Propagated int
	Skipped    int
	Unresolved int
	Failed     int
	Results    []PropagationResult
}

// PropagationService carries lineups forward into locked matches that were
// never explicitly resolved. Propagated rows copy the nearest earlier lineup,
// consume no budget, and never overwrite an explicit save.
type PropagationService struct {
	leagueRepo league.Repository
	teamRepo   team.Repository
	matchRepo  match.Repository
	lineups    lineup.Store
	workers    int
	now        func() time.Time
}

func NewPropagationService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	lineups lineup.Store,
) *PropagationService {
	return &PropagationService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		lineups:    lineups,
		workers:    defaultPropagationWorkers,
		now:        time.Now,
	}
}

// RunForMatch fills missing lineups for one locked match across every team in
// the league. Teams run in parallel; the pass is idempotent because the store
// insert is conditional on the slot still being empty.
func (s *PropagationService) RunForMatch(ctx context.Context, leagueID, matchID string) (PropagationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PropagationService.RunForMatch")
	defer span.End()

	leagueID, matchID = strings.TrimSpace(leagueID), strings.TrimSpace(matchID)
	if leagueID == "" || matchID == "" {
		return PropagationReport{}, fmt.Errorf("%w: league_id and match_id are required", ErrInvalidInput)
	}
	if _, exists, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return PropagationReport{}, fmt.Errorf("get league: %w", err)
	} else if !exists {
		return PropagationReport{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	target, exists, err := s.matchRepo.GetByID(ctx, leagueID, matchID)
	if err != nil {
		return PropagationReport{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return PropagationReport{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !target.LockedAt(s.now().UTC()) {
		return PropagationReport{}, fmt.Errorf("%w: match=%s has not locked yet", ErrInvalidInput, matchID)
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return PropagationReport{}, fmt.Errorf("list teams: %w", err)
	}

	report := PropagationReport{LeagueID: leagueID}
	report.Results = s.propagateMatch(ctx, target, teams)
	tallyPropagation(&report)
	return report, nil
}

// RunForLeague sweeps every locked match in sequence order. Matches are
// processed one at a time so a lineup propagated into match n is visible as
// the source for match n+1.
func (s *PropagationService) RunForLeague(ctx context.Context, leagueID string) (PropagationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PropagationService.RunForLeague")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return PropagationReport{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if _, exists, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return PropagationReport{}, fmt.Errorf("get league: %w", err)
	} else if !exists {
		return PropagationReport{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	timeline, err := s.matchRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return PropagationReport{}, fmt.Errorf("list matches: %w", err)
	}
	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return PropagationReport{}, fmt.Errorf("list teams: %w", err)
	}

	now := s.now().UTC()
	report := PropagationReport{LeagueID: leagueID}
	for _, m := range timeline {
		if !m.LockedAt(now) {
			continue
		}
		report.Results = append(report.Results, s.propagateMatch(ctx, m, teams)...)
	}
	tallyPropagation(&report)
	return report, nil
}

func (s *PropagationService) propagateMatch(ctx context.Context, target match.Match, teams []team.Team) []PropagationResult {
	workers := pool.NewWithResults[PropagationResult]().WithMaxGoroutines(s.workers)
	for _, t := range teams {
		t := t
		workers.Go(func() PropagationResult {
			return s.propagateTeam(ctx, target, t)
		})
	}
	return workers.Wait()
}

func (s *PropagationService) propagateTeam(ctx context.Context, target match.Match, t team.Team) PropagationResult {
	result := PropagationResult{TeamID: t.ID, MatchID: target.ID}

	history, err := s.lineups.ListByTeam(ctx, target.LeagueID, t.ID)
	if err != nil {
		result.Status = PropagationStatusFailed
		result.Reason = err.Error()
		return result
	}
	if _, ok := lineupForMatch(history, target.ID); ok {
		result.Status = PropagationStatusSkipped
		result.Reason = "lineup already resolved"
		return result
	}

	source := latestResolvedBefore(history, target.Seq)
	if source == nil {
		result.Status = PropagationStatusUnresolved
		result.Reason = "no earlier lineup to carry forward"
		return result
	}

	item := lineup.Lineup{
		LeagueID:      target.LeagueID,
		TeamID:        t.ID,
		MatchID:       target.ID,
		MatchSeq:      target.Seq,
		PlayerIDs:     append([]string(nil), source.PlayerIDs...),
		CaptainID:     source.CaptainID,
		ViceCaptainID: source.ViceCaptainID,
		Origin:        lineup.OriginPropagated,
		CreatedAt:     s.now().UTC(),
	}
	inserted, err := s.lineups.InsertPropagated(ctx, item)
	if err != nil {
		result.Status = PropagationStatusFailed
		result.Reason = err.Error()
		return result
	}
	if !inserted {
		result.Status = PropagationStatusSkipped
		result.Reason = "lineup already resolved"
		return result
	}

	result.Status = PropagationStatusPropagated
	return result
}

func tallyPropagation(report *PropagationReport) {
	for _, result := range report.Results {
		switch result.Status {
		case PropagationStatusPropagated:
			report.Propagated++
		case PropagationStatusSkipped:
			report.Skipped++
		case PropagationStatusUnresolved:
			report.Unresolved++
		case PropagationStatusFailed:
			report.Failed++
		}
	}
}
