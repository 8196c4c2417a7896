package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/captaincy"
	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
	"github.com/crickbase/fantasy-cricket/internal/domain/transfer"
	idgen "github.com/crickbase/fantasy-cricket/internal/platform/id"
)

const defaultUndoGraceWindow = 10 * time.Minute

type SaveLineupInput struct {
	LeagueID      string
	TeamID        string
	MatchID       string
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
}

// TeamBudget is the remaining-budget projection derived from the audit logs.
type TeamBudget struct {
	TransferLimit          int
	TransfersUsed          int
	TransfersRemaining     int
	CaptainQuota           int
	CaptainChangesUsed     int
	ViceCaptainQuota       int
	ViceCaptainChangesUsed int
}

type LineupService struct {
	leagueRepo   league.Repository
	teamRepo     team.Repository
	matchRepo    match.Repository
	squadRepo    squad.Repository
	lineups      lineup.Store
	transferLog  transfer.Repository
	captaincyLog captaincy.Repository
	rules        squad.Rules
	ids          idgen.Generator
	undoGrace    time.Duration
	now          func() time.Time

	mu        sync.Mutex
	teamLocks map[string]*sync.Mutex
}

func NewLineupService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	squadRepo squad.Repository,
	lineups lineup.Store,
	transferLog transfer.Repository,
	captaincyLog captaincy.Repository,
	ids idgen.Generator,
) *LineupService {
	return &LineupService{
		leagueRepo:   leagueRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		squadRepo:    squadRepo,
		lineups:      lineups,
		transferLog:  transferLog,
		captaincyLog: captaincyLog,
		rules:        squad.DefaultRules(),
		ids:          ids,
		undoGrace:    defaultUndoGraceWindow,
		now:          time.Now,
		teamLocks:    make(map[string]*sync.Mutex),
	}
}

// SetUndoGraceWindow overrides the undo window; zero or negative keeps the default.
func (s *LineupService) SetUndoGraceWindow(window time.Duration) {
	if window > 0 {
		s.undoGrace = window
	}
}

func (s *LineupService) GetLineup(ctx context.Context, leagueID, teamID, matchID string) (lineup.Lineup, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.GetLineup")
	defer span.End()

	leagueID, teamID, matchID = strings.TrimSpace(leagueID), strings.TrimSpace(teamID), strings.TrimSpace(matchID)
	if leagueID == "" || teamID == "" || matchID == "" {
		return lineup.Lineup{}, false, fmt.Errorf("%w: league_id, team_id and match_id are required", ErrInvalidInput)
	}

	item, exists, err := s.lineups.GetByTeamAndMatch(ctx, leagueID, teamID, matchID)
	if err != nil {
		return lineup.Lineup{}, false, fmt.Errorf("get lineup: %w", err)
	}
	return item, exists, nil
}

// Save validates and persists an explicit lineup for one match. The
// diff-check-write sequence runs under a per-team lock and lands in a single
// atomic store write, so concurrent saves cannot both pass a budget check
// against the same stale count.
func (s *LineupService) Save(ctx context.Context, input SaveLineupInput) (lineup.Lineup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.Save")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.CaptainID = strings.TrimSpace(input.CaptainID)
	input.ViceCaptainID = strings.TrimSpace(input.ViceCaptainID)
	if input.LeagueID == "" || input.TeamID == "" || input.MatchID == "" {
		return lineup.Lineup{}, fmt.Errorf("%w: league_id, team_id and match_id are required", ErrInvalidInput)
	}

	cfg, err := s.getLeague(ctx, input.LeagueID)
	if err != nil {
		return lineup.Lineup{}, err
	}
	if _, err := s.getTeam(ctx, input.LeagueID, input.TeamID); err != nil {
		return lineup.Lineup{}, err
	}

	target, exists, err := s.matchRepo.GetByID(ctx, input.LeagueID, input.MatchID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return lineup.Lineup{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	unlock := s.lockTeam(input.LeagueID, input.TeamID)
	defer unlock()

	now := s.now().UTC()
	if target.LockedAt(now) {
		return lineup.Lineup{}, fmt.Errorf("%w: match=%s started at %s", ErrMatchLocked, target.ID, target.StartsAt.Format(time.RFC3339))
	}

	timeline, err := s.matchRepo.ListByLeague(ctx, input.LeagueID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("list matches: %w", err)
	}
	history, err := s.lineups.ListByTeam(ctx, input.LeagueID, input.TeamID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("list team lineups: %w", err)
	}

	if gap, blocked := earliestUnresolvedBefore(timeline, history, target.Seq, now); blocked {
		return lineup.Lineup{}, fmt.Errorf("%w: match=%s must be resolved first", ErrSequentialLockViolation, gap.ID)
	}

	pool, err := s.getSquadPool(ctx, input.LeagueID, input.TeamID)
	if err != nil {
		return lineup.Lineup{}, err
	}
	selection := squad.Selection{
		PlayerIDs:     input.PlayerIDs,
		CaptainID:     input.CaptainID,
		ViceCaptainID: input.ViceCaptainID,
	}
	if err := squad.ValidateSelection(pool, selection, s.rules); err != nil {
		return lineup.Lineup{}, err
	}

	item := lineup.Lineup{
		LeagueID:      input.LeagueID,
		TeamID:        input.TeamID,
		MatchID:       target.ID,
		MatchSeq:      target.Seq,
		PlayerIDs:     append([]string(nil), input.PlayerIDs...),
		CaptainID:     input.CaptainID,
		ViceCaptainID: input.ViceCaptainID,
		Origin:        lineup.OriginExplicit,
		CreatedAt:     now,
	}

	previous := latestResolvedBefore(history, target.Seq)

	existingEntries, err := s.transferLog.ListByTeam(ctx, input.LeagueID, input.TeamID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("list transfer entries: %w", err)
	}
	existingChanges, err := s.captaincyLog.ListByTeam(ctx, input.LeagueID, input.TeamID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("list captaincy changes: %w", err)
	}

	entries, err := s.buildTransferEntries(cfg, item, previous, existingEntries, now)
	if err != nil {
		return lineup.Lineup{}, err
	}
	changes, err := s.buildCaptaincyChanges(cfg, item, previous, existingChanges, now)
	if err != nil {
		return lineup.Lineup{}, err
	}

	checkpoint := lineup.Checkpoint{
		LeagueID:          input.LeagueID,
		TeamID:            input.TeamID,
		MatchID:           target.ID,
		PreviousTransfers: transferEntriesForMatch(existingEntries, target.ID),
		PreviousCaptaincy: captaincyChangesForMatch(existingChanges, target.ID),
		SavedAt:           now,
	}
	if replaced, ok := lineupForMatch(history, target.ID); ok {
		checkpoint.Previous = &replaced
	}

	set := lineup.SaveSet{
		Lineup:           item,
		Transfers:        entries,
		CaptaincyChanges: changes,
		Checkpoint:       checkpoint,
	}
	if err := s.lineups.SaveExplicit(ctx, set); err != nil {
		return lineup.Lineup{}, fmt.Errorf("save lineup: %w", err)
	}

	return item, nil
}

// Undo reverts the most recent explicit save, crediting back its transfers
// and captaincy usage. It is only available inside the grace window and only
// while the saved match is still unlocked.
func (s *LineupService) Undo(ctx context.Context, leagueID, teamID string) (lineup.Checkpoint, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.Undo")
	defer span.End()

	leagueID, teamID = strings.TrimSpace(leagueID), strings.TrimSpace(teamID)
	if leagueID == "" || teamID == "" {
		return lineup.Checkpoint{}, fmt.Errorf("%w: league_id and team_id are required", ErrInvalidInput)
	}
	if _, err := s.getTeam(ctx, leagueID, teamID); err != nil {
		return lineup.Checkpoint{}, err
	}

	unlock := s.lockTeam(leagueID, teamID)
	defer unlock()

	cp, exists, err := s.lineups.GetCheckpoint(ctx, leagueID, teamID)
	if err != nil {
		return lineup.Checkpoint{}, fmt.Errorf("get undo checkpoint: %w", err)
	}
	if !exists {
		return lineup.Checkpoint{}, fmt.Errorf("%w: no explicit save to undo", ErrNoPriorLineup)
	}

	now := s.now().UTC()
	if now.Sub(cp.SavedAt) > s.undoGrace {
		return lineup.Checkpoint{}, fmt.Errorf("%w: save at %s is older than %s", ErrUndoWindowClosed, cp.SavedAt.Format(time.RFC3339), s.undoGrace)
	}

	saved, exists, err := s.matchRepo.GetByID(ctx, leagueID, cp.MatchID)
	if err != nil {
		return lineup.Checkpoint{}, fmt.Errorf("get match for undo: %w", err)
	}
	if exists && saved.LockedAt(now) {
		return lineup.Checkpoint{}, fmt.Errorf("%w: match=%s is already locked", ErrMatchLocked, cp.MatchID)
	}

	if err := s.lineups.Revert(ctx, cp); err != nil {
		return lineup.Checkpoint{}, fmt.Errorf("revert lineup save: %w", err)
	}
	return cp, nil
}

// Budget projects the remaining transfer and captaincy budget from the logs.
func (s *LineupService) Budget(ctx context.Context, leagueID, teamID string) (TeamBudget, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.Budget")
	defer span.End()

	leagueID, teamID = strings.TrimSpace(leagueID), strings.TrimSpace(teamID)
	if leagueID == "" || teamID == "" {
		return TeamBudget{}, fmt.Errorf("%w: league_id and team_id are required", ErrInvalidInput)
	}

	cfg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return TeamBudget{}, err
	}
	if _, err := s.getTeam(ctx, leagueID, teamID); err != nil {
		return TeamBudget{}, err
	}

	entries, err := s.transferLog.ListByTeam(ctx, leagueID, teamID)
	if err != nil {
		return TeamBudget{}, fmt.Errorf("list transfer entries: %w", err)
	}
	changes, err := s.captaincyLog.ListByTeam(ctx, leagueID, teamID)
	if err != nil {
		return TeamBudget{}, fmt.Errorf("list captaincy changes: %w", err)
	}

	used := transfer.Used(entries)
	budget := TeamBudget{
		TransferLimit:          cfg.TransferLimit,
		TransfersUsed:          used,
		TransfersRemaining:     cfg.TransferLimit - used,
		CaptainQuota:           cfg.CaptainChangeQuota,
		CaptainChangesUsed:     captaincy.Used(changes, captaincy.KindCaptain),
		ViceCaptainQuota:       cfg.ViceCaptainChangeQuota,
		ViceCaptainChangesUsed: captaincy.Used(changes, captaincy.KindViceCaptain),
	}
	if budget.TransfersRemaining < 0 {
		budget.TransfersRemaining = 0
	}
	return budget, nil
}

// Transfers returns the team's audit trail in recording order.
func (s *LineupService) Transfers(ctx context.Context, leagueID, teamID string) ([]transfer.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.Transfers")
	defer span.End()

	leagueID, teamID = strings.TrimSpace(leagueID), strings.TrimSpace(teamID)
	if leagueID == "" || teamID == "" {
		return nil, fmt.Errorf("%w: league_id and team_id are required", ErrInvalidInput)
	}
	if _, err := s.getTeam(ctx, leagueID, teamID); err != nil {
		return nil, err
	}

	entries, err := s.transferLog.ListByTeam(ctx, leagueID, teamID)
	if err != nil {
		return nil, fmt.Errorf("list transfer entries: %w", err)
	}
	return entries, nil
}

func (s *LineupService) buildTransferEntries(
	cfg league.League,
	item lineup.Lineup,
	previous *lineup.Lineup,
	existing []transfer.Entry,
	now time.Time,
) ([]transfer.Entry, error) {
	if previous == nil {
		// Baseline save: nothing to diff against, no transfers consumed.
		return nil, nil
	}

	incoming, outgoing := diffPlayerSets(previous.PlayerIDs, item.PlayerIDs)
	if len(incoming) == 0 {
		return nil, nil
	}

	usedElsewhere := 0
	for _, entry := range existing {
		if entry.Direction == transfer.DirectionIn && entry.MatchID != item.MatchID {
			usedElsewhere++
		}
	}
	if usedElsewhere+len(incoming) > cfg.TransferLimit {
		remaining := cfg.TransferLimit - usedElsewhere
		if remaining < 0 {
			remaining = 0
		}
		return nil, fmt.Errorf("%w: %d requested, %d remaining of %d", ErrTransferLimitExceeded, len(incoming), remaining, cfg.TransferLimit)
	}

	entries := make([]transfer.Entry, 0, len(incoming)*2)
	for i := range incoming {
		outID, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate transfer entry id: %w", err)
		}
		inID, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate transfer entry id: %w", err)
		}
		entries = append(entries,
			transfer.Entry{
				ID:         outID,
				LeagueID:   item.LeagueID,
				TeamID:     item.TeamID,
				MatchID:    item.MatchID,
				Direction:  transfer.DirectionOut,
				PlayerID:   outgoing[i],
				RecordedAt: now,
			},
			transfer.Entry{
				ID:               inID,
				LeagueID:         item.LeagueID,
				TeamID:           item.TeamID,
				MatchID:          item.MatchID,
				Direction:        transfer.DirectionIn,
				PlayerID:         incoming[i],
				PreviousPlayerID: outgoing[i],
				RecordedAt:       now,
			},
		)
	}
	return entries, nil
}

func (s *LineupService) buildCaptaincyChanges(
	cfg league.League,
	item lineup.Lineup,
	previous *lineup.Lineup,
	existing []captaincy.Change,
	now time.Time,
) ([]captaincy.Change, error) {
	if previous == nil {
		// First designation is free.
		return nil, nil
	}

	captainChanged := previous.CaptainID != item.CaptainID
	viceChanged := previous.ViceCaptainID != item.ViceCaptainID
	if !captainChanged && !viceChanged {
		return nil, nil
	}

	captainUsedElsewhere := 0
	viceUsedElsewhere := 0
	for _, change := range existing {
		if change.MatchID == item.MatchID {
			continue
		}
		switch change.Kind {
		case captaincy.KindCaptain:
			captainUsedElsewhere++
		case captaincy.KindViceCaptain:
			viceUsedElsewhere++
		}
	}

	if captainChanged && captainUsedElsewhere+1 > cfg.CaptainChangeQuota {
		return nil, fmt.Errorf("%w: %d of %d changes already used", ErrCaptainQuotaExceeded, captainUsedElsewhere, cfg.CaptainChangeQuota)
	}
	if viceChanged && viceUsedElsewhere+1 > cfg.ViceCaptainChangeQuota {
		return nil, fmt.Errorf("%w: %d of %d changes already used", ErrViceCaptainQuotaExceeded, viceUsedElsewhere, cfg.ViceCaptainChangeQuota)
	}

	changes := make([]captaincy.Change, 0, 2)
	if captainChanged {
		id, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate captaincy change id: %w", err)
		}
		changes = append(changes, captaincy.Change{
			ID:           id,
			LeagueID:     item.LeagueID,
			TeamID:       item.TeamID,
			MatchID:      item.MatchID,
			Kind:         captaincy.KindCaptain,
			FromPlayerID: previous.CaptainID,
			ToPlayerID:   item.CaptainID,
			RecordedAt:   now,
		})
	}
	if viceChanged {
		id, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate captaincy change id: %w", err)
		}
		changes = append(changes, captaincy.Change{
			ID:           id,
			LeagueID:     item.LeagueID,
			TeamID:       item.TeamID,
			MatchID:      item.MatchID,
			Kind:         captaincy.KindViceCaptain,
			FromPlayerID: previous.ViceCaptainID,
			ToPlayerID:   item.ViceCaptainID,
			RecordedAt:   now,
		})
	}
	return changes, nil
}

func (s *LineupService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	cfg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return cfg, nil
}

func (s *LineupService) getTeam(ctx context.Context, leagueID, teamID string) (team.Team, error) {
	item, exists, err := s.teamRepo.GetByID(ctx, leagueID, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s in league=%s", ErrNotFound, teamID, leagueID)
	}
	return item, nil
}

func (s *LineupService) getSquadPool(ctx context.Context, leagueID, teamID string) (squad.Pool, error) {
	pool, exists, err := s.squadRepo.GetByTeam(ctx, leagueID, teamID)
	if err != nil {
		return squad.Pool{}, fmt.Errorf("get squad pool: %w", err)
	}
	if !exists {
		return squad.Pool{}, fmt.Errorf("%w: team %s has no squad pool in league %s", ErrNotFound, teamID, leagueID)
	}
	return pool, nil
}

func (s *LineupService) lockTeam(leagueID, teamID string) func() {
	key := leagueID + "::" + teamID
	s.mu.Lock()
	lock, ok := s.teamLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.teamLocks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// earliestUnresolvedBefore finds the first locked match before targetSeq that
// has no resolved lineup for the team; writing past it would leave a gap.
func earliestUnresolvedBefore(timeline []match.Match, history []lineup.Lineup, targetSeq int, now time.Time) (match.Match, bool) {
	resolved := make(map[string]struct{}, len(history))
	for _, item := range history {
		resolved[item.MatchID] = struct{}{}
	}
	for _, m := range timeline {
		if m.Seq >= targetSeq {
			break
		}
		if !m.LockedAt(now) {
			continue
		}
		if _, ok := resolved[m.ID]; !ok {
			return m, true
		}
	}
	return match.Match{}, false
}

// latestResolvedBefore returns the team's nearest resolved lineup with a
// lower sequence position, explicit or propagated.
func latestResolvedBefore(history []lineup.Lineup, targetSeq int) *lineup.Lineup {
	var found *lineup.Lineup
	for i := range history {
		if history[i].MatchSeq >= targetSeq {
			continue
		}
		if found == nil || history[i].MatchSeq > found.MatchSeq {
			found = &history[i]
		}
	}
	if found == nil {
		return nil
	}
	copied := *found
	copied.PlayerIDs = append([]string(nil), found.PlayerIDs...)
	return &copied
}

func transferEntriesForMatch(entries []transfer.Entry, matchID string) []transfer.Entry {
	var out []transfer.Entry
	for _, entry := range entries {
		if entry.MatchID == matchID {
			out = append(out, entry)
		}
	}
	return out
}

func captaincyChangesForMatch(changes []captaincy.Change, matchID string) []captaincy.Change {
	var out []captaincy.Change
	for _, change := range changes {
		if change.MatchID == matchID {
			out = append(out, change)
		}
	}
	return out
}

func lineupForMatch(history []lineup.Lineup, matchID string) (lineup.Lineup, bool) {
	for _, item := range history {
		if item.MatchID == matchID {
			copied := item
			copied.PlayerIDs = append([]string(nil), item.PlayerIDs...)
			return copied, true
		}
	}
	return lineup.Lineup{}, false
}

// diffPlayerSets pairs players leaving the eleven with those replacing them.
// Both slices are sorted so the pairing is deterministic.
func diffPlayerSets(previous, next []string) (incoming, outgoing []string) {
	prevSet := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		prevSet[id] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
	}

	for _, id := range next {
		if _, ok := prevSet[id]; !ok {
			incoming = append(incoming, id)
		}
	}
	for _, id := range previous {
		if _, ok := nextSet[id]; !ok {
			outgoing = append(outgoing, id)
		}
	}
	sort.Strings(incoming)
	sort.Strings(outgoing)
	return incoming, outgoing
}
