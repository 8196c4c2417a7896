package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/crickbase/fantasy-cricket/internal/domain/captaincy"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/transfer"
)

// LineupStore keeps lineups, their audit logs, and undo checkpoints under one
// lock so SaveExplicit and Revert behave like the single-transaction writes
// the postgres store performs.
type LineupStore struct {
	mu          sync.RWMutex
	lineups     map[string]lineup.Lineup
	transfers   map[string][]transfer.Entry
	captaincy   map[string][]captaincy.Change
	checkpoints map[string]lineup.Checkpoint
}

func NewLineupStore() *LineupStore {
	return &LineupStore{
		lineups:     make(map[string]lineup.Lineup),
		transfers:   make(map[string][]transfer.Entry),
		captaincy:   make(map[string][]captaincy.Change),
		checkpoints: make(map[string]lineup.Checkpoint),
	}
}

func (s *LineupStore) GetByTeamAndMatch(_ context.Context, leagueID, teamID, matchID string) (lineup.Lineup, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.lineups[lineupKey(leagueID, teamID, matchID)]
	if !ok {
		return lineup.Lineup{}, false, nil
	}

	return cloneLineup(item), true, nil
}

func (s *LineupStore) ListByTeam(_ context.Context, leagueID, teamID string) ([]lineup.Lineup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]lineup.Lineup, 0)
	for _, item := range s.lineups {
		if item.LeagueID == leagueID && item.TeamID == teamID {
			out = append(out, cloneLineup(item))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MatchSeq < out[j].MatchSeq })

	return out, nil
}

func (s *LineupStore) ListByMatch(_ context.Context, leagueID, matchID string) ([]lineup.Lineup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]lineup.Lineup, 0)
	for _, item := range s.lineups {
		if item.LeagueID == leagueID && item.MatchID == matchID {
			out = append(out, cloneLineup(item))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })

	return out, nil
}

func (s *LineupStore) Current(_ context.Context, leagueID, teamID string) (lineup.Lineup, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest lineup.Lineup
	found := false
	for _, item := range s.lineups {
		if item.LeagueID != leagueID || item.TeamID != teamID {
			continue
		}
		if !found || item.MatchSeq > latest.MatchSeq {
			latest = item
			found = true
		}
	}
	if !found {
		return lineup.Lineup{}, false, nil
	}

	return cloneLineup(latest), true, nil
}

func (s *LineupStore) SaveExplicit(_ context.Context, set lineup.SaveSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := set.Lineup
	s.lineups[lineupKey(item.LeagueID, item.TeamID, item.MatchID)] = cloneLineup(item)

	auditKey := teamKey(item.LeagueID, item.TeamID)
	s.transfers[auditKey] = append(
		transfersExcludingMatch(s.transfers[auditKey], item.MatchID),
		set.Transfers...,
	)
	s.captaincy[auditKey] = append(
		captaincyExcludingMatch(s.captaincy[auditKey], item.MatchID),
		set.CaptaincyChanges...,
	)
	s.checkpoints[auditKey] = cloneCheckpoint(set.Checkpoint)

	return nil
}

func (s *LineupStore) InsertPropagated(_ context.Context, item lineup.Lineup) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lineupKey(item.LeagueID, item.TeamID, item.MatchID)
	if _, exists := s.lineups[key]; exists {
		return false, nil
	}
	s.lineups[key] = cloneLineup(item)

	return true, nil
}

func (s *LineupStore) GetCheckpoint(_ context.Context, leagueID, teamID string) (lineup.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[teamKey(leagueID, teamID)]
	if !ok {
		return lineup.Checkpoint{}, false, nil
	}

	return cloneCheckpoint(cp), true, nil
}

func (s *LineupStore) Revert(_ context.Context, cp lineup.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lineupKey(cp.LeagueID, cp.TeamID, cp.MatchID)
	if cp.Previous != nil {
		s.lineups[key] = cloneLineup(*cp.Previous)
	} else {
		delete(s.lineups, key)
	}

	auditKey := teamKey(cp.LeagueID, cp.TeamID)
	s.transfers[auditKey] = append(
		transfersExcludingMatch(s.transfers[auditKey], cp.MatchID),
		cp.PreviousTransfers...,
	)
	s.captaincy[auditKey] = append(
		captaincyExcludingMatch(s.captaincy[auditKey], cp.MatchID),
		cp.PreviousCaptaincy...,
	)
	delete(s.checkpoints, auditKey)

	return nil
}

func (s *LineupStore) ListTransfersByTeam(_ context.Context, leagueID, teamID string) ([]transfer.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.transfers[teamKey(leagueID, teamID)]
	out := append([]transfer.Entry(nil), entries...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })

	return out, nil
}

func (s *LineupStore) ListCaptaincyByTeam(_ context.Context, leagueID, teamID string) ([]captaincy.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	changes := s.captaincy[teamKey(leagueID, teamID)]
	out := append([]captaincy.Change(nil), changes...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })

	return out, nil
}

// TransferLog exposes the store as a transfer.Repository.
func (s *LineupStore) TransferLog() transfer.Repository {
	return transferLogView{store: s}
}

// CaptaincyLog exposes the store as a captaincy.Repository.
func (s *LineupStore) CaptaincyLog() captaincy.Repository {
	return captaincyLogView{store: s}
}

type transferLogView struct{ store *LineupStore }

func (v transferLogView) ListByTeam(ctx context.Context, leagueID, teamID string) ([]transfer.Entry, error) {
	return v.store.ListTransfersByTeam(ctx, leagueID, teamID)
}

type captaincyLogView struct{ store *LineupStore }

func (v captaincyLogView) ListByTeam(ctx context.Context, leagueID, teamID string) ([]captaincy.Change, error) {
	return v.store.ListCaptaincyByTeam(ctx, leagueID, teamID)
}

func lineupKey(leagueID, teamID, matchID string) string {
	return leagueID + "::" + teamID + "::" + matchID
}

func cloneLineup(item lineup.Lineup) lineup.Lineup {
	out := item
	out.PlayerIDs = append([]string(nil), item.PlayerIDs...)
	return out
}

func cloneCheckpoint(cp lineup.Checkpoint) lineup.Checkpoint {
	out := cp
	if cp.Previous != nil {
		prev := cloneLineup(*cp.Previous)
		out.Previous = &prev
	}
	out.PreviousTransfers = append([]transfer.Entry(nil), cp.PreviousTransfers...)
	out.PreviousCaptaincy = append([]captaincy.Change(nil), cp.PreviousCaptaincy...)
	return out
}

func transfersExcludingMatch(entries []transfer.Entry, matchID string) []transfer.Entry {
	out := make([]transfer.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.MatchID != matchID {
			out = append(out, entry)
		}
	}
	return out
}

func captaincyExcludingMatch(changes []captaincy.Change, matchID string) []captaincy.Change {
	out := make([]captaincy.Change, 0, len(changes))
	for _, change := range changes {
		if change.MatchID != matchID {
			out = append(out, change)
		}
	}
	return out
}
