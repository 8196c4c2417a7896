package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/crickbase/fantasy-cricket/internal/domain/scoring"
)

type ScoringRepository struct {
	mu    sync.RWMutex
	items map[string]scoring.Record
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{items: make(map[string]scoring.Record)}
}

func (r *ScoringRepository) Upsert(_ context.Context, record scoring.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[scoreKey(record.LeagueID, record.TeamID, record.MatchID)] = record

	return nil
}

func (r *ScoringRepository) GetByTeamAndMatch(_ context.Context, leagueID, teamID, matchID string) (scoring.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[scoreKey(leagueID, teamID, matchID)]
	if !ok {
		return scoring.Record{}, false, nil
	}

	return record, true, nil
}

func (r *ScoringRepository) ListByMatch(_ context.Context, leagueID, matchID string) ([]scoring.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.Record, 0)
	for _, record := range r.items {
		if record.LeagueID == leagueID && record.MatchID == matchID {
			out = append(out, record)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })

	return out, nil
}

func (r *ScoringRepository) ListByLeague(_ context.Context, leagueID string) ([]scoring.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.Record, 0)
	for _, record := range r.items {
		if record.LeagueID == leagueID {
			out = append(out, record)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return out[i].MatchID < out[j].MatchID
	})

	return out, nil
}

func scoreKey(leagueID, teamID, matchID string) string {
	return leagueID + "::" + teamID + "::" + matchID
}
