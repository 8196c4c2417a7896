package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/crickbase/fantasy-cricket/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(matches))
	for _, m := range matches {
		items[matchKey(m.LeagueID, m.ID)] = m
	}

	return &MatchRepository{items: items}
}

func (r *MatchRepository) GetByID(_ context.Context, leagueID, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[matchKey(leagueID, matchID)]
	if !ok {
		return match.Match{}, false, nil
	}

	return m, true, nil
}

func (r *MatchRepository) ListByLeague(_ context.Context, leagueID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, m := range r.items {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	return out, nil
}

func (r *MatchRepository) Upsert(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[matchKey(m.LeagueID, m.ID)] = m

	return nil
}

func matchKey(leagueID, matchID string) string {
	return leagueID + "::" + matchID
}
