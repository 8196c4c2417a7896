package memory

import (
	"context"
	"sync"

	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
)

type SquadRepository struct {
	mu    sync.RWMutex
	items map[string]squad.Pool
}

func NewSquadRepository(pools []squad.Pool) *SquadRepository {
	items := make(map[string]squad.Pool, len(pools))
	for _, p := range pools {
		items[teamKey(p.LeagueID, p.TeamID)] = p
	}

	return &SquadRepository{items: items}
}

func (r *SquadRepository) GetByTeam(_ context.Context, leagueID, teamID string) (squad.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[teamKey(leagueID, teamID)]
	if !ok {
		return squad.Pool{}, false, nil
	}

	return clonePool(p), true, nil
}

func clonePool(p squad.Pool) squad.Pool {
	out := p
	out.Players = append([]squad.Player(nil), p.Players...)
	return out
}
