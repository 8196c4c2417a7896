package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
	qb "github.com/crickbase/fantasy-cricket/internal/platform/querybuilder"
)

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

func (r *SquadRepository) GetByTeam(ctx context.Context, leagueID, teamID string) (squad.Pool, bool, error) {
	query, args, err := qb.Select("*").
		From("squad_players").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return squad.Pool{}, false, fmt.Errorf("build get squad query: %w", err)
	}

	var rows []squadPlayerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return squad.Pool{}, false, fmt.Errorf("get squad: %w", err)
	}
	if len(rows) == 0 {
		return squad.Pool{}, false, nil
	}

	pool := squad.Pool{
		LeagueID:  leagueID,
		TeamID:    teamID,
		Players:   make([]squad.Player, 0, len(rows)),
		CreatedAt: rows[0].CreatedAt,
	}
	for _, row := range rows {
		pool.Players = append(pool.Players, squad.Player{
			PlayerID: row.PlayerID,
			Name:     row.Name,
			Role:     squad.Role(row.Role),
		})
	}
	return pool, true, nil
}
