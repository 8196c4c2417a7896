package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	qb "github.com/crickbase/fantasy-cricket/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := leagueBaseSelectBuilder().
		Where(qb.Eq("id", leagueID)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := leagueBaseSelectBuilder().
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:                     row.ID,
		Name:                   row.Name,
		SquadSize:              row.SquadSize,
		TransferLimit:          row.TransferLimit,
		CaptainChangeQuota:     row.CaptainChangeQuota,
		ViceCaptainChangeQuota: row.ViceCaptainChangeQuota,
		CreatedAt:              row.CreatedAt,
	}
}

func leagueBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("leagues")
}
