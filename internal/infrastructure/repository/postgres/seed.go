package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickbase/fantasy-cricket/internal/infrastructure/repository/memory"
)

// Conflict targets must name the table's primary key exactly; postgres
// rejects the statement at plan time otherwise.
const (
	seedLeagueInsertSQL = `
INSERT INTO leagues (id, name, squad_size, transfer_limit, captain_change_quota, vice_captain_change_quota, created_at)
VALUES (:id, :name, :squad_size, :transfer_limit, :captain_change_quota, :vice_captain_change_quota, :created_at)
ON CONFLICT (id) DO NOTHING`

	seedTeamInsertSQL = `
INSERT INTO teams (id, league_id, name, created_at)
VALUES (:id, :league_id, :name, :created_at)
ON CONFLICT (league_id, id) DO NOTHING`

	seedMatchInsertSQL = `
INSERT INTO matches (id, league_id, seq, starts_at, completed)
VALUES (:id, :league_id, :seq, :starts_at, :completed)
ON CONFLICT (league_id, id) DO NOTHING`

	seedSquadPlayerInsertSQL = `
INSERT INTO squad_players (league_id, team_id, player_id, name, role, created_at)
VALUES (:league_id, :team_id, :player_id, :name, :role, :created_at)
ON CONFLICT (league_id, team_id, player_id) DO NOTHING`
)

// BootstrapSeed loads the demo league into an empty database so a fresh
// environment is playable without a directory import.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedLeagues() {
		sqlQuery, args, err := sqlx.Named(seedLeagueInsertSQL, map[string]any{
			"id":                        l.ID,
			"name":                      l.Name,
			"squad_size":                l.SquadSize,
			"transfer_limit":            l.TransferLimit,
			"captain_change_quota":      l.CaptainChangeQuota,
			"vice_captain_change_quota": l.ViceCaptainChangeQuota,
			"created_at":                l.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed league %s query: %w", l.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(seedTeamInsertSQL, map[string]any{
			"id":         t.ID,
			"league_id":  t.LeagueID,
			"name":       t.Name,
			"created_at": t.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	for _, m := range memory.SeedMatches() {
		sqlQuery, args, err := sqlx.Named(seedMatchInsertSQL, map[string]any{
			"id":        m.ID,
			"league_id": m.LeagueID,
			"seq":       m.Seq,
			"starts_at": m.StartsAt,
			"completed": m.Completed,
		})
		if err != nil {
			return fmt.Errorf("bind seed match %s query: %w", m.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	for _, pool := range memory.SeedSquads() {
		for _, p := range pool.Players {
			sqlQuery, args, err := sqlx.Named(seedSquadPlayerInsertSQL, map[string]any{
				"league_id":  pool.LeagueID,
				"team_id":    pool.TeamID,
				"player_id":  p.PlayerID,
				"name":       p.Name,
				"role":       string(p.Role),
				"created_at": pool.CreatedAt,
			})
			if err != nil {
				return fmt.Errorf("bind seed squad player %s query: %w", p.PlayerID, err)
			}
			sqlQuery = tx.Rebind(sqlQuery)
			if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
				return fmt.Errorf("seed squad player %s: %w", p.PlayerID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
